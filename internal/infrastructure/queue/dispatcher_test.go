package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/deckshop/storefront/internal/core/domain"
)

func TestDispatcher_PreservesPerUserOrder(t *testing.T) {
	var (
		mu   sync.Mutex
		seen = map[string][]string{}
	)
	record := func(_ context.Context, e domain.OrderEvent) error {
		mu.Lock()
		seen[e.UserID] = append(seen[e.UserID], e.OrderID)
		mu.Unlock()
		return nil
	}

	d := NewDispatcher(4, zerolog.Nop(), record)
	d.Start(context.Background())

	users := []string{"u1", "u2", "u3"}
	for i := 0; i < 30; i++ {
		u := users[i%len(users)]
		if err := d.Publish(context.Background(), domain.OrderEvent{OrderID: fmt.Sprintf("%s-%02d", u, i), UserID: u}); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}
	d.Stop()

	for _, u := range users {
		got := seen[u]
		if len(got) != 10 {
			t.Fatalf("user %s: expected 10 events, got %d", u, len(got))
		}
		for i := 1; i < len(got); i++ {
			if got[i-1] >= got[i] {
				t.Errorf("user %s: out of order %v", u, got)
				break
			}
		}
	}
}

func TestDispatcher_HandlerErrorDoesNotStopOthers(t *testing.T) {
	var calls int
	var mu sync.Mutex
	failing := func(context.Context, domain.OrderEvent) error { return errors.New("boom") }
	counting := func(context.Context, domain.OrderEvent) error {
		mu.Lock()
		calls++
		mu.Unlock()
		return nil
	}

	d := NewDispatcher(1, zerolog.Nop(), failing, counting)
	d.Start(context.Background())
	_ = d.Publish(context.Background(), domain.OrderEvent{OrderID: "o1", UserID: "u1"})
	_ = d.Publish(context.Background(), domain.OrderEvent{OrderID: "o2", UserID: "u1"})
	d.Stop()

	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestDispatcher_PublishAfterStop(t *testing.T) {
	d := NewDispatcher(1, zerolog.Nop())
	d.Start(context.Background())
	d.Stop()
	d.Stop()

	if err := d.Publish(context.Background(), domain.OrderEvent{UserID: "u"}); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
}

func TestDispatcher_FullQueue(t *testing.T) {
	d := NewDispatcher(1, zerolog.Nop()) // not started, nothing drains
	for i := 0; i < channelBuffer; i++ {
		if err := d.Publish(context.Background(), domain.OrderEvent{UserID: "u"}); err != nil {
			t.Fatalf("publish %d: %v", i, err)
		}
	}
	if err := d.Publish(context.Background(), domain.OrderEvent{UserID: "u"}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(8, zerolog.Nop())
	for _, u := range []string{"a", "user-42", ""} {
		first := d.shardIndex(u)
		if first < 0 || first >= 8 {
			t.Fatalf("index out of range: %d", first)
		}
		if d.shardIndex(u) != first {
			t.Fatalf("shard index not deterministic for %q", u)
		}
	}
}
