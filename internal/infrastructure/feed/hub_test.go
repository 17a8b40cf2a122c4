package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/deckshop/storefront/internal/core/domain"
)

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	deadline := time.Now().Add(2 * time.Second)
	for hub.Count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if hub.Count() != 1 {
		t.Fatalf("expected 1 client, got %d", hub.Count())
	}
	return conn
}

func TestHub_BroadcastsOrderEvents(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	conn := dialHub(t, hub)

	err := hub.Handle(context.Background(), domain.OrderEvent{
		OrderID: "o1",
		UserID:  "u1",
		Total:   decimal.RequireFromString("29.97"),
		Lines:   1,
		Units:   3,
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Type != "order.placed" || msg.OrderID != "o1" || msg.Total != "29.97" || msg.Units != 3 {
		t.Errorf("unexpected message: %+v", msg)
	}
}

func TestHub_ForgetsDisconnectedClients(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	conn := dialHub(t, hub)
	_ = conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Count() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if hub.Count() != 0 {
		t.Fatalf("expected client removed, got %d", hub.Count())
	}
}

func TestHub_BroadcastWithoutClients(t *testing.T) {
	if n := NewHub(zerolog.Nop()).Broadcast([]byte("x")); n != 0 {
		t.Fatalf("expected 0 deliveries, got %d", n)
	}
}
