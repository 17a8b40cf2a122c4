package memory

import (
	"context"
	"sync"
	"time"
)

// DefaultIdempotencyTTL mirrors the Redis store.
const DefaultIdempotencyTTL = 24 * time.Hour

type idemEntry struct {
	orderID string
	expires time.Time
}

// IdempotencyStore implements ports.IdempotencyStore with expiring entries.
type IdempotencyStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]idemEntry
}

func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &IdempotencyStore{ttl: ttl, now: time.Now, entries: make(map[string]idemEntry)}
}

func (s *IdempotencyStore) Lookup(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.live(key)
	return e.orderID, ok, nil
}

func (s *IdempotencyStore) Reserve(_ context.Context, key, orderID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.live(key); ok {
		return e.orderID, false, nil
	}
	s.entries[key] = idemEntry{orderID: orderID, expires: s.now().Add(s.ttl)}
	return orderID, true, nil
}

func (s *IdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// live returns the unexpired entry for key, dropping it if it has expired.
// Callers hold s.mu.
func (s *IdempotencyStore) live(key string) (idemEntry, bool) {
	e, ok := s.entries[key]
	if !ok {
		return idemEntry{}, false
	}
	if !s.now().Before(e.expires) {
		delete(s.entries, key)
		return idemEntry{}, false
	}
	return e, true
}
