package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultIdempotencyTTL = 24 * time.Hour

// IdempotencyStore maps Idempotency-Key headers to order ids.
// Key format: idem:order:<user_id>:<client_key>
type IdempotencyStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewIdempotencyStore wraps client. A non-positive ttl falls back to 24h.
func NewIdempotencyStore(client redis.Cmdable, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

func (s *IdempotencyStore) Lookup(ctx context.Context, key string) (string, bool, error) {
	id, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("idempotency lookup: %w", err)
	}
	return id, true, nil
}

// Reserve claims key with SET NX. The loser reads back the winner's id.
func (s *IdempotencyStore) Reserve(ctx context.Context, key, orderID string) (string, bool, error) {
	ok, err := s.client.SetNX(ctx, s.key(key), orderID, s.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("idempotency reserve: %w", err)
	}
	if ok {
		return orderID, true, nil
	}

	existing, found, err := s.Lookup(ctx, key)
	if err != nil {
		return "", false, err
	}
	if !found {
		// Expired between SETNX and GET; try once more.
		ok, err := s.client.SetNX(ctx, s.key(key), orderID, s.ttl).Result()
		if err != nil {
			return "", false, fmt.Errorf("idempotency reserve: %w", err)
		}
		return orderID, ok, nil
	}
	return existing, false, nil
}

func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}

func (s *IdempotencyStore) key(key string) string {
	return "idem:order:" + key
}
