package ports

import (
	"context"

	"github.com/deckshop/storefront/internal/core/domain"
)

// OrderFilter selects a page of orders, newest first.
type OrderFilter struct {
	UserID string // empty = all users (admin)
	Page   int    // 1-based
	Limit  int    // max rows per page (capped at 100 by service)
}

// OrderRepository is the append-only order log.
type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	// List returns a page of orders matching filter and the total count.
	List(ctx context.Context, filter OrderFilter) ([]*domain.Order, int64, error)
}

// IdempotencyStore remembers which order an Idempotency-Key produced.
type IdempotencyStore interface {
	// Lookup returns the order id recorded for key.
	Lookup(ctx context.Context, key string) (orderID string, found bool, err error)
	// Reserve atomically records orderID under key. When another request
	// already holds the key, the stored id is returned with reserved=false.
	Reserve(ctx context.Context, key, orderID string) (existing string, reserved bool, err error)
	// Release forgets key so a failed submission can be retried.
	Release(ctx context.Context, key string) error
}

// OrderEventPublisher receives committed orders for asynchronous fan-out.
type OrderEventPublisher interface {
	Publish(ctx context.Context, event domain.OrderEvent) error
}
