package memory

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/deckshop/storefront/internal/core/domain"
	"github.com/deckshop/storefront/internal/core/ports"
)

// OrderRepository is an append-only log.
type OrderRepository struct {
	mu     sync.RWMutex
	orders []*domain.Order
	byID   map[string]int
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{byID: make(map[string]int)}
}

func (r *OrderRepository) Create(_ context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[o.ID]; exists {
		return fmt.Errorf("insert order: duplicate id %s", o.ID)
	}
	r.byID[o.ID] = len(r.orders)
	r.orders = append(r.orders, o.Clone())
	return nil
}

func (r *OrderRepository) FindByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return r.orders[idx].Clone(), nil
}

// List walks the log backwards so the newest orders come first.
func (r *OrderRepository) List(_ context.Context, f ports.OrderFilter) ([]*domain.Order, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limit := f.Limit
	if limit <= 0 {
		limit = len(r.orders)
	}
	skip := 0
	if f.Page > 1 {
		skip = math.MaxInt
		if f.Page-1 <= math.MaxInt/max(limit, 1) {
			skip = (f.Page - 1) * limit
		}
	}

	var (
		total int64
		page  = make([]*domain.Order, 0)
	)
	for i := len(r.orders) - 1; i >= 0; i-- {
		o := r.orders[i]
		if f.UserID != "" && o.UserID != f.UserID {
			continue
		}
		if total >= int64(skip) && len(page) < limit {
			page = append(page, o.Clone())
		}
		total++
	}
	return page, total, nil
}
