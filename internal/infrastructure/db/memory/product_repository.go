package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/deckshop/storefront/internal/core/domain"
	"github.com/deckshop/storefront/internal/core/ports"
)

// ProductRepository keeps products in insertion order. Concurrent writers
// are last-writer-wins.
type ProductRepository struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]*domain.Product
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{byID: make(map[string]*domain.Product)}
}

func cloneProduct(p *domain.Product) *domain.Product {
	c := *p
	return &c
}

func (r *ProductRepository) List(_ context.Context, filter ports.ProductFilter) ([]*domain.Product, error) {
	r.mu.RLock()
	out := make([]*domain.Product, 0, len(r.order))
	for _, id := range r.order {
		if p := r.byID[id]; filter.Matches(p) {
			out = append(out, cloneProduct(p))
		}
	}
	r.mu.RUnlock()

	ports.SortProducts(out, filter.Sort)
	return out, nil
}

func (r *ProductRepository) FindByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return cloneProduct(p), nil
}

func (r *ProductRepository) Create(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[p.ID]; !exists {
		r.order = append(r.order, p.ID)
	}
	r.byID[p.ID] = cloneProduct(p)
	return nil
}

func (r *ProductRepository) Update(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[p.ID]; !ok {
		return domain.ErrProductNotFound
	}
	r.byID[p.ID] = cloneProduct(p)
	return nil
}

func (r *ProductRepository) Delete(_ context.Context, id string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	delete(r.byID, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return p, nil
}

func (r *ProductRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.byID)), nil
}

func (r *ProductRepository) Categories(_ context.Context) ([]string, error) {
	return r.distinct(func(p *domain.Product) string { return p.Category }), nil
}

func (r *ProductRepository) Brands(_ context.Context) ([]string, error) {
	return r.distinct(func(p *domain.Product) string { return p.Brand }), nil
}

func (r *ProductRepository) distinct(field func(*domain.Product) string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := make(map[string]struct{})
	for _, p := range r.byID {
		if v := field(p); v != "" {
			set[v] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
