package service

import (
	"context"
	"sort"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/deckshop/storefront/internal/core/domain"
	"github.com/deckshop/storefront/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

type stubUserRepo struct {
	users     map[string]*domain.User // by id
	createErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, u := range r.users {
		if domain.NormalizeEmail(u.Email) == domain.NormalizeEmail(user.Email) {
			return nil, domain.ErrEmailTaken
		}
	}
	r.users[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if domain.NormalizeEmail(u.Email) == domain.NormalizeEmail(email) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, ok := r.users[user.ID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	r.users[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type stubProductRepo struct {
	order    []string
	products map[string]*domain.Product
	writes   int
}

func newStubProductRepo(seed ...domain.Product) *stubProductRepo {
	r := &stubProductRepo{products: make(map[string]*domain.Product)}
	for i := range seed {
		p := seed[i]
		r.order = append(r.order, p.ID)
		r.products[p.ID] = &p
	}
	return r
}

func cloneProduct(p *domain.Product) *domain.Product {
	clone := *p
	return &clone
}

func (r *stubProductRepo) List(_ context.Context, f ports.ProductFilter) ([]*domain.Product, error) {
	var out []*domain.Product
	for _, id := range r.order {
		if p := r.products[id]; f.Matches(p) {
			out = append(out, cloneProduct(p))
		}
	}
	ports.SortProducts(out, f.Sort)
	return out, nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return cloneProduct(p), nil
}

func (r *stubProductRepo) Create(_ context.Context, p *domain.Product) error {
	r.writes++
	r.order = append(r.order, p.ID)
	r.products[p.ID] = cloneProduct(p)
	return nil
}

func (r *stubProductRepo) Update(_ context.Context, p *domain.Product) error {
	if _, ok := r.products[p.ID]; !ok {
		return domain.ErrProductNotFound
	}
	r.writes++
	r.products[p.ID] = cloneProduct(p)
	return nil
}

func (r *stubProductRepo) Delete(_ context.Context, id string) (*domain.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	r.writes++
	delete(r.products, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return p, nil
}

func (r *stubProductRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.products)), nil
}

func (r *stubProductRepo) Categories(_ context.Context) ([]string, error) {
	return r.distinct(func(p *domain.Product) string { return p.Category }), nil
}

func (r *stubProductRepo) Brands(_ context.Context) ([]string, error) {
	return r.distinct(func(p *domain.Product) string { return p.Brand }), nil
}

func (r *stubProductRepo) distinct(field func(*domain.Product) string) []string {
	set := map[string]struct{}{}
	for _, p := range r.products {
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

type stubOrderRepo struct {
	orders    []*domain.Order
	createErr error
}

func (r *stubOrderRepo) Create(_ context.Context, o *domain.Order) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.orders = append(r.orders, o.Clone())
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id string) (*domain.Order, error) {
	for _, o := range r.orders {
		if o.ID == id {
			return o.Clone(), nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

// List mirrors the real repositories: newest first, then paginated.
func (r *stubOrderRepo) List(_ context.Context, f ports.OrderFilter) ([]*domain.Order, int64, error) {
	var matched []*domain.Order
	for i := len(r.orders) - 1; i >= 0; i-- {
		if f.UserID == "" || r.orders[i].UserID == f.UserID {
			matched = append(matched, r.orders[i].Clone())
		}
	}
	total := int64(len(matched))
	skip := (f.Page - 1) * f.Limit
	if skip > len(matched) {
		return []*domain.Order{}, total, nil
	}
	end := min(skip+f.Limit, len(matched))
	return matched[skip:end], total, nil
}

type stubKeys struct {
	keys     map[string]string
	released []string
}

func newStubKeys() *stubKeys { return &stubKeys{keys: make(map[string]string)} }

func (k *stubKeys) Lookup(_ context.Context, key string) (string, bool, error) {
	id, ok := k.keys[key]
	return id, ok, nil
}

func (k *stubKeys) Reserve(_ context.Context, key, orderID string) (string, bool, error) {
	if existing, ok := k.keys[key]; ok {
		return existing, false, nil
	}
	k.keys[key] = orderID
	return orderID, true, nil
}

func (k *stubKeys) Release(_ context.Context, key string) error {
	delete(k.keys, key)
	k.released = append(k.released, key)
	return nil
}

type stubPublisher struct {
	events []domain.OrderEvent
	err    error
}

func (p *stubPublisher) Publish(_ context.Context, e domain.OrderEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var (
	admin    = &domain.Identity{ID: "admin-1", Email: "admin@example.com", Role: domain.RoleAdmin}
	customer = &domain.Identity{ID: "user-1", Email: "alice@example.com", Role: domain.RoleUser}
	other    = &domain.Identity{ID: "user-2", Email: "bob@example.com", Role: domain.RoleUser}
)

func fastHasher() *BcryptHasher { return NewBcryptHasher(bcrypt.MinCost) }

func strPtr(s string) *string { return &s }
