package memory

import (
	"context"
	"sync"

	"github.com/deckshop/storefront/internal/core/domain"
)

type UserRepository struct {
	mu      sync.RWMutex
	order   []string
	byID    map[string]*domain.User
	byEmail map[string]string // normalized email -> id
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]string),
	}
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	key := domain.NormalizeEmail(user.Email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[key]; taken {
		return nil, domain.ErrEmailTaken
	}
	stored := cloneUser(user)
	r.byID[stored.ID] = stored
	r.byEmail[key] = stored.ID
	r.order = append(r.order, stored.ID)
	return cloneUser(stored), nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[domain.NormalizeEmail(email)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(r.byID[id]), nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

// Update replaces the stored user, keeping the email index consistent.
func (r *UserRepository) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	key := domain.NormalizeEmail(user.Email)

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[user.ID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if owner, taken := r.byEmail[key]; taken && owner != user.ID {
		return nil, domain.ErrEmailTaken
	}

	delete(r.byEmail, domain.NormalizeEmail(current.Email))
	stored := cloneUser(user)
	r.byID[user.ID] = stored
	r.byEmail[key] = user.ID
	return cloneUser(stored), nil
}

// List returns users in signup order.
func (r *UserRepository) List(_ context.Context) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.User, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, cloneUser(r.byID[id]))
	}
	return out, nil
}
