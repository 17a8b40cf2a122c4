package ports

import (
	"context"

	"github.com/deckshop/storefront/internal/core/domain"
)

// UserRepository defines persistence for accounts. Email lookups and the
// uniqueness check are case-insensitive.
type UserRepository interface {
	// Create stores a new user and returns domain.ErrEmailTaken when the
	// normalized email is already registered.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
}
