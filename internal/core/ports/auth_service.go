package ports

import (
	"context"
	"time"

	"github.com/deckshop/storefront/internal/core/domain"
)

type SignupInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

// ProfileUpdate carries the optional fields of PUT /me. Nil fields are left untouched.
type ProfileUpdate struct {
	Name     *string
	Email    *string
	Password *string
}

// AuthResult pairs a freshly issued token with the user it was issued for.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

type AuthService interface {
	Signup(ctx context.Context, input SignupInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	Me(ctx context.Context, actor *domain.Identity) (*domain.User, error)
	UpdateProfile(ctx context.Context, actor *domain.Identity, input ProfileUpdate) (*AuthResult, error)
	ListUsers(ctx context.Context, actor *domain.Identity) ([]*domain.User, error)
}
