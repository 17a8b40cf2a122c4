package ports

import (
	"time"

	"github.com/deckshop/storefront/internal/core/domain"
)

// TokenIssuer signs session tokens for a user.
type TokenIssuer interface {
	Issue(user *domain.User) (token string, expiresAt time.Time, err error)
}

// TokenVerifier turns a token back into the identity it asserts. Any failure
// wraps domain.ErrInvalidToken.
type TokenVerifier interface {
	Verify(token string) (*domain.Identity, error)
}

// PasswordHasher is a slow salted one-way function.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Compare(digest, plaintext string) bool
}
