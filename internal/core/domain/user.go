package domain

import (
	"strings"
	"time"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User models a storefront account. PasswordHash never leaves the service layer.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Identity is the authenticated caller as asserted by a verified token.
type Identity struct {
	ID    string
	Email string
	Name  string
	Role  string
}

// IsAdmin reports whether the identity carries the admin role.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// RequireRole fails with ErrUnauthenticated when there is no identity and
// ErrForbidden when the identity holds a different role.
func RequireRole(identity *Identity, role string) error {
	if identity == nil {
		return ErrUnauthenticated
	}
	if identity.Role != role {
		return ErrForbidden
	}
	return nil
}

// NormalizeEmail returns the comparison key for an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
