package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/deckshop/storefront/internal/core/domain"
	"github.com/deckshop/storefront/pkg/cart"
)

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) IsAdmin() bool { return u != nil && u.Role == domain.RoleAdmin }

// Session is the persisted login state.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

// Expired reports whether the token has passed its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return s == nil || (!s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt))
}

type Product struct {
	ID          string          `json:"id"`
	Slug        string          `json:"slug"`
	Name        string          `json:"name"`
	Brand       string          `json:"brand,omitempty"`
	Model       string          `json:"model,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Stock       int             `json:"stock"`
	InStock     bool            `json:"in_stock"`
}

// CartProduct is the view of p the cart engine works with.
func (p Product) CartProduct() cart.Product {
	return cart.Product{ID: p.ID, Name: p.Name, Price: p.Price, Stock: p.Stock}
}

func productFromDomain(p domain.Product) Product {
	return Product{
		ID:          p.ID,
		Slug:        p.Slug,
		Name:        p.Name,
		Brand:       p.Brand,
		Model:       p.Model,
		Price:       p.Price,
		Category:    p.Category,
		Description: p.Description,
		Image:       p.Image,
		Stock:       p.Stock,
		InStock:     p.InStock(),
	}
}

// ProductQuery mirrors the GET /products filters. Zero values are omitted.
type ProductQuery struct {
	Category string
	Brand    string
	Search   string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     string
}

type OrderLine struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type Order struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Items     []OrderLine     `json:"items"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
}

type OrderPage struct {
	Items      []Order `json:"items"`
	Pagination struct {
		Page       int   `json:"page"`
		Limit      int   `json:"limit"`
		Total      int64 `json:"total"`
		TotalPages int   `json:"total_pages"`
	} `json:"pagination"`
}

// ProfileUpdate carries the fields to change; nil fields are not sent.
type ProfileUpdate struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

// APIError is a non-2xx response decoded from the {error, details} envelope.
type APIError struct {
	Status  int      `json:"-"`
	Message string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("storefront: %d %s", e.Status, e.Message)
	}
	return fmt.Sprintf("storefront: %d %s: %s", e.Status, e.Message, strings.Join(e.Details, "; "))
}
