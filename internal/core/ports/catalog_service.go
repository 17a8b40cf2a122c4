package ports

import (
	"context"

	"github.com/deckshop/storefront/internal/core/domain"
)

// ProductInput is the create payload. Price and Stock hold the raw numeric
// text from the request so malformed values can be rejected instead of coerced.
type ProductInput struct {
	Name        string
	Brand       string
	Model       string
	Category    string
	Description string
	Image       string
	Price       string
	Stock       string // optional, defaults to 0
}

// ProductPatch is the update payload. Nil fields are left untouched.
type ProductPatch struct {
	Name        *string
	Brand       *string
	Model       *string
	Category    *string
	Description *string
	Image       *string
	Price       *string
	Stock       *string
}

// ProductQuery carries the raw query parameters of GET /products.
type ProductQuery struct {
	Category string
	Brand    string
	Search   string
	MinPrice string
	MaxPrice string
	Sort     string
}

type CatalogService interface {
	List(ctx context.Context, query ProductQuery) ([]*domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, actor *domain.Identity, input ProductInput) (*domain.Product, error)
	Update(ctx context.Context, actor *domain.Identity, id string, patch ProductPatch) (*domain.Product, error)
	Delete(ctx context.Context, actor *domain.Identity, id string) (*domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Brands(ctx context.Context) ([]string, error)
}
