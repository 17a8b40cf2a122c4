package ports

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/deckshop/storefront/internal/core/domain"
)

// Supported product sort orders. The zero value keeps insertion order.
const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortName      = "name"
	SortNewest    = "newest"
)

// ValidProductSort reports whether s is empty or a supported sort key.
func ValidProductSort(s string) bool {
	switch s {
	case "", SortPriceAsc, SortPriceDesc, SortName, SortNewest:
		return true
	}
	return false
}

// ProductFilter narrows a catalog listing. Empty fields do not filter.
type ProductFilter struct {
	Category string           // case-insensitive substring
	Brand    string           // case-insensitive substring
	Search   string           // case-insensitive substring over name, brand, model and category
	MinPrice *decimal.Decimal // inclusive
	MaxPrice *decimal.Decimal // inclusive
	Sort     string
}

// Matches applies the filter to a single product.
func (f ProductFilter) Matches(p *domain.Product) bool {
	if f.Category != "" && !containsFold(p.Category, f.Category) {
		return false
	}
	if f.Brand != "" && !containsFold(p.Brand, f.Brand) {
		return false
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.Search != "" &&
		!containsFold(p.Name, f.Search) &&
		!containsFold(p.Brand, f.Search) &&
		!containsFold(p.Model, f.Search) &&
		!containsFold(p.Category, f.Search) {
		return false
	}
	return true
}

// SortProducts orders products in place according to key. Ties keep their
// relative order.
func SortProducts(products []*domain.Product, key string) {
	var less func(a, b *domain.Product) bool
	switch key {
	case SortPriceAsc:
		less = func(a, b *domain.Product) bool { return a.Price.LessThan(b.Price) }
	case SortPriceDesc:
		less = func(a, b *domain.Product) bool { return a.Price.GreaterThan(b.Price) }
	case SortName:
		less = func(a, b *domain.Product) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	case SortNewest:
		less = func(a, b *domain.Product) bool { return a.CreatedAt.After(b.CreatedAt) }
	default:
		return
	}
	sort.SliceStable(products, func(i, j int) bool { return less(products[i], products[j]) })
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// ProductRepository defines persistence for the catalog.
type ProductRepository interface {
	List(ctx context.Context, filter ProductFilter) ([]*domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, p *domain.Product) error
	// Update replaces the stored record with the same id (last writer wins).
	Update(ctx context.Context, p *domain.Product) error
	// Delete removes the record and returns it.
	Delete(ctx context.Context, id string) (*domain.Product, error)
	Count(ctx context.Context) (int64, error)
	Categories(ctx context.Context) ([]string, error)
	Brands(ctx context.Context) ([]string, error)
}
