package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/deckshop/storefront/internal/core/domain"
	"github.com/deckshop/storefront/internal/core/ports"
)

type CatalogService struct {
	repo   ports.ProductRepository
	logger zerolog.Logger
}

func NewCatalogService(repo ports.ProductRepository, logger zerolog.Logger) *CatalogService {
	return &CatalogService{repo: repo, logger: logger}
}

// List returns the products matching query. Malformed price bounds or an
// unknown sort key are rejected.
func (s *CatalogService) List(ctx context.Context, q ports.ProductQuery) ([]*domain.Product, error) {
	filter := ports.ProductFilter{
		Category: strings.TrimSpace(q.Category),
		Brand:    strings.TrimSpace(q.Brand),
		Search:   strings.TrimSpace(q.Search),
		Sort:     strings.TrimSpace(q.Sort),
	}

	verr := domain.NewValidationError()
	if q.MinPrice != "" {
		if v, ok := parsePrice(q.MinPrice); ok {
			filter.MinPrice = &v
		} else {
			verr.Add("min_price must be a non-negative number")
		}
	}
	if q.MaxPrice != "" {
		if v, ok := parsePrice(q.MaxPrice); ok {
			filter.MaxPrice = &v
		} else {
			verr.Add("max_price must be a non-negative number")
		}
	}
	if !ports.ValidProductSort(filter.Sort) {
		verr.Add("sort must be one of price_asc, price_desc, name, newest")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	return s.repo.List(ctx, filter)
}

func (s *CatalogService) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *CatalogService) Create(ctx context.Context, actor *domain.Identity, in ports.ProductInput) (*domain.Product, error) {
	if err := domain.RequireRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}

	verr := domain.NewValidationError()
	name := strings.TrimSpace(in.Name)
	if name == "" {
		verr.Add("name is required")
	}

	var price decimal.Decimal
	if strings.TrimSpace(in.Price) == "" {
		verr.Add("price is required")
	} else if v, ok := parsePrice(in.Price); ok {
		price = v
	} else {
		verr.Add("price must be a non-negative number")
	}

	stock := 0
	if strings.TrimSpace(in.Stock) != "" {
		if v, ok := parseStock(in.Stock); ok {
			stock = v
		} else {
			verr.Add("stock must be a non-negative integer")
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &domain.Product{
		ID:          uuid.NewString(),
		Slug:        slug.Make(name),
		Name:        name,
		Brand:       strings.TrimSpace(in.Brand),
		Model:       strings.TrimSpace(in.Model),
		Price:       price,
		Category:    strings.TrimSpace(in.Category),
		Description: strings.TrimSpace(in.Description),
		Image:       strings.TrimSpace(in.Image),
		Stock:       stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		s.logger.Error().Err(err).Msg("failed to create product")
		return nil, err
	}

	s.logger.Info().Str("product_id", p.ID).Str("actor", actor.ID).Msg("product created")
	return p, nil
}

// Update merges patch into the stored product. Price and stock are
// re-validated; nothing is written when any field is rejected.
func (s *CatalogService) Update(ctx context.Context, actor *domain.Identity, id string, patch ports.ProductPatch) (*domain.Product, error) {
	if err := domain.RequireRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	verr := domain.NewValidationError()
	if patch.Name != nil {
		if name := strings.TrimSpace(*patch.Name); name == "" {
			verr.Add("name must not be empty")
		} else {
			p.Name = name
			p.Slug = slug.Make(name)
		}
	}
	if patch.Price != nil {
		if v, ok := parsePrice(*patch.Price); ok {
			p.Price = v
		} else {
			verr.Add("price must be a non-negative number")
		}
	}
	if patch.Stock != nil {
		if v, ok := parseStock(*patch.Stock); ok {
			p.Stock = v
		} else {
			verr.Add("stock must be a non-negative integer")
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	setTrimmed(&p.Brand, patch.Brand)
	setTrimmed(&p.Model, patch.Model)
	setTrimmed(&p.Category, patch.Category)
	setTrimmed(&p.Description, patch.Description)
	setTrimmed(&p.Image, patch.Image)
	p.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info().Str("product_id", p.ID).Str("actor", actor.ID).Msg("product updated")
	return p, nil
}

func (s *CatalogService) Delete(ctx context.Context, actor *domain.Identity, id string) (*domain.Product, error) {
	if err := domain.RequireRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	p, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("product_id", p.ID).Str("actor", actor.ID).Msg("product deleted")
	return p, nil
}

func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

func (s *CatalogService) Brands(ctx context.Context) ([]string, error) {
	return s.repo.Brands(ctx)
}

// Seed inserts products into an empty catalog and reports how many were
// written. A catalog that already has products is left alone.
func (s *CatalogService) Seed(ctx context.Context, products []domain.Product) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	for i := range products {
		p := products[i]
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if p.Slug == "" {
			p.Slug = slug.Make(p.Name)
		}
		p.CreatedAt = now.Add(time.Duration(i) * time.Millisecond)
		p.UpdatedAt = p.CreatedAt
		if err := s.repo.Create(ctx, &p); err != nil {
			return i, fmt.Errorf("seed product %q: %w", p.Name, err)
		}
	}
	return len(products), nil
}

// parsePrice accepts decimal text only; empty, malformed and negative values fail.
func parsePrice(raw string) (decimal.Decimal, bool) {
	v, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || v.IsNegative() {
		return decimal.Zero, false
	}
	return v, true
}

func parseStock(raw string) (int, bool) {
	v, ok := parseWhole(raw)
	if !ok || v < 0 {
		return 0, false
	}
	return v, true
}

func setTrimmed(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
