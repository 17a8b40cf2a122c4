package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/deckshop/storefront/internal/core/domain"
	"github.com/deckshop/storefront/internal/core/ports"
	"github.com/deckshop/storefront/pkg/cart"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
	// maxPage keeps the page offset within an int.
	maxPage = math.MaxInt / maxPageLimit
)

type OrderService struct {
	orders   ports.OrderRepository
	products ports.ProductRepository
	keys     ports.IdempotencyStore    // optional
	events   ports.OrderEventPublisher // optional
	logger   zerolog.Logger
}

func NewOrderService(
	orders ports.OrderRepository,
	products ports.ProductRepository,
	keys ports.IdempotencyStore,
	events ports.OrderEventPublisher,
	logger zerolog.Logger,
) *OrderService {
	return &OrderService{orders: orders, products: products, keys: keys, events: events, logger: logger}
}

// Submit validates the requested lines against the live catalog and appends
// an order holding a snapshot of each line. Catalog stock is checked but not
// deducted. With an idempotency key a repeated submission returns the order
// created by the first one.
func (s *OrderService) Submit(ctx context.Context, actor *domain.Identity, in ports.SubmitOrderInput) (*ports.SubmitOrderResult, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	if len(in.Items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	key := ""
	if in.IdempotencyKey != "" && s.keys != nil {
		key = actor.ID + ":" + in.IdempotencyKey
		orderID, found, err := s.keys.Lookup(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("idempotency lookup: %w", err)
		}
		if found {
			return s.replay(ctx, key, orderID)
		}
	}

	order, err := s.buildOrder(ctx, actor, in)
	if err != nil {
		return nil, err
	}

	if key != "" {
		existing, reserved, err := s.keys.Reserve(ctx, key, order.ID)
		if err != nil {
			return nil, fmt.Errorf("idempotency reserve: %w", err)
		}
		if !reserved {
			return s.replay(ctx, key, existing)
		}
	}

	if err := s.orders.Create(ctx, order); err != nil {
		if key != "" {
			if relErr := s.keys.Release(ctx, key); relErr != nil {
				s.logger.Warn().Err(relErr).Str("idempotency_key", in.IdempotencyKey).Msg("failed to release idempotency key")
			}
		}
		s.logger.Error().Err(err).Msg("failed to create order")
		return nil, err
	}

	s.logger.Info().
		Str("order_id", order.ID).
		Str("user_id", order.UserID).
		Str("total", order.Total.StringFixed(2)).
		Int("lines", len(order.Items)).
		Msg("order placed")

	if s.events != nil {
		if err := s.events.Publish(ctx, domain.NewOrderPlaced(order)); err != nil {
			s.logger.Warn().Err(err).Str("order_id", order.ID).Msg("failed to publish order event")
		}
	}

	return &ports.SubmitOrderResult{Order: order}, nil
}

func (s *OrderService) replay(ctx context.Context, key, orderID string) (*ports.SubmitOrderResult, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if errors.Is(err, domain.ErrOrderNotFound) {
		// Reserved by a submission that has not committed yet.
		return nil, domain.ErrRequestInFlight
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("idempotency_key", key).Str("order_id", order.ID).Msg("idempotent replay")
	return &ports.SubmitOrderResult{Order: order, Replayed: true}, nil
}

func (s *OrderService) buildOrder(ctx context.Context, actor *domain.Identity, in ports.SubmitOrderInput) (*domain.Order, error) {
	verr := domain.NewInvalidOrderError()
	seen := make(map[string]struct{}, len(in.Items))
	lines := make([]domain.OrderLine, 0, len(in.Items))

	for i, item := range in.Items {
		id := strings.TrimSpace(item.ProductID)
		qty, qtyErr := parseQuantity(item.Quantity)
		if qtyErr != nil {
			verr.Add(fmt.Sprintf("items[%d].quantity must be a positive integer", i))
		}
		if id == "" {
			verr.Add(fmt.Sprintf("items[%d].id is required", i))
			continue
		}
		if _, dup := seen[id]; dup {
			verr.Add(fmt.Sprintf("items[%d].id %q appears more than once", i, id))
			continue
		}
		seen[id] = struct{}{}

		p, err := s.products.FindByID(ctx, id)
		if errors.Is(err, domain.ErrProductNotFound) {
			verr.Add(fmt.Sprintf("items[%d]: product %q not found", i, id))
			continue
		}
		if err != nil {
			return nil, err
		}
		if qtyErr != nil {
			continue
		}
		if qty > p.Stock {
			verr.Add(fmt.Sprintf("items[%d]: only %d of %q in stock", i, p.Stock, p.Name))
			continue
		}

		lines = append(lines, domain.OrderLine{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  qty,
		})
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}

	if in.Total != nil {
		claimed, err := decimal.NewFromString(strings.TrimSpace(*in.Total))
		switch {
		case err != nil || claimed.IsNegative():
			verr.Add("total must be a non-negative number")
		case !claimed.Round(2).Equal(total.Round(2)):
			verr.Add(fmt.Sprintf("total %s does not match computed total %s", claimed.StringFixed(2), total.StringFixed(2)))
		}
		if err := verr.OrNil(); err != nil {
			return nil, err
		}
	}

	return &domain.Order{
		ID:        uuid.NewString(),
		UserID:    actor.ID,
		Items:     lines,
		Total:     total,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Get returns an order visible to actor: its owner or an admin.
func (s *OrderService) Get(ctx context.Context, actor *domain.Identity, id string) (*domain.Order, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// Other users' orders are reported as missing rather than forbidden.
	if !actor.IsAdmin() && order.UserID != actor.ID {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

// List returns every order, newest first. Admin only.
func (s *OrderService) List(ctx context.Context, actor *domain.Identity, in ports.ListOrdersInput) (*ports.ListOrdersResult, error) {
	if err := domain.RequireRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	return s.list(ctx, "", in)
}

// ListMine returns the actor's own orders, newest first.
func (s *OrderService) ListMine(ctx context.Context, actor *domain.Identity, in ports.ListOrdersInput) (*ports.ListOrdersResult, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	return s.list(ctx, actor.ID, in)
}

func (s *OrderService) list(ctx context.Context, userID string, in ports.ListOrdersInput) (*ports.ListOrdersResult, error) {
	page, limit := normalizePage(in.Page, in.Limit)
	items, total, err := s.orders.List(ctx, ports.OrderFilter{UserID: userID, Page: page, Limit: limit})
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / limit
	if int(total)%limit != 0 {
		totalPages++
	}
	return &ports.ListOrdersResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// Quote prices the requested items with the cart engine against live catalog
// data. Requests for more than the available stock are clamped and flagged;
// repeated ids accumulate like repeated adds to a cart.
func (s *OrderService) Quote(ctx context.Context, items []ports.OrderItemInput) (*ports.Quote, error) {
	verr := domain.NewValidationError()
	quantities := make([]int, len(items))
	for i, item := range items {
		qty, err := parseQuantity(item.Quantity)
		if err != nil {
			verr.Add(fmt.Sprintf("items[%d].quantity must be a positive integer", i))
		}
		if strings.TrimSpace(item.ProductID) == "" {
			verr.Add(fmt.Sprintf("items[%d].id is required", i))
		}
		quantities[i] = qty
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	c := cart.New()
	requested := make(map[string]int)
	quote := &ports.Quote{}
	for i, item := range items {
		id := strings.TrimSpace(item.ProductID)
		p, err := s.products.FindByID(ctx, id)
		if errors.Is(err, domain.ErrProductNotFound) {
			quote.Missing = append(quote.Missing, id)
			continue
		}
		if err != nil {
			return nil, err
		}

		_, err = c.AddOrIncrement(cart.Product{ID: p.ID, Name: p.Name, Price: p.Price, Stock: p.Stock}, quantities[i])
		if errors.Is(err, cart.ErrOutOfStock) {
			quote.Unavailable = append(quote.Unavailable, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		requested[id] += quantities[i]
	}

	for _, l := range c.Lines() {
		quote.Lines = append(quote.Lines, ports.QuoteLine{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			Price:     l.Product.Price,
			Stock:     l.Product.Stock,
			Requested: requested[l.Product.ID],
			Quantity:  l.Quantity,
			Subtotal:  l.Subtotal(),
			Clamped:   l.Quantity < requested[l.Product.ID],
		})
	}
	quote.Count = c.Count()
	quote.Subtotal = c.Total()
	quote.Tax = c.Tax()
	quote.Total = c.GrandTotal()
	return quote, nil
}

// parseQuantity accepts whole numbers of at least one, including integral
// decimals such as "2.0". Fractions and garbage are rejected.
func parseQuantity(raw string) (int, error) {
	v, ok := parseWhole(raw)
	if !ok || v <= 0 {
		return 0, domain.ErrInvalidQuantity
	}
	return v, nil
}

// parseWhole parses raw as an integral number that fits an int.
func parseWhole(raw string) (int, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || !d.IsInteger() {
		return 0, false
	}
	if d.GreaterThan(decimal.NewFromInt(math.MaxInt)) || d.LessThan(decimal.NewFromInt(math.MinInt)) {
		return 0, false
	}
	return int(d.IntPart()), true
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}
