package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/deckshop/storefront/internal/core/domain"
)

// OrderItemInput is one requested line. Quantity is the raw numeric text.
type OrderItemInput struct {
	ProductID string
	Quantity  string
}

// SubmitOrderInput carries the checkout payload.
type SubmitOrderInput struct {
	Items []OrderItemInput
	// Total is the client's claimed total; when present it must match the
	// server-computed one.
	Total          *string
	IdempotencyKey string
}

// SubmitOrderResult is returned by Submit.
type SubmitOrderResult struct {
	Order *domain.Order
	// Replayed is true when the Idempotency-Key matched an earlier order.
	Replayed bool
}

// ListOrdersInput carries pagination parameters.
type ListOrdersInput struct {
	Page  int
	Limit int
}

// ListOrdersResult is returned by List and ListMine.
type ListOrdersResult struct {
	Items      []*domain.Order
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// QuoteLine is a priced cart line built from live catalog data.
type QuoteLine struct {
	ProductID string
	Name      string
	Price     decimal.Decimal
	Stock     int
	Requested int
	Quantity  int
	Subtotal  decimal.Decimal
	// Clamped is true when Quantity was reduced to the available stock.
	Clamped bool
}

// Quote is the priced cart returned by POST /cart/quote.
type Quote struct {
	Lines       []QuoteLine
	Count       int
	Subtotal    decimal.Decimal
	Tax         decimal.Decimal
	Total       decimal.Decimal
	Missing     []string // unknown product ids
	Unavailable []string // products with no stock left
}

type OrderService interface {
	Submit(ctx context.Context, actor *domain.Identity, input SubmitOrderInput) (*SubmitOrderResult, error)
	Get(ctx context.Context, actor *domain.Identity, id string) (*domain.Order, error)
	List(ctx context.Context, actor *domain.Identity, input ListOrdersInput) (*ListOrdersResult, error)
	ListMine(ctx context.Context, actor *domain.Identity, input ListOrdersInput) (*ListOrdersResult, error)
	Quote(ctx context.Context, items []OrderItemInput) (*Quote, error)
}
