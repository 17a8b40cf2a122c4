package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/deckshop/storefront/internal/core/domain"
	"github.com/deckshop/storefront/internal/core/ports"
)

func sampleOrder() *domain.Order {
	return &domain.Order{
		ID:     "o1",
		UserID: customer.ID,
		Items: []domain.OrderLine{
			{ProductID: "x", Name: "Slipmat", Price: decimal.RequireFromString("9.99"), Quantity: 3},
		},
		Total:     decimal.RequireFromString("29.97"),
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestOrderHandler_Submit_CreatedThenReplayed(t *testing.T) {
	calls := 0
	stub := &stubOrderService{
		submitFn: func(ctx context.Context, actor *domain.Identity, in ports.SubmitOrderInput) (*ports.SubmitOrderResult, error) {
			calls++
			if in.IdempotencyKey != "k-1" {
				t.Fatalf("idempotency key = %q", in.IdempotencyKey)
			}
			if len(in.Items) != 1 || in.Items[0].ProductID != "x" || in.Items[0].Quantity != "3" {
				t.Fatalf("items = %+v", in.Items)
			}
			if in.Total == nil || *in.Total != "29.97" {
				t.Fatalf("total = %v", in.Total)
			}
			return &ports.SubmitOrderResult{Order: sampleOrder(), Replayed: calls > 1}, nil
		},
	}
	handler := NewOrderHandler(stub, nil)

	body := `{"items":[{"id":"x","quantity":3}],"total":29.97}`
	for i, want := range []int{http.StatusCreated, http.StatusOK} {
		c, rec := newTestContext(http.MethodPost, "/orders", body, customer)
		c.Request().Header.Set(HeaderIdempotencyKey, "k-1")
		if err := handler.Submit(c); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if rec.Code != want {
			t.Fatalf("call %d: expected %d, got %d", i, want, rec.Code)
		}

		var resp orderResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid json: %v", err)
		}
		if resp.Total != 29.97 || resp.Items[0].Subtotal != 29.97 {
			t.Fatalf("unexpected totals: %+v", resp)
		}
	}
}

func TestOrderHandler_Submit_NoTotal(t *testing.T) {
	stub := &stubOrderService{
		submitFn: func(ctx context.Context, actor *domain.Identity, in ports.SubmitOrderInput) (*ports.SubmitOrderResult, error) {
			if in.Total != nil {
				t.Fatalf("absent total must be nil, got %q", *in.Total)
			}
			return nil, domain.ErrEmptyCart
		},
	}
	handler := NewOrderHandler(stub, nil)

	c, _ := newTestContext(http.MethodPost, "/orders", `{"items":[]}`, customer)
	if err := handler.Submit(c); !errors.Is(err, domain.ErrEmptyCart) {
		t.Fatalf("expected empty cart, got %v", err)
	}
}

func TestOrderHandler_ListMine_PageParams(t *testing.T) {
	stub := &stubOrderService{
		listMineFn: func(ctx context.Context, actor *domain.Identity, in ports.ListOrdersInput) (*ports.ListOrdersResult, error) {
			if in.Page != 2 || in.Limit != 5 {
				t.Fatalf("page/limit = %d/%d", in.Page, in.Limit)
			}
			return &ports.ListOrdersResult{Items: []*domain.Order{sampleOrder()}, Total: 6, Page: 2, Limit: 5, TotalPages: 2}, nil
		},
	}
	handler := NewOrderHandler(stub, nil)

	c, rec := newTestContext(http.MethodGet, "/orders/mine?page=2&limit=5", "", customer)
	if err := handler.ListMine(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp listOrdersResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Pagination.TotalPages != 2 || len(resp.Items) != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestOrderHandler_List_RejectsBadPage(t *testing.T) {
	handler := NewOrderHandler(&stubOrderService{}, nil)

	c, _ := newTestContext(http.MethodGet, "/orders?page=zero&limit=-1", "", admin)
	err := handler.List(c)

	var verr *domain.ValidationError
	if !errors.As(err, &verr) || len(verr.Details) != 2 {
		t.Fatalf("expected two validation details, got %v", err)
	}
}

func TestOrderHandler_Quote(t *testing.T) {
	stub := &stubOrderService{
		quoteFn: func(ctx context.Context, items []ports.OrderItemInput) (*ports.Quote, error) {
			return &ports.Quote{
				Lines: []ports.QuoteLine{{
					ProductID: "x", Name: "Controller", Price: decimal.NewFromInt(10), Stock: 5,
					Requested: 10, Quantity: 5, Subtotal: decimal.NewFromInt(50), Clamped: true,
				}},
				Count:    5,
				Subtotal: decimal.NewFromInt(50),
				Tax:      decimal.NewFromInt(4),
				Total:    decimal.NewFromInt(54),
				Missing:  []string{"gone"},
			}, nil
		},
	}
	handler := NewOrderHandler(stub, nil)

	c, rec := newTestContext(http.MethodPost, "/cart/quote", `{"items":[{"id":"x","quantity":10},{"id":"gone","quantity":1}]}`, nil)
	if err := handler.Quote(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp quoteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !resp.Lines[0].Clamped || resp.Total != 54 || resp.Missing[0] != "gone" {
		t.Fatalf("unexpected quote: %+v", resp)
	}
}

func TestRejectReason(t *testing.T) {
	tests := map[error]string{
		domain.ErrEmptyCart:                 "empty_cart",
		domain.NewInvalidOrderError("x"):    "invalid_order",
		domain.ErrRequestInFlight:           "in_flight",
		domain.ErrUnauthenticated:           "unauthenticated",
		errors.New("mongo: connection lost"): "error",
	}
	for err, want := range tests {
		if got := rejectReason(err); got != want {
			t.Errorf("rejectReason(%v) = %q, want %q", err, got, want)
		}
	}
}
