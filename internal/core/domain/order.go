package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLine is a snapshot of a product at submission time.
type OrderLine struct {
	ProductID string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Subtotal returns price × quantity for the line.
func (l OrderLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order is immutable once created.
type Order struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Items     []OrderLine     `json:"items"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
}

// Clone returns a deep copy so callers cannot alias the stored line slice.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	c.Items = append([]OrderLine(nil), o.Items...)
	return &c
}

// OrderEvent is published after an order is committed.
type OrderEvent struct {
	OrderID   string
	UserID    string
	Total     decimal.Decimal
	Lines     int
	Units     int
	CreatedAt time.Time
}

// NewOrderPlaced builds the event for a freshly committed order.
func NewOrderPlaced(o *Order) OrderEvent {
	units := 0
	for _, l := range o.Items {
		units += l.Quantity
	}
	return OrderEvent{
		OrderID:   o.ID,
		UserID:    o.UserID,
		Total:     o.Total,
		Lines:     len(o.Items),
		Units:     units,
		CreatedAt: o.CreatedAt,
	}
}
