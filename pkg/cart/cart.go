// Package cart implements the client-held shopping cart: an ordered set of
// lines, unique by product id, whose quantities are clamped to the stock that
// was known when the line was last touched.
//
// A Cart is owned by a single session and is not safe for concurrent use.
// Every mutation validates its input before touching state, so a failed call
// leaves the cart unchanged. The one exception is re-adding a product that has
// sold out, which drops its line.
package cart

import (
	"errors"

	"github.com/shopspring/decimal"
)

// TaxRate is the flat surcharge applied to the subtotal.
var TaxRate = decimal.RequireFromString("0.08")

var (
	ErrInvalidQuantity = errors.New("cart: quantity must be a positive integer")
	ErrOutOfStock      = errors.New("cart: product is out of stock")
)

// Product is the slice of catalog data the cart needs.
type Product struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

// Line pairs a product with the reserved quantity.
type Line struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Subtotal returns price × quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is a single-writer state machine with subscribed observers.
type Cart struct {
	lines     []Line
	observers []observer
	nextID    int
}

type observer struct {
	id int
	fn func(Event)
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// AddOrIncrement inserts the product with min(qty, stock) units, or adds qty to
// an existing line, clamping the result to the product's stock. The stored
// product data is refreshed from p. A product that has sold out is rejected,
// and its existing line, if any, is dropped.
func (c *Cart) AddOrIncrement(p Product, qty int) (Line, error) {
	if qty <= 0 {
		return Line{}, ErrInvalidQuantity
	}
	idx := c.index(p.ID)
	if p.Stock <= 0 {
		if idx >= 0 {
			c.removeAt(idx)
		}
		return Line{}, ErrOutOfStock
	}
	if qty > p.Stock {
		qty = p.Stock
	}

	if idx < 0 {
		line := Line{Product: p, Quantity: qty}
		c.lines = append(c.lines, line)
		c.notify(Event{Kind: EventAdded, ProductID: p.ID, Quantity: line.Quantity})
		return line, nil
	}

	line := &c.lines[idx]
	line.Product = p
	line.Quantity = min(line.Quantity+qty, p.Stock)
	c.notify(Event{Kind: EventUpdated, ProductID: p.ID, Quantity: line.Quantity})
	return *line, nil
}

// SetQuantity sets a line's quantity directly. qty <= 0 removes the line;
// otherwise the value is clamped to [1, stock]. It reports whether a line for
// productID existed.
func (c *Cart) SetQuantity(productID string, qty int) bool {
	idx := c.index(productID)
	if idx < 0 {
		return false
	}
	stock := c.lines[idx].Product.Stock
	if qty <= 0 || stock <= 0 {
		c.removeAt(idx)
		return true
	}

	c.lines[idx].Quantity = max(1, min(qty, stock))
	c.notify(Event{Kind: EventUpdated, ProductID: productID, Quantity: c.lines[idx].Quantity})
	return true
}

// Remove deletes the line for productID; absent ids are ignored.
func (c *Cart) Remove(productID string) {
	if idx := c.index(productID); idx >= 0 {
		c.removeAt(idx)
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	if len(c.lines) == 0 {
		return
	}
	c.lines = nil
	c.notify(Event{Kind: EventCleared})
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	return append([]Line(nil), c.lines...)
}

// Line returns the line for productID.
func (c *Cart) Line(productID string) (Line, bool) {
	idx := c.index(productID)
	if idx < 0 {
		return Line{}, false
	}
	return c.lines[idx], true
}

// Len returns the number of distinct lines.
func (c *Cart) Len() int { return len(c.lines) }

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }

// Count returns the sum of all quantities.
func (c *Cart) Count() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Total returns the exact sum of price × quantity over all lines.
func (c *Cart) Total() decimal.Decimal {
	return Subtotal(c.lines)
}

// Tax returns the flat surcharge on Total, rounded to cents.
func (c *Cart) Tax() decimal.Decimal {
	return TaxOn(c.Total())
}

// GrandTotal returns Total plus Tax.
func (c *Cart) GrandTotal() decimal.Decimal {
	return c.Total().Add(c.Tax())
}

// Subtotal sums price × quantity. Decimal arithmetic keeps the result
// independent of summation order.
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum
}

// TaxOn applies TaxRate once to subtotal and rounds to cents.
func TaxOn(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(TaxRate).Round(2)
}

func (c *Cart) index(productID string) int {
	for i := range c.lines {
		if c.lines[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(idx int) {
	id := c.lines[idx].Product.ID
	c.lines = append(c.lines[:idx], c.lines[idx+1:]...)
	c.notify(Event{Kind: EventRemoved, ProductID: id})
}
