package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/deckshop/storefront/internal/core/domain"
	"github.com/deckshop/storefront/internal/core/ports"
)

// money renders a decimal amount as a JSON number with two decimals.
func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type authResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      userResponse `json:"user"`
}

func toAuthResponse(r *ports.AuthResult) authResponse {
	return authResponse{Token: r.Token, ExpiresAt: r.ExpiresAt, User: toUserResponse(r.User)}
}

type productResponse struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Brand       string    `json:"brand,omitempty"`
	Model       string    `json:"model,omitempty"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Stock       int       `json:"stock"`
	InStock     bool      `json:"in_stock"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toProductResponse(p *domain.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Slug:        p.Slug,
		Name:        p.Name,
		Brand:       p.Brand,
		Model:       p.Model,
		Price:       money(p.Price),
		Category:    p.Category,
		Description: p.Description,
		Image:       p.Image,
		Stock:       p.Stock,
		InStock:     p.InStock(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type orderLineResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Subtotal float64 `json:"subtotal"`
}

type orderResponse struct {
	ID        string              `json:"id"`
	UserID    string              `json:"user_id"`
	Items     []orderLineResponse `json:"items"`
	Total     float64             `json:"total"`
	CreatedAt time.Time           `json:"created_at"`
}

func toOrderResponse(o *domain.Order) orderResponse {
	items := make([]orderLineResponse, 0, len(o.Items))
	for _, l := range o.Items {
		items = append(items, orderLineResponse{
			ID:       l.ProductID,
			Name:     l.Name,
			Price:    money(l.Price),
			Quantity: l.Quantity,
			Subtotal: money(l.Subtotal()),
		})
	}
	return orderResponse{
		ID:        o.ID,
		UserID:    o.UserID,
		Items:     items,
		Total:     money(o.Total),
		CreatedAt: o.CreatedAt,
	}
}

type pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

type listOrdersResponse struct {
	Items      []orderResponse `json:"items"`
	Pagination pagination      `json:"pagination"`
}

func toListOrdersResponse(r *ports.ListOrdersResult) listOrdersResponse {
	items := make([]orderResponse, 0, len(r.Items))
	for _, o := range r.Items {
		items = append(items, toOrderResponse(o))
	}
	return listOrdersResponse{
		Items: items,
		Pagination: pagination{
			Page:       r.Page,
			Limit:      r.Limit,
			Total:      r.Total,
			TotalPages: r.TotalPages,
		},
	}
}

type quoteLineResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Stock     int     `json:"stock"`
	Requested int     `json:"requested"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
	Clamped   bool    `json:"clamped"`
}

type quoteResponse struct {
	Lines       []quoteLineResponse `json:"lines"`
	Count       int                 `json:"count"`
	Subtotal    float64             `json:"subtotal"`
	Tax         float64             `json:"tax"`
	Total       float64             `json:"total"`
	Missing     []string            `json:"missing,omitempty"`
	Unavailable []string            `json:"unavailable,omitempty"`
}

func toQuoteResponse(q *ports.Quote) quoteResponse {
	lines := make([]quoteLineResponse, 0, len(q.Lines))
	for _, l := range q.Lines {
		lines = append(lines, quoteLineResponse{
			ID:        l.ProductID,
			Name:      l.Name,
			Price:     money(l.Price),
			Stock:     l.Stock,
			Requested: l.Requested,
			Quantity:  l.Quantity,
			Subtotal:  money(l.Subtotal),
			Clamped:   l.Clamped,
		})
	}
	return quoteResponse{
		Lines:       lines,
		Count:       q.Count,
		Subtotal:    money(q.Subtotal),
		Tax:         money(q.Tax),
		Total:       money(q.Total),
		Missing:     q.Missing,
		Unavailable: q.Unavailable,
	}
}

// errorResponse documents the error envelope for swagger.
type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}
