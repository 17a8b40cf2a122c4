package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/deckshop/storefront/internal/api/metrics"
	"github.com/deckshop/storefront/internal/core/domain"
	"github.com/deckshop/storefront/internal/core/ports"
)

// HeaderIdempotencyKey makes order submission safe to retry.
const HeaderIdempotencyKey = "Idempotency-Key"

type OrderHandler struct {
	orders  ports.OrderService
	metrics *metrics.Recorder
}

func NewOrderHandler(orders ports.OrderService, rec *metrics.Recorder) *OrderHandler {
	return &OrderHandler{orders: orders, metrics: rec}
}

type orderItemRequest struct {
	ID       string      `json:"id"`
	Quantity numericText `json:"quantity" swaggertype:"integer"`
}

type submitOrderRequest struct {
	Items []orderItemRequest `json:"items"`
	Total numericText        `json:"total,omitempty" swaggertype:"number"`
}

type quoteRequest struct {
	Items []orderItemRequest `json:"items"`
}

func toItemInputs(items []orderItemRequest) []ports.OrderItemInput {
	out := make([]ports.OrderItemInput, 0, len(items))
	for _, it := range items {
		out = append(out, ports.OrderItemInput{ProductID: it.ID, Quantity: it.Quantity.text})
	}
	return out
}

// Submit places an order for the authenticated user.
//
// @Summary      Place order
// @Description  Prices are snapshotted from the catalog. Resending the same Idempotency-Key returns the original order with 200.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string              false  "Client-generated retry key"
// @Param        body             body      submitOrderRequest  true   "Cart lines"
// @Success      201              {object}  orderResponse
// @Success      200              {object}  orderResponse
// @Failure      401              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Failure      422              {object}  errorResponse
// @Router       /orders [post]
func (h *OrderHandler) Submit(c echo.Context) error {
	var req submitOrderRequest
	if err := bind(c, &req); err != nil {
		h.metrics.OrderRejected("invalid_order")
		return err
	}

	result, err := h.orders.Submit(c.Request().Context(), actor(c), ports.SubmitOrderInput{
		Items:          toItemInputs(req.Items),
		Total:          req.Total.ptr(),
		IdempotencyKey: strings.TrimSpace(c.Request().Header.Get(HeaderIdempotencyKey)),
	})
	if err != nil {
		h.metrics.OrderRejected(rejectReason(err))
		return err
	}

	if result.Replayed {
		h.metrics.OrderReplayed()
		return c.JSON(http.StatusOK, toOrderResponse(result.Order))
	}
	return c.JSON(http.StatusCreated, toOrderResponse(result.Order))
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, domain.ErrInvalidOrder):
		return "invalid_order"
	case errors.Is(err, domain.ErrRequestInFlight):
		return "in_flight"
	case errors.Is(err, domain.ErrUnauthenticated):
		return "unauthenticated"
	default:
		return "error"
	}
}

// Get returns one order. Owners see their own orders; admins see all.
//
// @Summary      Get order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  orderResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /orders/{id} [get]
func (h *OrderHandler) Get(c echo.Context) error {
	order, err := h.orders.Get(c.Request().Context(), actor(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrderResponse(order))
}

// ListMine returns the caller's orders, newest first.
//
// @Summary      My orders
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page (default 1)"
// @Param        limit  query     int  false  "Page size (default 20, max 100)"
// @Success      200    {object}  listOrdersResponse
// @Failure      400    {object}  errorResponse
// @Failure      401    {object}  errorResponse
// @Router       /orders/mine [get]
func (h *OrderHandler) ListMine(c echo.Context) error {
	in, err := pageParams(c)
	if err != nil {
		return err
	}
	result, err := h.orders.ListMine(c.Request().Context(), actor(c), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListOrdersResponse(result))
}

// List returns every order, newest first. Admin only.
//
// @Summary      List orders
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page (default 1)"
// @Param        limit  query     int  false  "Page size (default 20, max 100)"
// @Success      200    {object}  listOrdersResponse
// @Failure      400    {object}  errorResponse
// @Failure      403    {object}  errorResponse
// @Router       /orders [get]
func (h *OrderHandler) List(c echo.Context) error {
	in, err := pageParams(c)
	if err != nil {
		return err
	}
	result, err := h.orders.List(c.Request().Context(), actor(c), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListOrdersResponse(result))
}

// Quote prices a cart against live catalog data, clamping quantities to stock.
//
// @Summary      Quote cart
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        body  body      quoteRequest  true  "Cart lines"
// @Success      200   {object}  quoteResponse
// @Failure      400   {object}  errorResponse
// @Router       /cart/quote [post]
func (h *OrderHandler) Quote(c echo.Context) error {
	var req quoteRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	quote, err := h.orders.Quote(c.Request().Context(), toItemInputs(req.Items))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toQuoteResponse(quote))
}

func pageParams(c echo.Context) (ports.ListOrdersInput, error) {
	verr := domain.NewValidationError()
	parse := func(name string) int {
		raw := c.QueryParam(name)
		if raw == "" {
			return 0
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			verr.Add(name + " must be a positive integer")
			return 0
		}
		return v
	}
	in := ports.ListOrdersInput{Page: parse("page"), Limit: parse("limit")}
	if err := verr.OrNil(); err != nil {
		return ports.ListOrdersInput{}, err
	}
	return in, nil
}
