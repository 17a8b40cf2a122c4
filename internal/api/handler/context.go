package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deckshop/storefront/internal/api/middleware"
	"github.com/deckshop/storefront/internal/core/domain"
)

// actor returns the identity injected by the Auth middleware, or nil on
// public routes. Services decide whether a nil actor is acceptable.
func actor(c echo.Context) *domain.Identity {
	return middleware.IdentityFrom(c)
}

// bind decodes the request and runs struct validation. Malformed JSON maps to
// 400 "invalid payload"; validation failures carry per-field details.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if c.Echo().Validator == nil {
		return nil
	}
	return c.Validate(req)
}
