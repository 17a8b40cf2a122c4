package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/deckshop/storefront/internal/core/domain"
	"github.com/deckshop/storefront/internal/core/ports"
)

const identityKey = "identity"

type authConfig struct {
	queryParam string
}

// AuthOption customises the Auth middleware.
type AuthOption func(*authConfig)

// WithQueryToken also accepts the token from the given query parameter when no
// Authorization header is sent. Browsers cannot set headers on websocket upgrades.
func WithQueryToken(param string) AuthOption {
	return func(c *authConfig) { c.queryParam = param }
}

// Auth verifies the bearer token and stores the caller's identity in the context.
func Auth(verifier ports.TokenVerifier, opts ...AuthOption) echo.MiddlewareFunc {
	cfg := authConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c, cfg)
			if err != nil {
				return err
			}

			identity, err := verifier.Verify(token)
			if err != nil {
				return domain.ErrInvalidToken
			}

			SetIdentity(c, identity)
			return next(c)
		}
	}
}

func bearerToken(c echo.Context, cfg authConfig) (string, error) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		if cfg.queryParam != "" {
			if t := c.QueryParam(cfg.queryParam); t != "" {
				return t, nil
			}
		}
		return "", domain.ErrMissingToken
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", domain.ErrInvalidToken
	}
	return strings.TrimSpace(parts[1]), nil
}

// SetIdentity stores the authenticated caller on the request context.
func SetIdentity(c echo.Context, identity *domain.Identity) {
	c.Set(identityKey, identity)
}

// IdentityFrom returns the caller stored by Auth, or nil.
func IdentityFrom(c echo.Context) *domain.Identity {
	identity, _ := c.Get(identityKey).(*domain.Identity)
	return identity
}
