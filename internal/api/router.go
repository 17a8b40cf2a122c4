package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/deckshop/storefront/internal/api/handler"
	"github.com/deckshop/storefront/internal/api/metrics"
	"github.com/deckshop/storefront/internal/api/middleware"
	"github.com/deckshop/storefront/internal/core/domain"
	"github.com/deckshop/storefront/internal/core/ports"
)

// Dependencies are the services and infrastructure the router binds to routes.
type Dependencies struct {
	Auth    ports.AuthService
	Catalog ports.CatalogService
	Orders  ports.OrderService
	Tokens  ports.TokenVerifier

	// Feed is optional; without it /orders/feed is not mounted.
	Feed handler.FeedServer
	// Readiness lists the dependencies pinged by /health/ready.
	Readiness map[string]handler.Pinger

	// Registry and Metrics default to a fresh registry when nil.
	Registry *prometheus.Registry
	Metrics  *metrics.Recorder

	Logger        zerolog.Logger
	CORSOrigins   []string
	AuthRateLimit float64
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	reg := d.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	rec := d.Metrics
	if rec == nil {
		rec = metrics.New(reg)
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: corsOrigins(d.CORSOrigins),
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			handler.HeaderIdempotencyKey,
		},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "storefront",
		Registerer: reg,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || strings.HasPrefix(c.Path(), "/swagger")
		},
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth, rec)
	userHandler := handler.NewUserHandler(d.Auth)
	catalogHandler := handler.NewCatalogHandler(d.Catalog)
	orderHandler := handler.NewOrderHandler(d.Orders, rec)
	healthHandler := handler.NewHealthHandler(d.Readiness)

	requireAuth := middleware.Auth(d.Tokens)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	// --- Auth routes ---
	auth := e.Group("/auth", middleware.RateLimit(d.AuthRateLimit, max(1, int(d.AuthRateLimit))))
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/login", authHandler.Login)

	// --- Accounts ---
	e.GET("/me", userHandler.Me, requireAuth)
	e.PUT("/me", userHandler.UpdateMe, requireAuth)
	e.GET("/users", userHandler.List, requireAuth, adminOnly)

	// --- Catalog ---
	e.GET("/products", catalogHandler.List)
	e.GET("/products/categories", catalogHandler.Categories)
	e.GET("/products/brands", catalogHandler.Brands)
	e.GET("/products/:id", catalogHandler.Get)
	e.POST("/products", catalogHandler.Create, requireAuth, adminOnly)
	e.PUT("/products/:id", catalogHandler.Update, requireAuth, adminOnly)
	e.DELETE("/products/:id", catalogHandler.Delete, requireAuth, adminOnly)

	// --- Cart & orders ---
	e.POST("/cart/quote", orderHandler.Quote)
	orders := e.Group("/orders", requireAuth)
	orders.POST("", orderHandler.Submit)
	orders.GET("/mine", orderHandler.ListMine)
	orders.GET("/:id", orderHandler.Get)
	orders.GET("", orderHandler.List, adminOnly)
	if d.Feed != nil {
		feedHandler := handler.NewFeedHandler(d.Feed)
		e.GET("/orders/feed", feedHandler.Subscribe,
			middleware.Auth(d.Tokens, middleware.WithQueryToken("access_token")), adminOnly)
	}

	// --- Health probes, metrics and docs (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func corsOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// requestLogger emits one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			switch {
			case v.Status >= http.StatusInternalServerError:
				ev = log.Error().Err(v.Error)
			case v.Status >= http.StatusBadRequest:
				ev = log.Warn()
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
