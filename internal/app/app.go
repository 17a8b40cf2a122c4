// Package app wires configuration, storage, services and the HTTP router
// into a runnable storefront.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/deckshop/storefront/internal/api"
	"github.com/deckshop/storefront/internal/api/handler"
	"github.com/deckshop/storefront/internal/api/metrics"
	"github.com/deckshop/storefront/internal/core/domain"
	"github.com/deckshop/storefront/internal/core/ports"
	"github.com/deckshop/storefront/internal/core/service"
	"github.com/deckshop/storefront/internal/infrastructure/db/memory"
	mongostore "github.com/deckshop/storefront/internal/infrastructure/db/mongo"
	redisstore "github.com/deckshop/storefront/internal/infrastructure/db/redis"
	"github.com/deckshop/storefront/internal/infrastructure/feed"
	"github.com/deckshop/storefront/internal/infrastructure/queue"
	"github.com/deckshop/storefront/internal/pkg/config"
)

// App is a fully wired storefront. Call Start before serving and Shutdown on exit.
type App struct {
	Echo    *echo.Echo
	Auth    *service.AuthService
	Catalog *service.CatalogService
	Orders  *service.OrderService

	dispatcher *queue.Dispatcher
	hub        *feed.Hub
	closers    []func(context.Context) error
	log        zerolog.Logger
}

type repositories struct {
	users    ports.UserRepository
	products ports.ProductRepository
	orders   ports.OrderRepository
	keys     ports.IdempotencyStore
}

// New connects the configured backends, seeds the catalog and bootstraps the
// admin account.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{log: log}
	readiness := map[string]handler.Pinger{}

	repos, err := a.openStorage(ctx, cfg, readiness)
	if err != nil {
		_ = a.closeAll(ctx)
		return nil, err
	}

	reg := metrics.NewRegistry()
	rec := metrics.New(reg)
	a.hub = feed.NewHub(log.With().Str("component", "feed").Logger())
	a.dispatcher = queue.NewDispatcher(cfg.OrderEventWorkers,
		log.With().Str("component", "dispatcher").Logger(),
		rec.HandleOrderPlaced,
		a.hub.Handle,
	)

	tokens := service.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	hasher := service.NewBcryptHasher(cfg.Auth.BcryptCost)
	a.Auth = service.NewAuthService(repos.users, tokens, hasher, log.With().Str("component", "auth").Logger())
	a.Catalog = service.NewCatalogService(repos.products, log.With().Str("component", "catalog").Logger())
	a.Orders = service.NewOrderService(repos.orders, repos.products, repos.keys, a.dispatcher,
		log.With().Str("component", "orders").Logger())

	if err := a.bootstrap(ctx, cfg); err != nil {
		_ = a.closeAll(ctx)
		return nil, err
	}

	a.Echo = api.NewRouter(api.Dependencies{
		Auth:          a.Auth,
		Catalog:       a.Catalog,
		Orders:        a.Orders,
		Tokens:        tokens,
		Feed:          a.hub,
		Readiness:     readiness,
		Registry:      reg,
		Metrics:       rec,
		Logger:        log,
		CORSOrigins:   cfg.CORSOrigins,
		AuthRateLimit: cfg.Auth.RateLimit,
	})
	return a, nil
}

func (a *App) openStorage(ctx context.Context, cfg *config.Config, readiness map[string]handler.Pinger) (repositories, error) {
	var repos repositories

	switch cfg.StoreDriver {
	case config.DriverMongo:
		store, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return repos, err
		}
		a.closers = append(a.closers, store.Close)
		readiness["mongodb"] = store
		repos.users, repos.products, repos.orders = store.Users, store.Products, store.Orders
		a.log.Info().Str("database", cfg.Mongo.Database).Msg("using mongo store")
	default:
		repos.users = memory.NewUserRepository()
		repos.products = memory.NewProductRepository()
		repos.orders = memory.NewOrderRepository()
		a.log.Info().Msg("using in-memory store")
	}

	if cfg.Redis.Addr != "" {
		client, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return repos, err
		}
		a.closers = append(a.closers, func(context.Context) error { return client.Close() })
		readiness["redis"] = redisstore.Pinger{Client: client}
		repos.keys = redisstore.NewIdempotencyStore(client, 0)
	} else {
		repos.keys = memory.NewIdempotencyStore(0)
	}
	return repos, nil
}

func (a *App) bootstrap(ctx context.Context, cfg *config.Config) error {
	if cfg.CatalogSeed == config.SeedSample {
		n, err := a.Catalog.Seed(ctx, domain.SampleProducts())
		if err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
		if n > 0 {
			a.log.Info().Int("products", n).Msg("catalog seeded with sample data")
		}
	}
	if _, err := a.Auth.EnsureAdmin(ctx, cfg.Auth.AdminName, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	return nil
}

// Start launches the order event workers.
func (a *App) Start(ctx context.Context) {
	a.dispatcher.Start(ctx)
}

// Shutdown stops the HTTP server, drains queued events, disconnects
// websocket subscribers and closes the backends.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if a.Echo != nil {
		if err := a.Echo.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}
	a.dispatcher.Stop()
	a.hub.Close()
	if err := a.closeAll(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *App) closeAll(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
