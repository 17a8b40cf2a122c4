package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	DriverMemory = "memory"
	DriverMongo  = "mongo"

	SeedNone   = "none"
	SeedSample = "sample"
)

type Config struct {
	Port        string   `env:"PORT,         default=8080"`
	Env         string   `env:"ENV,          default=development"`
	LogLevel    string   `env:"LOG_LEVEL,    default=info"`
	StoreDriver string   `env:"STORE_DRIVER, default=memory"`
	CatalogSeed string   `env:"CATALOG_SEED, default=none"`
	CORSOrigins []string `env:"CORS_ORIGINS, default=*"`

	// OrderEventWorkers is the number of shards for order event fan-out.
	OrderEventWorkers int `env:"ORDER_EVENT_WORKERS, default=4"`

	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig
}

type AuthConfig struct {
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL,       default=168h"`
	RateLimit float64       `env:"AUTH_RATE_LIMIT, default=5"`
	// BcryptCost falls back to bcrypt.DefaultCost when out of range.
	BcryptCost int `env:"BCRYPT_COST, default=10"`

	// Bootstrap admin; skipped when AdminEmail is empty.
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
	AdminName     string `env:"ADMIN_NAME, default=Administrator"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=storefront"`
}

// RedisConfig is optional: an empty Addr keeps idempotency keys in memory.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return cfg
}

// LoadWith reads configuration through lookuper and validates it.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch c.StoreDriver {
	case DriverMemory, DriverMongo:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverMemory, DriverMongo, c.StoreDriver))
	}
	switch c.CatalogSeed {
	case SeedNone, SeedSample:
	default:
		errs = append(errs, fmt.Errorf("CATALOG_SEED must be %q or %q, got %q", SeedNone, SeedSample, c.CatalogSeed))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.Auth.RateLimit < 0 {
		errs = append(errs, errors.New("AUTH_RATE_LIMIT must not be negative"))
	}
	if c.Auth.AdminEmail != "" && len(c.Auth.AdminPassword) < 6 {
		errs = append(errs, errors.New("ADMIN_PASSWORD must be at least 6 characters when ADMIN_EMAIL is set"))
	}
	return errors.Join(errs...)
}

// IsDevelopment reports whether pretty logs and verbose errors are wanted.
func (c *Config) IsDevelopment() bool {
	return c.Env == "" || c.Env == "development" || c.Env == "dev"
}
