package config

import (
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/utafrali/Storefront/pkg/config"
)

// Slot backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config holds all configuration for the storefront command line client.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"warn"`

	// Storefront API
	APIURL     string        `env:"STOREFRONT_API_URL" envDefault:"http://localhost:8080"`
	APITimeout time.Duration `env:"STOREFRONT_API_TIMEOUT" envDefault:"10s"`

	// Cart slot
	SlotBackend string `env:"CART_SLOT_BACKEND" envDefault:"sqlite"`
	SlotKey     string `env:"CART_SLOT_KEY" envDefault:"cart"`
	SQLitePath  string `env:"CART_SQLITE_PATH" envDefault:".storefront/cart.db"`

	// Redis, used when SlotBackend is "redis"
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Slot TTL in hours for the Redis backend (default: 7 days, 0 keeps forever)
	SlotTTL int `env:"CART_SLOT_TTL_HOURS" envDefault:"168"`
}

// Load reads configuration from the given .env files and then the
// environment.
func Load(dotenv ...string) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.LoadWithDotenv(cfg, dotenv...); err != nil {
		return nil, fmt.Errorf("load storefront client config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SlotTTLDuration is SlotTTL as a duration.
func (c *Config) SlotTTLDuration() time.Duration {
	return time.Duration(c.SlotTTL) * time.Hour
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("STOREFRONT_API_URL must be an http(s) URL, got %q", c.APIURL)
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("STOREFRONT_API_TIMEOUT must be positive")
	}
	switch c.SlotBackend {
	case BackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("CART_SQLITE_PATH is required for the sqlite backend")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis backend")
		}
	default:
		return fmt.Errorf("CART_SLOT_BACKEND must be %q or %q, got %q", BackendSQLite, BackendRedis, c.SlotBackend)
	}
	if c.SlotKey == "" {
		return fmt.Errorf("CART_SLOT_KEY is required")
	}
	if c.SlotTTL < 0 {
		return fmt.Errorf("CART_SLOT_TTL_HOURS must not be negative")
	}
	return nil
}
