package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/Storefront/pkg/database"
	"github.com/utafrali/Storefront/pkg/httpclient"
	"github.com/utafrali/Storefront/services/cart/internal/checkout"
	"github.com/utafrali/Storefront/services/cart/internal/cli"
	"github.com/utafrali/Storefront/services/cart/internal/client"
	"github.com/utafrali/Storefront/services/cart/internal/config"
	"github.com/utafrali/Storefront/services/cart/internal/repository"
	redisrepo "github.com/utafrali/Storefront/services/cart/internal/repository/redis"
	sqliterepo "github.com/utafrali/Storefront/services/cart/internal/repository/sqlite"
	"github.com/utafrali/Storefront/services/cart/internal/store"
)

// App wires together the cart store, its slot and the storefront API
// client for one run of the command line client.
type App struct {
	logger *slog.Logger
	store  *store.Store
	deps   *cli.Deps

	db  *sql.DB
	rdb *redis.Client
}

// NewApp opens the configured cart slot, hydrates the cart from it and
// builds the API client.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{logger: logger}

	slot, err := a.openSlot(ctx, cfg)
	if err != nil {
		a.closeBackends()
		return nil, err
	}
	a.store = store.Open(ctx, slot, logger)

	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.APITimeout
	breaker := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpCfg),
		httpclient.DefaultCircuitBreakerConfig("storefront-api"),
		logger,
	)
	api := client.New(cfg.APIURL, breaker, logger)

	a.deps = &cli.Deps{
		Catalog:  api,
		Store:    a.store,
		Checkout: checkout.NewService(a.store, api, logger),
		Logger:   logger,
	}
	return a, nil
}

func (a *App) openSlot(ctx context.Context, cfg *config.Config) (repository.Slot, error) {
	switch cfg.SlotBackend {
	case config.BackendRedis:
		rdb, err := database.NewRedisClient(ctx, database.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("open redis cart slot: %w", err)
		}
		a.rdb = rdb
		a.logger.Debug("using redis cart slot",
			slog.String("addr", cfg.RedisAddr),
			slog.String("key", cfg.SlotKey),
		)
		return redisrepo.NewSlot(rdb, cfg.SlotKey, cfg.SlotTTLDuration()), nil
	default:
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite cart slot: %w", err)
		}
		a.db = db
		a.logger.Debug("using sqlite cart slot",
			slog.String("path", cfg.SQLitePath),
			slog.String("key", cfg.SlotKey),
		)
		return sqliterepo.NewSlot(ctx, db, cfg.SlotKey)
	}
}

// Deps returns the collaborators for the CLI commands.
func (a *App) Deps() *cli.Deps {
	return a.deps
}

// Close writes the last cart change and releases the slot backend.
func (a *App) Close(ctx context.Context) error {
	var err error
	if a.store != nil {
		if err = a.store.Close(ctx); err != nil {
			a.logger.Error("failed to flush cart", slog.String("error", err.Error()))
		}
	}
	a.closeBackends()
	return err
}

func (a *App) closeBackends() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("sqlite close error", slog.String("error", err.Error()))
		}
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}
}
