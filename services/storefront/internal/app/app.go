package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/utafrali/Storefront/pkg/database"
	"github.com/utafrali/Storefront/pkg/health"
	pkgkafka "github.com/utafrali/Storefront/pkg/kafka"
	"github.com/utafrali/Storefront/pkg/middleware"
	"github.com/utafrali/Storefront/pkg/tracing"
	"github.com/utafrali/Storefront/services/storefront/internal/config"
	"github.com/utafrali/Storefront/services/storefront/internal/event"
	"github.com/utafrali/Storefront/services/storefront/internal/handler/gql"
	handler "github.com/utafrali/Storefront/services/storefront/internal/handler/http"
	"github.com/utafrali/Storefront/services/storefront/internal/repository/postgres"
	"github.com/utafrali/Storefront/services/storefront/internal/service"
)

const serviceName = "storefront-api"

// Version is stamped at build time with -ldflags.
var Version = "dev"

// App wires together all dependencies and runs the storefront API.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	shutdownTracer func(context.Context) error
}

// NewApp connects to PostgreSQL, applies migrations and builds the HTTP
// server. Nothing listens until Run.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	shutdownTracer, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPool(connectCtx, &pgCfg, logger)
	if err != nil {
		_ = shutdownTracer(context.Background())
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)

	if err := postgres.Migrate(connectCtx, pool, logger); err != nil {
		pool.Close()
		_ = shutdownTracer(context.Background())
		return nil, fmt.Errorf("migrate: %w", err)
	}
	database.SetSlowQueryLogging(cfg.SlowQueryThreshold(), logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if err := database.RegisterPoolMetrics(registry, pool, serviceName); err != nil {
		pool.Close()
		_ = shutdownTracer(context.Background())
		return nil, fmt.Errorf("register pool metrics: %w", err)
	}

	producer := pkgkafka.NewProducer(pkgkafka.ProducerConfig{
		Brokers:      cfg.KafkaBrokers,
		BatchTimeout: 10 * time.Millisecond,
	}, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Build the dependency graph.
	catalogService := service.NewCatalogService(postgres.NewProductRepository(pool), logger)
	orderService := service.NewOrderService(
		postgres.NewOrderRepository(pool),
		event.NewProducer(producer, logger),
		logger,
	)

	schema, err := gql.NewSchema(catalogService, orderService, logger)
	if err != nil {
		_ = producer.Close()
		pool.Close()
		_ = shutdownTracer(context.Background())
		return nil, fmt.Errorf("build graphql schema: %w", err)
	}

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("kafka", producer.Ping)

	router := handler.NewRouter(handler.RouterConfig{
		Catalog:    catalogService,
		GraphQL:    gql.NewHandler(schema, logger),
		Health:     healthHandler,
		Registry:   registry,
		CORS:       middleware.CORSConfig{AllowedOrigins: cfg.CORSAllowedOrigins},
		PprofCIDRs: cfg.PprofAllowedCIDRs,
		Logger:     logger,
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		producer:       producer,
		httpServer:     httpServer,
		shutdownTracer: shutdownTracer,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.Shutdown()
		return err
	}

	a.Shutdown()
	return nil
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	a.pool.Close()

	if err := a.shutdownTracer(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
}
