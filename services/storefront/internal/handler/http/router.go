package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/Storefront/pkg/health"
	"github.com/utafrali/Storefront/pkg/middleware"
)

// RouterConfig carries everything the router mounts.
type RouterConfig struct {
	Catalog    ProductLister
	GraphQL    http.Handler
	Health     *health.Handler
	Registry   *prometheus.Registry
	CORS       middleware.CORSConfig
	PprofCIDRs []string
	Logger     *slog.Logger
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	metrics := middleware.NewHTTPMetrics(cfg.Registry, "storefront")

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(metrics.Middleware)
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))

	// Health check endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{Registry: cfg.Registry}))

	middleware.MountPprof(r, cfg.PprofCIDRs, cfg.Logger)

	r.Method(http.MethodPost, "/graphql", cfg.GraphQL)

	products := NewProductHandler(cfg.Catalog, cfg.Logger)
	r.With(middleware.CacheControl(60)).Get("/api/products", products.ListProducts)

	return r
}
