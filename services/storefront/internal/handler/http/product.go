package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/utafrali/Storefront/pkg/httputil"
	"github.com/utafrali/Storefront/pkg/pagination"
	"github.com/utafrali/Storefront/services/storefront/internal/domain"
)

// ProductLister lists the catalog.
type ProductLister interface {
	Products(ctx context.Context, page pagination.Params) ([]domain.Product, int, error)
}

// ProductHandler serves the REST product listing.
type ProductHandler struct {
	catalog ProductLister
	logger  *slog.Logger
}

// NewProductHandler creates a product handler.
func NewProductHandler(catalog ProductLister, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{catalog: catalog, logger: logger}
}

// ListProducts handles GET /api/products. Without page or per_page the
// whole catalog is returned as a single page.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	var page pagination.Params
	q := r.URL.Query()
	if q.Has("page") || q.Has("per_page") {
		page = pagination.FromRequest(r)
	}

	products, total, err := h.catalog.Products(r.Context(), page)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if page.PerPage == 0 {
		page = pagination.Params{Page: 1, PerPage: max(total, 1)}
	}
	httputil.WriteJSON(w, http.StatusOK, pagination.NewResult(products, total, page))
}
