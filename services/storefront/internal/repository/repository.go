package repository

import (
	"context"

	"github.com/utafrali/Storefront/pkg/pagination"
	"github.com/utafrali/Storefront/services/storefront/internal/domain"
)

// ProductRepository reads the catalog.
type ProductRepository interface {
	// List returns one page of products with the total count. A zero
	// PerPage returns every product.
	List(ctx context.Context, page pagination.Params) ([]domain.Product, int, error)

	// GetDetail returns a product with its description, brand and
	// attribute sets.
	GetDetail(ctx context.Context, id string) (*domain.ProductDetail, error)
}

// OrderRepository stores orders.
type OrderRepository interface {
	// Create inserts the order and its items atomically.
	Create(ctx context.Context, order *domain.Order) error
}

// ImportStats counts what a catalog import inserted.
type ImportStats struct {
	Categories int
	Brands     int
	Currencies int
	Products   int
	Skipped    int
}

// CatalogImporter seeds the catalog.
type CatalogImporter interface {
	Import(ctx context.Context, catalog *domain.Catalog) (ImportStats, error)
}
