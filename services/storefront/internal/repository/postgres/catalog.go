package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/Storefront/pkg/database"
	"github.com/utafrali/Storefront/services/storefront/internal/domain"
	"github.com/utafrali/Storefront/services/storefront/internal/repository"
)

// CatalogImporter implements repository.CatalogImporter using PostgreSQL.
type CatalogImporter struct {
	pool   database.DBTX
	logger *slog.Logger
}

// NewCatalogImporter creates an importer writing through pool.
func NewCatalogImporter(pool database.DBTX, logger *slog.Logger) *CatalogImporter {
	return &CatalogImporter{pool: pool, logger: logger}
}

// Import writes the catalog in one transaction. Rows that already exist
// are left alone, and a product that already exists keeps its images,
// prices and attributes, so importing the same dump twice changes nothing.
func (c *CatalogImporter) Import(ctx context.Context, catalog *domain.Catalog) (stats repository.ImportStats, err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "ImportCatalog", "")
	defer func() { end(err) }()

	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return stats, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Products may name categories the dump does not list.
	var categories []string
	seen := make(map[string]bool)
	for _, name := range catalog.Categories {
		if !seen[name] {
			seen[name] = true
			categories = append(categories, name)
		}
	}
	for _, p := range catalog.Products {
		if p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, p.Category)
		}
	}
	for _, name := range categories {
		n, err := exec(ctx, tx, `INSERT INTO categories (name) VALUES ($1) ON CONFLICT DO NOTHING`, name)
		if err != nil {
			return stats, fmt.Errorf("insert category %q: %w", name, err)
		}
		stats.Categories += n
	}

	for _, name := range catalog.Brands() {
		n, err := exec(ctx, tx, `INSERT INTO brands (name) VALUES ($1) ON CONFLICT DO NOTHING`, name)
		if err != nil {
			return stats, fmt.Errorf("insert brand %q: %w", name, err)
		}
		stats.Brands += n
	}

	for _, cur := range catalog.Currencies() {
		n, err := exec(ctx, tx, `INSERT INTO currencies (label, symbol) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			cur.Label, cur.Symbol)
		if err != nil {
			return stats, fmt.Errorf("insert currency %q: %w", cur.Label, err)
		}
		stats.Currencies += n
	}

	for _, p := range catalog.Products {
		inserted, err := c.insertProduct(ctx, tx, p)
		if err != nil {
			return stats, fmt.Errorf("import product %s: %w", p.ID, err)
		}
		if inserted {
			stats.Products++
		} else {
			stats.Skipped++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return stats, fmt.Errorf("commit transaction: %w", err)
	}

	c.logger.InfoContext(ctx, "catalog imported",
		slog.Int("products", stats.Products),
		slog.Int("skipped", stats.Skipped),
		slog.Int("categories", stats.Categories),
	)
	return stats, nil
}

func (c *CatalogImporter) insertProduct(ctx context.Context, tx pgx.Tx, p domain.CatalogProduct) (bool, error) {
	var brand any
	if p.Brand != "" {
		brand = p.Brand
	}
	n, err := exec(ctx, tx, `INSERT INTO products (id, name, in_stock, description, category_name, brand_name)
		VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (id) DO NOTHING`,
		p.ID, p.Name, p.InStock, p.Description, p.Category, brand)
	if err != nil {
		return false, fmt.Errorf("insert product: %w", err)
	}
	if n == 0 {
		c.logger.DebugContext(ctx, "product already imported", slog.String("product_id", p.ID))
		return false, nil
	}

	for _, url := range p.Gallery {
		if _, err := tx.Exec(ctx, `INSERT INTO product_images (product_id, image_url) VALUES ($1, $2)`, p.ID, url); err != nil {
			return false, fmt.Errorf("insert image: %w", err)
		}
	}

	for _, pr := range p.Prices {
		if _, err := tx.Exec(ctx, `INSERT INTO prices (product_id, amount, currency_label) VALUES ($1, $2, $3)`,
			p.ID, pr.Amount.String(), pr.Currency.Label); err != nil {
			return false, fmt.Errorf("insert price: %w", err)
		}
	}

	for _, set := range p.Attributes {
		var setID int64
		if err := tx.QueryRow(ctx, `INSERT INTO attribute_sets (product_id, name, type) VALUES ($1, $2, $3) RETURNING id`,
			p.ID, set.Name, set.Type).Scan(&setID); err != nil {
			return false, fmt.Errorf("insert attribute set %q: %w", set.Name, err)
		}
		for _, it := range set.Items {
			if _, err := tx.Exec(ctx, `INSERT INTO attribute_items (attribute_set_id, display_value, value) VALUES ($1, $2, $3)`,
				setID, it.DisplayValue, it.Value); err != nil {
				return false, fmt.Errorf("insert attribute item %q: %w", it.Value, err)
			}
		}
	}
	return true, nil
}

func exec(ctx context.Context, tx pgx.Tx, query string, args ...any) (int, error) {
	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
