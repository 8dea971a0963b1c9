package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/utafrali/Storefront/pkg/database"
	apperrors "github.com/utafrali/Storefront/pkg/errors"
	"github.com/utafrali/Storefront/pkg/pagination"
	"github.com/utafrali/Storefront/services/storefront/internal/domain"
)

// Each product is listed with its first price and that price's currency.
const productSelect = `
	SELECT p.id, p.name, p.in_stock, p.category_name,
	       COALESCE(pr.amount::text, '0') AS price,
	       COALESCE(c.label, '') AS currency_label,
	       COALESCE(c.symbol, '') AS currency_symbol,
	       COALESCE((SELECT array_agg(pi.image_url ORDER BY pi.id)
	                 FROM product_images pi WHERE pi.product_id = p.id), '{}') AS images`

const productJoins = `
	FROM products p
	LEFT JOIN LATERAL (
		SELECT amount, currency_label FROM prices
		WHERE product_id = p.id ORDER BY id LIMIT 1
	) pr ON TRUE
	LEFT JOIN currencies c ON c.label = pr.currency_label`

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	pool database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool database.DBTX) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns products in catalog order with the total count.
func (r *ProductRepository) List(ctx context.Context, page pagination.Params) (_ []domain.Product, _ int, err error) {
	query := productSelect + `,
	       count(*) OVER() AS total_count` + productJoins + `
	ORDER BY p.created_at, p.id
	LIMIT $1 OFFSET $2`
	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "ListProducts", query)
	defer func() { end(err) }()

	// A NULL limit means no limit.
	var limit any
	offset := 0
	if page.PerPage > 0 {
		limit = page.PerPage
		offset = max(page.Offset(), 0)
	}

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var (
		products   []domain.Product
		totalCount int
	)
	for rows.Next() {
		var (
			p     domain.Product
			price string
		)
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.InStock,
			&p.CategoryName,
			&price,
			&p.Currency.Label,
			&p.Currency.Symbol,
			&p.Images,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}
		if p.Price, err = decimal.NewFromString(price); err != nil {
			return nil, 0, fmt.Errorf("parse price of %s: %w", p.ID, err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}

	if products == nil {
		products = []domain.Product{}
	}
	return products, totalCount, nil
}

// GetDetail returns a product with its attribute sets, or a not-found
// error.
func (r *ProductRepository) GetDetail(ctx context.Context, id string) (_ *domain.ProductDetail, err error) {
	query := productSelect + `,
	       p.description, COALESCE(p.brand_name, '') AS brand` + productJoins + `
	WHERE p.id = $1`
	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "GetProductDetail", query)
	defer func() { end(err) }()

	var (
		d     domain.ProductDetail
		price string
	)
	err = r.pool.QueryRow(ctx, query, id).Scan(
		&d.ID,
		&d.Name,
		&d.InStock,
		&d.CategoryName,
		&price,
		&d.Currency.Label,
		&d.Currency.Symbol,
		&d.Images,
		&d.Description,
		&d.Brand,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("scan product detail: %w", err)
	}
	if d.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("parse price of %s: %w", id, err)
	}

	if d.Attributes, err = r.attributes(ctx, id); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *ProductRepository) attributes(ctx context.Context, productID string) ([]domain.AttributeSet, error) {
	const query = `
		SELECT s.id, s.name, s.type, i.display_value, i.value
		FROM attribute_sets s
		LEFT JOIN attribute_items i ON i.attribute_set_id = s.id
		WHERE s.product_id = $1
		ORDER BY s.id, i.id`

	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list attribute sets: %w", err)
	}
	defer rows.Close()

	sets := []domain.AttributeSet{}
	var lastID int64 = -1
	for rows.Next() {
		var (
			setID        int64
			name, typ    string
			display, val *string
		)
		if err := rows.Scan(&setID, &name, &typ, &display, &val); err != nil {
			return nil, fmt.Errorf("scan attribute row: %w", err)
		}
		if setID != lastID {
			sets = append(sets, domain.AttributeSet{Name: name, Type: typ, Items: []domain.AttributeItem{}})
			lastID = setID
		}
		if display != nil && val != nil {
			cur := &sets[len(sets)-1]
			cur.Items = append(cur.Items, domain.AttributeItem{DisplayValue: *display, Value: *val})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attribute rows: %w", err)
	}
	return sets, nil
}
