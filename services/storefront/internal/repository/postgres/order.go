package postgres

import (
	"context"
	"fmt"

	"github.com/utafrali/Storefront/pkg/database"
	apperrors "github.com/utafrali/Storefront/pkg/errors"
	"github.com/utafrali/Storefront/services/storefront/internal/domain"
)

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create inserts the order and its items in one transaction. An item
// naming a product that does not exist fails the whole order with an
// invalid input error.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) (err error) {
	const (
		orderQuery = `INSERT INTO orders (id, customer_email, shipping_address, created_at)
			VALUES ($1, $2, $3, $4)`
		itemQuery = `INSERT INTO order_items (order_id, product_id, quantity)
			VALUES ($1, $2, $3)`
	)
	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "CreateOrder", orderQuery)
	defer func() { end(err) }()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, orderQuery, o.ID, o.CustomerEmail, o.ShippingAddress, o.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("order", "id", o.ID)
		}
		return fmt.Errorf("insert order: %w", err)
	}

	for _, item := range o.Items {
		if _, err := tx.Exec(ctx, itemQuery, o.ID, item.ProductID, item.Quantity); err != nil {
			if isForeignKeyViolation(err) {
				return apperrors.InvalidInput(fmt.Sprintf("unknown product %q", item.ProductID))
			}
			return fmt.Errorf("insert order item %s: %w", item.ProductID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
