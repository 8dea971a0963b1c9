package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/Storefront/pkg/validator"
	"github.com/utafrali/Storefront/services/storefront/internal/domain"
	"github.com/utafrali/Storefront/services/storefront/internal/repository"
)

// OrderEvents publishes order lifecycle events.
type OrderEvents interface {
	PublishOrderCreated(ctx context.Context, o *domain.Order) error
}

// OrderService places orders.
type OrderService struct {
	repo   repository.OrderRepository
	events OrderEvents
	logger *slog.Logger
	now    func() time.Time
}

// NewOrderService creates a new order service.
func NewOrderService(repo repository.OrderRepository, events OrderEvents, logger *slog.Logger) *OrderService {
	return &OrderService{repo: repo, events: events, logger: logger, now: time.Now}
}

// CreateOrderItemInput is one requested order line.
type CreateOrderItemInput struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=1,lte=1000"`
}

// CreateOrderInput holds the parameters for placing an order.
type CreateOrderInput struct {
	CustomerEmail   string                 `json:"customerEmail" validate:"required,email"`
	ShippingAddress string                 `json:"shippingAddress" validate:"required,max=500"`
	Items           []CreateOrderItemInput `json:"items" validate:"required,min=1,dive"`
}

// CreateOrder validates input, stores the order and announces it. A
// failed announcement is logged and does not fail the order.
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	order := &domain.Order{
		ID:              uuid.NewString(),
		CustomerEmail:   input.CustomerEmail,
		ShippingAddress: input.ShippingAddress,
		Items:           make([]domain.OrderItem, len(input.Items)),
		CreatedAt:       s.now().UTC(),
	}
	for i, it := range input.Items {
		order.Items[i] = domain.OrderItem{ProductID: it.ProductID, Quantity: it.Quantity}
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.events.PublishOrderCreated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.created event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order created",
		slog.String("order_id", order.ID),
		slog.Int("items", len(order.Items)),
		slog.Int("units", order.Units()),
	)
	return order, nil
}
