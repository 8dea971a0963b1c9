package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	apperrors "github.com/utafrali/Storefront/pkg/errors"
	"github.com/utafrali/Storefront/pkg/validator"
	"github.com/utafrali/Storefront/services/cart/internal/domain"
	"github.com/utafrali/Storefront/services/cart/internal/store"
)

// OrderItem is one order line. Attribute selections are not part of an
// order; only the product and how many of it.
type OrderItem struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=1"`
}

// OrderRequest is what gets submitted to the order system.
type OrderRequest struct {
	CustomerEmail   string      `json:"customerEmail" validate:"required,email"`
	ShippingAddress string      `json:"shippingAddress" validate:"required"`
	Items           []OrderItem `json:"items" validate:"required,min=1,dive"`
}

// OrderResult is the order system's answer.
type OrderResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	OrderID string `json:"orderId"`
}

// OrderSubmitter sends an order to the order system.
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, req OrderRequest) (OrderResult, error)
}

// Customer holds the details the shopper enters at checkout.
type Customer struct {
	Email           string
	ShippingAddress string
}

// Service turns the current cart into an order.
type Service struct {
	store     *store.Store
	submitter OrderSubmitter
	logger    *slog.Logger
	busy      atomic.Bool
}

// NewService creates a checkout service for st.
func NewService(st *store.Store, submitter OrderSubmitter, logger *slog.Logger) *Service {
	return &Service{
		store:     st,
		submitter: submitter,
		logger:    logger,
	}
}

// Checkout submits the cart as an order for customer. The cart is
// cleared only when the order system accepts the order; on any error it
// is left as it was. Only one checkout may be in flight at a time.
func (s *Service) Checkout(ctx context.Context, customer Customer) (OrderResult, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return OrderResult{}, apperrors.Conflict("checkout already in progress")
	}
	defer s.busy.Store(false)

	cart := s.store.State()
	if cart.IsEmpty() {
		return OrderResult{}, apperrors.InvalidInput("cart is empty")
	}

	req := NewOrderRequest(cart, customer)
	if err := validator.Validate(req); err != nil {
		return OrderResult{}, err
	}

	result, err := s.submitter.SubmitOrder(ctx, req)
	if err != nil {
		s.logger.WarnContext(ctx, "order submission failed",
			slog.Int("items", len(req.Items)),
			slog.String("error", err.Error()),
		)
		return OrderResult{}, fmt.Errorf("submit order: %w", err)
	}
	if !result.Success {
		msg := result.Message
		if msg == "" {
			msg = "order was not accepted"
		}
		s.logger.InfoContext(ctx, "order rejected", slog.String("message", msg))
		return result, apperrors.Rejected(msg)
	}

	s.store.Dispatch(domain.ClearCart{})
	s.logger.InfoContext(ctx, "order placed",
		slog.String("order_id", result.OrderID),
		slog.Int("items", len(req.Items)),
		slog.String("total", cart.TotalPrice().StringFixed(2)),
	)
	return result, nil
}

// InProgress reports whether a checkout is being submitted.
func (s *Service) InProgress() bool {
	return s.busy.Load()
}

// NewOrderRequest maps each cart line to an order item.
func NewOrderRequest(cart domain.Cart, customer Customer) OrderRequest {
	lines := cart.Lines()
	items := make([]OrderItem, len(lines))
	for i, li := range lines {
		items[i] = OrderItem{ProductID: li.ProductID, Quantity: li.Quantity}
	}
	return OrderRequest{
		CustomerEmail:   customer.Email,
		ShippingAddress: customer.ShippingAddress,
		Items:           items,
	}
}
