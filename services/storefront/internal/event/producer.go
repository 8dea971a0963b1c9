package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/utafrali/Storefront/pkg/kafka"
	"github.com/utafrali/Storefront/pkg/logger"
	"github.com/utafrali/Storefront/services/storefront/internal/domain"
)

// TopicOrderCreated receives one event per placed order.
var TopicOrderCreated = pkgkafka.Topic("order", "created")

const (
	aggregateOrder = "order"
	source         = "storefront-api"
)

// OrderCreatedData is the payload of an order.created event.
type OrderCreatedData struct {
	ID              string          `json:"id"`
	CustomerEmail   string          `json:"customer_email"`
	ShippingAddress string          `json:"shipping_address"`
	Items           []OrderItemData `json:"items"`
	Units           int             `json:"units"`
}

// OrderItemData is one line of OrderCreatedData.
type OrderItemData struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Publisher is the part of pkg/kafka.Producer used here.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes order events.
type Producer struct {
	kafka  Publisher
	logger *slog.Logger
}

// NewProducer creates an order event producer.
func NewProducer(kafka Publisher, logger *slog.Logger) *Producer {
	return &Producer{kafka: kafka, logger: logger}
}

// PublishOrderCreated publishes an order.created event for o, carrying
// the request correlation ID when there is one.
func (p *Producer) PublishOrderCreated(ctx context.Context, o *domain.Order) error {
	items := make([]OrderItemData, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemData{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	data := OrderCreatedData{
		ID:              o.ID,
		CustomerEmail:   o.CustomerEmail,
		ShippingAddress: o.ShippingAddress,
		Items:           items,
		Units:           o.Units(),
	}

	evt, err := pkgkafka.NewEvent(TopicOrderCreated, o.ID, aggregateOrder, source, data)
	if err != nil {
		return fmt.Errorf("create order.created event: %w", err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		evt.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, TopicOrderCreated, evt); err != nil {
		return fmt.Errorf("publish order.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.created event", slog.String("order_id", o.ID))
	return nil
}
