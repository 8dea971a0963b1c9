package gql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/graphql-go/graphql"

	apperrors "github.com/utafrali/Storefront/pkg/errors"
	"github.com/utafrali/Storefront/pkg/logger"
	"github.com/utafrali/Storefront/pkg/pagination"
	"github.com/utafrali/Storefront/pkg/validator"
	"github.com/utafrali/Storefront/services/storefront/internal/domain"
	"github.com/utafrali/Storefront/services/storefront/internal/service"
)

// Catalog serves the product queries.
type Catalog interface {
	Products(ctx context.Context, page pagination.Params) ([]domain.Product, int, error)
	Product(ctx context.Context, id string) (*domain.ProductDetail, error)
}

// Orders serves the createOrder mutation.
type Orders interface {
	CreateOrder(ctx context.Context, input service.CreateOrderInput) (*domain.Order, error)
}

// errInternal is what clients see in place of unexpected failures.
var errInternal = errors.New("internal server error")

type resolver struct {
	catalog Catalog
	orders  Orders
	logger  *slog.Logger
}

// NewSchema assembles the storefront schema:
//
//	type Query {
//	  products: [Product]
//	  product(id: String!): ProductDetails
//	}
//	type Mutation {
//	  createOrder(customerEmail: String!, shippingAddress: String!, items: [OrderItemInput]!): OrderResponse
//	}
func NewSchema(catalog Catalog, orders Orders, logger *slog.Logger) (graphql.Schema, error) {
	r := &resolver{catalog: catalog, orders: orders, logger: logger}

	currency := graphql.NewObject(graphql.ObjectConfig{
		Name: "Currency",
		Fields: graphql.Fields{
			"label":  &graphql.Field{Type: graphql.String},
			"symbol": &graphql.Field{Type: graphql.String},
		},
	})

	productFields := func() graphql.Fields {
		return graphql.Fields{
			"id":            &graphql.Field{Type: graphql.ID},
			"name":          &graphql.Field{Type: graphql.String},
			"price":         &graphql.Field{Type: graphql.Float},
			"currency":      &graphql.Field{Type: currency},
			"images":        &graphql.Field{Type: graphql.NewList(graphql.String)},
			"category_name": &graphql.Field{Type: graphql.String},
			"in_stock":      &graphql.Field{Type: graphql.Boolean},
			"kind":          &graphql.Field{Type: graphql.String},
			"sizes":         &graphql.Field{Type: graphql.NewList(graphql.String)},
		}
	}

	product := graphql.NewObject(graphql.ObjectConfig{Name: "Product", Fields: productFields()})

	attributeItem := graphql.NewObject(graphql.ObjectConfig{
		Name: "AttributeItem",
		Fields: graphql.Fields{
			"display_value": &graphql.Field{Type: graphql.String},
			"value":         &graphql.Field{Type: graphql.String},
		},
	})
	attribute := graphql.NewObject(graphql.ObjectConfig{
		Name: "Attribute",
		Fields: graphql.Fields{
			"name":  &graphql.Field{Type: graphql.String},
			"type":  &graphql.Field{Type: graphql.String},
			"items": &graphql.Field{Type: graphql.NewList(attributeItem)},
		},
	})

	detailFields := productFields()
	detailFields["description"] = &graphql.Field{Type: graphql.String}
	detailFields["brand"] = &graphql.Field{Type: graphql.String}
	detailFields["attributes"] = &graphql.Field{Type: graphql.NewList(attribute)}
	productDetails := graphql.NewObject(graphql.ObjectConfig{Name: "ProductDetails", Fields: detailFields})

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"products": &graphql.Field{
				Type:    graphql.NewList(product),
				Resolve: r.products,
			},
			"product": &graphql.Field{
				Type: productDetails,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.product,
			},
		},
	})

	orderItemInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "OrderItemInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"productId": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.ID)},
			"quantity":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Int)},
		},
	})
	orderResponse := graphql.NewObject(graphql.ObjectConfig{
		Name: "OrderResponse",
		Fields: graphql.Fields{
			"success": &graphql.Field{Type: graphql.Boolean},
			"message": &graphql.Field{Type: graphql.String},
			"orderId": &graphql.Field{Type: graphql.ID},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createOrder": &graphql.Field{
				Type: orderResponse,
				Args: graphql.FieldConfigArgument{
					"customerEmail":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"shippingAddress": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"items":           &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(orderItemInput))},
				},
				Resolve: r.createOrder,
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{Query: query, Mutation: mutation})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("build graphql schema: %w", err)
	}
	return schema, nil
}

func (r *resolver) products(p graphql.ResolveParams) (any, error) {
	products, _, err := r.catalog.Products(p.Context, pagination.Params{})
	if err != nil {
		return nil, r.internal(p.Context, "products", err)
	}
	out := make([]map[string]any, len(products))
	for i := range products {
		out[i] = productView(&products[i])
	}
	return out, nil
}

func (r *resolver) product(p graphql.ResolveParams) (any, error) {
	id, _ := p.Args["id"].(string)
	d, err := r.catalog.Product(p.Context, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, r.internal(p.Context, "product", err)
	}
	return detailView(d), nil
}

func (r *resolver) createOrder(p graphql.ResolveParams) (any, error) {
	input := service.CreateOrderInput{}
	input.CustomerEmail, _ = p.Args["customerEmail"].(string)
	input.ShippingAddress, _ = p.Args["shippingAddress"].(string)
	items, _ := p.Args["items"].([]any)
	for _, raw := range items {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		var it service.CreateOrderItemInput
		it.ProductID, _ = m["productId"].(string)
		it.Quantity, _ = m["quantity"].(int)
		input.Items = append(input.Items, it)
	}

	order, err := r.orders.CreateOrder(p.Context, input)
	if err != nil {
		var ve *validator.ValidationError
		if errors.As(err, &ve) || apperrors.IsUserFacing(err) {
			return map[string]any{"success": false, "message": userMessage(err), "orderId": nil}, nil
		}
		return nil, r.internal(p.Context, "createOrder", err)
	}
	return map[string]any{
		"success": true,
		"message": "Order created successfully",
		"orderId": order.ID,
	}, nil
}

func (r *resolver) internal(ctx context.Context, field string, err error) error {
	l := logger.FromContext(ctx)
	if l == slog.Default() {
		l = r.logger
	}
	l.ErrorContext(ctx, "graphql resolver failed",
		slog.String("field", field),
		slog.String("error", err.Error()),
	)
	return errInternal
}

func userMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

func productView(p *domain.Product) map[string]any {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	var sizes any
	if s := p.Kind.Sizes(); s != nil {
		sizes = s
	}
	return map[string]any{
		"id":            p.ID,
		"name":          p.Name,
		"price":         p.Price.InexactFloat64(),
		"currency":      map[string]any{"label": p.Currency.Label, "symbol": p.Currency.Symbol},
		"images":        images,
		"category_name": p.CategoryName,
		"in_stock":      p.InStock,
		"kind":          string(p.Kind),
		"sizes":         sizes,
	}
}

func detailView(d *domain.ProductDetail) map[string]any {
	v := productView(&d.Product)
	v["description"] = d.Description
	v["brand"] = d.Brand
	attrs := make([]map[string]any, len(d.Attributes))
	for i, a := range d.Attributes {
		items := make([]map[string]any, len(a.Items))
		for j, it := range a.Items {
			items[j] = map[string]any{"display_value": it.DisplayValue, "value": it.Value}
		}
		attrs[i] = map[string]any{"name": a.Name, "type": a.Type, "items": items}
	}
	v["attributes"] = attrs
	return v
}
