package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	apperrors "github.com/utafrali/Storefront/pkg/errors"
	"github.com/utafrali/Storefront/pkg/httpclient"
	"github.com/utafrali/Storefront/services/cart/internal/checkout"
	"github.com/utafrali/Storefront/services/cart/internal/domain"
)

const serviceName = "storefront api"

// ErrGraphQL marks errors reported in a GraphQL response body.
var ErrGraphQL = errors.New("graphql error")

const productFields = `id name price currency { label symbol } images category_name in_stock`

const productsQuery = `query Products { products { ` + productFields + ` } }`

const productQuery = `query Product($id: String!) {
  product(id: $id) {
    ` + productFields + `
    description brand
    attributes { name type items { display_value value } }
  }
}`

const createOrderMutation = `mutation CreateOrder($customerEmail: String!, $shippingAddress: String!, $items: [OrderItemInput]!) {
  createOrder(customerEmail: $customerEmail, shippingAddress: $shippingAddress, items: $items) {
    success message orderId
  }
}`

type request struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
}

type responseError struct {
	Message string `json:"message"`
}

type response[T any] struct {
	Data   T               `json:"data"`
	Errors []responseError `json:"errors"`
}

// Client talks to the storefront GraphQL API. It serves the catalog to
// the CLI and submits orders for checkout.
type Client struct {
	http     *httpclient.CircuitBreakerClient
	endpoint string
	logger   *slog.Logger
}

// New creates a client for the API at baseURL.
func New(baseURL string, http *httpclient.CircuitBreakerClient, logger *slog.Logger) *Client {
	return &Client{
		http:     http,
		endpoint: strings.TrimRight(baseURL, "/") + "/graphql",
		logger:   logger,
	}
}

// Products returns the whole catalog listing.
func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	var data struct {
		Products []domain.Product `json:"products"`
	}
	if err := c.do(ctx, "Products", productsQuery, nil, &data); err != nil {
		return nil, err
	}
	return data.Products, nil
}

// Product returns one product with its attribute catalog.
func (c *Client) Product(ctx context.Context, id string) (domain.ProductDetail, error) {
	var data struct {
		Product *domain.ProductDetail `json:"product"`
	}
	if err := c.do(ctx, "Product", productQuery, map[string]any{"id": id}, &data); err != nil {
		return domain.ProductDetail{}, err
	}
	if data.Product == nil {
		return domain.ProductDetail{}, apperrors.NotFound("product", id)
	}
	return *data.Product, nil
}

// SubmitOrder runs the createOrder mutation. It implements
// checkout.OrderSubmitter. The request is sent exactly once.
func (c *Client) SubmitOrder(ctx context.Context, req checkout.OrderRequest) (checkout.OrderResult, error) {
	var data struct {
		CreateOrder *checkout.OrderResult `json:"createOrder"`
	}
	vars := map[string]any{
		"customerEmail":   req.CustomerEmail,
		"shippingAddress": req.ShippingAddress,
		"items":           req.Items,
	}
	if err := c.do(ctx, "CreateOrder", createOrderMutation, vars, &data); err != nil {
		return checkout.OrderResult{}, err
	}
	if data.CreateOrder == nil {
		return checkout.OrderResult{}, fmt.Errorf("%w: createOrder returned no result", ErrGraphQL)
	}
	return *data.CreateOrder, nil
}

func (c *Client) do(ctx context.Context, operation, query string, vars map[string]any, out any) error {
	body, err := json.Marshal(request{Query: query, Variables: vars, OperationName: operation})
	if err != nil {
		return fmt.Errorf("encode %s request: %w", operation, err)
	}

	resp, err := c.http.Post(ctx, c.endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		c.logger.WarnContext(ctx, "storefront api request failed",
			slog.String("operation", operation),
			slog.String("error", err.Error()),
		)
		return apperrors.Unavailable(serviceName+" unreachable", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpclient.ParseResponseError(resp, serviceName)
	}
	defer func() { _ = resp.Body.Close() }()

	var env response[json.RawMessage]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	if len(env.Errors) > 0 {
		msgs := make([]string, len(env.Errors))
		for i, e := range env.Errors {
			msgs[i] = e.Message
		}
		return fmt.Errorf("%w: %s: %s", ErrGraphQL, operation, strings.Join(msgs, "; "))
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return fmt.Errorf("%w: %s: empty data", ErrGraphQL, operation)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s data: %w", operation, err)
	}
	return nil
}

// compile-time check
var _ checkout.OrderSubmitter = (*Client)(nil)
