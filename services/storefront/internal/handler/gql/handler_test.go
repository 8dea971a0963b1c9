package gql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/Storefront/pkg/errors"
	"github.com/utafrali/Storefront/pkg/pagination"
	"github.com/utafrali/Storefront/pkg/validator"
	"github.com/utafrali/Storefront/services/storefront/internal/domain"
	"github.com/utafrali/Storefront/services/storefront/internal/service"
)

type fakeCatalog struct {
	products []domain.Product
	details  map[string]*domain.ProductDetail
	err      error
}

func (f *fakeCatalog) Products(context.Context, pagination.Params) ([]domain.Product, int, error) {
	return f.products, len(f.products), f.err
}

func (f *fakeCatalog) Product(_ context.Context, id string) (*domain.ProductDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	d, ok := f.details[id]
	if !ok {
		return nil, apperrors.NotFound("product", id)
	}
	return d, nil
}

type fakeOrders struct {
	got service.CreateOrderInput
	err error
}

func (f *fakeOrders) CreateOrder(_ context.Context, in service.CreateOrderInput) (*domain.Order, error) {
	f.got = in
	if f.err != nil {
		return nil, f.err
	}
	if err := validator.Validate(in); err != nil {
		return nil, err
	}
	return &domain.Order{ID: "ord-42"}, nil
}

func jacket() domain.Product {
	return domain.Product{
		ID:           "jacket",
		Name:         "Jacket",
		Price:        decimal.RequireFromString("518.47"),
		Currency:     domain.Currency{Label: "USD", Symbol: "$"},
		Images:       []string{"j1.jpg"},
		CategoryName: "clothes",
		InStock:      true,
		Kind:         domain.KindClothes,
	}
}

func newServer(t *testing.T, cat *fakeCatalog, orders *fakeOrders) *httptest.Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	schema, err := NewSchema(cat, orders, log)
	require.NoError(t, err)
	srv := httptest.NewServer(NewHandler(schema, log))
	t.Cleanup(srv.Close)
	return srv
}

type gqlResponse struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func post(t *testing.T, srv *httptest.Server, body any) (*http.Response, gqlResponse) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(srv.URL, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out gqlResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

// The queries below are the ones the storefront CLI sends.
const (
	productFields = `id name price currency { label symbol } images category_name in_stock`
	productsQuery = `query Products { products { ` + productFields + ` } }`
	productQuery  = `query Product($id: String!) {
  product(id: $id) {
    ` + productFields + `
    description brand
    attributes { name type items { display_value value } }
  }
}`
	createOrderMutation = `mutation CreateOrder($customerEmail: String!, $shippingAddress: String!, $items: [OrderItemInput]!) {
  createOrder(customerEmail: $customerEmail, shippingAddress: $shippingAddress, items: $items) {
    success message orderId
  }
}`
)

func TestProductsQuery(t *testing.T) {
	srv := newServer(t, &fakeCatalog{products: []domain.Product{jacket()}}, &fakeOrders{})

	resp, out := post(t, srv, Request{Query: productsQuery, OperationName: "Products"})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Empty(t, out.Errors)
	assert.JSONEq(t, `[{
		"id": "jacket", "name": "Jacket", "price": 518.47,
		"currency": {"label": "USD", "symbol": "$"},
		"images": ["j1.jpg"], "category_name": "clothes", "in_stock": true
	}]`, string(out.Data["products"]))
}

func TestProductsQuery_SizesForClothes(t *testing.T) {
	tech := jacket()
	tech.ID, tech.Kind = "ps-5", domain.KindTech
	srv := newServer(t, &fakeCatalog{products: []domain.Product{jacket(), tech}}, &fakeOrders{})

	_, out := post(t, srv, Request{Query: `{ products { id kind sizes } }`})

	require.Empty(t, out.Errors)
	assert.JSONEq(t, `[
		{"id": "jacket", "kind": "clothes", "sizes": ["S", "M", "L"]},
		{"id": "ps-5", "kind": "tech", "sizes": null}
	]`, string(out.Data["products"]))
}

func TestProductQuery(t *testing.T) {
	d := &domain.ProductDetail{
		Product:     jacket(),
		Description: "warm",
		Brand:       "Canada Goose",
		Attributes: []domain.AttributeSet{{
			Name: "Size", Type: "text",
			Items: []domain.AttributeItem{{DisplayValue: "Small", Value: "S"}},
		}},
	}
	srv := newServer(t, &fakeCatalog{details: map[string]*domain.ProductDetail{"jacket": d}}, &fakeOrders{})

	_, out := post(t, srv, Request{Query: productQuery, Variables: map[string]any{"id": "jacket"}, OperationName: "Product"})

	require.Empty(t, out.Errors)
	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Data["product"], &got))
	assert.Equal(t, "Canada Goose", got["brand"])
	assert.Equal(t, "warm", got["description"])
	assert.Equal(t, []any{map[string]any{
		"name": "Size", "type": "text",
		"items": []any{map[string]any{"display_value": "Small", "value": "S"}},
	}}, got["attributes"])
}

func TestProductQuery_MissingIsNull(t *testing.T) {
	srv := newServer(t, &fakeCatalog{}, &fakeOrders{})

	_, out := post(t, srv, Request{Query: productQuery, Variables: map[string]any{"id": "nope"}})

	require.Empty(t, out.Errors)
	assert.Equal(t, "null", string(out.Data["product"]))
}

func TestProductsQuery_InternalErrorIsMasked(t *testing.T) {
	srv := newServer(t, &fakeCatalog{err: errors.New("pq: password authentication failed")}, &fakeOrders{})

	resp, out := post(t, srv, Request{Query: productsQuery})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "internal server error", out.Errors[0].Message)
}

func TestCreateOrder(t *testing.T) {
	orders := &fakeOrders{}
	srv := newServer(t, &fakeCatalog{}, orders)

	_, out := post(t, srv, Request{
		Query: createOrderMutation,
		Variables: map[string]any{
			"customerEmail":   "ada@example.com",
			"shippingAddress": "1 Analytical Way",
			"items":           []map[string]any{{"productId": "jacket", "quantity": 2}},
		},
		OperationName: "CreateOrder",
	})

	require.Empty(t, out.Errors)
	assert.JSONEq(t, `{"success": true, "message": "Order created successfully", "orderId": "ord-42"}`,
		string(out.Data["createOrder"]))
	assert.Equal(t, []service.CreateOrderItemInput{{ProductID: "jacket", Quantity: 2}}, orders.got.Items)
}

func TestCreateOrder_ValidationFailureIsUnsuccessful(t *testing.T) {
	srv := newServer(t, &fakeCatalog{}, &fakeOrders{})

	_, out := post(t, srv, Request{
		Query: createOrderMutation,
		Variables: map[string]any{
			"customerEmail":   "not-an-email",
			"shippingAddress": "1 Analytical Way",
			"items":           []map[string]any{{"productId": "jacket", "quantity": 1}},
		},
	})

	require.Empty(t, out.Errors)
	var got struct {
		Success bool    `json:"success"`
		Message string  `json:"message"`
		OrderID *string `json:"orderId"`
	}
	require.NoError(t, json.Unmarshal(out.Data["createOrder"], &got))
	assert.False(t, got.Success)
	assert.Contains(t, got.Message, "customerEmail")
	assert.Nil(t, got.OrderID)
}

func TestCreateOrder_UnknownProductIsUnsuccessful(t *testing.T) {
	srv := newServer(t, &fakeCatalog{}, &fakeOrders{err: apperrors.InvalidInput(`unknown product "ghost"`)})

	_, out := post(t, srv, Request{
		Query: createOrderMutation,
		Variables: map[string]any{
			"customerEmail":   "ada@example.com",
			"shippingAddress": "1 Analytical Way",
			"items":           []map[string]any{{"productId": "ghost", "quantity": 1}},
		},
	})

	require.Empty(t, out.Errors)
	assert.JSONEq(t, `{"success": false, "message": "unknown product \"ghost\"", "orderId": null}`,
		string(out.Data["createOrder"]))
}

func TestCreateOrder_InternalFailureIsGraphQLError(t *testing.T) {
	srv := newServer(t, &fakeCatalog{}, &fakeOrders{err: errors.New("connection reset")})

	_, out := post(t, srv, Request{
		Query: createOrderMutation,
		Variables: map[string]any{
			"customerEmail":   "ada@example.com",
			"shippingAddress": "1 Analytical Way",
			"items":           []map[string]any{{"productId": "jacket", "quantity": 1}},
		},
	})

	require.Len(t, out.Errors, 1)
	assert.Equal(t, "internal server error", out.Errors[0].Message)
	assert.Equal(t, "null", string(out.Data["createOrder"]))
}

func TestHandler_MalformedBody(t *testing.T) {
	srv := newServer(t, &fakeCatalog{}, &fakeOrders{})

	for name, body := range map[string]string{
		"not json":    `{"query": `,
		"empty query": `{"query": "   "}`,
	} {
		t.Run(name, func(t *testing.T) {
			resp, err := http.Post(srv.URL, "application/json", strings.NewReader(body))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			var env struct {
				Error struct {
					Message string `json:"message"`
				} `json:"error"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
			assert.NotEmpty(t, env.Error.Message)
		})
	}
}

func TestHandler_SyntaxErrorIsReportedInBody(t *testing.T) {
	srv := newServer(t, &fakeCatalog{}, &fakeOrders{})

	resp, out := post(t, srv, Request{Query: `{ products { id `})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, out.Errors)
}
