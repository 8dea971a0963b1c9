//go:build integration

package app_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests run against a live API seeded with the catalog import tool:
//
//	go test -tags integration ./services/storefront/internal/app/...

var client = &http.Client{Timeout: 10 * time.Second}

func baseURL() string {
	if u := os.Getenv("STOREFRONT_API_URL"); u != "" {
		return u
	}
	return "http://localhost:8080"
}

// skipIfNotRunning skips rather than fails when the API is unreachable.
func skipIfNotRunning(t *testing.T) {
	t.Helper()
	resp, err := client.Get(baseURL() + "/health/live")
	if err != nil {
		t.Skipf("storefront API not reachable: %v", err)
	}
	resp.Body.Close()
}

func graphqlDo(t *testing.T, query string, vars map[string]any) map[string]any {
	t.Helper()
	body, err := json.Marshal(map[string]any{"query": query, "variables": vars})
	require.NoError(t, err)

	resp, err := client.Post(baseURL()+"/graphql", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Nil(t, out["errors"], "graphql errors: %v", out["errors"])
	return out["data"].(map[string]any)
}

func firstProductID(t *testing.T) string {
	t.Helper()
	data := graphqlDo(t, `{ products { id } }`, nil)
	products := data["products"].([]any)
	if len(products) == 0 {
		t.Skip("catalog is empty; run the import tool first")
	}
	return products[0].(map[string]any)["id"].(string)
}

func TestRESTProductsMirrorGraphQL(t *testing.T) {
	skipIfNotRunning(t)

	resp, err := client.Get(baseURL() + "/api/products")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rest struct {
		Data       []map[string]any `json:"data"`
		TotalCount int              `json:"total_count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rest))

	data := graphqlDo(t, `{ products { id } }`, nil)
	assert.Len(t, data["products"], len(rest.Data))
}

func TestProductDetail(t *testing.T) {
	skipIfNotRunning(t)
	id := firstProductID(t)

	data := graphqlDo(t, `query($id: String!) {
		product(id: $id) { id name description brand attributes { name type items { display_value value } } }
	}`, map[string]any{"id": id})

	product := data["product"].(map[string]any)
	assert.Equal(t, id, product["id"])
	assert.NotNil(t, product["attributes"])
}

func TestCreateOrderFlow(t *testing.T) {
	skipIfNotRunning(t)
	id := firstProductID(t)

	const mutation = `mutation($email: String!, $address: String!, $items: [OrderItemInput]!) {
		createOrder(customerEmail: $email, shippingAddress: $address, items: $items) { success message orderId }
	}`
	email := fmt.Sprintf("flow-%d@test.example.com", time.Now().UnixNano())

	data := graphqlDo(t, mutation, map[string]any{
		"email":   email,
		"address": "1 Integration Way",
		"items":   []map[string]any{{"productId": id, "quantity": 2}},
	})
	order := data["createOrder"].(map[string]any)
	assert.Equal(t, true, order["success"])
	assert.NotEmpty(t, order["orderId"])

	data = graphqlDo(t, mutation, map[string]any{
		"email":   email,
		"address": "1 Integration Way",
		"items":   []map[string]any{{"productId": "no-such-product", "quantity": 1}},
	})
	order = data["createOrder"].(map[string]any)
	assert.Equal(t, false, order["success"])
	assert.Nil(t, order["orderId"])
}
