package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingRequester captures the last call made by a resource helper.
type recordingRequester struct {
	method   string
	endpoint string
	body     any
	reply    string
	err      error
}

func (r *recordingRequester) do(_ context.Context, method, endpoint string, body, result any) error {
	r.method, r.endpoint, r.body = method, endpoint, body
	if r.err != nil {
		return r.err
	}
	if result != nil && r.reply != "" {
		return json.Unmarshal([]byte(r.reply), result)
	}
	return nil
}

func TestListOrdersParams_Query(t *testing.T) {
	q, err := ListOrdersParams{AccountID: "acct 1", Status: OrderStatusOpen, Page: 2, PerPage: 50}.Query()
	require.NoError(t, err)
	assert.Equal(t, "account_id=acct+1&page=2&per_page=50&status=open", q)

	q, err = ListOrdersParams{}.Query()
	require.NoError(t, err)
	assert.Empty(t, q)

	_, err = ListOrdersParams{Status: "closed"}.Query()
	var se *StructuredError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, CodeValidation, se.Code)
}

func TestListOrdersParams_QueryCreatedRange(t *testing.T) {
	after := time.Date(2026, 1, 1, 1, 0, 0, 0, time.FixedZone("CET", 3600))
	before := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	q, err := ListOrdersParams{CreatedAfter: after, CreatedBefore: before}.Query()
	require.NoError(t, err)
	assert.Equal(t, "created_after=2026-01-01T00%3A00%3A00Z&created_before=2026-02-01T00%3A00%3A00Z", q)

	_, err = ListOrdersParams{CreatedAfter: before, CreatedBefore: after}.Query()
	require.ErrorContains(t, err, "later than")
}

func TestListOrders_Endpoint(t *testing.T) {
	r := &recordingRequester{reply: `{"data":[{"id":"ord_1","status":"open","total":{"amount":100,"currency":"USD"}}],"page":1,"total_pages":3}`}
	list, err := listOrders(context.Background(), r, ListOrdersParams{Status: "open"})
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, r.method)
	assert.Equal(t, "orders?status=open", r.endpoint)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "ord_1", list.Data[0].ID)
	assert.Equal(t, 3, list.TotalPages)
}

func TestOrderEndpoints(t *testing.T) {
	r := &recordingRequester{reply: `{"id":"a/b"}`}

	_, err := getOrder(context.Background(), r, "ord #1")
	require.NoError(t, err)
	assert.Equal(t, "orders/ord%20%231", r.endpoint)

	_, err = cancelOrder(context.Background(), r, "ord_1")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, r.method)
	assert.Equal(t, "orders/ord_1/cancel", r.endpoint)
}

func TestCreateOrder(t *testing.T) {
	var got CreateOrderRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"ord_9","account_id":"acct_1","status":"open","items":[{"product_id":"p_1","quantity":"2"}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	order, err := client.Orders().Create(context.Background(), CreateOrderRequest{
		AccountID: "acct_1",
		Items:     []OrderItem{{ProductID: "p_1", Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, "ord_9", order.ID)
	assert.EqualValues(t, 2, order.Items[0].Quantity, "quantity sent as a string still decodes")
	assert.Equal(t, "acct_1", got.AccountID)
}

func TestCreateOrder_Validation(t *testing.T) {
	r := &recordingRequester{}
	_, err := createOrder(context.Background(), r, CreateOrderRequest{Items: []OrderItem{{ProductID: "p"}}})
	assert.Error(t, err)
	_, err = createOrder(context.Background(), r, CreateOrderRequest{AccountID: "a"})
	assert.Error(t, err)
	assert.Empty(t, r.method, "nothing sent for invalid input")
}

func TestCreateOrder_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid order","errors":{"items":["can't be blank"]}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Orders().Create(context.Background(), CreateOrderRequest{AccountID: "a", Items: []OrderItem{{ProductID: "p"}}})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "items: can't be blank")
}

func TestGetOrderAsync(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/orders/missing" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"not found"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"ord_5","status":"paid"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	future, err := client.Orders().GetAsync(context.Background(), "ord_5")
	require.NoError(t, err)
	order, err := future.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OrderStatusPaid, order.Status)

	future, err = client.Orders().GetAsync(context.Background(), "missing")
	require.NoError(t, err)
	_, err = future.Wait(context.Background())
	assert.True(t, IsNotFoundError(err))

	_, err = client.Orders().GetAsync(context.Background(), "..")
	assert.True(t, IsInvalidEndpoint(err))
}
