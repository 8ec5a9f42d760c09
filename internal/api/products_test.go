package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListProducts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products" {
			t.Errorf("Expected /products, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":"p_1","name":"Mug","price":{"amount":1200,"currency":"EUR"},"active":true},{"id":"p_2","name":"Cap","active":false}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	products, err := client.Products().List(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("Expected 2 products, got %d", len(products))
	}
	if !products[0].Active || products[0].Price.Amount != 1200 {
		t.Errorf("Unexpected first product: %+v", products[0])
	}
}

func TestGetProduct(t *testing.T) {
	r := &recordingRequester{reply: `{"id":"SKU 1/2","name":"Half"}`}
	product, err := getProduct(context.Background(), r, "SKU 1/2")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if r.endpoint != "products/SKU%201%2F2" {
		t.Errorf("Unexpected endpoint %q", r.endpoint)
	}
	if product.Name != "Half" {
		t.Errorf("Unexpected product: %+v", product)
	}
}

func TestGetProduct_SlashInIDIsNotSent(t *testing.T) {
	client := newTestClient(t, "https://example.com/", func(cfg *Config) {
		cfg.Transport = transportFunc(func(*http.Request) (*http.Response, error) {
			t.Error("request must not be sent")
			return jsonResponse(200, `{}`), nil
		})
	})
	_, err := client.Products().Get(context.Background(), "a/b")
	if !IsInvalidEndpoint(err) {
		t.Errorf("Expected invalid endpoint, got %v", err)
	}
}
