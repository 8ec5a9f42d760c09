package api

import (
	"context"
	"net/http"

	"github.com/merchantkit/merchant-cli/internal/endpoint"
)

// List retrieves all products.
func (s ProductsService) List(ctx context.Context) ([]Product, error) {
	return listProducts(ctx, s)
}

func listProducts(ctx context.Context, r Requester) ([]Product, error) {
	var result struct {
		Data []Product `json:"data"`
	}
	if err := r.do(ctx, http.MethodGet, "products", nil, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// Get retrieves a product.
func (s ProductsService) Get(ctx context.Context, id string) (*Product, error) {
	return getProduct(ctx, s, id)
}

func getProduct(ctx context.Context, r Requester, id string) (*Product, error) {
	path, err := endpoint.Path("products", id)
	if err != nil {
		return nil, err
	}
	var result Product
	if err := r.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
