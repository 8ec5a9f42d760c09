package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/merchantkit/merchant-cli/internal/endpoint"
)

// Query returns the encoded query string for p.
func (p ListOrdersParams) Query() (string, error) {
	q := url.Values{}
	if p.AccountID != "" {
		q.Set("account_id", p.AccountID)
	}
	if p.Status != "" {
		if !slices.Contains(ValidOrderStatuses, p.Status) {
			return "", NewValidationError("status", p.Status, ValidOrderStatuses)
		}
		q.Set("status", p.Status)
	}
	if !p.CreatedAfter.IsZero() && !p.CreatedBefore.IsZero() && p.CreatedAfter.After(p.CreatedBefore) {
		return "", fmt.Errorf("created_after %s is later than created_before %s",
			p.CreatedAfter.UTC().Format(time.RFC3339), p.CreatedBefore.UTC().Format(time.RFC3339))
	}
	if !p.CreatedAfter.IsZero() {
		q.Set("created_after", p.CreatedAfter.UTC().Format(time.RFC3339))
	}
	if !p.CreatedBefore.IsZero() {
		q.Set("created_before", p.CreatedBefore.UTC().Format(time.RFC3339))
	}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(p.PerPage))
	}
	return q.Encode(), nil
}

// List retrieves one page of orders.
func (s OrdersService) List(ctx context.Context, params ListOrdersParams) (*OrderList, error) {
	return listOrders(ctx, s, params)
}

func listOrders(ctx context.Context, r Requester, params ListOrdersParams) (*OrderList, error) {
	query, err := params.Query()
	if err != nil {
		return nil, err
	}
	path := "orders"
	if query != "" {
		path += "?" + query
	}
	var result OrderList
	if err := r.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Get retrieves an order.
func (s OrdersService) Get(ctx context.Context, id string) (*Order, error) {
	return getOrder(ctx, s, id)
}

func getOrder(ctx context.Context, r Requester, id string) (*Order, error) {
	path, err := endpoint.Path("orders", id)
	if err != nil {
		return nil, err
	}
	var result Order
	if err := r.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetAsync is Get without blocking. The order is decoded when the response
// arrives; Wait on the returned Future to collect it.
func (s OrdersService) GetAsync(ctx context.Context, id string) (*Future[*Order], error) {
	path, err := endpoint.Path("orders", id)
	if err != nil {
		return nil, err
	}
	return doAsync[Order](ctx, s.Client, http.MethodGet, path, nil)
}

// Create places an order.
func (s OrdersService) Create(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	return createOrder(ctx, s, req)
}

func createOrder(ctx context.Context, r Requester, req CreateOrderRequest) (*Order, error) {
	if req.AccountID == "" {
		return nil, errors.New("account ID is required")
	}
	if len(req.Items) == 0 {
		return nil, errors.New("an order needs at least one item")
	}
	var result Order
	if err := r.do(ctx, http.MethodPost, "orders", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Cancel cancels an open order.
func (s OrdersService) Cancel(ctx context.Context, id string) (*Order, error) {
	return cancelOrder(ctx, s, id)
}

func cancelOrder(ctx context.Context, r Requester, id string) (*Order, error) {
	path, err := endpoint.Path("orders", id, "cancel")
	if err != nil {
		return nil, err
	}
	var result Order
	if err := r.do(ctx, http.MethodPost, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
