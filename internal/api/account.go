package api

import (
	"context"
	"net/http"

	"github.com/merchantkit/merchant-cli/internal/endpoint"
)

// Get retrieves an account.
func (s AccountsService) Get(ctx context.Context, id string) (*Account, error) {
	return getAccount(ctx, s, id)
}

func getAccount(ctx context.Context, r Requester, id string) (*Account, error) {
	path, err := endpoint.Path("accounts", id)
	if err != nil {
		return nil, err
	}
	var result Account
	if err := r.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Balance retrieves the available and pending funds of an account.
func (s AccountsService) Balance(ctx context.Context, id string) (*Balance, error) {
	return getBalance(ctx, s, id)
}

func getBalance(ctx context.Context, r Requester, id string) (*Balance, error) {
	path, err := endpoint.Path("accounts", id, "balance")
	if err != nil {
		return nil, err
	}
	var result Balance
	if err := r.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
