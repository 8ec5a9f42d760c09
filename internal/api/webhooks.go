package api

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"github.com/merchantkit/merchant-cli/internal/endpoint"
	"github.com/merchantkit/merchant-cli/internal/validation"
)

var validateWebhookURL = validation.ValidateWebhookURL

// List retrieves all webhooks.
func (s WebhooksService) List(ctx context.Context) ([]Webhook, error) {
	return listWebhooks(ctx, s)
}

func listWebhooks(ctx context.Context, r Requester) ([]Webhook, error) {
	var result struct {
		Data []Webhook `json:"data"`
	}
	if err := r.do(ctx, http.MethodGet, "webhooks", nil, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// Create subscribes url to events. The URL must be a public http(s)
// address unless private targets are allowed.
func (s WebhooksService) Create(ctx context.Context, url string, events []string) (*Webhook, error) {
	return createWebhook(ctx, s, url, events)
}

func createWebhook(ctx context.Context, r Requester, url string, events []string) (*Webhook, error) {
	if err := validateWebhookURL(url); err != nil {
		return nil, fmt.Errorf("invalid webhook URL: %w", err)
	}
	if len(events) == 0 {
		return nil, NewValidationError("events", "", ValidWebhookEvents)
	}
	for _, ev := range events {
		if !slices.Contains(ValidWebhookEvents, ev) {
			return nil, NewValidationError("event", ev, ValidWebhookEvents)
		}
	}

	body := map[string]any{
		"url":    url,
		"events": events,
	}
	var result Webhook
	if err := r.do(ctx, http.MethodPost, "webhooks", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Delete deletes a webhook.
func (s WebhooksService) Delete(ctx context.Context, id string) error {
	return deleteWebhook(ctx, s, id)
}

func deleteWebhook(ctx context.Context, r Requester, id string) error {
	path, err := endpoint.Path("webhooks", id)
	if err != nil {
		return err
	}
	return r.do(ctx, http.MethodDelete, path, nil, nil)
}
