package api

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Money is an amount in the currency's minor unit.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func (m Money) String() string {
	return fmt.Sprintf("%d %s", m.Amount, m.Currency)
}

// FlexInt handles JSON integers that may come as strings.
type FlexInt int64

func (fi *FlexInt) UnmarshalJSON(data []byte) error {
	var i int64
	if err := json.Unmarshal(data, &i); err == nil {
		*fi = FlexInt(i)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			*fi = 0
			return nil
		}
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}
		*fi = FlexInt(i)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into FlexInt", data)
}

// Account is a merchant account.
type Account struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Country   string    `json:"country,omitempty"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Balance is the funds held for an account.
type Balance struct {
	AccountID string  `json:"account_id"`
	Available []Money `json:"available"`
	Pending   []Money `json:"pending"`
}

// Order statuses.
const (
	OrderStatusOpen      = "open"
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"
	OrderStatusRefunded  = "refunded"
)

// ValidOrderStatuses lists the statuses accepted by ListOrdersParams.
var ValidOrderStatuses = []string{OrderStatusOpen, OrderStatusPaid, OrderStatusCancelled, OrderStatusRefunded}

// Order is a purchase against an account.
type Order struct {
	ID        string      `json:"id"`
	AccountID string      `json:"account_id"`
	Reference string      `json:"reference,omitempty"`
	Status    string      `json:"status"`
	Total     Money       `json:"total"`
	Items     []OrderItem `json:"items,omitempty"`
	TokenID   string      `json:"token_id,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// OrderItem is one line of an order.
type OrderItem struct {
	ProductID string  `json:"product_id"`
	Quantity  FlexInt `json:"quantity"`
	UnitPrice *Money  `json:"unit_price,omitempty"`
}

// CreateOrderRequest is the payload for Orders().Create.
type CreateOrderRequest struct {
	AccountID string      `json:"account_id"`
	Reference string      `json:"reference,omitempty"`
	Items     []OrderItem `json:"items"`
	TokenID   string      `json:"token_id,omitempty"`
}

// ListOrdersParams filters Orders().List. Zero values are omitted.
type ListOrdersParams struct {
	AccountID     string
	Status        string
	CreatedAfter  time.Time
	CreatedBefore time.Time
	Page          int
	PerPage       int
}

// OrderList is one page of orders.
type OrderList struct {
	Data       []Order `json:"data"`
	Page       int     `json:"page"`
	TotalPages int     `json:"total_pages"`
}

// Product is a sellable item.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	SKU         string `json:"sku,omitempty"`
	Description string `json:"description,omitempty"`
	Price       Money  `json:"price"`
	Active      bool   `json:"active"`
}

// Webhook is an event subscription.
type Webhook struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Events    []string  `json:"events"`
	Secret    string    `json:"secret,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidWebhookEvents lists the events a webhook can subscribe to.
var ValidWebhookEvents = []string{
	"order.created",
	"order.paid",
	"order.cancelled",
	"order.refunded",
	"token.created",
	"token.deleted",
	"account.updated",
}

// TwoFactorChallenge is a pending second-factor verification.
type TwoFactorChallenge struct {
	ID        string    `json:"id"`
	Method    string    `json:"method"`
	Status    string    `json:"status"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ValidTwoFactorMethods lists the challenge delivery methods.
var ValidTwoFactorMethods = []string{"sms", "email", "totp"}

// CreateChallengeRequest is the payload for TwoFactor().CreateChallenge.
type CreateChallengeRequest struct {
	Method      string `json:"method"`
	Destination string `json:"destination,omitempty"`
}

// TwoFactorVerification is the result of verifying a challenge.
type TwoFactorVerification struct {
	ChallengeID string `json:"challenge_id"`
	Verified    bool   `json:"verified"`
	SessionID   string `json:"session_id,omitempty"`
}
