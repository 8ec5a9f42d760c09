package schema

import "github.com/merchantkit/merchant-cli/internal/api"

func init() {
	registerAll()
}

func registerAll() {
	registerAccount()
	registerBalance()
	registerOrder()
	registerProduct()
	registerToken()
	registerWebhook()
	registerTwoFactorChallenge()
	registerError()
}

func registerAccount() {
	Register("account", Object(
		"A merchant account",
		map[string]*Schema{
			"id":         String("Unique account identifier"),
			"name":       String("Display name"),
			"email":      String("Contact email"),
			"country":    String("ISO 3166 country code"),
			"currency":   String("Default settlement currency"),
			"status":     String("Account status"),
			"created_at": Timestamp("When the account was created"),
		},
		"id", "name", "currency", "status",
	))
}

func registerBalance() {
	Register("balance", Object(
		"Funds held for an account, per currency",
		map[string]*Schema{
			"account_id": String("Account the balance belongs to"),
			"available":  Array(Money("Amount"), "Funds that can be paid out"),
			"pending":    Array(Money("Amount"), "Funds not yet settled"),
		},
		"account_id",
	))
}

func registerOrder() {
	item := Object("One line of an order", map[string]*Schema{
		"product_id": String("Product being ordered"),
		"quantity":   Int("Number of units"),
		"unit_price": Money("Price per unit at the time of the order"),
	}, "product_id", "quantity")

	Register("order", Object(
		"A purchase against an account",
		map[string]*Schema{
			"id":         String("Unique order identifier"),
			"account_id": String("Account the order belongs to"),
			"reference":  String("Caller-supplied reference"),
			"status":     Enum("Current order status", api.ValidOrderStatuses...),
			"total":      Money("Order total"),
			"items":      Array(item, "Order lines"),
			"token_id":   String("Payment token charged for the order"),
			"created_at": Timestamp("When the order was created"),
		},
		"id", "account_id", "status", "total", "created_at",
	))
}

func registerProduct() {
	Register("product", Object(
		"A sellable item in the catalog",
		map[string]*Schema{
			"id":          String("Unique product identifier"),
			"name":        String("Product name"),
			"sku":         String("Stock keeping unit"),
			"description": String("Product description"),
			"price":       Money("Unit price"),
			"active":      Bool("Whether the product can be ordered"),
		},
		"id", "name", "price", "active",
	))
}

func registerToken() {
	Register("token", Object(
		"A stored payment instrument; fields beyond id and type depend on the type",
		map[string]*Schema{
			"id":   String("Unique token identifier"),
			"type": Enum("Instrument type", api.TokenTypeCard, api.TokenTypeBankAccount, api.TokenTypeWallet),
			// card
			"brand":     String("Card brand (card)"),
			"exp_month": Int("Expiry month (card)"),
			"exp_year":  Int("Expiry year (card)"),
			// card and bank_account
			"last4": String("Last four digits (card, bank_account)"),
			// bank_account
			"bank_name": String("Bank name (bank_account)"),
			"country":   String("Bank country (bank_account)"),
			// wallet
			"provider": String("Wallet provider (wallet)"),
			"email":    String("Wallet account email (wallet)"),
		},
		"id", "type",
	))
}

func registerWebhook() {
	Register("webhook", Object(
		"An event subscription delivering to an HTTPS endpoint",
		map[string]*Schema{
			"id":         String("Unique webhook identifier"),
			"url":        String("Delivery URL"),
			"events":     Array(Enum("Event name", api.ValidWebhookEvents...), "Subscribed events"),
			"secret":     String("Signing secret, only returned on creation"),
			"created_at": Timestamp("When the webhook was created"),
		},
		"id", "url", "events",
	))
}

func registerTwoFactorChallenge() {
	Register("two_factor_challenge", Object(
		"A pending second-factor verification",
		map[string]*Schema{
			"id":         String("Challenge identifier"),
			"method":     Enum("Delivery method", api.ValidTwoFactorMethods...),
			"status":     String("Challenge status"),
			"expires_at": Timestamp("When the challenge expires"),
		},
		"id", "method", "status",
	))
}

func registerError() {
	codes := []string{
		string(api.CodeBadRequest),
		string(api.CodeUnauthorized),
		string(api.CodeForbidden),
		string(api.CodeNotFound),
		string(api.CodeConflict),
		string(api.CodeValidation),
		string(api.CodeRateLimited),
		string(api.CodeServerError),
		string(api.CodeTimeout),
		string(api.CodeInvalidEndpoint),
		string(api.CodeTransport),
		string(api.CodeAsyncUnsupported),
		string(api.CodeUnknown),
	}
	Register("error", Object(
		"The structured error written to stderr in JSON output mode, under an \"error\" key",
		map[string]*Schema{
			"code":           Enum("Machine-readable error code", codes...),
			"message":        String("Human-readable message, with secrets redacted"),
			"retryable":      Bool("Whether retrying the same request may succeed"),
			"suggestion":     String("Suggested next step"),
			"context":        Map("Extra detail such as status code or request ID"),
			"allowed_values": Array(String("Allowed value"), "Accepted values for a rejected field"),
		},
		"code", "message", "retryable",
	))
}
