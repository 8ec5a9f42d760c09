package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/merchantkit/merchant-cli/internal/endpoint"
)

// Token types, as sent in the "type" field.
const (
	TokenTypeCard        = "card"
	TokenTypeBankAccount = "bank_account"
	TokenTypeWallet      = "wallet"
)

// Token is a stored payment instrument. The concrete type is one of
// *CardToken, *BankAccountToken or *WalletToken.
type Token interface {
	TokenID() string
	TokenType() string
	isToken()
}

// CardToken is a tokenized payment card.
type CardToken struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Brand    string `json:"brand"`
	Last4    string `json:"last4"`
	ExpMonth int    `json:"exp_month"`
	ExpYear  int    `json:"exp_year"`
}

// BankAccountToken is a tokenized bank account.
type BankAccountToken struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	BankName string `json:"bank_name"`
	Country  string `json:"country"`
	Last4    string `json:"last4"`
}

// WalletToken is a token issued by a wallet provider.
type WalletToken struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Provider string `json:"provider"`
	Email    string `json:"email,omitempty"`
}

func (t *CardToken) TokenID() string   { return t.ID }
func (t *CardToken) TokenType() string { return TokenTypeCard }
func (*CardToken) isToken()            {}

func (t *BankAccountToken) TokenID() string   { return t.ID }
func (t *BankAccountToken) TokenType() string { return TokenTypeBankAccount }
func (*BankAccountToken) isToken()            {}

func (t *WalletToken) TokenID() string   { return t.ID }
func (t *WalletToken) TokenType() string { return TokenTypeWallet }
func (*WalletToken) isToken()            {}

// UnknownTokenTypeError is returned when a token's "type" has no variant.
type UnknownTokenTypeError struct {
	Type string
}

func (e *UnknownTokenTypeError) Error() string {
	return fmt.Sprintf("unknown token type %q", e.Type)
}

// TokenValue wraps a Token for JSON decoding.
type TokenValue struct {
	Token Token
}

// UnmarshalJSON picks the variant from the "type" field.
func (v *TokenValue) UnmarshalJSON(data []byte) error {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}

	var tok Token
	switch probe.Type {
	case TokenTypeCard:
		tok = &CardToken{}
	case TokenTypeBankAccount:
		tok = &BankAccountToken{}
	case TokenTypeWallet:
		tok = &WalletToken{}
	default:
		return &UnknownTokenTypeError{Type: probe.Type}
	}
	if err := json.Unmarshal(data, tok); err != nil {
		return err
	}
	v.Token = tok
	return nil
}

// MarshalJSON encodes the wrapped variant with its "type" field set.
func (v TokenValue) MarshalJSON() ([]byte, error) {
	switch t := v.Token.(type) {
	case nil:
		return []byte("null"), nil
	case *CardToken:
		cp := *t
		cp.Type = TokenTypeCard
		return json.Marshal(cp)
	case *BankAccountToken:
		cp := *t
		cp.Type = TokenTypeBankAccount
		return json.Marshal(cp)
	case *WalletToken:
		cp := *t
		cp.Type = TokenTypeWallet
		return json.Marshal(cp)
	default:
		return nil, fmt.Errorf("unsupported token %T", v.Token)
	}
}

// CreateTokenRequest is the payload for Tokens().Create. Card fields are
// sent once and never logged.
type CreateTokenRequest struct {
	Type       string `json:"type"`
	CardNumber string `json:"card_number,omitempty"`
	ExpMonth   int    `json:"exp_month,omitempty"`
	ExpYear    int    `json:"exp_year,omitempty"`
	CVC        string `json:"cvc,omitempty"`
	IBAN       string `json:"iban,omitempty"`
	Provider   string `json:"provider,omitempty"`
	WalletID   string `json:"wallet_id,omitempty"`
}

// Get retrieves a token.
func (s TokensService) Get(ctx context.Context, id string) (Token, error) {
	return getToken(ctx, s, id)
}

func getToken(ctx context.Context, r Requester, id string) (Token, error) {
	path, err := endpoint.Path("tokens", id)
	if err != nil {
		return nil, err
	}
	var result TokenValue
	if err := r.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.Token, nil
}

// Create tokenizes a payment instrument.
func (s TokensService) Create(ctx context.Context, req CreateTokenRequest) (Token, error) {
	return createToken(ctx, s, req)
}

func createToken(ctx context.Context, r Requester, req CreateTokenRequest) (Token, error) {
	switch req.Type {
	case TokenTypeCard, TokenTypeBankAccount, TokenTypeWallet:
	default:
		return nil, NewValidationError("type", req.Type, []string{TokenTypeCard, TokenTypeBankAccount, TokenTypeWallet})
	}
	var result TokenValue
	if err := r.do(ctx, http.MethodPost, "tokens", req, &result); err != nil {
		return nil, err
	}
	return result.Token, nil
}

// Delete removes a token.
func (s TokensService) Delete(ctx context.Context, id string) error {
	return deleteToken(ctx, s, id)
}

func deleteToken(ctx context.Context, r Requester, id string) error {
	path, err := endpoint.Path("tokens", id)
	if err != nil {
		return err
	}
	return r.do(ctx, http.MethodDelete, path, nil, nil)
}
