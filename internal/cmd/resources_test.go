package cmd

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountsGet(t *testing.T) {
	env := setupTestEnv(t, newRouteHandler().
		On("GET", "/v1/accounts/acct_1", jsonResponse(200, `{"id":"acct_1","name":"Shop","currency":"EUR","status":"active"}`)))

	out, _, err := env.run("accounts", "get", "acct_1")
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "Shop")
	assert.Contains(t, out, "active")
}

func TestAccountsBalance(t *testing.T) {
	env := setupTestEnv(t, newRouteHandler().
		On("GET", "/v1/accounts/acct_1/balance", jsonResponse(200, `{"account_id":"acct_1","available":[{"amount":500,"currency":"EUR"}],"pending":[]}`)))

	out, _, err := env.run("accounts", "balance", "acct_1")
	require.NoError(t, err)
	assert.Contains(t, out, "500 EUR")
	assert.Regexp(t, `pending\s+-`, out)
}

func TestAccountsGet_Unauthorized(t *testing.T) {
	env := setupTestEnv(t, newRouteHandler().
		On("GET", "/v1/accounts/acct_1", jsonResponse(401, `{"message":"bad token"}`)))

	_, stderr, err := env.run("accounts", "get", "acct_1")
	require.Error(t, err)
	assert.Equal(t, exitAuth, ExitCode(err))
	assert.Contains(t, stderr, "merchant auth login")
}

func TestProductsList(t *testing.T) {
	env := setupTestEnv(t, newRouteHandler().
		On("GET", "/v1/products", jsonResponse(200, `{"data":[{"id":"p1","name":"Mug","sku":"MUG-1","price":{"amount":900,"currency":"USD"},"active":true}]}`)))

	out, _, err := env.run("products", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "MUG-1")
	assert.Contains(t, out, "900 USD")

	out, _, err = env.run("products", "list", "-q", "[.[].sku]", "--compact-json")
	require.NoError(t, err)
	assert.Equal(t, "[\"MUG-1\"]\n", out)
}

func TestProductsGet_ReservedCharacters(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/v1/products/SKU%2042%2Bblue%3Fx%3D1", jsonResponse(200, `{"id":"SKU 42+blue?x=1","name":"Blue"}`))
	env := setupTestEnv(t, handler)

	out, _, err := env.run("products", "get", "SKU 42+blue?x=1", "--json")
	require.NoError(t, err)
	var p map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.Equal(t, "Blue", p["name"])
}

func TestTokensGet_MasksDetails(t *testing.T) {
	env := setupTestEnv(t, newRouteHandler().
		On("GET", "/v1/tokens/tok_1", jsonResponse(200, `{"id":"tok_1","type":"card","brand":"visa","last4":"4242","exp_month":3,"exp_year":2030}`)))

	out, _, err := env.run("tokens", "get", "tok_1")
	require.NoError(t, err)
	assert.Contains(t, out, "visa ****4242 exp 03/2030")

	out, _, err = env.run("tokens", "get", "tok_1", "--json")
	require.NoError(t, err)
	var tok map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &tok))
	assert.Equal(t, "card", tok["type"])
}

func TestTokensCreate_CardIsRedactedInDebug(t *testing.T) {
	var got map[string]any
	handler := newRouteHandler().
		On("POST", "/v1/tokens", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&got)
			jsonResponse(201, `{"id":"tok_9","type":"card","brand":"visa","last4":"1111"}`)(w, r)
		})
	env := setupTestEnv(t, handler)

	out, stderr, err := env.run("tokens", "create", "--debug", "--type", "card",
		"--card-number", "4111111111111111", "--exp-month", "12", "--exp-year", "2031", "--cvc", "123")
	require.NoError(t, err)
	assert.Equal(t, "Created card token tok_9\n", out)
	assert.Equal(t, "4111111111111111", got["card_number"], "the API receives the real number")
	assert.Contains(t, stderr, "msg=request")
	assert.NotContains(t, stderr, "4111111111111111")
}

func TestTokensCreate_Validation(t *testing.T) {
	env := setupTestEnv(t, newRouteHandler())

	_, _, err := env.run("tokens", "create", "--type", "cash")
	require.Error(t, err)
	assert.Equal(t, exitUsage, ExitCode(err))

	_, _, err = env.run("tokens", "create", "--type", "card", "--card-number", "4111")
	require.ErrorContains(t, err, "--exp-month")

	_, _, err = env.run("tokens", "create", "--type", "bank_account")
	require.ErrorContains(t, err, "--iban")
	assert.Zero(t, env.requests())
}

func TestTokensDelete(t *testing.T) {
	handler := newRouteHandler().On("DELETE", "/v1/tokens/tok%201", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	env := setupTestEnv(t, handler)

	out, _, err := env.run("tokens", "rm", "tok 1")
	require.NoError(t, err)
	assert.Equal(t, "Deleted token tok 1\n", out)
}

func TestTwoFactorChallenge(t *testing.T) {
	var body map[string]any
	handler := newRouteHandler().
		On("POST", "/v1/two_factor/challenges", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&body)
			jsonResponse(201, `{"id":"ch_1","method":"sms","status":"pending","expires_at":"2026-10-18T12:00:00Z"}`)(w, r)
		})
	env := setupTestEnv(t, handler)

	out, _, err := env.run("2fa", "challenge", "--method", "sms", "--destination", "+1 555 0100")
	require.NoError(t, err)
	assert.Contains(t, out, "ch_1")
	assert.Equal(t, "+1 555 0100", body["destination"])

	_, _, err = env.run("2fa", "challenge", "--method", "sms", "--destination", "call me")
	require.ErrorContains(t, err, "invalid phone format")

	_, _, err = env.run("2fa", "challenge", "--method", "pigeon")
	require.Error(t, err)
	assert.Equal(t, exitUsage, ExitCode(err))
}

func TestTwoFactorVerify_CodeNeverLogged(t *testing.T) {
	var body map[string]any
	handler := newRouteHandler().
		On("POST", "/v1/two_factor/challenges/ch_1/verify", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&body)
			jsonResponse(200, `{"challenge_id":"ch_1","verified":true,"session_id":"sess-secret"}`)(w, r)
		})
	env := setupTestEnv(t, handler)

	out, stderr, err := env.run("2fa", "verify", "ch_1", "--code", "918273", "--debug")
	require.NoError(t, err)
	assert.Equal(t, "918273", body["otp"])
	assert.Contains(t, out, "true")
	assert.NotContains(t, out, "sess-secret")
	assert.NotContains(t, stderr, "918273")
	assert.NotContains(t, stderr, "sess-secret")

	_, _, err = env.run("2fa", "verify", "ch_1")
	require.ErrorContains(t, err, "--code is required")
}
