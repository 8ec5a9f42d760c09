package cmd

import (
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIdempotencyKey(t *testing.T) {
	a, b := newIdempotencyKey(), newIdempotencyKey()
	assert.NotEqual(t, a, b)
	require.True(t, strings.HasPrefix(a, idempotencyKeyPrefix))
	_, err := uuid.Parse(strings.TrimPrefix(a, idempotencyKeyPrefix))
	assert.NoError(t, err)
}

func TestIdempotencyOptions(t *testing.T) {
	key, gen := idempotencyOptions("")
	assert.Empty(t, key)
	assert.Nil(t, gen)

	key, gen = idempotencyOptions("  order-42 ")
	assert.Equal(t, "order-42", key)
	assert.Nil(t, gen)

	key, gen = idempotencyOptions("AUTO")
	assert.Empty(t, key)
	require.NotNil(t, gen)
	assert.True(t, strings.HasPrefix(gen(), idempotencyKeyPrefix))
}

func TestIdempotencyKey_AutoPerRequest(t *testing.T) {
	var keys []string
	handler := newRouteHandler().
		On("POST", "/v1/orders/ord_1/cancel", func(w http.ResponseWriter, r *http.Request) {
			keys = append(keys, r.Header.Get("Idempotency-Key"))
			jsonResponse(200, `{"id":"ord_1"}`)(w, r)
		}).
		On("GET", "/v1/orders/ord_1", func(w http.ResponseWriter, r *http.Request) {
			keys = append(keys, r.Header.Get("Idempotency-Key"))
			jsonResponse(200, `{"id":"ord_1"}`)(w, r)
		})
	env := setupTestEnv(t, handler)

	_, _, err := env.run("orders", "cancel", "ord_1", "--idempotency-key", "auto")
	require.NoError(t, err)
	_, _, err = env.run("orders", "get", "ord_1", "--idempotency-key", "auto")
	require.NoError(t, err)

	require.Len(t, keys, 2)
	assert.True(t, strings.HasPrefix(keys[0], idempotencyKeyPrefix))
	assert.Empty(t, keys[1], "safe methods carry no key")
}
