package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCommand(t *testing.T) {
	env := setupTestEnv(t, newRouteHandler())

	tests := []struct {
		endpoint string
		want     string
	}{
		{"products/SKU 42", env.baseURL + "products/SKU%2042"},
		{"/orders/ord_1", env.baseURL + "orders/ord_1"},
		{"orders?status=open", env.baseURL + "orders?status=open"},
		{"café/100%", env.baseURL + "caf%C3%A9/100%25"},
		{"", env.baseURL},
	}
	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			out, _, err := env.run("resolve", tt.endpoint)
			require.NoError(t, err)
			assert.Equal(t, tt.want+"\n", out)
		})
	}
	assert.Zero(t, env.requests(), "resolve must not send anything")
}

func TestResolveCommand_JSON(t *testing.T) {
	env := setupTestEnv(t, newRouteHandler())

	out, _, err := env.run("resolve", "orders/a b", "--json")
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "orders/a b", got["endpoint"])
	assert.Equal(t, env.baseURL+"orders/a%20b", got["url"])
}

func TestResolveCommand_Rejects(t *testing.T) {
	env := setupTestEnv(t, newRouteHandler())

	_, stderr, err := env.run("resolve", "orders/%2e%2e/%2e%2e/admin")
	require.Error(t, err)
	assert.Equal(t, exitUsage, ExitCode(err))
	assert.Contains(t, stderr, "Invalid endpoint")
}

func TestResolveCommand_JSONError(t *testing.T) {
	env := setupTestEnv(t, newRouteHandler())

	_, stderr, err := env.run("resolve", "http://evil.example/", "--json")
	require.Error(t, err)

	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(jsonPart(stderr)), &payload))
	assert.Equal(t, "invalid_endpoint", payload.Error.Code)
}
