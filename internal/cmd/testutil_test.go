// Test helpers for running commands against a mock API.
//
// A typical test routes the paths it expects and runs the command with
// captured streams:
//
//	handler := newRouteHandler().
//	    On("GET", "/v1/orders/ord_1", jsonResponse(200, `{"id":"ord_1"}`))
//	env := setupTestEnv(t, handler)
//	out, _, err := env.run("orders", "get", "ord_1")
//
// Routes match the raw request path, so percent-encoding is part of the
// match: a handler registered for "/v1/products/SKU%2042" is not hit by
// "/v1/products/SKU 42".
package cmd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/99designs/keyring"

	"github.com/merchantkit/merchant-cli/internal/config"
	"github.com/merchantkit/merchant-cli/internal/iocontext"
)

// testEnv is a mock API server plus the environment pointing at it.
type testEnv struct {
	t       *testing.T
	server  *httptest.Server
	baseURL string
	hits    *atomic.Int64
}

// setupTestEnv starts a server for handler and points MERCHANT_BASE_URL at
// its /v1 prefix. Private targets are allowed so the loopback server passes
// base URL validation.
func setupTestEnv(t *testing.T, handler http.Handler) *testEnv {
	t.Helper()

	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)

	env := &testEnv{t: t, server: server, baseURL: server.URL + "/v1/", hits: &hits}
	t.Setenv(config.EnvBaseURL, server.URL+"/v1")
	t.Setenv(config.EnvToken, "test-token")
	t.Setenv(config.EnvProfile, "")
	t.Setenv(config.EnvDebug, "")
	t.Setenv(config.EnvRedactKeys, "")
	t.Setenv("MERCHANT_ALLOW_PRIVATE", "1")
	t.Setenv("MERCHANT_OUTPUT", "text")
	return env
}

// run executes the CLI with empty stdin.
func (e *testEnv) run(args ...string) (stdout, stderr string, err error) {
	e.t.Helper()
	return runCLI(e.t, "", args...)
}

// requests returns how many requests reached the server.
func (e *testEnv) requests() int {
	return int(e.hits.Load())
}

// runCLI executes the CLI with captured streams.
func runCLI(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	streams, out, errOut := iocontext.Buffers(stdin)
	ctx := iocontext.WithIO(context.Background(), streams)
	err = Execute(ctx, args)
	return out.String(), errOut.String(), err
}

// withTestKeyring installs one in-memory keyring shared by every open
// until the test ends.
func withTestKeyring(t *testing.T) keyring.Keyring {
	t.Helper()
	ring := keyring.NewArrayKeyring(nil)
	restore := config.SetOpenKeyring(func(keyring.Config) (keyring.Keyring, error) {
		return ring, nil
	})
	t.Cleanup(restore)
	return ring
}

func jsonResponse(statusCode int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_, _ = w.Write([]byte(body))
	}
}

// routeHandler routes "METHOD rawpath" to handlers; anything else is 404.
type routeHandler struct {
	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	seen   []string
}

func newRouteHandler() *routeHandler {
	return &routeHandler{routes: make(map[string]http.HandlerFunc)}
}

// On registers handler for method and the raw, still-encoded path.
func (rh *routeHandler) On(method, path string, handler http.HandlerFunc) *routeHandler {
	rh.routes[method+" "+path] = handler
	return rh
}

// Seen returns "METHOD rawpath" for every request received, in order.
func (rh *routeHandler) Seen() []string {
	rh.mu.Lock()
	defer rh.mu.Unlock()
	return append([]string(nil), rh.seen...)
}

func (rh *routeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path, _, _ := strings.Cut(r.RequestURI, "?")
	key := r.Method + " " + path

	rh.mu.Lock()
	rh.seen = append(rh.seen, key)
	handler, ok := rh.routes[key]
	rh.mu.Unlock()

	if ok {
		handler(w, r)
		return
	}
	jsonResponse(http.StatusNotFound, `{"error":{"code":"not_found","message":"no route"}}`)(w, r)
}

// jsonPart drops any warning lines written before a JSON document.
func jsonPart(s string) string {
	if i := strings.IndexAny(s, "{["); i >= 0 {
		return s[i:]
	}
	return s
}
