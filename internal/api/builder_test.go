package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestBuildRequest_Defaults(t *testing.T) {
	opts := requestOptions{token: "tok", userAgent: "merchant-cli/1.2.3"}
	req, err := buildRequest(context.Background(), http.MethodPost, mustURL(t, "https://example.com/api/orders"), nil, strings.NewReader(`{}`), opts)
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
	assert.Equal(t, "merchant-cli/1.2.3", req.Header.Get("User-Agent"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Equal(t, "application/json", req.Header.Get("Accept"))
}

func TestBuildRequest_NoBodyNoContentType(t *testing.T) {
	req, err := buildRequest(context.Background(), http.MethodGet, mustURL(t, "https://example.com/"), nil, nil, requestOptions{})
	require.NoError(t, err)
	assert.Empty(t, req.Header.Get("Content-Type"))
	assert.Empty(t, req.Header.Get("Authorization"), "no token configured")
}

func TestBuildRequest_CallerHeadersWin(t *testing.T) {
	headers := http.Header{
		"Authorization": {"Basic abc"},
		"Accept":        {"text/csv"},
		"Content-Type":  {"application/x-www-form-urlencoded"},
	}
	req, err := buildRequest(context.Background(), http.MethodPost, mustURL(t, "https://example.com/"), headers, strings.NewReader("a=1"), requestOptions{token: "tok"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Basic abc"}, req.Header.Values("Authorization"))
	assert.Equal(t, "text/csv", req.Header.Get("Accept"))
	assert.Equal(t, "application/x-www-form-urlencoded", req.Header.Get("Content-Type"))
}

func TestBuildRequest_MergesCaseVariantHeaders(t *testing.T) {
	headers := http.Header{
		"x-test":        {"lower"},
		"X-Test":        {"canonical"},
		"authorization": {"Basic abc"},
	}
	req, err := buildRequest(context.Background(), http.MethodGet, mustURL(t, "https://example.com/"), headers, nil, requestOptions{token: "tok"})
	require.NoError(t, err)

	assert.Equal(t, []string{"canonical", "lower"}, req.Header.Values("X-Test"))
	assert.Equal(t, []string{"Basic abc"}, req.Header.Values("Authorization"), "caller header replaces the token")
	assert.NotContains(t, req.Header, "x-test")
	assert.Equal(t, []string{"lower"}, headers["x-test"], "input must not be modified")
}

func TestBuildRequest_StripsCRLF(t *testing.T) {
	headers := http.Header{
		"X-Note\r\nX-Injected": {"a\r\nX-Evil: 1"},
	}
	opts := requestOptions{token: "tok\r\nX-Evil: 2", userAgent: "ua\n"}
	req, err := buildRequest(context.Background(), http.MethodGet, mustURL(t, "https://example.com/"), headers, nil, opts)
	require.NoError(t, err)

	for name, values := range req.Header {
		assert.NotContains(t, name, "\r")
		assert.NotContains(t, name, "\n")
		for _, v := range values {
			assert.NotContains(t, v, "\r", "header %s", name)
			assert.NotContains(t, v, "\n", "header %s", name)
		}
	}
	assert.Equal(t, "Bearer tokX-Evil: 2", req.Header.Get("Authorization"))
	assert.Equal(t, "ua", req.Header.Get("User-Agent"))
	assert.Empty(t, req.Header.Get("X-Evil"))
}

func TestBuildRequest_IdempotencyKey(t *testing.T) {
	opts := requestOptions{idempotencyKey: "key-1"}
	post, err := buildRequest(context.Background(), http.MethodPost, mustURL(t, "https://example.com/"), nil, nil, opts)
	require.NoError(t, err)
	assert.Equal(t, "key-1", post.Header.Get("Idempotency-Key"))

	get, err := buildRequest(context.Background(), http.MethodGet, mustURL(t, "https://example.com/"), nil, nil, opts)
	require.NoError(t, err)
	assert.Empty(t, get.Header.Get("Idempotency-Key"))
}

func TestBuildRequest_IdempotencyKeyFunc(t *testing.T) {
	n := 0
	opts := requestOptions{newIdempotencyKey: func() string {
		n++
		return fmt.Sprintf("gen-%d", n)
	}}
	for _, want := range []string{"gen-1", "gen-2"} {
		req, err := buildRequest(context.Background(), http.MethodPost, mustURL(t, "https://example.com/"), nil, nil, opts)
		require.NoError(t, err)
		assert.Equal(t, want, req.Header.Get("Idempotency-Key"))
	}

	_, err := buildRequest(context.Background(), http.MethodGet, mustURL(t, "https://example.com/"), nil, nil, opts)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "no key generated for safe methods")

	opts.idempotencyKey = "fixed"
	req, err := buildRequest(context.Background(), http.MethodPut, mustURL(t, "https://example.com/"), nil, nil, opts)
	require.NoError(t, err)
	assert.Equal(t, "fixed", req.Header.Get("Idempotency-Key"))
}

func TestBuildRequest_InvalidMethod(t *testing.T) {
	_, err := buildRequest(context.Background(), "BAD METHOD", mustURL(t, "https://example.com/"), nil, nil, requestOptions{})
	require.Error(t, err)
}

func TestBuildRequest_FreshEachTime(t *testing.T) {
	headers := http.Header{"X-Trace": {"1"}}
	u := mustURL(t, "https://example.com/")
	a, err := buildRequest(context.Background(), http.MethodGet, u, headers, nil, requestOptions{})
	require.NoError(t, err)
	b, err := buildRequest(context.Background(), http.MethodGet, u, headers, nil, requestOptions{})
	require.NoError(t, err)

	a.Header.Set("X-Trace", "changed")
	assert.Equal(t, "1", b.Header.Get("X-Trace"))
	assert.Equal(t, []string{"1"}, headers["X-Trace"], "caller headers must not be modified")
}
