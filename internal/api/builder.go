package api

import (
	"context"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"
)

// headerSanitizer removes CR and LF so no value can start a new header line.
var headerSanitizer = strings.NewReplacer("\r", "", "\n", "")

func sanitizeHeader(s string) string {
	return headerSanitizer.Replace(s)
}

// requestOptions are the client-level values every request carries.
type requestOptions struct {
	token          string
	userAgent      string
	idempotencyKey string

	// newIdempotencyKey, when set and idempotencyKey is empty, yields a
	// fresh key per request.
	newIdempotencyKey func() string
}

func (o requestOptions) idempotency() string {
	if o.idempotencyKey != "" || o.newIdempotencyKey == nil {
		return o.idempotencyKey
	}
	return o.newIdempotencyKey()
}

// buildRequest assembles a new request for an already resolved URL.
//
// Header precedence, lowest to highest: User-Agent and Authorization from
// opts, then caller headers. Content-Type defaults to application/json when
// a body is present and Accept defaults to application/json.
func buildRequest(ctx context.Context, method string, u *url.URL, headers http.Header, body io.Reader, opts requestOptions) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if opts.userAgent != "" {
		req.Header.Set("User-Agent", sanitizeHeader(opts.userAgent))
	}
	if token := sanitizeHeader(opts.token); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if !isSafeMethod(method) {
		if key := opts.idempotency(); key != "" {
			req.Header.Set("Idempotency-Key", sanitizeHeader(key))
		}
	}

	for name, values := range callerHeaders(headers) {
		req.Header[name] = values
	}

	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	return req, nil
}

// callerHeaders sanitizes h and merges keys that share a canonical name,
// such as "x-test" and "X-Test". Raw keys are visited in sorted order so the
// merged value order is stable.
func callerHeaders(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for _, name := range slices.Sorted(maps.Keys(h)) {
		clean := sanitizeHeader(name)
		if clean == "" {
			continue
		}
		for _, v := range h[name] {
			out.Add(clean, sanitizeHeader(v))
		}
	}
	return out
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
