// Package dryrun previews write requests instead of sending them.
package dryrun

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"sync"

	"github.com/merchantkit/merchant-cli/internal/api"
	"github.com/merchantkit/merchant-cli/internal/outfmt"
	"github.com/merchantkit/merchant-cli/internal/redact"
)

type contextKey string

const dryRunKey contextKey = "dry_run_enabled"

// ErrSkipped is returned by Transport for a request it previewed instead
// of sending.
var ErrSkipped = errors.New("dry run: request not sent")

// WithDryRun returns a context with dry-run mode enabled/disabled.
func WithDryRun(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, dryRunKey, enabled)
}

// IsEnabled returns true if dry-run mode is enabled.
func IsEnabled(ctx context.Context) bool {
	if v, ok := ctx.Value(dryRunKey).(bool); ok {
		return v
	}
	return false
}

// Preview describes a request that would have been sent. Headers and body
// are already redacted.
type Preview struct {
	Method  string              `json:"method"`
	URL     string              `json:"url"`
	Headers map[string][]string `json:"headers,omitempty"`
	Body    string              `json:"body,omitempty"`
}

// NewPreview captures req through r. The request body is read and
// replaced so req stays sendable.
func NewPreview(req *http.Request, r *redact.Redactor) (*Preview, error) {
	if r == nil {
		r = redact.New()
	}
	p := &Preview{
		Method:  req.Method,
		URL:     r.URL(req.URL),
		Headers: r.Headers(req.Header),
	}
	if req.Body != nil && req.Body != http.NoBody {
		body, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read request body: %w", err)
		}
		req.Body = io.NopCloser(bytes.NewReader(body))
		p.Body = r.Body(req.Header.Get("Content-Type"), body)
	}
	return p, nil
}

// Write outputs the preview to the writer
func (p *Preview) Write(w io.Writer) {
	_, _ = fmt.Fprintf(w, "[DRY-RUN] Would send %s %s\n", p.Method, p.URL)
	_, _ = fmt.Fprintf(w, "───────────────────────────────────────\n")

	if len(p.Headers) > 0 {
		names := make([]string, 0, len(p.Headers))
		for k := range p.Headers {
			names = append(names, k)
		}
		slices.Sort(names)
		for _, k := range names {
			for _, v := range p.Headers[k] {
				_, _ = fmt.Fprintf(w, "  %s: %s\n", k, v)
			}
		}
	}

	if p.Body != "" {
		_, _ = fmt.Fprintf(w, "\n%s\n", p.Body)
	}

	_, _ = fmt.Fprintf(w, "───────────────────────────────────────\n")
	_, _ = fmt.Fprintln(w, "No changes made (dry-run mode)")
}

// Transport sends safe requests (GET, HEAD, OPTIONS) through Next and
// writes a Preview of every other request to Out, returning ErrSkipped.
type Transport struct {
	Next     api.Transport
	Out      io.Writer
	Redactor *redact.Redactor
	// JSON writes previews as JSON objects instead of text.
	JSON bool

	mu sync.Mutex
}

var (
	_ api.Transport      = (*Transport)(nil)
	_ api.AsyncTransport = (*Transport)(nil)
)

// Do implements api.Transport.
func (t *Transport) Do(req *http.Request) (*http.Response, error) {
	if isSafe(req.Method) {
		return t.Next.Do(req)
	}
	return nil, t.preview(req)
}

// DoAsync implements api.AsyncTransport. Safe requests use Next's async
// path when it has one.
func (t *Transport) DoAsync(req *http.Request) <-chan api.Result {
	if async, ok := t.Next.(api.AsyncTransport); ok && isSafe(req.Method) {
		return async.DoAsync(req)
	}
	ch := make(chan api.Result, 1)
	go func() {
		resp, err := t.Do(req)
		ch <- api.Result{Response: resp, Err: err}
	}()
	return ch
}

func (t *Transport) preview(req *http.Request) error {
	p, err := NewPreview(req, t.Redactor)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.JSON {
		if err := outfmt.WriteJSON(t.Out, p, false); err != nil {
			return err
		}
	} else {
		p.Write(t.Out)
	}
	return ErrSkipped
}

func isSafe(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
