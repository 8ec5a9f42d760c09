package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/merchantkit/merchant-cli/internal/debug"
	"github.com/merchantkit/merchant-cli/internal/endpoint"
	"github.com/merchantkit/merchant-cli/internal/redact"
)

var errNoResponse = errors.New("transport returned no response")

// DefaultUserAgent identifies the client when Config.UserAgent is empty.
const DefaultUserAgent = "merchant-cli/dev"

// Config configures a Client. Only BaseURL is required.
type Config struct {
	BaseURL        string
	Token          string
	UserAgent      string
	IdempotencyKey string
	// IdempotencyKeyFunc generates a key per write request when
	// IdempotencyKey is empty.
	IdempotencyKeyFunc func() string

	// Transport defaults to NewHTTPTransport(Timeout).
	Transport Transport
	Timeout   time.Duration

	// Logger receives debug records; defaults to slog.Default().
	Logger *slog.Logger
	// Debug logs every request and response. Debug logging is also
	// enabled per call by debug.WithDebug on the request context.
	Debug    bool
	Redactor *redact.Redactor
}

// Client sends requests to endpoints below a fixed base URL.
//
// A Client is immutable after New and safe for concurrent use. It keeps no
// per-request state: every call builds a new request and returns its own
// Response.
type Client struct {
	base      endpoint.Base
	opts      requestOptions
	transport Transport
	logger    *slog.Logger
	debug     bool
	redactor  *redact.Redactor
}

var (
	_ Requester = (*Client)(nil)
	_ Sender    = (*Client)(nil)
)

// New validates cfg.BaseURL and returns a Client.
func New(cfg Config) (*Client, error) {
	base, err := endpoint.ParseBase(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		base: base,
		opts: requestOptions{
			token:             cfg.Token,
			userAgent:         cfg.UserAgent,
			idempotencyKey:    cfg.IdempotencyKey,
			newIdempotencyKey: cfg.IdempotencyKeyFunc,
		},
		transport: cfg.Transport,
		logger:    cfg.Logger,
		debug:     cfg.Debug,
		redactor:  cfg.Redactor,
	}
	if c.opts.userAgent == "" {
		c.opts.userAgent = DefaultUserAgent
	}
	if c.transport == nil {
		c.transport = NewHTTPTransport(cfg.Timeout)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.redactor == nil {
		c.redactor = redact.New()
	}
	return c, nil
}

// BaseURL returns the base endpoint as a string.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Redactor returns the redactor used for debug logs and errors.
func (c *Client) Redactor() *redact.Redactor {
	return c.redactor
}

// Resolve encodes a relative endpoint and resolves it against the base URL
// without sending anything.
func (c *Client) Resolve(rawEndpoint string) (string, error) {
	u, err := c.base.Join(rawEndpoint)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// Send issues one request and returns the buffered response. Any status
// code is returned as a Response; only failures to obtain a response are
// errors (*TransportError), besides endpoint rejection before anything is
// sent.
func (c *Client) Send(ctx context.Context, method, rawEndpoint string, headers http.Header, body []byte) (*Response, error) {
	req, err := c.newRequest(ctx, method, rawEndpoint, headers, body)
	if err != nil {
		return nil, err
	}
	c.logRequest(ctx, req, body)

	start := time.Now()
	resp, err := c.transport.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, req, err)
	}
	return c.readResponse(ctx, req, resp, start)
}

// SendAsync validates and builds the request like Send, then hands it to the
// transport without blocking. Endpoint errors and ErrAsyncUnsupported are
// returned immediately; everything else is delivered through the Future.
func (c *Client) SendAsync(ctx context.Context, method, rawEndpoint string, headers http.Header, body []byte) (*Future[*Response], error) {
	async, ok := c.transport.(AsyncTransport)
	if !ok {
		return nil, ErrAsyncUnsupported
	}
	req, err := c.newRequest(ctx, method, rawEndpoint, headers, body)
	if err != nil {
		return nil, err
	}
	c.logRequest(ctx, req, body)

	start := time.Now()
	results := async.DoAsync(req)
	future := newFuture[*Response]()
	go func() {
		// The request carries ctx, so cancellation is up to the transport.
		res, ok := <-results
		if !ok || (res.Err == nil && res.Response == nil) {
			res.Err = errNoResponse
		}
		if res.Err != nil {
			future.complete(nil, c.transportError(ctx, req, res.Err))
			return
		}
		future.complete(c.readResponse(ctx, req, res.Response, start))
	}()
	return future, nil
}

// SendStream issues one request and returns the unread response; the caller
// must close its body. A body preview is logged only when body is an
// io.ReadSeeker, which is rewound afterwards.
func (c *Client) SendStream(ctx context.Context, method, rawEndpoint string, headers http.Header, body io.Reader) (*http.Response, error) {
	u, err := c.base.Join(rawEndpoint)
	if err != nil {
		return nil, err
	}
	req, err := buildRequest(ctx, method, u, headers, body, c.opts)
	if err != nil {
		return nil, err
	}
	if c.debugEnabled(ctx) {
		c.logRequest(ctx, req, peekBody(body))
	}

	start := time.Now()
	resp, err := c.transport.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, req, err)
	}
	if c.debugEnabled(ctx) {
		c.logger.DebugContext(ctx, "response",
			"method", req.Method,
			"url", c.redactor.URL(req.URL),
			"status", resp.StatusCode,
			"headers", c.redactor.Headers(resp.Header),
			"duration", time.Since(start),
		)
	}
	return resp, nil
}

// newRequest runs the encode, resolve and build steps.
func (c *Client) newRequest(ctx context.Context, method, rawEndpoint string, headers http.Header, body []byte) (*http.Request, error) {
	u, err := c.base.Join(rawEndpoint)
	if err != nil {
		return nil, err
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	return buildRequest(ctx, method, u, headers, reader, c.opts)
}

func (c *Client) readResponse(ctx context.Context, req *http.Request, resp *http.Response, start time.Time) (*Response, error) {
	respBody, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, c.transportError(ctx, req, fmt.Errorf("failed to read response: %w", err))
	}

	out := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
	}
	if c.debugEnabled(ctx) {
		c.logger.DebugContext(ctx, "response",
			"method", req.Method,
			"url", c.redactor.URL(req.URL),
			"status", resp.StatusCode,
			"headers", c.redactor.Headers(resp.Header),
			"body", c.redactor.Body(resp.Header.Get("Content-Type"), respBody),
			"duration", time.Since(start),
		)
	}
	return out, nil
}

func (c *Client) transportError(ctx context.Context, req *http.Request, err error) error {
	terr := &TransportError{
		Method:  req.Method,
		URL:     c.redactor.URL(req.URL),
		Message: c.redactor.Error(err),
		Cause:   err,
	}
	if c.debugEnabled(ctx) {
		c.logger.DebugContext(ctx, "request failed", "method", terr.Method, "url", terr.URL, "error", terr.Message)
	}
	return terr
}

func (c *Client) logRequest(ctx context.Context, req *http.Request, body []byte) {
	if !c.debugEnabled(ctx) {
		return
	}
	c.logger.DebugContext(ctx, "request",
		"method", req.Method,
		"url", c.redactor.URL(req.URL),
		"headers", c.redactor.Headers(req.Header),
		"body", c.redactor.Body(req.Header.Get("Content-Type"), body),
	)
}

func (c *Client) debugEnabled(ctx context.Context) bool {
	return c.debug || debug.IsEnabled(ctx)
}

// peekBody reads a seekable body for logging and rewinds it. Other readers
// are left alone and yield no preview.
func peekBody(body io.Reader) []byte {
	rs, ok := body.(io.ReadSeeker)
	if !ok {
		return nil
	}
	pos, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil
	}
	data, _ := io.ReadAll(io.LimitReader(rs, redact.DefaultMaxPreview+1))
	if _, err := rs.Seek(pos, io.SeekStart); err != nil {
		return nil
	}
	return data
}

// do is the typed-layer round trip: JSON-encode body, send, turn a non-2xx
// status into *APIError and decode a 2xx body into result.
func (c *Client) do(ctx context.Context, method, rawEndpoint string, body, result any) error {
	payload, err := marshalBody(body)
	if err != nil {
		return err
	}
	resp, err := c.Send(ctx, method, rawEndpoint, nil, payload)
	if err != nil {
		return err
	}
	return c.decode(resp, result)
}

// doAsync is do on top of SendAsync; decoding happens when the response arrives.
func doAsync[T any](ctx context.Context, c *Client, method, rawEndpoint string, body any) (*Future[*T], error) {
	payload, err := marshalBody(body)
	if err != nil {
		return nil, err
	}
	f, err := c.SendAsync(ctx, method, rawEndpoint, nil, payload)
	if err != nil {
		return nil, err
	}
	return thenFuture(f, func(resp *Response) (*T, error) {
		var out T
		if err := c.decode(resp, &out); err != nil {
			return nil, err
		}
		return &out, nil
	}), nil
}

func (c *Client) decode(resp *Response, result any) error {
	if err := resp.Err(c.redactor); err != nil {
		return err
	}
	if result != nil && len(resp.Body) > 0 {
		return resp.JSON(result)
	}
	return nil
}

func marshalBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return payload, nil
}
