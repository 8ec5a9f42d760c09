package api

import (
	"crypto/tls"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single request made through HTTPTransport.
const DefaultTimeout = 30 * time.Second

// Transport sends a fully built request. Implementations must not modify req.
type Transport interface {
	Do(req *http.Request) (*http.Response, error)
}

// AsyncTransport is implemented by transports that can send a request
// without blocking the caller. The channel receives exactly one Result.
type AsyncTransport interface {
	DoAsync(req *http.Request) <-chan Result
}

// Result is the outcome of an asynchronous send.
type Result struct {
	Response *http.Response
	Err      error
}

// HTTPTransport is the default Transport, backed by an *http.Client.
type HTTPTransport struct {
	HTTP *http.Client
}

var (
	_ Transport      = (*HTTPTransport)(nil)
	_ AsyncTransport = (*HTTPTransport)(nil)
)

// NewHTTPTransport returns a transport that requires TLS 1.2 or newer and
// gives up after timeout. A zero timeout uses DefaultTimeout.
func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	baseTransport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		baseTransport = &http.Transport{}
	}
	transport := baseTransport.Clone()
	if transport.TLSClientConfig == nil {
		transport.TLSClientConfig = &tls.Config{}
	} else {
		transport.TLSClientConfig = transport.TLSClientConfig.Clone()
	}
	transport.TLSClientConfig.MinVersion = tls.VersionTLS12
	transport.TLSClientConfig.InsecureSkipVerify = false

	return &HTTPTransport{
		HTTP: &http.Client{
			Timeout:   timeout,
			Transport: transport,
			// Redirects could leave the base endpoint; surface them instead.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Do sends req with the underlying client.
func (t *HTTPTransport) Do(req *http.Request) (*http.Response, error) {
	return t.client().Do(req)
}

// DoAsync sends req on a new goroutine.
func (t *HTTPTransport) DoAsync(req *http.Request) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		resp, err := t.client().Do(req)
		ch <- Result{Response: resp, Err: err}
	}()
	return ch
}

func (t *HTTPTransport) client() *http.Client {
	if t == nil || t.HTTP == nil {
		return http.DefaultClient
	}
	return t.HTTP
}
