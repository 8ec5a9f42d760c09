package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/merchantkit/merchant-cli/internal/endpoint"
)

// ErrAsyncUnsupported is returned by SendAsync when the client's transport
// does not implement AsyncTransport.
var ErrAsyncUnsupported = errors.New("transport does not support asynchronous requests")

// TransportError reports a request that produced no HTTP response, or whose
// response body could not be read. URL and Message are redacted; Cause keeps
// the original error for errors.Is and errors.As.
type TransportError struct {
	Method  string
	URL     string
	Message string
	Cause   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Method, e.URL, e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// APIError is a decoded error payload returned by the API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	RequestID  string
	RateLimit  *RateLimit
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("API error (status %d, %s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

// IsInvalidEndpoint checks if the error is a rejected endpoint.
func IsInvalidEndpoint(err error) bool {
	return endpoint.IsInvalid(err)
}

// IsTransportError checks if the error is a transport failure.
func IsTransportError(err error) bool {
	var e *TransportError
	return errors.As(err, &e)
}

// IsAPIError checks if the error is a decoded API error payload.
func IsAPIError(err error) bool {
	var e *APIError
	return errors.As(err, &e)
}

// IsNotFoundError checks if the error indicates a resource was not found.
func IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound ||
			strings.EqualFold(apiErr.Code, "not_found")
	}
	return false
}
