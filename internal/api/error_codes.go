package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/merchantkit/merchant-cli/internal/endpoint"
)

// ErrorCode represents machine-readable error codes for scripted error handling.
type ErrorCode string

const (
	// CodeBadRequest indicates a malformed request (HTTP 400).
	CodeBadRequest ErrorCode = "bad_request"
	// CodeUnauthorized indicates authentication is required or failed (HTTP 401).
	CodeUnauthorized ErrorCode = "unauthorized"
	// CodeForbidden indicates the caller lacks permission (HTTP 403).
	CodeForbidden ErrorCode = "forbidden"
	// CodeNotFound indicates the requested resource does not exist (HTTP 404).
	CodeNotFound ErrorCode = "not_found"
	// CodeConflict indicates a conflict with current state (HTTP 409).
	CodeConflict ErrorCode = "conflict"
	// CodeValidation indicates input validation failed (HTTP 422).
	CodeValidation ErrorCode = "validation_failed"
	// CodeRateLimited indicates too many requests (HTTP 429).
	CodeRateLimited ErrorCode = "rate_limited"
	// CodeServerError indicates an internal server error (HTTP 5xx).
	CodeServerError ErrorCode = "server_error"
	// CodeTimeout indicates the request timed out.
	CodeTimeout ErrorCode = "timeout"
	// CodeInvalidEndpoint indicates an endpoint was rejected before sending.
	CodeInvalidEndpoint ErrorCode = "invalid_endpoint"
	// CodeTransport indicates no response was received.
	CodeTransport ErrorCode = "transport"
	// CodeAsyncUnsupported indicates the transport cannot send asynchronously.
	CodeAsyncUnsupported ErrorCode = "async_unsupported"
	// CodeUnknown indicates an unknown or unclassified error.
	CodeUnknown ErrorCode = "unknown"
)

// IsRetryable returns true if errors with this code may succeed on retry.
func (c ErrorCode) IsRetryable() bool {
	switch c {
	case CodeRateLimited, CodeServerError, CodeTimeout, CodeTransport:
		return true
	default:
		return false
	}
}

// Suggestion returns a human-readable suggestion for resolving this error.
func (c ErrorCode) Suggestion() string {
	switch c {
	case CodeUnauthorized:
		return "Run 'merchant auth login' to store a token"
	case CodeForbidden:
		return "Check the token's permissions"
	case CodeNotFound:
		return "Verify the resource ID exists"
	case CodeRateLimited:
		return "Wait a moment and retry"
	case CodeValidation:
		return "Check the input values"
	case CodeBadRequest:
		return "Check the request format and parameters"
	case CodeConflict:
		return "The resource state may have changed; refresh and retry"
	case CodeServerError:
		return "The server encountered an error; try again later"
	case CodeTimeout:
		return "The request timed out; check network connectivity and retry"
	case CodeInvalidEndpoint:
		return "Endpoints are relative paths below the base URL; do not use '..', '%2F' or a scheme"
	case CodeTransport:
		return "Check network connectivity and the base URL"
	case CodeAsyncUnsupported:
		return "Retry without --async"
	default:
		return ""
	}
}

// ErrorCodeFromStatus maps an HTTP status code to an ErrorCode.
func ErrorCodeFromStatus(statusCode int) ErrorCode {
	switch statusCode {
	case 400:
		return CodeBadRequest
	case 401:
		return CodeUnauthorized
	case 403:
		return CodeForbidden
	case 404:
		return CodeNotFound
	case 409:
		return CodeConflict
	case 422:
		return CodeValidation
	case 429:
		return CodeRateLimited
	default:
		if statusCode >= 500 && statusCode < 600 {
			return CodeServerError
		}
		return CodeUnknown
	}
}

// StructuredError provides machine-readable error information.
type StructuredError struct {
	Code          ErrorCode      `json:"code"`
	Message       string         `json:"message"`
	Retryable     bool           `json:"retryable"`
	Suggestion    string         `json:"suggestion,omitempty"`
	Context       map[string]any `json:"context,omitempty"`
	AllowedValues []string       `json:"allowed_values,omitempty"`
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// MarshalJSON implements custom JSON marshaling.
func (e *StructuredError) MarshalJSON() ([]byte, error) {
	type Alias StructuredError
	return json.Marshal((*Alias)(e))
}

// NewStructuredError creates a StructuredError from an ErrorCode and message.
func NewStructuredError(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:       code,
		Message:    message,
		Retryable:  code.IsRetryable(),
		Suggestion: code.Suggestion(),
	}
}

// NewValidationError creates a StructuredError for input validation failures,
// including the list of allowed values so callers can self-correct.
func NewValidationError(field string, got string, allowed []string) *StructuredError {
	return &StructuredError{
		Code:          CodeValidation,
		Message:       fmt.Sprintf("invalid %s %q: must be one of %s", field, got, strings.Join(allowed, ", ")),
		Retryable:     false,
		Suggestion:    fmt.Sprintf("Use one of: %s", strings.Join(allowed, ", ")),
		AllowedValues: allowed,
		Context:       map[string]any{"field": field, "got": got},
	}
}

// StructuredErrorFromAPIError converts an APIError to a StructuredError.
func StructuredErrorFromAPIError(apiErr *APIError) *StructuredError {
	code := ErrorCodeFromStatus(apiErr.StatusCode)
	ctx := map[string]any{
		"status_code": apiErr.StatusCode,
	}
	if apiErr.Code != "" {
		ctx["api_code"] = apiErr.Code
	}
	if apiErr.RequestID != "" {
		ctx["request_id"] = apiErr.RequestID
	}
	if code == CodeRateLimited {
		if rl := apiErr.RateLimit.Context(); rl != nil {
			ctx["rate_limit"] = rl
		}
	}
	return &StructuredError{
		Code:       code,
		Message:    apiErr.Message,
		Retryable:  code.IsRetryable(),
		Suggestion: code.Suggestion(),
		Context:    ctx,
	}
}

// StructuredErrorFromError attempts to convert any error to a StructuredError.
func StructuredErrorFromError(err error) *StructuredError {
	if err == nil {
		return nil
	}

	var se *StructuredError
	if errors.As(err, &se) {
		return se
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return StructuredErrorFromAPIError(apiErr)
	}

	var endpointErr *endpoint.Error
	if errors.As(err, &endpointErr) {
		se := NewStructuredError(CodeInvalidEndpoint, err.Error())
		se.Context = map[string]any{"reason": endpointErr.Reason}
		return se
	}
	if errors.Is(err, endpoint.ErrInvalidBase) {
		return NewStructuredError(CodeInvalidEndpoint, err.Error())
	}

	if errors.Is(err, ErrAsyncUnsupported) {
		return NewStructuredError(CodeAsyncUnsupported, err.Error())
	}

	var terr *TransportError
	if errors.As(err, &terr) {
		code := CodeTransport
		if isTimeout(terr.Cause) {
			code = CodeTimeout
		}
		se := NewStructuredError(code, terr.Error())
		se.Context = map[string]any{"method": terr.Method, "url": terr.URL}
		return se
	}

	return &StructuredError{
		Code:       CodeUnknown,
		Message:    err.Error(),
		Retryable:  false,
		Suggestion: "",
	}
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
