package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/merchantkit/merchant-cli/internal/redact"
)

// Response is a fully read HTTP response. Non-2xx statuses are not errors
// at this level; see OK.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports whether the status is 2xx.
func (r *Response) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// JSON decodes the body into v.
func (r *Response) JSON(v any) error {
	if r == nil || len(r.Body) == 0 {
		return errors.New("empty response body")
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("unexpected API response format (JSON decode failed): %w", err)
	}
	return nil
}

// RequestID returns the server-assigned request identifier, if any.
func (r *Response) RequestID() string {
	if r == nil {
		return ""
	}
	return requestIDFromHeader(r.Header)
}

// RateLimit parses the rate limit headers of this response.
func (r *Response) RateLimit() *RateLimit {
	if r == nil {
		return nil
	}
	return readRateLimit(r.Header, time.Now())
}

// Err returns nil for a 2xx response and the decoded *APIError otherwise.
// The error message is passed through rd when it is non-nil.
func (r *Response) Err(rd *redact.Redactor) error {
	if r.OK() {
		return nil
	}
	if r == nil {
		return errNoResponse
	}
	return newAPIError(r, rd)
}

func requestIDFromHeader(header http.Header) string {
	if header == nil {
		return ""
	}
	return strings.TrimSpace(header.Get("X-Request-Id"))
}

// newAPIError decodes an error payload. Only the code, message and
// validation errors are kept, and the message is passed through the redactor.
func newAPIError(resp *Response, r *redact.Redactor) *APIError {
	code, message := parseErrorBody(resp.Body)
	if r != nil {
		message = r.String(message)
	}
	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       code,
		Message:    message,
		RequestID:  resp.RequestID(),
		RateLimit:  resp.RateLimit(),
	}
}

const redactedBodyMessage = "API request failed (response body redacted for security)"

func parseErrorBody(body []byte) (code, message string) {
	var errResp struct {
		Code    string `json:"code"`
		Error   any    `json:"error"`
		Message string `json:"message"`
		Errors  any    `json:"errors"`
	}
	if err := json.Unmarshal(body, &errResp); err != nil {
		return "", redactedBodyMessage
	}

	code = errResp.Code
	switch e := errResp.Error.(type) {
	case string:
		message = e
	case map[string]any:
		// {"error": {"code": "...", "message": "..."}}
		if s, ok := e["code"].(string); ok && code == "" {
			code = s
		}
		if s, ok := e["message"].(string); ok {
			message = s
		}
	}
	if message == "" {
		message = errResp.Message
	}

	if validation := formatValidationErrors(errResp.Errors); validation != "" {
		if message != "" {
			return code, message + "\nValidation errors:\n" + validation
		}
		return code, "Validation errors:\n" + validation
	}
	if message == "" {
		message = redactedBodyMessage
	}
	return code, message
}

// formatValidationErrors formats {"field": "msg"} and {"field": ["msg", ...]}.
func formatValidationErrors(errs any) string {
	errMap, ok := errs.(map[string]any)
	if !ok || len(errMap) == 0 {
		return ""
	}

	var lines []string
	for field, value := range errMap {
		switch v := value.(type) {
		case string:
			lines = append(lines, fmt.Sprintf("  %s: %s", field, v))
		case []any:
			for _, msg := range v {
				if msgStr, ok := msg.(string); ok {
					lines = append(lines, fmt.Sprintf("  %s: %s", field, msgStr))
				}
			}
		}
	}
	if len(lines) == 0 {
		return ""
	}

	sort.Strings(lines)
	return strings.Join(lines, "\n")
}
