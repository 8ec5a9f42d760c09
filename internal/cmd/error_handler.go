package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/merchantkit/merchant-cli/internal/api"
	"github.com/merchantkit/merchant-cli/internal/endpoint"
)

// HandleError returns a user-facing message with suggestions for err.
func HandleError(err error) string {
	if err == nil {
		return ""
	}

	var msg strings.Builder

	var (
		apiErr      *api.APIError
		endpointErr *endpoint.Error
		transport   *api.TransportError
		structured  *api.StructuredError
	)

	switch {
	case errors.As(err, &endpointErr):
		fmt.Fprintf(&msg, "Invalid endpoint: %s\n\n", endpointErr.Reason)
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Use a path relative to the base URL, e.g. orders/ord_123\n")
		msg.WriteString("  - Do not include a scheme, '//', '..' or an encoded '/'\n")
		msg.WriteString("  - Run: merchant resolve <endpoint> to preview the URL\n")

	case errors.Is(err, endpoint.ErrInvalidBase):
		fmt.Fprintf(&msg, "Error: %s\n\n", err)
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Set an absolute http(s) base URL: merchant auth login --url https://api.example.com/v1\n")

	case errors.Is(err, api.ErrAsyncUnsupported):
		msg.WriteString("Asynchronous requests are not supported by this transport.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Retry without --async\n")

	case errors.As(err, &apiErr):
		fmt.Fprintf(&msg, "API error (HTTP %d): %s\n\n", apiErr.StatusCode, apiErr.Message)
		msg.WriteString(suggestionsForStatusCode(apiErr.StatusCode))
		if rl := apiErr.RateLimit; apiErr.StatusCode == 429 && rl != nil && !rl.Reset.IsZero() {
			fmt.Fprintf(&msg, "\nRate limit resets at %s\n", rl.Reset.Local().Format(time.RFC3339))
		}
		if apiErr.RequestID != "" {
			fmt.Fprintf(&msg, "\nRequest ID: %s\n", apiErr.RequestID)
		}

	case errors.As(err, &transport):
		fmt.Fprintf(&msg, "Request failed: %s\n\n", transport.Error())
		msg.WriteString("Suggestions:\n")
		switch {
		case strings.Contains(transport.Message, "connection refused"):
			msg.WriteString("  - Check that the API server is reachable\n")
			msg.WriteString("  - Verify the base URL: merchant auth status\n")
		case strings.Contains(transport.Message, "no such host"):
			msg.WriteString("  - Check the base URL spelling\n")
			msg.WriteString("  - Verify your DNS settings\n")
		case strings.Contains(transport.Message, "certificate"):
			msg.WriteString("  - Verify the server's TLS certificate\n")
		default:
			msg.WriteString("  - Check your network connection\n")
			msg.WriteString("  - Increase --timeout for slow endpoints\n")
		}

	case errors.As(err, &structured):
		fmt.Fprintf(&msg, "Error: %s\n", structured.Message)
		if structured.Suggestion != "" {
			fmt.Fprintf(&msg, "\nSuggestion: %s\n", structured.Suggestion)
		}

	default:
		fmt.Fprintf(&msg, "Error: %s\n", err.Error())
	}

	return msg.String()
}

func suggestionsForStatusCode(code int) string {
	var s strings.Builder
	s.WriteString("Suggestions:\n")

	switch {
	case code == 400:
		s.WriteString("  - Check your request parameters\n")
		s.WriteString("  - Use --debug to see the (redacted) request\n")
	case code == 401:
		s.WriteString("  - Your API token may be invalid or expired\n")
		s.WriteString("  - Run: merchant auth login\n")
	case code == 403:
		s.WriteString("  - The token lacks permission for this action\n")
	case code == 404:
		s.WriteString("  - The resource doesn't exist\n")
		s.WriteString("  - Check the ID is correct\n")
	case code == 409:
		s.WriteString("  - The resource changed; fetch it again and retry\n")
		s.WriteString("  - Reuse the same --idempotency-key when retrying a write\n")
	case code == 422:
		s.WriteString("  - Validation failed; check your input values\n")
	case code == 429:
		s.WriteString("  - Too many requests; wait and retry\n")
	case code >= 500:
		s.WriteString("  - Server error - not your fault\n")
		s.WriteString("  - Wait and retry\n")
	default:
		s.WriteString("  - Use --debug for more details\n")
	}
	return s.String()
}
