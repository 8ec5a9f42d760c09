// Package endpoint turns caller-supplied relative API paths into absolute
// request URLs that cannot leave the configured API root.
//
// Every request goes through two steps:
//   - Encode percent-encodes each path segment exactly once and rejects
//     absolute endpoints and encoded slashes.
//   - Base.Resolve joins the encoded path onto the configured base URL and
//     verifies that the result kept the base authority and path prefix.
//
// Base.Join runs both steps.
package endpoint

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidEndpoint is matched by every error returned from Encode and Resolve.
var ErrInvalidEndpoint = errors.New("invalid endpoint")

// Error describes why an endpoint was rejected.
type Error struct {
	Endpoint string
	Reason   string
}

func (e *Error) Error() string {
	// The query string is left out because callers put credentials there.
	path, _, _ := strings.Cut(e.Endpoint, "?")
	return fmt.Sprintf("invalid endpoint %q: %s", path, e.Reason)
}

// Is reports whether target is ErrInvalidEndpoint.
func (e *Error) Is(target error) bool {
	return target == ErrInvalidEndpoint
}

func invalid(endpoint, reason string) error {
	return &Error{Endpoint: endpoint, Reason: reason}
}

// IsInvalid reports whether err was caused by a rejected endpoint.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalidEndpoint)
}
