package endpoint

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidBase is returned by ParseBase for unusable base URLs.
var ErrInvalidBase = errors.New("invalid base URL")

// Base is the configured API root. It is immutable once parsed and safe for
// concurrent use.
type Base struct {
	u *url.URL
}

// ParseBase parses an absolute http(s) base URL. The path is normalized to
// end with '/' so relative endpoints resolve beneath it; query and fragment
// are not allowed.
func ParseBase(raw string) (Base, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Base{}, fmt.Errorf("%w: empty", ErrInvalidBase)
	}
	u, err := url.Parse(raw)
	if err != nil {
		// url.Error repeats the input, which may carry credentials.
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return Base{}, fmt.Errorf("%w: %w", ErrInvalidBase, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return Base{}, fmt.Errorf("%w: scheme must be http or https, got %q", ErrInvalidBase, u.Scheme)
	}
	if u.Hostname() == "" {
		return Base{}, fmt.Errorf("%w: missing host", ErrInvalidBase)
	}
	if u.User != nil {
		return Base{}, fmt.Errorf("%w: credentials must not be embedded in the URL", ErrInvalidBase)
	}
	if u.RawQuery != "" || u.ForceQuery || u.Fragment != "" {
		return Base{}, fmt.Errorf("%w: query and fragment are not allowed", ErrInvalidBase)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
		if u.RawPath != "" {
			u.RawPath += "/"
		}
	}
	return Base{u: u}, nil
}

// MustParseBase is like ParseBase but panics on error. Intended for tests and
// package-level defaults.
func MustParseBase(raw string) Base {
	b, err := ParseBase(raw)
	if err != nil {
		panic(err)
	}
	return b
}

// URL returns a copy of the base URL.
func (b Base) URL() *url.URL {
	if b.u == nil {
		return nil
	}
	cp := *b.u
	return &cp
}

// String returns the base URL, always with a trailing slash.
func (b Base) String() string {
	if b.u == nil {
		return ""
	}
	return b.u.String()
}

// IsZero reports whether b was never parsed.
func (b Base) IsZero() bool {
	return b.u == nil
}

// Join encodes raw with Encode and resolves it against b.
func (b Base) Join(raw string) (*url.URL, error) {
	encoded, err := Encode(raw)
	if err != nil {
		return nil, err
	}
	return b.Resolve(encoded)
}

// Resolve resolves an already encoded endpoint against b using RFC 3986
// reference resolution and then checks the result:
//   - the endpoint must not contain an encoded slash (%2F),
//   - scheme, host and port must equal the base,
//   - the path must equal the base path or continue it at a '/' boundary,
//     so a base of /api accepts /api and /api/users but not /apiv2.
//
// A single leading '/' is treated as relative to the base path.
func (b Base) Resolve(encoded string) (*url.URL, error) {
	if b.u == nil {
		return nil, invalid(encoded, "no base URL configured")
	}
	if strings.Contains(encoded, "%2F") || strings.Contains(encoded, "%2f") {
		return nil, invalid(encoded, "encoded slash is not allowed")
	}
	if strings.HasPrefix(encoded, "//") {
		return nil, invalid(encoded, "protocol-relative endpoints are not allowed")
	}

	ref, err := url.Parse(strings.TrimPrefix(encoded, "/"))
	if err != nil {
		return nil, invalid(encoded, "malformed endpoint")
	}
	if ref.IsAbs() || ref.Host != "" || ref.User != nil {
		return nil, invalid(encoded, "absolute endpoints are not allowed")
	}

	resolved := b.u.ResolveReference(ref)

	if !sameAuthority(b.u, resolved) {
		return nil, invalid(encoded, "resolved URL leaves the configured host")
	}
	if !withinBasePath(b.u.Path, resolved.Path) {
		return nil, invalid(encoded, "resolved URL leaves the configured base path")
	}
	for seg := range strings.SplitSeq(resolved.Path, "/") {
		if seg == "." || seg == ".." {
			return nil, invalid(encoded, "dot segment survived resolution")
		}
	}
	return resolved, nil
}

func sameAuthority(base, u *url.URL) bool {
	if !strings.EqualFold(base.Scheme, u.Scheme) {
		return false
	}
	if !strings.EqualFold(base.Hostname(), u.Hostname()) {
		return false
	}
	return effectivePort(base) == effectivePort(u)
}

func effectivePort(u *url.URL) string {
	if p := u.Port(); p != "" {
		return p
	}
	switch strings.ToLower(u.Scheme) {
	case "http":
		return "80"
	case "https":
		return "443"
	}
	return ""
}

// withinBasePath is the boundary-safe prefix check. An empty trimmed base
// path means the API is mounted at the root and any absolute path is fine.
func withinBasePath(basePath, path string) bool {
	trimmed := strings.TrimSuffix(basePath, "/")
	if trimmed == "" {
		return strings.HasPrefix(path, "/")
	}
	return path == trimmed || strings.HasPrefix(path, trimmed+"/")
}
