package endpoint

import (
	"regexp"
	"strings"
)

// maxDecodeDepth bounds how many layers of percent-encoding are peeled off a
// segment when looking for a hidden slash.
const maxDecodeDepth = 4

var schemePrefix = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.\-]*://`)

// Encode percent-encodes a relative endpoint one path segment at a time.
//
// The query string (everything after the first '?') is returned untouched;
// callers are expected to build it with url.Values. Structural slashes,
// including a leading slash and trailing empty segments, are preserved.
// Each non-empty segment is decoded and then re-encoded so that only
// unreserved characters (A-Z a-z 0-9 - . _ ~) remain literal. Decoding is
// lenient: valid %XX triples are decoded and any other '%' stays literal, so
// a malformed escape cannot shield an encoded slash elsewhere in the segment.
//
// Encode fails with ErrInvalidEndpoint for scheme-qualified or
// protocol-relative input, and for any segment that decodes to something
// containing '/', at any encoding depth.
func Encode(raw string) (string, error) {
	if schemePrefix.MatchString(raw) {
		return "", invalid(raw, "absolute endpoints are not allowed")
	}
	if strings.HasPrefix(raw, "//") {
		return "", invalid(raw, "protocol-relative endpoints are not allowed")
	}

	path, query, hasQuery := strings.Cut(raw, "?")

	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		if hidesSlash(seg) {
			return "", invalid(raw, "encoded slash in path segment")
		}
		segments[i] = escapeSegment(unescapeLenient(seg))
	}

	encoded := strings.Join(segments, "/")
	if hasQuery {
		encoded += "?" + query
	}
	return encoded, nil
}

// hidesSlash peels percent-encoding layers off seg and reports whether any
// layer contains a literal slash.
func hidesSlash(seg string) bool {
	cur := seg
	for range maxDecodeDepth {
		next := unescapeLenient(cur)
		if next == cur {
			return false
		}
		if strings.Contains(next, "/") {
			return true
		}
		cur = next
	}
	return false
}

const upperhex = "0123456789ABCDEF"

// unescapeLenient decodes every valid %XX triple in s. A '%' that does not
// start one is kept as a literal byte.
func unescapeLenient(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case c >= 'a':
		return c - 'a' + 10
	case c >= 'A':
		return c - 'A' + 10
	}
	return c - '0'
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '.', c == '_', c == '~':
		return true
	}
	return false
}

// escapeSegment is RFC 3986 strict encoding: url.PathEscape leaves sub-delims
// such as '=' and '+' alone, which is not what the API expects.
func escapeSegment(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if !isUnreserved(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

// Path builds a relative endpoint from literal path segments, typically a
// resource name followed by caller-supplied identifiers. Each part is one
// segment and is escaped as a whole, so an identifier can never introduce
// another segment. Empty, "." and ".." parts are rejected.
func Path(parts ...string) (string, error) {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		switch p {
		case "", ".", "..":
			return "", invalid(strings.Join(parts, "/"), "empty or dot path segment")
		}
		escaped[i] = escapeSegment(p)
	}
	return strings.Join(escaped, "/"), nil
}
