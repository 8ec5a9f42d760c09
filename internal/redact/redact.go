// Package redact produces log-safe copies of HTTP headers, URLs and bodies.
//
// Nothing in this package changes what is sent over the wire: every function
// returns a new value meant only for display. Sensitive values are replaced
// with Placeholder, and redacting an already redacted value is a no-op.
package redact

import (
	"bytes"
	"encoding/json"
	"mime"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// Placeholder replaces every redacted value.
	Placeholder = "***"

	// DefaultMaxPreview is the default size limit for body previews, in bytes.
	DefaultMaxPreview = 4096

	truncatedMarker = "...[truncated]"
)

// DefaultHeaderKeys are header names whose values are never logged.
var DefaultHeaderKeys = NewKeySet(
	"authorization",
	"proxy-authorization",
	"cookie",
	"set-cookie",
	"x-api-key",
	"api-key",
	"x-auth-token",
	"x-session-id",
	"www-authenticate",
	"proxy-authenticate",
)

// DefaultFieldKeys are body and query field names whose values are never logged.
var DefaultFieldKeys = NewKeySet(
	"authorization",
	"password",
	"passwd",
	"secret",
	"client_secret",
	"token",
	"access_token",
	"refresh_token",
	"api_key",
	"apikey",
	"merchant_sig",
	"session_id",
	"cvv",
	"cvc",
	"otp",
	"pin",
	"card_number",
	"iban",
)

var userinfoPattern = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9+.\-]*://)[^/?#@]*@`)

// bearerPattern matches credentials in Authorization-style strings. The
// credential class excludes '*' so placeholders are left alone.
var bearerPattern = regexp.MustCompile(`(?i)\b(bearer|basic)\s+[A-Za-z0-9\-._~+/]+=*`)

// Redactor redacts sensitive data. It is immutable and safe for concurrent use.
type Redactor struct {
	headers    KeySet
	fields     KeySet
	maxPreview int

	jsonField  *regexp.Regexp
	assignment *regexp.Regexp
}

// Option configures a Redactor.
type Option func(*Redactor)

// WithHeaderKeys adds header names to the sensitive set.
func WithHeaderKeys(keys ...string) Option {
	return func(r *Redactor) { r.headers = r.headers.With(keys...) }
}

// WithFieldKeys adds body/query field names to the sensitive set.
func WithFieldKeys(keys ...string) Option {
	return func(r *Redactor) { r.fields = r.fields.With(keys...) }
}

// WithOnlyKeys replaces the default sets with exactly the given header and
// field names. Options applied before it are discarded, so pass it first.
func WithOnlyKeys(headers, fields []string) Option {
	return func(r *Redactor) {
		r.headers = NewKeySet(headers...)
		r.fields = NewKeySet(fields...)
	}
}

// WithMaxPreview sets the body preview limit. Values <= 0 disable truncation.
func WithMaxPreview(n int) Option {
	return func(r *Redactor) { r.maxPreview = n }
}

// New returns a Redactor seeded with DefaultHeaderKeys and DefaultFieldKeys.
func New(opts ...Option) *Redactor {
	r := &Redactor{
		headers:    DefaultHeaderKeys.With(),
		fields:     DefaultFieldKeys.With(),
		maxPreview: DefaultMaxPreview,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.compile()
	return r
}

func (r *Redactor) compile() {
	alt := r.fields.pattern()
	if alt == "" {
		return
	}
	// "key": "value" or "key": 123 inside JSON-like text.
	r.jsonField = regexp.MustCompile(`(?i)("(?:` + alt + `)"\s*:\s*)("(?:[^"\\]|\\.)*"|-?[0-9][0-9.eE+\-]*|true|false|null)`)
	// key=value (forms, query strings) and key: value (log lines).
	r.assignment = regexp.MustCompile(`(?i)(\b(?:` + alt + `)\b\s*[:=]\s*)([^\s,;&"'}\]]+)`)
}

// HeaderKeys returns the sensitive header set.
func (r *Redactor) HeaderKeys() KeySet { return r.headers }

// FieldKeys returns the sensitive field set.
func (r *Redactor) FieldKeys() KeySet { return r.fields }

// Headers returns a copy of h in which every header whose name is in the
// sensitive header set has a single Placeholder value.
func (r *Redactor) Headers(h http.Header) http.Header {
	if h == nil {
		return nil
	}
	out := make(http.Header, len(h))
	for name, values := range h {
		if r.headers.Has(name) {
			out[name] = []string{Placeholder}
			continue
		}
		out[name] = append([]string(nil), values...)
	}
	return out
}

// URI returns raw with userinfo removed and sensitive query values replaced.
// Path and fragment are unchanged. Unparseable input only has its userinfo
// stripped.
func (r *Redactor) URI(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return userinfoPattern.ReplaceAllString(raw, "$1")
	}
	return r.URL(u)
}

// URL is URI for an already parsed URL. u is not modified.
func (r *Redactor) URL(u *url.URL) string {
	if u == nil {
		return ""
	}
	cp := *u
	cp.User = nil
	cp.RawQuery = r.query(cp.RawQuery)
	return cp.String()
}

// query rewrites a raw query string in place, keeping parameter order and the
// original encoding of everything that is not redacted.
func (r *Redactor) query(raw string) string {
	if raw == "" {
		return raw
	}
	parts := strings.Split(raw, "&")
	for i, part := range parts {
		key, _, hasValue := strings.Cut(part, "=")
		name, err := url.QueryUnescape(key)
		if err != nil {
			name = key
		}
		if hasValue && r.fields.Has(name) {
			parts[i] = key + "=" + Placeholder
		}
	}
	return strings.Join(parts, "&")
}

// JSON returns a deep copy of v, as produced by encoding/json, with every
// object member whose name is a sensitive field replaced by Placeholder.
func (r *Redactor) JSON(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if r.fields.Has(k) {
				out[k] = Placeholder
				continue
			}
			out[k] = r.JSON(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = r.JSON(val)
		}
		return out
	default:
		return v
	}
}

// Body returns a redacted, truncated preview of a request or response body.
// JSON content is parsed and redacted structurally; anything else, including
// JSON that fails to parse, goes through String.
func (r *Redactor) Body(contentType string, body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if IsJSONContentType(contentType) {
		if out, ok := r.jsonBody(body); ok {
			return r.Truncate(out)
		}
	}
	return r.Truncate(r.String(string(body)))
}

func (r *Redactor) jsonBody(body []byte) (string, bool) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", false
	}
	if dec.More() {
		return "", false
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r.JSON(v)); err != nil {
		return "", false
	}
	return strings.TrimSuffix(buf.String(), "\n"), true
}

// String redacts free text: Bearer/Basic credentials, "field": value pairs
// and field=value or field: value assignments for sensitive fields.
func (r *Redactor) String(s string) string {
	if s == "" {
		return s
	}
	s = bearerPattern.ReplaceAllString(s, "$1 "+Placeholder)
	if r.jsonField != nil {
		s = r.jsonField.ReplaceAllString(s, `$1"`+Placeholder+`"`)
	}
	if r.assignment != nil {
		s = r.assignment.ReplaceAllString(s, "${1}"+Placeholder)
	}
	return s
}

// Error returns the redacted message of err, or "" for nil.
func (r *Redactor) Error(err error) string {
	if err == nil {
		return ""
	}
	return r.String(err.Error())
}

// Truncate cuts s to the preview limit on a rune boundary and appends a
// marker when anything was removed.
func (r *Redactor) Truncate(s string) string {
	if r.maxPreview <= 0 || len(s) <= r.maxPreview {
		return s
	}
	cut := r.maxPreview
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + truncatedMarker
}

// IsJSONContentType reports whether a Content-Type denotes JSON:
// application/json, any */json, or any *+json suffix type.
func IsJSONContentType(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType, _, _ = strings.Cut(contentType, ";")
		mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	}
	return strings.HasSuffix(mediaType, "/json") || strings.HasSuffix(mediaType, "+json")
}
