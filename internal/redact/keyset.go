package redact

import (
	"regexp"
	"slices"
	"strings"
)

// KeySet is a set of lowercase header or field names.
type KeySet map[string]struct{}

// NewKeySet builds a KeySet; names are trimmed and lowercased, blanks dropped.
func NewKeySet(keys ...string) KeySet {
	s := make(KeySet, len(keys))
	for _, k := range keys {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		s[k] = struct{}{}
	}
	return s
}

// Has reports whether key is in the set, ignoring case.
func (s KeySet) Has(key string) bool {
	_, ok := s[strings.ToLower(key)]
	return ok
}

// With returns a copy of s extended with keys.
func (s KeySet) With(keys ...string) KeySet {
	out := NewKeySet(keys...)
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// Keys returns the sorted members.
func (s KeySet) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// pattern returns a regexp alternation of the keys, longest first.
func (s KeySet) pattern() string {
	keys := s.Keys()
	slices.SortStableFunc(keys, func(a, b string) int { return len(b) - len(a) })
	for i, k := range keys {
		keys[i] = regexp.QuoteMeta(k)
	}
	return strings.Join(keys, "|")
}
