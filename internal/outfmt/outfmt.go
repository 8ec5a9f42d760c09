// Package outfmt renders command results as text tables or JSON, with
// optional jq filtering of JSON output.
package outfmt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// Mode is an output format.
type Mode int

const (
	// Text is human-readable output.
	Text Mode = iota
	// JSON is pretty-printed JSON.
	JSON
	// JSONL is one compact JSON document per line.
	JSONL
)

type (
	modeKey    struct{}
	compactKey struct{}
)

// Parse parses an output mode string.
func Parse(s string) (Mode, error) {
	switch s {
	case "text", "":
		return Text, nil
	case "json":
		return JSON, nil
	case "jsonl", "ndjson":
		return JSONL, nil
	default:
		return Text, fmt.Errorf("invalid output format: %q (use 'text', 'json', or 'jsonl')", s)
	}
}

func (m Mode) String() string {
	switch m {
	case JSON:
		return "json"
	case JSONL:
		return "jsonl"
	default:
		return "text"
	}
}

// WithMode adds the output mode to the context.
func WithMode(ctx context.Context, mode Mode) context.Context {
	return context.WithValue(ctx, modeKey{}, mode)
}

// ModeFromContext returns the output mode, Text when unset.
func ModeFromContext(ctx context.Context) Mode {
	if mode, ok := ctx.Value(modeKey{}).(Mode); ok {
		return mode
	}
	return Text
}

// IsJSON reports whether output is JSON or JSONL.
func IsJSON(ctx context.Context) bool {
	mode := ModeFromContext(ctx)
	return mode == JSON || mode == JSONL
}

// WithCompact sets single-line JSON output.
func WithCompact(ctx context.Context, compact bool) context.Context {
	return context.WithValue(ctx, compactKey{}, compact)
}

// IsCompact reports whether JSON output is single-line. JSONL is always compact.
func IsCompact(ctx context.Context) bool {
	if ModeFromContext(ctx) == JSONL {
		return true
	}
	c, _ := ctx.Value(compactKey{}).(bool)
	return c
}

// WriteJSON writes v as JSON, indented unless compact.
func WriteJSON(w io.Writer, v any, compact bool) error {
	enc := json.NewEncoder(w)
	if !compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
