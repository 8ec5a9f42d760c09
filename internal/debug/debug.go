// Package debug provides context-based debug mode with structured logging.
package debug

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/merchantkit/merchant-cli/internal/redact"
)

type contextKey string

const debugKey contextKey = "debug_enabled"

// WithDebug returns a context with debug mode enabled/disabled.
func WithDebug(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, debugKey, enabled)
}

// IsEnabled returns true if debug mode is enabled in the context.
func IsEnabled(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	if v, ok := ctx.Value(debugKey).(bool); ok {
		return v
	}
	return false
}

// scrubbedKeys are attributes whose string values are passed through the
// redactor's free-text sanitizer before they reach the sink.
var scrubbedKeys = map[string]bool{
	"error": true,
	"url":   true,
}

// NewLogger returns a text logger writing to w. Debug mode logs at Debug
// level, otherwise only warnings and errors are written. String values of
// "error" and "url" attributes are sanitized with r.
func NewLogger(w io.Writer, debugEnabled bool, r *redact.Redactor) *slog.Logger {
	level := slog.LevelWarn
	if debugEnabled {
		level = slog.LevelDebug
	}
	if r == nil {
		r = redact.New()
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if !scrubbedKeys[a.Key] {
				return a
			}
			switch a.Value.Kind() {
			case slog.KindString:
				return slog.String(a.Key, r.String(a.Value.String()))
			case slog.KindAny:
				if err, ok := a.Value.Any().(error); ok {
					return slog.String(a.Key, r.Error(err))
				}
			}
			return a
		},
	})
	return slog.New(handler)
}

// SetupLogger installs a NewLogger writing to stderr as the slog default.
func SetupLogger(debugEnabled bool) {
	slog.SetDefault(NewLogger(os.Stderr, debugEnabled, nil))
}
