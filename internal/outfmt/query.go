package outfmt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/itchyny/gojq"
)

type queryKey struct{}

// WithQuery adds a jq expression to the context.
func WithQuery(ctx context.Context, query string) context.Context {
	return context.WithValue(ctx, queryKey{}, query)
}

// GetQuery returns the jq expression, or "".
func GetQuery(ctx context.Context) string {
	q, _ := ctx.Value(queryKey{}).(string)
	return q
}

// normalizeExpression undoes zsh's escaping of ! inside single quotes.
func normalizeExpression(expr string) string {
	return strings.ReplaceAll(expr, `\!`, `!`)
}

// Apply runs a jq expression over v. v is first converted to its plain JSON
// form. A single result is returned as is; several come back as a slice.
func Apply(v any, expression string) (any, error) {
	if expression == "" {
		return v, nil
	}
	query, err := gojq.Parse(normalizeExpression(expression))
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}

	data, err := toPlain(v)
	if err != nil {
		return nil, err
	}

	var results []any
	iter := query.Run(data)
	for {
		out, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := out.(error); ok {
			return nil, fmt.Errorf("filter error: %w", err)
		}
		results = append(results, out)
	}
	if len(results) == 1 {
		return results[0], nil
	}
	return results, nil
}

// ApplyJSON runs a jq expression over a raw JSON document.
func ApplyJSON(raw []byte, expression string) (any, error) {
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return Apply(data, expression)
}

// WriteJSONFiltered writes v as JSON after applying query.
func WriteJSONFiltered(w io.Writer, v any, query string, compact bool) error {
	result, err := Apply(v, query)
	if err != nil {
		return err
	}
	return WriteJSON(w, result, compact)
}

func toPlain(v any) (any, error) {
	switch v.(type) {
	case nil, bool, string, float64, map[string]any, []any:
		return v, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
