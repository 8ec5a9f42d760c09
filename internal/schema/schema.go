// Package schema describes the JSON shape of merchant API resources and of
// the CLI's structured error output, so scripts can discover fields without
// reading the API reference.
package schema

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Schema is a small subset of JSON Schema.
type Schema struct {
	Type        string             `json:"type"`
	Format      string             `json:"format,omitempty"`
	Description string             `json:"description,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
}

// NotFoundError is returned by Get for an unregistered name.
type NotFoundError struct {
	Name      string
	Available []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("schema %q not found; available: %s", e.Name, strings.Join(e.Available, ", "))
}

var (
	mu       sync.RWMutex
	registry = map[string]*Schema{}
)

// Register adds or replaces the schema stored under name.
func Register(name string, s *Schema) {
	mu.Lock()
	registry[name] = s
	mu.Unlock()
}

// Get returns the schema registered under name.
func Get(name string) (*Schema, error) {
	mu.RLock()
	s, ok := registry[name]
	mu.RUnlock()
	if !ok {
		return nil, &NotFoundError{Name: name, Available: List()}
	}
	return s, nil
}

// List returns the registered names in sorted order.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ClearRegistry removes every schema. Tests use it.
func ClearRegistry() {
	mu.Lock()
	registry = map[string]*Schema{}
	mu.Unlock()
}

func leaf(typ, desc string) *Schema {
	return &Schema{Type: typ, Description: desc}
}

// Object is an object with the given properties; required names must be
// keys of props.
func Object(desc string, props map[string]*Schema, required ...string) *Schema {
	s := leaf("object", desc)
	s.Properties = props
	s.Required = required
	return s
}

// Map is a free-form object.
func Map(desc string) *Schema { return leaf("object", desc) }

// String is a string field.
func String(desc string) *Schema { return leaf("string", desc) }

// Int is an integer field.
func Int(desc string) *Schema { return leaf("integer", desc) }

// Bool is a boolean field.
func Bool(desc string) *Schema { return leaf("boolean", desc) }

// Enum is a string restricted to values.
func Enum(desc string, values ...string) *Schema {
	s := String(desc)
	s.Enum = values
	return s
}

// Array is a list of items.
func Array(items *Schema, desc string) *Schema {
	s := leaf("array", desc)
	s.Items = items
	return s
}

// Timestamp is an RFC 3339 date-time string.
func Timestamp(desc string) *Schema {
	s := String(desc + " (RFC 3339)")
	s.Format = "date-time"
	return s
}

// Money is an amount in minor units plus an ISO 4217 currency code.
func Money(desc string) *Schema {
	return Object(desc, map[string]*Schema{
		"amount":   Int("Amount in the currency's minor unit"),
		"currency": String("ISO 4217 currency code"),
	}, "amount", "currency")
}
