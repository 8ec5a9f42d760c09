package cmd

import (
	"strings"

	"github.com/google/uuid"
)

const idempotencyKeyPrefix = "mcli_"

func newIdempotencyKey() string {
	return idempotencyKeyPrefix + uuid.NewString()
}

// idempotencyOptions turns the --idempotency-key value into a fixed key or
// a per-request generator.
func idempotencyOptions(value string) (key string, gen func() string) {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, "auto") {
		return "", newIdempotencyKey
	}
	return value, nil
}
