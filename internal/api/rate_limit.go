package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RateLimit is the quota state a response reported. Counters the server did
// not send are -1.
type RateLimit struct {
	Limit     int
	Remaining int
	// Reset is zero when the reset header was missing or unparseable;
	// RawReset keeps the header text either way.
	Reset    time.Time
	RawReset string
}

// Resets before this many seconds are relative, later ones are Unix times.
const epochCutoff = 1_000_000_000

// readRateLimit returns nil when h carries no rate limit headers.
func readRateLimit(h http.Header, now time.Time) *RateLimit {
	limit := rateHeader(h, "Limit")
	remaining := rateHeader(h, "Remaining")
	reset := rateHeader(h, "Reset")
	if limit == "" && remaining == "" && reset == "" {
		return nil
	}

	rl := &RateLimit{
		Limit:     atoiOr(limit, -1),
		Remaining: atoiOr(remaining, -1),
		RawReset:  reset,
	}
	rl.Reset = resetTime(reset, now)
	return rl
}

// rateHeader reads the X-RateLimit-* header, falling back to the
// unprefixed draft-standard RateLimit-* name.
func rateHeader(h http.Header, suffix string) string {
	if v := strings.TrimSpace(h.Get("X-RateLimit-" + suffix)); v != "" {
		return v
	}
	return strings.TrimSpace(h.Get("RateLimit-" + suffix))
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func resetTime(v string, now time.Time) time.Time {
	if v == "" {
		return time.Time{}
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		if n >= epochCutoff {
			return time.Unix(n, 0).UTC()
		}
		if n >= 0 {
			return now.Add(time.Duration(n) * time.Second).UTC()
		}
		return time.Time{}
	}
	if t, err := http.ParseTime(v); err == nil {
		return t.UTC()
	}
	return time.Time{}
}

// Context returns the fields worth reporting in structured error output.
func (rl *RateLimit) Context() map[string]any {
	if rl == nil {
		return nil
	}
	out := make(map[string]any, 3)
	if rl.Limit >= 0 {
		out["limit"] = rl.Limit
	}
	if rl.Remaining >= 0 {
		out["remaining"] = rl.Remaining
	}
	switch {
	case !rl.Reset.IsZero():
		out["reset_at"] = rl.Reset.Format(time.RFC3339)
	case rl.RawReset != "":
		out["reset"] = rl.RawReset
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
