// Package cli holds parsing helpers shared by command flags.
package cli

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Matches "2h ago", "30m ago", "7d", "2w", "1mo ago".
var relativeRegex = regexp.MustCompile(`^(\d+)\s*(mo|w|d|h|m)(\s+ago)?$`)

// ParseTime parses a point in the past for --since/--until style flags.
// Accepted forms: "today", "yesterday", a weekday name (the most recent
// one, today included), "<n><unit>" or "<n><unit> ago" with unit m, h, d,
// w or mo, "2006-01-02" in now's location, and RFC 3339.
func ParseTime(s string, now time.Time) (time.Time, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty time expression")
	}
	input := strings.ToLower(raw)

	switch input {
	case "now":
		return now, nil
	case "today":
		return startOfDay(now), nil
	case "yesterday":
		return startOfDay(now).AddDate(0, 0, -1), nil
	}

	if wd, ok := weekdays[input]; ok {
		base := startOfDay(now)
		back := (int(base.Weekday()) - int(wd) + 7) % 7
		return base.AddDate(0, 0, -back), nil
	}

	if m := relativeRegex.FindStringSubmatch(input); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			return time.Time{}, fmt.Errorf("invalid relative time %q", raw)
		}
		return subtract(now, n, m[2]), nil
	}

	if t, err := time.ParseInLocation(time.DateOnly, raw, now.Location()); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid time expression %q (try 7d, yesterday or 2006-01-02)", raw)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func subtract(now time.Time, n int, unit string) time.Time {
	switch unit {
	case "mo":
		return now.AddDate(0, -n, 0)
	case "w":
		return now.AddDate(0, 0, -7*n)
	case "d":
		return now.AddDate(0, 0, -n)
	case "h":
		return now.Add(-time.Duration(n) * time.Hour)
	default:
		return now.Add(-time.Duration(n) * time.Minute)
	}
}

var weekdays = map[string]time.Weekday{
	"sun":       time.Sunday,
	"sunday":    time.Sunday,
	"mon":       time.Monday,
	"monday":    time.Monday,
	"tue":       time.Tuesday,
	"tuesday":   time.Tuesday,
	"wed":       time.Wednesday,
	"wednesday": time.Wednesday,
	"thu":       time.Thursday,
	"thursday":  time.Thursday,
	"fri":       time.Friday,
	"friday":    time.Friday,
	"sat":       time.Saturday,
	"saturday":  time.Saturday,
}
