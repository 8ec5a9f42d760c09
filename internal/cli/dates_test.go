package cli

import (
	"testing"
	"time"
)

func TestParseTime(t *testing.T) {
	now := time.Date(2026, 1, 28, 15, 4, 5, 0, time.UTC) // Wednesday

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{name: "now", input: "now", want: now},
		{name: "hours ago", input: "2h ago", want: now.Add(-2 * time.Hour)},
		{name: "minutes", input: "30m", want: now.Add(-30 * time.Minute)},
		{name: "days", input: "7d", want: time.Date(2026, 1, 21, 15, 4, 5, 0, time.UTC)},
		{name: "weeks ago", input: "2w ago", want: time.Date(2026, 1, 14, 15, 4, 5, 0, time.UTC)},
		{name: "months ago", input: "1mo ago", want: now.AddDate(0, -1, 0)},
		{name: "yesterday", input: "Yesterday", want: time.Date(2026, 1, 27, 0, 0, 0, 0, time.UTC)},
		{name: "today", input: "today", want: time.Date(2026, 1, 28, 0, 0, 0, 0, time.UTC)},
		{name: "same weekday", input: "wednesday", want: time.Date(2026, 1, 28, 0, 0, 0, 0, time.UTC)},
		{name: "earlier weekday", input: "mon", want: time.Date(2026, 1, 26, 0, 0, 0, 0, time.UTC)},
		{name: "later weekday wraps back", input: "friday", want: time.Date(2026, 1, 23, 0, 0, 0, 0, time.UTC)},
		{name: "date only", input: "2026-01-27", want: time.Date(2026, 1, 27, 0, 0, 0, 0, time.UTC)},
		{name: "rfc3339", input: "2026-01-27T10:00:00Z", want: time.Date(2026, 1, 27, 10, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTime(tt.input, now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("expected %s, got %s", tt.want.Format(time.RFC3339Nano), got.Format(time.RFC3339Nano))
			}
		})
	}
}

func TestParseTime_Invalid(t *testing.T) {
	for _, input := range []string{"", "not-a-date", "0d", "next friday", "5y"} {
		if _, err := ParseTime(input, time.Now()); err == nil {
			t.Errorf("expected error for %q", input)
		}
	}
}

func TestStartOfDay(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	sample := time.Date(2026, 1, 28, 1, 4, 5, 0, loc)
	start := startOfDay(sample)

	if !start.Equal(time.Date(2026, 1, 28, 0, 0, 0, 0, loc)) {
		t.Fatalf("unexpected start of day: %s", start.Format(time.RFC3339Nano))
	}
}
