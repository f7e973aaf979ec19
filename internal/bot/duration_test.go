package bot

import (
	"testing"
	"time"
)

func TestParseModDuration(t *testing.T) {
	cases := []struct {
		input string
		want  time.Duration
	}{
		{"30m", 30 * time.Minute},
		{"2h", 2 * time.Hour},
		{"3d", 3 * 24 * time.Hour},
		{"1w", 7 * 24 * time.Hour},
		{"1d12h", 36 * time.Hour},
		{"90s", 90 * time.Second},
		{" 1H ", time.Hour},
	}
	for _, c := range cases {
		got, err := parseModDuration(c.input)
		if err != nil {
			t.Fatalf("parse %q: %v", c.input, err)
		}
		if got != c.want {
			t.Fatalf("parse %q = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestParseModDurationRejectsInvalid(t *testing.T) {
	for _, input := range []string{"", "h", "10", "10x", "-5m", "m10"} {
		if _, err := parseModDuration(input); err == nil {
			t.Fatalf("parse %q: expected error", input)
		}
	}
}

func TestFormatModDuration(t *testing.T) {
	cases := []struct {
		input time.Duration
		want  string
	}{
		{30 * time.Minute, "30m"},
		{36 * time.Hour, "1d12h"},
		{7 * 24 * time.Hour, "1w"},
		{0, "0s"},
	}
	for _, c := range cases {
		if got := formatModDuration(c.input); got != c.want {
			t.Fatalf("format %v = %q, want %q", c.input, got, c.want)
		}
	}
}
