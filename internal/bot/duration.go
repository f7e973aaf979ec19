package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// parseModDuration parses moderation durations like "30m", "2h", "3d",
// "1w" or composites such as "1d12h". Days and weeks are not understood by
// time.ParseDuration, hence the hand parse.
func parseModDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return 0, fmt.Errorf("empty duration")
	}

	var total time.Duration
	number := strings.Builder{}
	for _, r := range value {
		if unicode.IsDigit(r) {
			number.WriteRune(r)
			continue
		}
		if number.Len() == 0 {
			return 0, fmt.Errorf("invalid duration %q", value)
		}
		amount, err := strconv.Atoi(number.String())
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", value)
		}
		number.Reset()

		var unit time.Duration
		switch r {
		case 's':
			unit = time.Second
		case 'm':
			unit = time.Minute
		case 'h':
			unit = time.Hour
		case 'd':
			unit = 24 * time.Hour
		case 'w':
			unit = 7 * 24 * time.Hour
		default:
			return 0, fmt.Errorf("invalid duration unit %q", string(r))
		}
		total += time.Duration(amount) * unit
	}
	if number.Len() != 0 {
		return 0, fmt.Errorf("duration %q missing unit", value)
	}
	if total <= 0 {
		return 0, fmt.Errorf("duration must be positive")
	}
	return total, nil
}

// formatModDuration renders a duration the way moderators wrote it.
func formatModDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	parts := []string{}
	units := []struct {
		d     time.Duration
		label string
	}{
		{7 * 24 * time.Hour, "w"},
		{24 * time.Hour, "d"},
		{time.Hour, "h"},
		{time.Minute, "m"},
		{time.Second, "s"},
	}
	for _, unit := range units {
		if d >= unit.d {
			parts = append(parts, fmt.Sprintf("%d%s", d/unit.d, unit.label))
			d %= unit.d
		}
	}
	return strings.Join(parts, "")
}
