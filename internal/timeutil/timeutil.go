package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout defines the canonical date format (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// seasonStartMonth is the month a new NBA season string takes over.
const seasonStartMonth = time.October

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}

// FormatDate formats a time as YYYY-MM-DD in its current location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SeasonFor returns the upstream season string (YYYY-YY) that contains t.
func SeasonFor(t time.Time) string {
	start := t.Year()
	if t.Month() < seasonStartMonth {
		start--
	}
	return fmt.Sprintf("%d-%02d", start, (start+1)%100)
}

// DayRange returns days consecutive calendar dates beginning at start.
func DayRange(start time.Time, days int) []time.Time {
	if days <= 0 {
		return nil
	}
	out := make([]time.Time, 0, days)
	first := StartOfDay(start)
	for i := 0; i < days; i++ {
		out = append(out, first.AddDate(0, 0, i))
	}
	return out
}

// SeasonStartYear returns the calendar year a "YYYY-YY" season begins in.
func SeasonStartYear(season string) (int, error) {
	var start, end int
	if _, err := fmt.Sscanf(season, "%4d-%2d", &start, &end); err != nil {
		return 0, fmt.Errorf("invalid season %q: %w", season, err)
	}
	if (start+1)%100 != end {
		return 0, fmt.Errorf("invalid season %q: years do not follow", season)
	}
	return start, nil
}

// ParseDateList parses YYYY-MM-DD values, each of which may itself be a
// comma-separated list. Duplicates keep their first position.
func ParseDateList(values []string) ([]time.Time, error) {
	var out []time.Time
	seen := make(map[string]struct{})
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			d, err := ParseDate(part)
			if err != nil {
				return nil, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", part)
			}
			if _, dup := seen[part]; dup {
				continue
			}
			seen[part] = struct{}{}
			out = append(out, d)
		}
	}
	return out, nil
}
