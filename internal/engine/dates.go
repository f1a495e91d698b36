package engine

import (
	"time"
)

// isoDate is the wire format for all engine dates. ISO-8601 calendar
// dates sort lexicographically in chronological order, so the engine
// compares dates as plain strings.
const isoDate = "2006-01-02"

// parseDate parses an ISO calendar date in UTC
func parseDate(s string) (time.Time, bool) {
	t, err := time.ParseInLocation(isoDate, s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// AddCalendarDays adds n calendar days to an ISO date. UTC-based to
// avoid timezone drift. Returns "" for an unparseable input.
func AddCalendarDays(date string, n int) string {
	t, ok := parseDate(date)
	if !ok {
		return ""
	}
	return t.AddDate(0, 0, n).Format(isoDate)
}

// AddBusinessDays adds n business days to an ISO date, skipping
// Saturday and Sunday. It does not consult a holiday calendar, so the
// result can be off by one trading day around market holidays; this is
// an accepted approximation of the untracked pay date.
func AddBusinessDays(date string, n int) string {
	t, ok := parseDate(date)
	if !ok {
		return ""
	}

	step := 1
	if n < 0 {
		step = -1
		n = -n
	}

	for n > 0 {
		t = t.AddDate(0, 0, step)
		if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		n--
	}

	return t.Format(isoDate)
}

// daysBetween returns the calendar day count from a to b (ISO dates).
// Returns 0 when either date is unparseable.
func daysBetween(a, b string) int {
	ta, okA := parseDate(a)
	tb, okB := parseDate(b)
	if !okA || !okB {
		return 0
	}
	return int(tb.Sub(ta).Hours() / 24)
}
