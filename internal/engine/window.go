package engine

import (
	"github.com/caseylessard/hilljump-sub001/internal/domain/drip"
)

const (
	// smartWindowStepDays is the widening increment
	smartWindowStepDays = 7
	// smartWindowMaxFactor caps a widened window at this multiple of the target
	smartWindowMaxFactor = 2
)

// SmartWindow resolves the start date for a short trailing window.
// A naive 4-week window can catch zero or one event even for frequent
// payers, which makes the DRIP figure noise. The window widens in 7-day
// increments, up to 2x the target, until it holds at least minRequired
// events counted over (start, end]. If the cap is reached without
// satisfying the minimum, the original target window is used.
//
// Returns the resolved start date and the day count actually used.
func SmartWindow(events []drip.DistributionEvent, endDate string, targetDays, minRequired int) (string, int) {
	naiveStart := AddCalendarDays(endDate, -targetDays)
	if minRequired <= 0 {
		return naiveStart, targetDays
	}

	maxDays := targetDays * smartWindowMaxFactor
	for days := targetDays; days <= maxDays; days += smartWindowStepDays {
		start := AddCalendarDays(endDate, -days)
		if countInWindow(events, start, endDate) >= minRequired {
			return start, days
		}
	}

	// Cap reached without enough events: fall back to the target window
	return naiveStart, targetDays
}

// countInWindow counts events with ex-date in (start, end]
func countInWindow(events []drip.DistributionEvent, start, end string) int {
	n := 0
	for _, e := range events {
		if e.ExDate > start && e.ExDate <= end {
			n++
		}
	}
	return n
}
