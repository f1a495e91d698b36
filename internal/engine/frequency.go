package engine

import (
	"sort"

	"github.com/caseylessard/hilljump-sub001/internal/domain/drip"
)

// InferFrequency classifies a distribution schedule from the mean
// interval between consecutive ex-dates. Events with unparseable dates
// are dropped; fewer than 2 valid events classify as unknown.
//
// This is a heuristic that feeds window widening, not a guarantee: a
// fund that recently switched schedules will classify by its blended
// average.
func InferFrequency(events []drip.DistributionEvent, th drip.FrequencyThresholds) drip.Frequency {
	if th == (drip.FrequencyThresholds{}) {
		th = drip.DefaultFrequencyThresholds()
	}

	dates := make([]string, 0, len(events))
	for _, e := range events {
		if _, ok := parseDate(e.ExDate); ok {
			dates = append(dates, e.ExDate)
		}
	}
	if len(dates) < 2 {
		return drip.FrequencyUnknown
	}
	sort.Strings(dates)

	totalDays := 0
	for i := 1; i < len(dates); i++ {
		totalDays += daysBetween(dates[i-1], dates[i])
	}
	meanInterval := float64(totalDays) / float64(len(dates)-1)

	switch {
	case meanInterval <= th.WeeklyMaxDays:
		return drip.FrequencyWeekly
	case meanInterval <= th.MonthlyMaxDays:
		return drip.FrequencyMonthly
	case meanInterval <= th.QuarterlyMaxDays:
		return drip.FrequencyQuarterly
	default:
		return drip.FrequencyUnknown
	}
}
