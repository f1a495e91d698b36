package engine

import (
	"math"
	"sort"

	"github.com/caseylessard/hilljump-sub001/internal/domain/drip"
)

// notFound is the sentinel index for searches that resolve nowhere
const notFound = -1

// closeOnOrBefore returns the last known close at or before the query
// date. Returns NaN when the series has no point on or before the date;
// thin historical coverage is an expected condition, not an error.
// The series must be sorted ascending by date.
func closeOnOrBefore(prices []drip.PricePoint, date string) float64 {
	// First index with Date > date; the answer is the point before it.
	i := sort.Search(len(prices), func(i int) bool {
		return prices[i].Date > date
	})
	if i == 0 {
		return math.NaN()
	}
	return prices[i-1].Close
}

// indexOnOrAfter returns the index of the first price point at or after
// the query date, or notFound when the series ends before it.
// The series must be sorted ascending by date.
func indexOnOrAfter(prices []drip.PricePoint, date string) int {
	i := sort.Search(len(prices), func(i int) bool {
		return prices[i].Date >= date
	})
	if i == len(prices) {
		return notFound
	}
	return i
}

// sortedPrices returns the series sorted ascending by date. The input
// is cloned only when out of order, so the common pre-sorted case does
// not allocate and callers' slices are never mutated.
func sortedPrices(prices []drip.PricePoint) []drip.PricePoint {
	if sort.SliceIsSorted(prices, func(i, j int) bool {
		return prices[i].Date < prices[j].Date
	}) {
		return prices
	}

	sorted := make([]drip.PricePoint, len(prices))
	copy(sorted, prices)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})
	return sorted
}

// sortedDistributions returns the events sorted ascending by ex-date,
// cloning only when out of order
func sortedDistributions(events []drip.DistributionEvent) []drip.DistributionEvent {
	if sort.SliceIsSorted(events, func(i, j int) bool {
		return events[i].ExDate < events[j].ExDate
	}) {
		return events
	}

	sorted := make([]drip.DistributionEvent, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ExDate < sorted[j].ExDate
	})
	return sorted
}
