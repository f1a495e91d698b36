// Package engine implements the DRIP (dividend reinvestment) return
// calculation: given a daily close series and a stream of distribution
// events, it compounds reinvested distributions over trailing lookback
// windows ending at a reference date.
//
// The engine is pure and synchronous: no I/O, no shared state, safe to
// call concurrently across tickers. Data-quality problems never produce
// errors; they produce degenerate results or skipped events, so batch
// callers can keep going past individual gaps. All arithmetic is
// float64 with no internal rounding; display precision is a caller
// concern.
package engine

import (
	"math"

	"github.com/rs/zerolog/log"

	"github.com/caseylessard/hilljump-sub001/internal/domain/drip"
)

// smartWindowDays is the one lookback that gets window widening.
// Longer windows hold enough events on their own.
const smartWindowDays = 28

// ComputeOverPeriod compounds reinvested distributions over a single
// window (startDate, endDate] and returns the result with its full
// reinvestment audit trail.
//
// Start and end prices resolve to the last known close on or before
// each date. If either is unresolvable, or startingShares is not a
// positive finite number, the documented degenerate result is returned.
func ComputeOverPeriod(prices []drip.PricePoint, events []drip.DistributionEvent,
	startDate, endDate string, startingShares float64, opts drip.Options) drip.Result {

	opts = opts.Normalize()
	prices = sortedPrices(prices)
	events = sortedDistributions(events)

	startPrice := closeOnOrBefore(prices, startDate)
	endPrice := closeOnOrBefore(prices, endDate)

	if math.IsNaN(startPrice) || math.IsNaN(endPrice) ||
		startPrice <= 0 || endPrice <= 0 ||
		math.IsNaN(startingShares) || startingShares <= 0 {
		log.Debug().
			Str("start_date", startDate).
			Str("end_date", endDate).
			Float64("starting_shares", startingShares).
			Msg("Insufficient data for DRIP window")
		return drip.Degenerate(startDate, endDate, drip.WindowMeta{})
	}

	shares := startingShares
	factors := []drip.ReinvestmentFactor{}

	for _, e := range events {
		// Non-positive and non-finite amounts are non-events
		if e.Amount <= 0 || math.IsInf(e.Amount, 0) || math.IsNaN(e.Amount) {
			continue
		}
		if !inWindow(e.ExDate, startDate, endDate, opts.Boundary) {
			continue
		}

		// True pay dates are not tracked; approximate with a fixed lag
		// from the ex-date.
		var payRef string
		if opts.UseBusinessDays {
			payRef = AddBusinessDays(e.ExDate, opts.PayOffsetDays)
		} else {
			payRef = AddCalendarDays(e.ExDate, opts.PayOffsetDays)
		}
		if payRef == "" {
			continue
		}

		// Reinvest at the first trading day at/after the pay reference.
		// No such day in the series means the cash has no known price to
		// buy at; skip the event.
		idx := indexOnOrAfter(prices, payRef)
		if idx == notFound {
			continue
		}
		reinvestDate := prices[idx].Date

		// An ex-date inside the window can still reinvest after it.
		// Those events belong to the next window's measurement, not this
		// one, even though the asymmetry looks odd in the audit trail.
		if reinvestDate > endDate {
			continue
		}

		reinvestPrice := prices[idx].Close
		netAmount := e.Amount * (1 - opts.TaxWithholdRate)
		if netAmount <= 0 || reinvestPrice <= 0 {
			continue
		}

		factor := 1 + netAmount/reinvestPrice
		shares *= factor
		factors = append(factors, drip.ReinvestmentFactor{
			ExDate:            e.ExDate,
			PayReferenceDate:  payRef,
			ReinvestmentDate:  reinvestDate,
			ReinvestmentPrice: reinvestPrice,
			NetAmountPerShare: netAmount,
			Factor:            factor,
		})
	}

	startValue := startingShares * startPrice
	endValue := shares * endPrice
	reinvested := shares - startingShares

	result := drip.Result{
		StartDate:        startDate,
		EndDate:          endDate,
		StartPrice:       startPrice,
		EndPrice:         endPrice,
		StartShares:      startingShares,
		EndShares:        shares,
		ReinvestedShares: reinvested,
		StartValue:       startValue,
		EndValue:         endValue,
		ReinvestedValue:  reinvested * endPrice,
		ReturnPercent:    (endValue/startValue - 1) * 100,
		Factors:          factors,
	}

	log.Debug().
		Str("start_date", startDate).
		Str("end_date", endDate).
		Int("reinvested_events", len(factors)).
		Float64("end_shares", shares).
		Float64("return_pct", result.ReturnPercent).
		Msg("Computed DRIP window")

	return result
}

// ComputeWindows computes one independent DRIP result per requested
// lookback window, all ending at endDate. Window widening applies only
// to the 28-day entry; every other window is a plain trailing-calendar
// start. A nil or empty windowDays uses the default 4/13/26/52 week
// set; startingShares <= 0 defaults to 1.
func ComputeWindows(prices []drip.PricePoint, events []drip.DistributionEvent,
	endDate string, windowDays []int, startingShares float64, opts drip.Options) map[int]drip.Result {

	opts = opts.Normalize()
	if len(windowDays) == 0 {
		windowDays = drip.DefaultWindowDays()
	}
	if startingShares <= 0 || math.IsNaN(startingShares) {
		startingShares = 1
	}

	prices = sortedPrices(prices)
	events = sortedDistributions(events)
	frequency := InferFrequency(events, opts.Thresholds)

	results := make(map[int]drip.Result, len(windowDays))
	for _, days := range windowDays {
		startDate := AddCalendarDays(endDate, -days)
		actualDays := days

		if days == smartWindowDays {
			startDate, actualDays = SmartWindow(events, endDate, days, frequency.MinDistributions())
		}

		res := ComputeOverPeriod(prices, events, startDate, endDate, startingShares, opts)
		res.Meta.RequestedDays = days
		res.Meta.ActualDays = actualDays
		res.Meta.Widened = actualDays != days
		res.Meta.Frequency = frequency
		results[days] = res
	}

	return results
}

// inWindow reports window membership of an ex-date. The lower bound is
// always open; the upper bound follows the configured policy.
func inWindow(exDate, startDate, endDate string, policy drip.BoundaryPolicy) bool {
	if exDate <= startDate {
		return false
	}
	if policy == drip.BoundaryOpenOpen {
		return exDate < endDate
	}
	return exDate <= endDate
}
