package drip

import (
	"encoding/json"
	"math"
	"time"
)

// Frequency represents an inferred distribution schedule
type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyUnknown   Frequency = "unknown"
)

// IsValid checks if frequency is valid
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly, FrequencyUnknown:
		return true
	default:
		return false
	}
}

// MinDistributions returns the minimum number of events a short window
// should capture before its DRIP figure is considered meaningful.
// Weekly payers need several events; slower payers need one.
func (f Frequency) MinDistributions() int {
	if f == FrequencyWeekly {
		return 4
	}
	return 1
}

// FrequencyThresholds holds the mean-interval cutoffs (in days) used to
// classify a distribution schedule. The values are inherited heuristics
// with no stated derivation; they are configurable, not tuned.
type FrequencyThresholds struct {
	WeeklyMaxDays    float64
	MonthlyMaxDays   float64
	QuarterlyMaxDays float64
}

// DefaultFrequencyThresholds returns the historical cutoffs
func DefaultFrequencyThresholds() FrequencyThresholds {
	return FrequencyThresholds{
		WeeklyMaxDays:    10,
		MonthlyMaxDays:   40,
		QuarterlyMaxDays: 120,
	}
}

// PricePoint represents one daily close for a ticker
// Maps to market.daily_prices table
type PricePoint struct {
	Date  string  `json:"date" db:"trade_date"` // ISO YYYY-MM-DD, no time component
	Close float64 `json:"close" db:"close_price"`
}

// DistributionEvent represents a single dividend/distribution.
// Only the ex-date is observed; the pay date is inferred downstream.
// Maps to market.distributions table
type DistributionEvent struct {
	ExDate string  `json:"ex_date" db:"ex_date"` // ISO YYYY-MM-DD
	Amount float64 `json:"amount" db:"amount"`   // per share, gross
}

// BoundaryPolicy controls whether a distribution landing exactly on the
// window end date is counted
type BoundaryPolicy string

const (
	// BoundaryOpenClosed counts ex-dates in (start, end]
	BoundaryOpenClosed BoundaryPolicy = "open-closed"
	// BoundaryOpenOpen counts ex-dates in (start, end)
	BoundaryOpenOpen BoundaryPolicy = "open-open"
)

// IsValid checks if policy is valid
func (p BoundaryPolicy) IsValid() bool {
	return p == BoundaryOpenClosed || p == BoundaryOpenOpen
}

// Options controls a single DRIP computation
type Options struct {
	// Boundary selects window membership for ex-dates (default open-closed)
	Boundary BoundaryPolicy

	// PayOffsetDays is the assumed lag between ex-date and pay date.
	// The data source does not carry true pay dates.
	PayOffsetDays int

	// UseBusinessDays applies PayOffsetDays in business days (weekends
	// skipped) rather than calendar days
	UseBusinessDays bool

	// TaxWithholdRate is the already-resolved withholding rate in [0, 1).
	// Residency/domicile treaty resolution is caller logic.
	TaxWithholdRate float64

	// Thresholds for frequency inference; zero value means defaults
	Thresholds FrequencyThresholds
}

// DefaultOptions returns engine defaults
func DefaultOptions() Options {
	return Options{
		Boundary:        BoundaryOpenClosed,
		PayOffsetDays:   2,
		UseBusinessDays: true,
		TaxWithholdRate: 0,
		Thresholds:      DefaultFrequencyThresholds(),
	}
}

// Normalize fills zero-valued fields with defaults
func (o Options) Normalize() Options {
	if !o.Boundary.IsValid() {
		o.Boundary = BoundaryOpenClosed
	}
	if o.Thresholds == (FrequencyThresholds{}) {
		o.Thresholds = DefaultFrequencyThresholds()
	}
	return o
}

// ReinvestmentFactor is one entry of the audit trail: a single
// distribution actually reinvested inside a window. Append-only, never
// mutated after creation.
type ReinvestmentFactor struct {
	ExDate            string  `json:"ex_date"`
	PayReferenceDate  string  `json:"pay_reference_date"` // ex-date + offset, before trading-day alignment
	ReinvestmentDate  string  `json:"reinvestment_date"`  // first trading day at/after the reference
	ReinvestmentPrice float64 `json:"reinvestment_price"`
	NetAmountPerShare float64 `json:"net_amount_per_share"`
	Factor            float64 `json:"factor"` // 1 + net/price
}

// WindowMeta records how a window was actually measured, so callers can
// tell a true trailing window from a widened approximation.
type WindowMeta struct {
	RequestedDays int       `json:"requested_days"`
	ActualDays    int       `json:"actual_days"`
	Widened       bool      `json:"widened"`
	Frequency     Frequency `json:"frequency"`
	Insufficient  bool      `json:"insufficient"`
}

// Result is the outcome of one DRIP computation over one window.
// Constructed fresh per call; the engine never caches.
type Result struct {
	StartDate        string               `json:"start_date"`
	EndDate          string               `json:"end_date"`
	StartPrice       float64              `json:"start_price"` // NaN when insufficient
	EndPrice         float64              `json:"end_price"`   // NaN when insufficient
	StartShares      float64              `json:"start_shares"`
	EndShares        float64              `json:"end_shares"`
	ReinvestedShares float64              `json:"reinvested_shares"`
	StartValue       float64              `json:"start_value"`
	EndValue         float64              `json:"end_value"`
	ReinvestedValue  float64              `json:"reinvested_value"` // dollar value added by reinvestment
	ReturnPercent    float64              `json:"return_percent"`
	Factors          []ReinvestmentFactor `json:"factors"`
	Meta             WindowMeta           `json:"meta"`
}

// Insufficient reports whether this is a degenerate insufficient-data result
func (r Result) Insufficient() bool {
	return r.Meta.Insufficient
}

// MarshalJSON renders NaN prices as null; encoding/json rejects NaN
func (r Result) MarshalJSON() ([]byte, error) {
	type plain Result
	out := struct {
		plain
		StartPrice *float64 `json:"start_price"`
		EndPrice   *float64 `json:"end_price"`
	}{plain: plain(r)}

	if !math.IsNaN(r.StartPrice) {
		out.StartPrice = &r.StartPrice
	}
	if !math.IsNaN(r.EndPrice) {
		out.EndPrice = &r.EndPrice
	}
	return json.Marshal(out)
}

// Degenerate builds the documented insufficient-data result: NaN prices,
// zero activity, empty audit trail. Returned instead of an error so
// batch callers never abort on one ticker's data gap.
func Degenerate(startDate, endDate string, meta WindowMeta) Result {
	meta.Insufficient = true
	return Result{
		StartDate:  startDate,
		EndDate:    endDate,
		StartPrice: math.NaN(),
		EndPrice:   math.NaN(),
		Factors:    []ReinvestmentFactor{},
		Meta:       meta,
	}
}

// DefaultWindowDays is the standard lookback set: 4/13/26/52 weeks
func DefaultWindowDays() []int {
	return []int{28, 91, 182, 364}
}

// Ticker represents one tracked ETF
// Maps to market.tickers table
type Ticker struct {
	Symbol    string    `json:"symbol" db:"ticker"`
	Name      string    `json:"name" db:"name"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// StoredResult is the persisted, display-rounded form of a Result
// Maps to market.drip_results table
type StoredResult struct {
	Ticker           string    `json:"ticker" db:"ticker"`
	WindowDays       int       `json:"window_days" db:"window_days"`
	StartDate        string    `json:"start_date" db:"start_date"`
	EndDate          string    `json:"end_date" db:"end_date"`
	ReturnPercent    float64   `json:"return_percent" db:"return_pct"`
	DollarValue      float64   `json:"dollar_value" db:"dollar_value"`
	StartPrice       *float64  `json:"start_price" db:"start_price"` // nil when insufficient
	EndPrice         *float64  `json:"end_price" db:"end_price"`
	EndShares        float64   `json:"end_shares" db:"end_shares"`
	ReinvestedShares float64   `json:"reinvested_shares" db:"reinvested_shares"`
	Frequency        Frequency `json:"frequency" db:"frequency"`
	RequestedDays    int       `json:"requested_days" db:"requested_days"`
	ActualDays       int       `json:"actual_days" db:"actual_days"`
	Insufficient     bool      `json:"insufficient" db:"insufficient"`
	ComputedAt       time.Time `json:"computed_at" db:"computed_at"`
}
