package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/caseylessard/hilljump-sub001/internal/domain/drip"
)

// displayPrecision is the decimal precision of persisted figures.
// The engine itself never rounds; rounding happens only here, at the
// presentation/persistence boundary.
const displayPrecision = 4

// ResultRepository PostgreSQL DRIP result store (market.drip_results)
type ResultRepository struct {
	pool *Pool
}

// NewResultRepository creates the repository
func NewResultRepository(pool *Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// Upsert writes one result keyed by (ticker, window_days)
func (r *ResultRepository) Upsert(ctx context.Context, res drip.StoredResult) error {
	query := `
		INSERT INTO market.drip_results
			(ticker, window_days, start_date, end_date, return_pct, dollar_value,
			 start_price, end_price, end_shares, reinvested_shares,
			 frequency, requested_days, actual_days, insufficient, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (ticker, window_days) DO UPDATE SET
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			return_pct = EXCLUDED.return_pct,
			dollar_value = EXCLUDED.dollar_value,
			start_price = EXCLUDED.start_price,
			end_price = EXCLUDED.end_price,
			end_shares = EXCLUDED.end_shares,
			reinvested_shares = EXCLUDED.reinvested_shares,
			frequency = EXCLUDED.frequency,
			requested_days = EXCLUDED.requested_days,
			actual_days = EXCLUDED.actual_days,
			insufficient = EXCLUDED.insufficient,
			computed_at = EXCLUDED.computed_at
	`

	_, err := r.pool.Exec(ctx, query,
		res.Ticker, res.WindowDays, res.StartDate, res.EndDate,
		roundDisplay(res.ReturnPercent), roundDisplay(res.DollarValue),
		roundDisplayPtr(res.StartPrice), roundDisplayPtr(res.EndPrice),
		roundDisplay(res.EndShares), roundDisplay(res.ReinvestedShares),
		string(res.Frequency), res.RequestedDays, res.ActualDays,
		res.Insufficient, res.ComputedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert drip result: %w", err)
	}

	return nil
}

// GetByTicker returns all stored windows for a ticker, shortest first
func (r *ResultRepository) GetByTicker(ctx context.Context, ticker string) ([]drip.StoredResult, error) {
	query := `
		SELECT ticker, window_days, start_date, end_date, return_pct, dollar_value,
		       start_price, end_price, end_shares, reinvested_shares,
		       frequency, requested_days, actual_days, insufficient, computed_at
		FROM market.drip_results
		WHERE ticker = $1
		ORDER BY window_days ASC
	`

	rows, err := r.pool.Query(ctx, query, ticker)
	if err != nil {
		return nil, fmt.Errorf("query drip results: %w", err)
	}
	defer rows.Close()

	var results []drip.StoredResult
	for rows.Next() {
		var res drip.StoredResult
		var startDate, endDate time.Time
		var returnPct, dollarValue, endShares, reinvested decimal.Decimal
		var startPrice, endPrice *decimal.Decimal
		var frequency string

		if err := rows.Scan(
			&res.Ticker, &res.WindowDays, &startDate, &endDate,
			&returnPct, &dollarValue, &startPrice, &endPrice,
			&endShares, &reinvested, &frequency,
			&res.RequestedDays, &res.ActualDays, &res.Insufficient, &res.ComputedAt,
		); err != nil {
			return nil, fmt.Errorf("scan drip result: %w", err)
		}

		res.StartDate = startDate.Format(isoDate)
		res.EndDate = endDate.Format(isoDate)
		res.ReturnPercent = returnPct.InexactFloat64()
		res.DollarValue = dollarValue.InexactFloat64()
		res.EndShares = endShares.InexactFloat64()
		res.ReinvestedShares = reinvested.InexactFloat64()
		res.Frequency = drip.Frequency(frequency)
		if startPrice != nil {
			v := startPrice.InexactFloat64()
			res.StartPrice = &v
		}
		if endPrice != nil {
			v := endPrice.InexactFloat64()
			res.EndPrice = &v
		}

		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(results) == 0 {
		return nil, drip.ErrResultNotFound
	}

	return results, nil
}

// roundDisplay rounds a figure to storage precision
func roundDisplay(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(displayPrecision)
}

// roundDisplayPtr rounds an optional figure; nil stays NULL
func roundDisplayPtr(v *float64) *decimal.Decimal {
	if v == nil {
		return nil
	}
	d := decimal.NewFromFloat(*v).Round(displayPrecision)
	return &d
}
