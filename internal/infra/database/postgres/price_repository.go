package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/caseylessard/hilljump-sub001/internal/domain/drip"
)

const isoDate = "2006-01-02"

// PriceRepository PostgreSQL daily close store (market.daily_prices)
type PriceRepository struct {
	pool *Pool
}

// NewPriceRepository creates the repository
func NewPriceRepository(pool *Pool) *PriceRepository {
	return &PriceRepository{pool: pool}
}

// UpsertBatch writes daily closes in one batch, returns rows written
func (r *PriceRepository) UpsertBatch(ctx context.Context, ticker string, prices []drip.PricePoint) (int, error) {
	if len(prices) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO market.daily_prices (ticker, trade_date, close_price)
		VALUES ($1, $2, $3)
		ON CONFLICT (ticker, trade_date) DO UPDATE SET
			close_price = EXCLUDED.close_price
	`

	for _, p := range prices {
		batch.Queue(query, ticker, p.Date, decimal.NewFromFloat(p.Close))
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	count := 0
	for range prices {
		if _, err := br.Exec(); err != nil {
			return count, fmt.Errorf("batch upsert price: %w", err)
		}
		count++
	}

	return count, nil
}

// GetRange returns closes with trade_date in [from, to], ascending
func (r *PriceRepository) GetRange(ctx context.Context, ticker string, from, to string) ([]drip.PricePoint, error) {
	query := `
		SELECT trade_date, close_price
		FROM market.daily_prices
		WHERE ticker = $1 AND trade_date >= $2 AND trade_date <= $3
		ORDER BY trade_date ASC
	`

	rows, err := r.pool.Query(ctx, query, ticker, from, to)
	if err != nil {
		return nil, fmt.Errorf("query prices: %w", err)
	}
	defer rows.Close()

	var prices []drip.PricePoint
	for rows.Next() {
		var tradeDate time.Time
		var closePrice decimal.Decimal
		if err := rows.Scan(&tradeDate, &closePrice); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		prices = append(prices, drip.PricePoint{
			Date:  tradeDate.Format(isoDate),
			Close: closePrice.InexactFloat64(),
		})
	}

	return prices, rows.Err()
}

// GetLatestDate returns the most recent trade date for a ticker
func (r *PriceRepository) GetLatestDate(ctx context.Context, ticker string) (string, error) {
	query := `
		SELECT trade_date
		FROM market.daily_prices
		WHERE ticker = $1
		ORDER BY trade_date DESC
		LIMIT 1
	`

	var tradeDate time.Time
	err := r.pool.QueryRow(ctx, query, ticker).Scan(&tradeDate)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", drip.ErrPriceNotFound
		}
		return "", fmt.Errorf("get latest trade date: %w", err)
	}

	return tradeDate.Format(isoDate), nil
}
