package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/caseylessard/hilljump-sub001/internal/domain/drip"
)

// TickerRepository PostgreSQL ETF universe store (market.tickers)
type TickerRepository struct {
	pool *Pool
}

// NewTickerRepository creates the repository
func NewTickerRepository(pool *Pool) *TickerRepository {
	return &TickerRepository{pool: pool}
}

// ListActive returns all active tickers
func (r *TickerRepository) ListActive(ctx context.Context) ([]drip.Ticker, error) {
	query := `
		SELECT ticker, name, active, created_at
		FROM market.tickers
		WHERE active = true
		ORDER BY ticker ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query tickers: %w", err)
	}
	defer rows.Close()

	var tickers []drip.Ticker
	for rows.Next() {
		var t drip.Ticker
		if err := rows.Scan(&t.Symbol, &t.Name, &t.Active, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ticker: %w", err)
		}
		tickers = append(tickers, t)
	}

	return tickers, rows.Err()
}

// Get returns a single ticker
func (r *TickerRepository) Get(ctx context.Context, symbol string) (*drip.Ticker, error) {
	query := `
		SELECT ticker, name, active, created_at
		FROM market.tickers
		WHERE ticker = $1
	`

	var t drip.Ticker
	err := r.pool.QueryRow(ctx, query, symbol).Scan(&t.Symbol, &t.Name, &t.Active, &t.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, drip.ErrTickerNotFound
		}
		return nil, fmt.Errorf("get ticker: %w", err)
	}

	return &t, nil
}
