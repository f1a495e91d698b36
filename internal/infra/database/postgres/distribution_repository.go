package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/caseylessard/hilljump-sub001/internal/domain/drip"
)

// DistributionRepository PostgreSQL distribution store (market.distributions)
type DistributionRepository struct {
	pool *Pool
}

// NewDistributionRepository creates the repository
func NewDistributionRepository(pool *Pool) *DistributionRepository {
	return &DistributionRepository{pool: pool}
}

// UpsertBatch writes distribution events in one batch, returns rows written
func (r *DistributionRepository) UpsertBatch(ctx context.Context, ticker string, events []drip.DistributionEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO market.distributions (ticker, ex_date, amount)
		VALUES ($1, $2, $3)
		ON CONFLICT (ticker, ex_date) DO UPDATE SET
			amount = EXCLUDED.amount
	`

	for _, e := range events {
		batch.Queue(query, ticker, e.ExDate, decimal.NewFromFloat(e.Amount))
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	count := 0
	for range events {
		if _, err := br.Exec(); err != nil {
			return count, fmt.Errorf("batch upsert distribution: %w", err)
		}
		count++
	}

	return count, nil
}

// GetRange returns events with ex_date in [from, to], ascending
func (r *DistributionRepository) GetRange(ctx context.Context, ticker string, from, to string) ([]drip.DistributionEvent, error) {
	query := `
		SELECT ex_date, amount
		FROM market.distributions
		WHERE ticker = $1 AND ex_date >= $2 AND ex_date <= $3
		ORDER BY ex_date ASC
	`

	rows, err := r.pool.Query(ctx, query, ticker, from, to)
	if err != nil {
		return nil, fmt.Errorf("query distributions: %w", err)
	}
	defer rows.Close()

	var events []drip.DistributionEvent
	for rows.Next() {
		var exDate time.Time
		var amount decimal.Decimal
		if err := rows.Scan(&exDate, &amount); err != nil {
			return nil, fmt.Errorf("scan distribution: %w", err)
		}
		events = append(events, drip.DistributionEvent{
			ExDate: exDate.Format(isoDate),
			Amount: amount.InexactFloat64(),
		})
	}

	return events, rows.Err()
}
