package drip

import (
	"context"
)

// PriceRepository defines interface for daily price operations
type PriceRepository interface {
	// UpsertBatch inserts or updates daily closes, returns rows written
	UpsertBatch(ctx context.Context, ticker string, prices []PricePoint) (int, error)

	// GetRange returns closes with trade_date in [from, to], ascending
	GetRange(ctx context.Context, ticker string, from, to string) ([]PricePoint, error)

	// GetLatestDate returns the most recent trade date for a ticker
	GetLatestDate(ctx context.Context, ticker string) (string, error)
}

// DistributionRepository defines interface for distribution operations
type DistributionRepository interface {
	// UpsertBatch inserts or updates distribution events, returns rows written
	UpsertBatch(ctx context.Context, ticker string, events []DistributionEvent) (int, error)

	// GetRange returns events with ex_date in [from, to], ascending
	GetRange(ctx context.Context, ticker string, from, to string) ([]DistributionEvent, error)
}

// ResultRepository defines interface for persisted DRIP figures
type ResultRepository interface {
	// Upsert writes one result keyed by (ticker, window_days)
	Upsert(ctx context.Context, res StoredResult) error

	// GetByTicker returns all stored windows for a ticker
	GetByTicker(ctx context.Context, ticker string) ([]StoredResult, error)
}

// TickerRepository defines interface for the ETF universe
type TickerRepository interface {
	// ListActive returns all active tickers
	ListActive(ctx context.Context) ([]Ticker, error)

	// Get returns a single ticker
	Get(ctx context.Context, symbol string) (*Ticker, error)
}
