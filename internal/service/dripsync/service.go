// Package dripsync runs the DRIP engine against stored market data:
// a batch path that recomputes every active ticker, and an on-demand
// path for single tickers with request deduplication and a TTL cache.
package dripsync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/caseylessard/hilljump-sub001/internal/domain/drip"
	"github.com/caseylessard/hilljump-sub001/internal/engine"
)

// Config holds service settings
type Config struct {
	// WindowDays is the lookback set computed per ticker
	WindowDays []int

	// StartingShares for every computation
	StartingShares float64

	// Options passed to the engine
	Options drip.Options

	// LookbackDays of price/distribution history loaded per ticker;
	// must cover the longest window plus widening headroom
	LookbackDays int

	// MaxConcurrent bounds the batch worker pool
	MaxConcurrent int

	// CacheTTL for on-demand results
	CacheTTL time.Duration
}

// DefaultConfig returns service defaults
func DefaultConfig() *Config {
	return &Config{
		WindowDays:     drip.DefaultWindowDays(),
		StartingShares: 1,
		Options:        drip.DefaultOptions(),
		LookbackDays:   400,
		MaxConcurrent:  8,
		CacheTTL:       15 * time.Minute,
	}
}

// Service computes and persists DRIP figures
type Service struct {
	config *Config

	tickerRepo drip.TickerRepository
	priceRepo  drip.PriceRepository
	distRepo   drip.DistributionRepository
	resultRepo drip.ResultRepository

	cache *Cache
	group singleflight.Group
}

// NewService creates the service
func NewService(
	config *Config,
	tickerRepo drip.TickerRepository,
	priceRepo drip.PriceRepository,
	distRepo drip.DistributionRepository,
	resultRepo drip.ResultRepository,
) *Service {
	if config == nil {
		config = DefaultConfig()
	}
	return &Service{
		config:     config,
		tickerRepo: tickerRepo,
		priceRepo:  priceRepo,
		distRepo:   distRepo,
		resultRepo: resultRepo,
		cache:      NewCache(config.CacheTTL),
	}
}

// Cache exposes the injected result cache (for handler stats)
func (s *Service) Cache() *Cache {
	return s.cache
}

// BatchReport summarizes one batch run
type BatchReport struct {
	RunID     string        `json:"run_id"`
	Processed int           `json:"processed"`
	Errored   int           `json:"errored"`
	Duration  time.Duration `json:"duration"`
}

// RunBatch recomputes DRIP windows for every active ticker.
// Tickers run on a bounded worker pool; one ticker's failure or
// data gap never aborts the run, it is logged and counted.
func (s *Service) RunBatch(ctx context.Context) (BatchReport, error) {
	runID := uuid.New().String()
	start := time.Now()

	tickers, err := s.tickerRepo.ListActive(ctx)
	if err != nil {
		return BatchReport{RunID: runID}, fmt.Errorf("list tickers: %w", err)
	}

	log.Info().
		Str("run_id", runID).
		Int("tickers", len(tickers)).
		Int("max_concurrent", s.config.MaxConcurrent).
		Msg("Starting DRIP batch run")

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		processed int
		errored   int
	)
	sem := make(chan struct{}, s.config.MaxConcurrent)

	for _, t := range tickers {
		wg.Add(1)
		sem <- struct{}{}

		go func(symbol string) {
			defer wg.Done()
			defer func() { <-sem }()

			if _, err := s.computeAndStore(ctx, symbol); err != nil {
				log.Error().
					Err(err).
					Str("run_id", runID).
					Str("ticker", symbol).
					Msg("DRIP computation failed")
				mu.Lock()
				errored++
				mu.Unlock()
				return
			}

			mu.Lock()
			processed++
			mu.Unlock()
		}(t.Symbol)
	}

	wg.Wait()

	report := BatchReport{
		RunID:     runID,
		Processed: processed,
		Errored:   errored,
		Duration:  time.Since(start),
	}

	log.Info().
		Str("run_id", runID).
		Int("processed", report.Processed).
		Int("errored", report.Errored).
		Dur("duration", report.Duration).
		Msg("DRIP batch run finished")

	return report, nil
}

// computeAndStore loads one ticker's history, runs the engine, and
// persists every window. Degenerate (insufficient-data) results are
// persisted too; they are a valid answer, not a failure.
func (s *Service) computeAndStore(ctx context.Context, symbol string) (map[int]drip.Result, error) {
	endDate, err := s.priceRepo.GetLatestDate(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("latest trade date: %w", err)
	}

	fromDate := engine.AddCalendarDays(endDate, -s.config.LookbackDays)

	prices, err := s.priceRepo.GetRange(ctx, symbol, fromDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("load prices: %w", err)
	}

	events, err := s.distRepo.GetRange(ctx, symbol, fromDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("load distributions: %w", err)
	}

	windows := engine.ComputeWindows(prices, events, endDate,
		s.config.WindowDays, s.config.StartingShares, s.config.Options)

	computedAt := time.Now()
	for days, res := range windows {
		if err := s.resultRepo.Upsert(ctx, toStored(symbol, days, res, computedAt)); err != nil {
			return nil, fmt.Errorf("store window %d: %w", days, err)
		}
	}

	return windows, nil
}

// toStored maps an engine result to its persisted form. NaN prices
// (insufficient data) become NULL columns.
func toStored(symbol string, days int, res drip.Result, computedAt time.Time) drip.StoredResult {
	stored := drip.StoredResult{
		Ticker:           symbol,
		WindowDays:       days,
		StartDate:        res.StartDate,
		EndDate:          res.EndDate,
		ReturnPercent:    res.ReturnPercent,
		DollarValue:      res.ReinvestedValue,
		EndShares:        res.EndShares,
		ReinvestedShares: res.ReinvestedShares,
		Frequency:        res.Meta.Frequency,
		RequestedDays:    res.Meta.RequestedDays,
		ActualDays:       res.Meta.ActualDays,
		Insufficient:     res.Meta.Insufficient,
		ComputedAt:       computedAt,
	}

	if !res.Insufficient() {
		startPrice := res.StartPrice
		endPrice := res.EndPrice
		stored.StartPrice = &startPrice
		stored.EndPrice = &endPrice
	}

	return stored
}
