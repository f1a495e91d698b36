package dripsync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/caseylessard/hilljump-sub001/internal/domain/drip"
)

// ============================================================================
// In-memory fakes
// ============================================================================

type fakeTickerRepo struct {
	tickers []drip.Ticker
}

func (f *fakeTickerRepo) ListActive(ctx context.Context) ([]drip.Ticker, error) {
	return f.tickers, nil
}

func (f *fakeTickerRepo) Get(ctx context.Context, symbol string) (*drip.Ticker, error) {
	for _, t := range f.tickers {
		if t.Symbol == symbol {
			return &t, nil
		}
	}
	return nil, drip.ErrTickerNotFound
}

type fakePriceRepo struct {
	prices map[string][]drip.PricePoint // ticker → series
}

func (f *fakePriceRepo) UpsertBatch(ctx context.Context, ticker string, prices []drip.PricePoint) (int, error) {
	return len(prices), nil
}

func (f *fakePriceRepo) GetRange(ctx context.Context, ticker string, from, to string) ([]drip.PricePoint, error) {
	var out []drip.PricePoint
	for _, p := range f.prices[ticker] {
		if p.Date >= from && p.Date <= to {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePriceRepo) GetLatestDate(ctx context.Context, ticker string) (string, error) {
	series := f.prices[ticker]
	if len(series) == 0 {
		return "", drip.ErrPriceNotFound
	}
	return series[len(series)-1].Date, nil
}

type fakeDistRepo struct {
	events map[string][]drip.DistributionEvent
}

func (f *fakeDistRepo) UpsertBatch(ctx context.Context, ticker string, events []drip.DistributionEvent) (int, error) {
	return len(events), nil
}

func (f *fakeDistRepo) GetRange(ctx context.Context, ticker string, from, to string) ([]drip.DistributionEvent, error) {
	var out []drip.DistributionEvent
	for _, e := range f.events[ticker] {
		if e.ExDate >= from && e.ExDate <= to {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeResultRepo struct {
	mu      sync.Mutex
	stored  map[string]map[int]drip.StoredResult // ticker → window → result
	failFor map[string]bool
}

func newFakeResultRepo() *fakeResultRepo {
	return &fakeResultRepo{
		stored:  make(map[string]map[int]drip.StoredResult),
		failFor: make(map[string]bool),
	}
}

func (f *fakeResultRepo) Upsert(ctx context.Context, res drip.StoredResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failFor[res.Ticker] {
		return errors.New("storage unavailable")
	}
	if f.stored[res.Ticker] == nil {
		f.stored[res.Ticker] = make(map[int]drip.StoredResult)
	}
	f.stored[res.Ticker][res.WindowDays] = res
	return nil
}

func (f *fakeResultRepo) GetByTicker(ctx context.Context, ticker string) ([]drip.StoredResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	windows, ok := f.stored[ticker]
	if !ok {
		return nil, drip.ErrResultNotFound
	}
	out := make([]drip.StoredResult, 0, len(windows))
	for _, res := range windows {
		out = append(out, res)
	}
	return out, nil
}

// ============================================================================
// Helpers
// ============================================================================

// flatSeries builds a year of daily closes ending at endDate
func flatSeries(endDate string, close float64) []drip.PricePoint {
	series := make([]drip.PricePoint, 0, 400)
	day, _ := time.Parse("2006-01-02", endDate)
	day = day.AddDate(0, 0, -399)
	for i := 0; i < 400; i++ {
		series = append(series, drip.PricePoint{Date: day.Format("2006-01-02"), Close: close})
		day = day.AddDate(0, 0, 1)
	}
	return series
}

func newTestService(tickers *fakeTickerRepo, prices *fakePriceRepo, dists *fakeDistRepo, results *fakeResultRepo) *Service {
	cfg := DefaultConfig()
	cfg.MaxConcurrent = 2
	cfg.CacheTTL = 50 * time.Millisecond
	return NewService(cfg, tickers, prices, dists, results)
}

// ============================================================================
// Tests
// ============================================================================

func TestRunBatchIsolatesFailures(t *testing.T) {
	tickers := &fakeTickerRepo{tickers: []drip.Ticker{
		{Symbol: "GOOD", Active: true},
		{Symbol: "NOPRICES", Active: true},
		{Symbol: "BADSTORE", Active: true},
	}}
	prices := &fakePriceRepo{prices: map[string][]drip.PricePoint{
		"GOOD":     flatSeries("2024-08-30", 100),
		"BADSTORE": flatSeries("2024-08-30", 50),
		// NOPRICES has no series at all
	}}
	dists := &fakeDistRepo{events: map[string][]drip.DistributionEvent{}}
	results := newFakeResultRepo()
	results.failFor["BADSTORE"] = true

	svc := newTestService(tickers, prices, dists, results)

	report, err := svc.RunBatch(context.Background())
	if err != nil {
		t.Fatalf("RunBatch returned error: %v", err)
	}

	if report.Processed != 1 {
		t.Errorf("Expected 1 processed, got %d", report.Processed)
	}
	if report.Errored != 2 {
		t.Errorf("Expected 2 errored, got %d", report.Errored)
	}

	// The good ticker has all four windows stored
	stored, err := results.GetByTicker(context.Background(), "GOOD")
	if err != nil {
		t.Fatalf("Expected stored results for GOOD: %v", err)
	}
	if len(stored) != 4 {
		t.Errorf("Expected 4 stored windows, got %d", len(stored))
	}
}

func TestBatchPersistsDegenerateResults(t *testing.T) {
	// Thin series: latest date exists but nothing covers the longer
	// window starts, so those windows come back insufficient. Still a
	// stored answer, not an error.
	thin := []drip.PricePoint{
		{Date: "2024-08-29", Close: 100},
		{Date: "2024-08-30", Close: 101},
	}
	tickers := &fakeTickerRepo{tickers: []drip.Ticker{{Symbol: "THIN", Active: true}}}
	prices := &fakePriceRepo{prices: map[string][]drip.PricePoint{"THIN": thin}}
	dists := &fakeDistRepo{events: map[string][]drip.DistributionEvent{}}
	results := newFakeResultRepo()

	svc := newTestService(tickers, prices, dists, results)

	report, err := svc.RunBatch(context.Background())
	if err != nil {
		t.Fatalf("RunBatch returned error: %v", err)
	}
	if report.Processed != 1 || report.Errored != 0 {
		t.Fatalf("Expected 1 processed / 0 errored, got %d / %d", report.Processed, report.Errored)
	}

	stored, err := results.GetByTicker(context.Background(), "THIN")
	if err != nil {
		t.Fatalf("Expected stored results: %v", err)
	}
	for _, res := range stored {
		if !res.Insufficient {
			t.Errorf("Window %d: expected insufficient marker", res.WindowDays)
		}
		if res.StartPrice != nil {
			t.Errorf("Window %d: expected NULL start price", res.WindowDays)
		}
	}
}

func TestGetWindowsUsesCache(t *testing.T) {
	tickers := &fakeTickerRepo{tickers: []drip.Ticker{{Symbol: "ETF1", Active: true}}}
	prices := &fakePriceRepo{prices: map[string][]drip.PricePoint{"ETF1": flatSeries("2024-08-30", 100)}}
	dists := &fakeDistRepo{events: map[string][]drip.DistributionEvent{}}
	results := newFakeResultRepo()

	svc := newTestService(tickers, prices, dists, results)
	ctx := context.Background()

	first, err := svc.GetWindows(ctx, "ETF1")
	if err != nil {
		t.Fatalf("GetWindows: %v", err)
	}
	if len(first) != 4 {
		t.Fatalf("Expected 4 windows, got %d", len(first))
	}

	stats := svc.Cache().Stats()
	if stats.Size != 1 {
		t.Errorf("Expected 1 cache entry, got %d", stats.Size)
	}

	// Second call hits the cache
	if _, err := svc.GetWindows(ctx, "ETF1"); err != nil {
		t.Fatalf("GetWindows: %v", err)
	}
	if svc.Cache().Stats().Hits < 1 {
		t.Error("Expected a cache hit on the second call")
	}
}

func TestCacheTTLExpiry(t *testing.T) {
	cache := NewCache(20 * time.Millisecond)
	windows := map[int]drip.Result{28: {StartDate: "2024-08-02", EndDate: "2024-08-30"}}

	cache.Set("ETF1", windows)
	if cache.Get("ETF1") == nil {
		t.Fatal("Expected entry before expiry")
	}

	time.Sleep(30 * time.Millisecond)

	if cache.Get("ETF1") != nil {
		t.Error("Expected entry to expire")
	}
	if cache.Stats().Size != 0 {
		t.Errorf("Expected expired entry to be evicted, size %d", cache.Stats().Size)
	}
}

func TestComputeTickerUnknownSymbol(t *testing.T) {
	tickers := &fakeTickerRepo{}
	svc := newTestService(tickers, &fakePriceRepo{}, &fakeDistRepo{}, newFakeResultRepo())

	_, err := svc.ComputeTicker(context.Background(), "MISSING")
	if !errors.Is(err, drip.ErrTickerNotFound) {
		t.Errorf("Expected ErrTickerNotFound, got %v", err)
	}
}

func TestCacheCopyOnRead(t *testing.T) {
	cache := NewCache(time.Minute)
	cache.Set("ETF1", map[int]drip.Result{28: {ReturnPercent: 5}})

	got := cache.Get("ETF1")
	got[28] = drip.Result{ReturnPercent: 99}

	again := cache.Get("ETF1")
	if again[28].ReturnPercent != 5 {
		t.Errorf("Cache entry was mutated through a read copy: %f", again[28].ReturnPercent)
	}
}
