package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/caseylessard/hilljump-sub001/internal/api/handlers"
	"github.com/caseylessard/hilljump-sub001/internal/domain/drip"
	"github.com/caseylessard/hilljump-sub001/internal/engine"
	"github.com/caseylessard/hilljump-sub001/internal/service/dripsync"
)

type memTickerRepo struct {
	tickers []drip.Ticker
}

func (m *memTickerRepo) ListActive(ctx context.Context) ([]drip.Ticker, error) {
	return m.tickers, nil
}

func (m *memTickerRepo) Get(ctx context.Context, symbol string) (*drip.Ticker, error) {
	for _, t := range m.tickers {
		if t.Symbol == symbol {
			return &t, nil
		}
	}
	return nil, drip.ErrTickerNotFound
}

type memPriceRepo struct {
	prices map[string][]drip.PricePoint
}

func (m *memPriceRepo) UpsertBatch(ctx context.Context, ticker string, prices []drip.PricePoint) (int, error) {
	return len(prices), nil
}

func (m *memPriceRepo) GetRange(ctx context.Context, ticker string, from, to string) ([]drip.PricePoint, error) {
	var out []drip.PricePoint
	for _, p := range m.prices[ticker] {
		if p.Date >= from && p.Date <= to {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPriceRepo) GetLatestDate(ctx context.Context, ticker string) (string, error) {
	series := m.prices[ticker]
	if len(series) == 0 {
		return "", drip.ErrPriceNotFound
	}
	return series[len(series)-1].Date, nil
}

type memDistRepo struct {
	events map[string][]drip.DistributionEvent
}

func (m *memDistRepo) UpsertBatch(ctx context.Context, ticker string, events []drip.DistributionEvent) (int, error) {
	return len(events), nil
}

func (m *memDistRepo) GetRange(ctx context.Context, ticker string, from, to string) ([]drip.DistributionEvent, error) {
	var out []drip.DistributionEvent
	for _, e := range m.events[ticker] {
		if e.ExDate >= from && e.ExDate <= to {
			out = append(out, e)
		}
	}
	return out, nil
}

type memResultRepo struct {
	mu     sync.Mutex
	stored map[string]map[int]drip.StoredResult
}

func (m *memResultRepo) Upsert(ctx context.Context, res drip.StoredResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stored == nil {
		m.stored = make(map[string]map[int]drip.StoredResult)
	}
	if m.stored[res.Ticker] == nil {
		m.stored[res.Ticker] = make(map[int]drip.StoredResult)
	}
	m.stored[res.Ticker][res.WindowDays] = res
	return nil
}

func (m *memResultRepo) GetByTicker(ctx context.Context, ticker string) ([]drip.StoredResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	windows, ok := m.stored[ticker]
	if !ok {
		return nil, drip.ErrResultNotFound
	}
	out := make([]drip.StoredResult, 0, len(windows))
	for _, res := range windows {
		out = append(out, res)
	}
	return out, nil
}

// newTestRouter wires a router over in-memory repositories with one
// active ticker holding 400 days of flat prices and two distributions.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	const endDate = "2024-06-28"
	var series []drip.PricePoint
	for i := 399; i >= 0; i-- {
		series = append(series, drip.PricePoint{
			Date:  engine.AddCalendarDays(endDate, -i),
			Close: 50,
		})
	}

	svc := dripsync.NewService(
		dripsync.DefaultConfig(),
		&memTickerRepo{tickers: []drip.Ticker{{Symbol: "FLAT", Active: true}}},
		&memPriceRepo{prices: map[string][]drip.PricePoint{"FLAT": series}},
		&memDistRepo{events: map[string][]drip.DistributionEvent{"FLAT": {
			{ExDate: "2024-05-15", Amount: 0.5},
			{ExDate: "2024-06-14", Amount: 0.5},
		}}},
		&memResultRepo{},
	)

	return NewRouter(&Config{
		DripHandler:   handlers.NewDripHandler(svc, &memResultRepo{}),
		HealthHandler: handlers.NewHealthHandler(nil),
		CORSOrigin:    "http://localhost:3000",
	})
}

func doRequest(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestRouter(t)

	rec := doRequest(t, h, http.MethodGet, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestGetDripReturnsAllWindows(t *testing.T) {
	h := newTestRouter(t)

	rec := doRequest(t, h, http.MethodGet, "/api/drip/FLAT")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data map[string]drip.Result `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	for _, key := range []string{"28", "91", "182", "364"} {
		if _, ok := envelope.Data[key]; !ok {
			t.Errorf("window %s missing from response", key)
		}
	}

	res := envelope.Data["91"]
	if res.Meta.Insufficient {
		t.Errorf("91-day window flagged insufficient on a full series")
	}
	if res.ReturnPercent <= 0 {
		t.Errorf("ReturnPercent = %v, want > 0 on flat prices with distributions", res.ReturnPercent)
	}
}

func TestGetDripUnknownTicker(t *testing.T) {
	h := newTestRouter(t)

	rec := doRequest(t, h, http.MethodGet, "/api/drip/NOPE")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestGetStoredEmpty(t *testing.T) {
	h := newTestRouter(t)

	// The handler's result repo is separate from the service's, so
	// nothing is stored regardless of prior computations.
	rec := doRequest(t, h, http.MethodGet, "/api/drip/FLAT/stored")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestRecomputeEndpoint(t *testing.T) {
	h := newTestRouter(t)

	rec := doRequest(t, h, http.MethodPost, "/api/drip/FLAT/recompute")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestRecomputeAllEndpoint(t *testing.T) {
	h := newTestRouter(t)

	rec := doRequest(t, h, http.MethodPost, "/api/drip/recompute-all")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data dripsync.BatchReport `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Processed != 1 || envelope.Data.Errored != 0 {
		t.Errorf("report = %d processed / %d errored, want 1/0",
			envelope.Data.Processed, envelope.Data.Errored)
	}
}

func TestCacheStatsEndpoint(t *testing.T) {
	h := newTestRouter(t)

	rec := doRequest(t, h, http.MethodGet, "/api/drip/cache/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var envelope struct {
		Data dripsync.CacheStats `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Size != 0 {
		t.Errorf("cache size = %d, want 0 before any request", envelope.Data.Size)
	}
}
