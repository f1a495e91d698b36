// Package divhistory scrapes public dividend-history pages as a
// backfill source for distribution calendars. It only observes
// ex-dates and per-share amounts; pay dates are not published and stay
// inferred downstream.
package divhistory

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/caseylessard/hilljump-sub001/internal/domain/drip"
)

const (
	defaultBaseURL = "https://dividendhistory.org"
	defaultTimeout = 30 * time.Second
)

// Client fetches distribution history pages
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// NewClient creates a client with default timeout
func NewClient() *Client {
	return NewClientWithBaseURL(defaultBaseURL)
}

// NewClientWithBaseURL creates a client against a specific host
// (used by tests against httptest servers)
func NewClientWithBaseURL(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
	}
}

// FetchDistributions scrapes the distribution table for a ticker.
// Rows with unparseable dates or amounts are skipped.
func (c *Client) FetchDistributions(ctx context.Context, ticker string) ([]drip.DistributionEvent, error) {
	url := fmt.Sprintf("%s/payout/%s/", c.baseURL, strings.ToLower(ticker))

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var events []drip.DistributionEvent

	doc.Find("table#dividend_table tbody tr, table.dividend-history tbody tr").Each(func(i int, s *goquery.Selection) {
		tds := s.Find("td")
		if tds.Length() < 2 {
			return
		}

		exDate := parseISODate(tds.Eq(0).Text())
		if exDate == "" {
			return
		}

		amount, ok := parseAmount(tds.Eq(1).Text())
		if !ok {
			return
		}

		events = append(events, drip.DistributionEvent{
			ExDate: exDate,
			Amount: amount,
		})
	})

	log.Debug().
		Str("ticker", ticker).
		Int("count", len(events)).
		Msg("Fetched distribution history")

	return events, nil
}

// parseISODate normalizes a cell to YYYY-MM-DD, or "" when it isn't a date
func parseISODate(s string) string {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", "2006/01/02", "Jan 2, 2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// parseAmount parses a per-share cash amount like "$0.2512"
func parseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || s == "-" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
