// Package marketdata fetches daily closing prices from Yahoo Finance's
// chart API and caches them on disk, one CSV file per ticker. A cached
// range that already covers the request is served without any network
// round trip.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/rs/zerolog"

	"github.com/rachitg/kitefolio"
	"github.com/rachitg/kitefolio/date"
)

// DefaultBaseURL is Yahoo Finance's public chart endpoint.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Yahoo rejects requests without a browser-looking agent.
const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36"

// Client fetches daily closes from Yahoo Finance. It implements
// kitefolio.PriceSource: per-ticker failures degrade to empty price maps
// with a logged warning, they never fail an analysis run.
type Client struct {
	// BaseURL may be overridden for tests.
	BaseURL string

	httpClient *http.Client
	cache      priceCache
	log        zerolog.Logger
}

// NewClient returns a Client caching under cacheDir.
func NewClient(cacheDir string, log zerolog.Logger) *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cache:      priceCache{dir: cacheDir},
		log:        log.With().Str("component", "marketdata").Logger(),
	}
}

// DailyPrices returns the daily closes of ticker over the closed range
// [start, end]. The cache is consulted first; after a fetch the merged
// result is written back so subsequent runs widen the cached range.
func (c *Client) DailyPrices(ctx context.Context, ticker string, start, end date.Date) (map[date.Date]float64, error) {
	cached, err := c.cache.load(ticker)
	if err != nil {
		c.log.Warn().Err(err).Str("ticker", ticker).Msg("price cache unreadable, refetching")
		cached = nil
	}
	if coversRange(cached, start, end) {
		c.log.Debug().Str("ticker", ticker).Int("days", len(cached)).Msg("price cache hit")
		return filterRange(cached, start, end), nil
	}

	fetched, err := c.fetch(ctx, ticker, start, end)
	if err != nil {
		return nil, err
	}

	if cached == nil {
		cached = make(map[date.Date]float64, len(fetched))
	}
	for day, close := range fetched {
		cached[day] = close
	}
	if err := c.cache.save(ticker, cached); err != nil {
		c.log.Warn().Err(err).Str("ticker", ticker).Msg("price cache write failed")
	}
	return filterRange(cached, start, end), nil
}

// Prices implements kitefolio.PriceSource. A ticker whose fetch fails is
// left out of the table entirely; the analysis reports it as a warning.
func (c *Client) Prices(tickers []string, start, end date.Date) kitefolio.PriceTable {
	table := make(kitefolio.PriceTable, len(tickers))
	for _, ticker := range tickers {
		prices, err := c.DailyPrices(context.Background(), ticker, start, end)
		if err != nil {
			c.log.Warn().Err(err).Str("ticker", ticker).Msg("no prices fetched")
			continue
		}
		table[ticker] = prices
	}
	return table
}

// BenchmarkPrices implements kitefolio.PriceSource for the Nifty 50 index.
func (c *Client) BenchmarkPrices(start, end date.Date) map[date.Date]float64 {
	prices, err := c.DailyPrices(context.Background(), kitefolio.BenchmarkTicker, start, end)
	if err != nil {
		c.log.Warn().Err(err).Msg("no benchmark prices fetched")
		return nil
	}
	return prices
}

// fetch performs one chart API call. period2 is exclusive, so the end date
// is pushed one day out to keep the range closed.
func (c *Client) fetch(ctx context.Context, ticker string, start, end date.Date) (map[date.Date]float64, error) {
	addr := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d",
		c.BaseURL, ticker, start.Unix(), end.Add(1).Unix())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching chart for %s: %w", ticker, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chart API for %s: %s", ticker, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading chart response for %s: %w", ticker, err)
	}
	return parseChart(body)
}

// parseChart extracts (timestamp, close) pairs from a chart API response.
// Days with a null close (holidays, suspended sessions) are skipped.
func parseChart(body []byte) (map[date.Date]float64, error) {
	var payload interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decoding chart response: %w", err)
	}

	rawTimestamps, err := jsonpath.Get("$.chart.result[0].timestamp", payload)
	if err != nil {
		return nil, fmt.Errorf("chart response has no timestamps: %w", err)
	}
	rawCloses, err := jsonpath.Get("$.chart.result[0].indicators.quote[0].close", payload)
	if err != nil {
		return nil, fmt.Errorf("chart response has no closes: %w", err)
	}

	timestamps, ok := rawTimestamps.([]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected timestamp shape %T", rawTimestamps)
	}
	closes, ok := rawCloses.([]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected close shape %T", rawCloses)
	}
	if len(timestamps) != len(closes) {
		return nil, fmt.Errorf("chart response has %d timestamps but %d closes", len(timestamps), len(closes))
	}

	prices := make(map[date.Date]float64, len(timestamps))
	for i, rawTS := range timestamps {
		ts, ok := rawTS.(float64)
		if !ok {
			return nil, fmt.Errorf("unexpected timestamp value %v", rawTS)
		}
		close, ok := closes[i].(float64)
		if !ok { // null close
			continue
		}
		prices[date.FromUnix(int64(ts))] = close
	}
	return prices, nil
}

// filterRange returns only the closes falling inside [start, end]. The
// cache may span far more than one analysis window; callers always get the
// window they asked for.
func filterRange(prices map[date.Date]float64, start, end date.Date) map[date.Date]float64 {
	filtered := make(map[date.Date]float64, len(prices))
	for day, close := range prices {
		if day.Before(start) || day.After(end) {
			continue
		}
		filtered[day] = close
	}
	return filtered
}

// coversRange reports whether the cached prices already span [start, end].
func coversRange(prices map[date.Date]float64, start, end date.Date) bool {
	if len(prices) == 0 {
		return false
	}
	var earliest, latest date.Date
	first := true
	for day := range prices {
		if first {
			earliest, latest = day, day
			first = false
			continue
		}
		if day.Before(earliest) {
			earliest = day
		}
		if day.After(latest) {
			latest = day
		}
	}
	return !start.Before(earliest) && !latest.Before(end)
}
