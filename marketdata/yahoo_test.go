package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rachitg/kitefolio/date"
)

// chartBody builds a minimal chart API response from (unix, close) pairs.
// A nil close is emitted as JSON null.
func chartBody(timestamps []int64, closes []*float64) string {
	ts := ""
	cl := ""
	for i, t := range timestamps {
		if i > 0 {
			ts += ","
			cl += ","
		}
		ts += fmt.Sprint(t)
		if closes[i] == nil {
			cl += "null"
		} else {
			cl += fmt.Sprint(*closes[i])
		}
	}
	return fmt.Sprintf(`{"chart":{"result":[{"timestamp":[%s],"indicators":{"quote":[{"close":[%s]}]}}],"error":null}}`, ts, cl)
}

func f(v float64) *float64 { return &v }

func TestParseChart(t *testing.T) {
	jan15 := date.MustParse("2025-01-15")
	jan16 := date.MustParse("2025-01-16")
	jan17 := date.MustParse("2025-01-17")

	body := chartBody(
		[]int64{jan15.Unix(), jan16.Unix(), jan17.Unix()},
		[]*float64{f(2500.5), nil, f(2510)},
	)

	prices, err := parseChart([]byte(body))
	require.NoError(t, err)
	assert.Len(t, prices, 2, "the null close must be skipped")
	assert.InDelta(t, 2500.5, prices[jan15], 1e-9)
	assert.InDelta(t, 2510.0, prices[jan17], 1e-9)
}

func TestParseChartErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"Not JSON", "<html>rate limited</html>"},
		{"Empty result", `{"chart":{"result":[],"error":{"code":"Not Found"}}}`},
		{"Mismatched lengths", `{"chart":{"result":[{"timestamp":[1],"indicators":{"quote":[{"close":[]}]}}]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseChart([]byte(tt.body))
			assert.Error(t, err)
		})
	}
}

func TestDailyPricesFetchesAndCaches(t *testing.T) {
	jan15 := date.MustParse("2025-01-15")
	jan16 := date.MustParse("2025-01-16")

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/v8/finance/chart/RELIANCE.NS", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		fmt.Fprint(w, chartBody(
			[]int64{jan15.Unix(), jan16.Unix()},
			[]*float64{f(2500), f(2505)},
		))
	}))
	defer srv.Close()

	client := NewClient(t.TempDir(), zerolog.Nop())
	client.BaseURL = srv.URL

	prices, err := client.DailyPrices(context.Background(), "RELIANCE.NS", jan15, jan16)
	require.NoError(t, err)
	assert.InDelta(t, 2500.0, prices[jan15], 1e-9)
	assert.InDelta(t, 2505.0, prices[jan16], 1e-9)

	// Second call over the same range must be served from the cache.
	prices, err = client.DailyPrices(context.Background(), "RELIANCE.NS", jan15, jan16)
	require.NoError(t, err)
	assert.Len(t, prices, 2)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDailyPricesWidensCachedRange(t *testing.T) {
	jan15 := date.MustParse("2025-01-15")
	jan16 := date.MustParse("2025-01-16")
	jan17 := date.MustParse("2025-01-17")

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, chartBody(
			[]int64{jan16.Unix(), jan17.Unix()},
			[]*float64{f(2505), f(2510)},
		))
	}))
	defer srv.Close()

	client := NewClient(t.TempDir(), zerolog.Nop())
	client.BaseURL = srv.URL

	require.NoError(t, client.cache.save("RELIANCE.NS", map[date.Date]float64{jan15: 2500}))

	// The cache only covers Jan 15, so the wider request refetches and the
	// merged result keeps the cached day.
	prices, err := client.DailyPrices(context.Background(), "RELIANCE.NS", jan15, jan17)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Len(t, prices, 3)
	assert.InDelta(t, 2500.0, prices[jan15], 1e-9)
	assert.InDelta(t, 2510.0, prices[jan17], 1e-9)
}

func TestDailyPricesTrimsCacheToRequestedRange(t *testing.T) {
	jan01 := date.MustParse("2025-01-01")
	jan10 := date.MustParse("2025-01-10")
	feb10 := date.MustParse("2025-02-10")

	client := NewClient(t.TempDir(), zerolog.Nop())
	require.NoError(t, client.cache.save("RELIANCE.NS", map[date.Date]float64{
		jan01: 2480,
		jan10: 2500,
		feb10: 2600,
	}))

	// The cache spans a wider window than the request; days outside
	// [start, end] must not leak into the result.
	prices, err := client.DailyPrices(context.Background(), "RELIANCE.NS",
		date.MustParse("2025-01-05"), date.MustParse("2025-01-15"))
	require.NoError(t, err)
	assert.Len(t, prices, 1)
	assert.InDelta(t, 2500.0, prices[jan10], 1e-9)
}

func TestPricesSkipsFailingTickers(t *testing.T) {
	jan15 := date.MustParse("2025-01-15")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v8/finance/chart/DELISTED.NS" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		fmt.Fprint(w, chartBody([]int64{jan15.Unix()}, []*float64{f(2500)}))
	}))
	defer srv.Close()

	client := NewClient(t.TempDir(), zerolog.Nop())
	client.BaseURL = srv.URL

	table := client.Prices([]string{"RELIANCE.NS", "DELISTED.NS"}, jan15, jan15)
	assert.Contains(t, table, "RELIANCE.NS")
	assert.NotContains(t, table, "DELISTED.NS")
}

func TestBenchmarkPrices(t *testing.T) {
	jan15 := date.MustParse("2025-01-15")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/^NSEI", r.URL.Path)
		fmt.Fprint(w, chartBody([]int64{jan15.Unix()}, []*float64{f(23000)}))
	}))
	defer srv.Close()

	client := NewClient(t.TempDir(), zerolog.Nop())
	client.BaseURL = srv.URL

	closes := client.BenchmarkPrices(jan15, jan15)
	assert.InDelta(t, 23000.0, closes[jan15], 1e-9)
}

func TestCoversRange(t *testing.T) {
	jan15 := date.MustParse("2025-01-15")
	jan17 := date.MustParse("2025-01-17")
	prices := map[date.Date]float64{jan15: 1, jan17: 2}

	assert.True(t, coversRange(prices, jan15, jan17))
	assert.True(t, coversRange(prices, date.MustParse("2025-01-16"), jan17))
	assert.False(t, coversRange(prices, date.MustParse("2025-01-14"), jan17))
	assert.False(t, coversRange(prices, jan15, date.MustParse("2025-01-18")))
	assert.False(t, coversRange(nil, jan15, jan17))
}
