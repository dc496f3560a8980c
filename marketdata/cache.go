package marketdata

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rachitg/kitefolio/date"
)

// priceCache persists daily closes as one CSV file per ticker, rows of
// "date,close" sorted by date. Closes are kept as decimals on disk to
// round-trip Yahoo's values without float formatting noise.
type priceCache struct {
	dir string
}

// load returns the cached closes for ticker, or nil when nothing is cached.
func (c priceCache) load(ticker string) (map[date.Date]float64, error) {
	f, err := os.Open(c.path(ticker))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading price cache for %s: %w", ticker, err)
	}

	prices := make(map[date.Date]float64, len(records))
	for _, rec := range records {
		if len(rec) != 2 {
			return nil, fmt.Errorf("price cache for %s: malformed row %v", ticker, rec)
		}
		day, err := date.Parse(rec[0])
		if err != nil {
			return nil, fmt.Errorf("price cache for %s: %w", ticker, err)
		}
		close, err := decimal.NewFromString(rec[1])
		if err != nil {
			return nil, fmt.Errorf("price cache for %s: %w", ticker, err)
		}
		prices[day] = close.InexactFloat64()
	}
	return prices, nil
}

// save writes the closes for ticker, replacing any previous file.
func (c priceCache) save(ticker string, prices map[date.Date]float64) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("creating price cache directory: %w", err)
	}

	days := make([]date.Date, 0, len(prices))
	for day := range prices {
		days = append(days, day)
	}
	slices.SortFunc(days, date.Date.Compare)

	f, err := os.Create(c.path(ticker))
	if err != nil {
		return fmt.Errorf("creating price cache for %s: %w", ticker, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	for _, day := range days {
		row := []string{day.String(), decimal.NewFromFloat(prices[day]).String()}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing price cache for %s: %w", ticker, err)
		}
	}
	w.Flush()
	return w.Error()
}

func (c priceCache) path(ticker string) string {
	return filepath.Join(c.dir, safeFileName(ticker)+".csv")
}

// safeFileName maps a ticker to a filesystem-safe name. Index tickers such
// as ^NSEI carry characters that some filesystems reject.
func safeFileName(ticker string) string {
	r := strings.NewReplacer("^", "_", "/", "_", "\\", "_", ":", "_")
	return r.Replace(ticker)
}
