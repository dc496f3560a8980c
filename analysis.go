package kitefolio

import (
	"slices"

	"github.com/rachitg/kitefolio/date"
)

// PriceSource supplies daily closing prices. Implementations may block on
// network I/O and cache on disk; the analysis treats them as synchronous
// lookups. A ticker absent from the returned table signals total
// unavailability and becomes a warning, never an error.
type PriceSource interface {
	Prices(tickers []string, start, end date.Date) PriceTable
	BenchmarkPrices(start, end date.Date) map[date.Date]float64
}

// Options tunes an analysis run.
type Options struct {
	// RiskFreeRate is the annual risk-free rate used by Sharpe, Sortino
	// and alpha.
	RiskFreeRate float64
}

// DefaultOptions returns the standard configuration: a 7% annual risk-free
// rate, roughly the Indian 10-year government bond yield.
func DefaultOptions() Options {
	return Options{RiskFreeRate: 0.07}
}

// AnalysisResult aggregates every computed metric of one analysis run. It is
// fully derived from the inputs and carries no behavior. Warnings list
// non-fatal data problems, such as tickers with no price data at all.
type AnalysisResult struct {
	StartDate date.Date
	EndDate   date.Date

	CurrentValue float64
	TotalCost    float64

	XIRR           float64
	TWR            float64
	TWRAnnualized  float64
	BenchmarkTWR   float64
	Alpha          float64
	Sharpe         float64
	Sortino        float64
	Beta           float64
	MaxDrawdown    float64
	MaxDrawdownDay date.Date
	VaR95          float64
	Herfindahl     float64
	Top5           float64

	Warnings []string
}

// RunAnalysis is the full pipeline: parse rows into snapshots, infer the
// transaction log, fetch prices, rebuild the daily valuation series, and
// compute all metrics against the benchmark.
//
// Empty input, or input producing no daily series, returns a well-formed
// all-zero result rather than an error; only structurally malformed rows
// fail, with a *ParseError.
func RunAnalysis(rows [][]string, source PriceSource, opts Options) (*AnalysisResult, []DailyPortfolioValue, []Transaction, error) {
	snapshots, err := ParseSnapshots(rows)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(snapshots) == 0 {
		return &AnalysisResult{}, nil, nil, nil
	}

	txns := InferTransactions(snapshots)
	rng := date.NewRange(snapshots[0].Date, snapshots[len(snapshots)-1].Date)

	tickers := collectTickers(snapshots)
	table := source.Prices(tickers, rng.From, rng.To)
	series := BuildDailySeries(snapshots, txns, table, rng)
	if len(series) == 0 {
		return &AnalysisResult{}, nil, txns, nil
	}

	result := &AnalysisResult{
		StartDate:    rng.From,
		EndDate:      rng.To,
		CurrentValue: series[len(series)-1].TotalValue,
		TotalCost:    series[len(series)-1].TotalCost,
	}

	for _, ticker := range tickers {
		if len(table[ticker]) == 0 {
			result.Warnings = append(result.Warnings, "No price data for "+ticker)
		}
	}

	// Daily return vectors. The portfolio's first day is definitionally
	// zero and skipped; the benchmark series is rebuilt from its sparse
	// trading-day closes.
	portReturns := make([]float64, 0, len(series)-1)
	for _, dv := range series[1:] {
		portReturns = append(portReturns, dv.DailyReturn)
	}
	benchReturns := returnsFromCloses(source.BenchmarkPrices(rng.From, rng.To))

	elapsed := rng.To.Sub(rng.From)

	result.TWR = TWR(series)
	result.TWRAnnualized = AnnualizeReturn(result.TWR, elapsed)
	result.BenchmarkTWR = ChainReturns(benchReturns)
	result.Sharpe = SharpeRatio(portReturns, opts.RiskFreeRate)
	result.Sortino = SortinoRatio(portReturns, opts.RiskFreeRate)
	result.Beta = Beta(portReturns, benchReturns)
	result.MaxDrawdown, result.MaxDrawdownDay = MaxDrawdown(series)
	result.VaR95 = VaR95(portReturns, result.CurrentValue)
	result.Herfindahl, result.Top5 = Concentration(snapshots[len(snapshots)-1].Weights())
	result.XIRR = XIRR(txns, result.CurrentValue, rng.To)

	benchAnnual := AnnualizeReturn(result.BenchmarkTWR, elapsed)
	result.Alpha = Alpha(result.TWRAnnualized, benchAnnual, result.Beta, opts.RiskFreeRate)

	return result, series, txns, nil
}

// collectTickers returns the sorted, unique Yahoo tickers of every
// instrument seen in any snapshot.
func collectTickers(snapshots []Snapshot) []string {
	seen := make(map[string]struct{})
	var tickers []string
	for _, snap := range snapshots {
		for _, h := range snap.Holdings {
			ticker := YahooTicker(h.Instrument, h.Exchange)
			if _, ok := seen[ticker]; !ok {
				seen[ticker] = struct{}{}
				tickers = append(tickers, ticker)
			}
		}
	}
	slices.Sort(tickers)
	return tickers
}

// returnsFromCloses converts sparse daily closes into the return series of
// consecutive trading days.
func returnsFromCloses(closes map[date.Date]float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	days := make([]date.Date, 0, len(closes))
	for day := range closes {
		days = append(days, day)
	}
	slices.SortFunc(days, date.Date.Compare)

	returns := make([]float64, 0, len(days)-1)
	for i := 1; i < len(days); i++ {
		prev := closes[days[i-1]]
		if prev == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (closes[days[i]]-prev)/prev)
	}
	return returns
}
