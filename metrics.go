package kitefolio

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/rachitg/kitefolio/date"
)

// tradingDaysPerYear is the annualization convention for daily risk metrics.
const tradingDaysPerYear = 252

// Concentration returns the Herfindahl-Hirschman index (sum of squared
// weights) and the combined weight of the 5 largest positions. Empty weights
// yield (0, 0).
func Concentration(weights map[string]float64) (hhi, top5 float64) {
	if len(weights) == 0 {
		return 0, 0
	}
	sorted := make([]float64, 0, len(weights))
	for _, w := range weights {
		hhi += w * w
		sorted = append(sorted, w)
	}
	slices.Sort(sorted)
	slices.Reverse(sorted)
	for i, w := range sorted {
		if i >= 5 {
			break
		}
		top5 += w
	}
	return hhi, top5
}

// MaxDrawdown returns the deepest peak-to-trough decline of the value series
// as a positive fraction, and the date of the trough (the first occurrence
// when tied). An empty series yields (0, zero date).
func MaxDrawdown(series []DailyPortfolioValue) (float64, date.Date) {
	var maxDD float64
	var trough date.Date
	var runningMax float64
	for _, dv := range series {
		if dv.TotalValue > runningMax {
			runningMax = dv.TotalValue
		}
		if runningMax <= 0 {
			continue
		}
		dd := 1 - dv.TotalValue/runningMax
		if dd > maxDD {
			maxDD = dd
			trough = dv.Date
		}
	}
	return maxDD, trough
}

// VaR95 is the one-day 95% value-at-risk: the 5th percentile of the daily
// return distribution scaled by the current portfolio value. Negative for a
// loss. Empty returns yield 0.
func VaR95(returns []float64, currentValue float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	return percentile(returns, 5) * currentValue
}

// percentile computes the p-th percentile (0..100) with linear interpolation
// between order statistics. gonum's stat.Quantile offers empirical and
// midpoint-interpolated cumulants, neither of which matches this definition,
// so it is computed directly.
func percentile(x []float64, p float64) float64 {
	sorted := slices.Clone(x)
	slices.Sort(sorted)
	if len(sorted) == 1 {
		return sorted[0]
	}
	h := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(h))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// SharpeRatio is the annualized mean excess daily return over its sample
// standard deviation. The annual risk-free rate is de-annualized to a flat
// daily rate. Returns 0 with fewer than 2 points or a zero deviation.
func SharpeRatio(returns []float64, riskFreeAnnual float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	excess := excessReturns(returns, riskFreeAnnual)
	sd := stat.StdDev(excess, nil)
	if sd == 0 || math.IsNaN(sd) {
		return 0
	}
	return stat.Mean(excess, nil) / sd * math.Sqrt(tradingDaysPerYear)
}

// SortinoRatio is like SharpeRatio but penalizes only downside deviation:
// the sample standard deviation of negative excess-return days. Returns 0
// with fewer than 2 points, fewer than 2 downside days, or a zero downside
// deviation.
func SortinoRatio(returns []float64, riskFreeAnnual float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	excess := excessReturns(returns, riskFreeAnnual)
	var downside []float64
	for _, e := range excess {
		if e < 0 {
			downside = append(downside, e)
		}
	}
	if len(downside) < 2 {
		return 0
	}
	sd := stat.StdDev(downside, nil)
	if sd == 0 || math.IsNaN(sd) {
		return 0
	}
	return stat.Mean(excess, nil) / sd * math.Sqrt(tradingDaysPerYear)
}

func excessReturns(returns []float64, riskFreeAnnual float64) []float64 {
	daily := riskFreeAnnual / tradingDaysPerYear
	excess := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r - daily
	}
	return excess
}

// Beta is the sample covariance of portfolio and benchmark daily returns
// over their overlapping prefix, divided by the benchmark's sample variance.
// Returns 0 with fewer than 2 overlapping points or a zero benchmark
// variance.
func Beta(portfolio, benchmark []float64) float64 {
	n := min(len(portfolio), len(benchmark))
	if n < 2 {
		return 0
	}
	p, b := portfolio[:n], benchmark[:n]
	variance := stat.Variance(b, nil)
	if variance == 0 || math.IsNaN(variance) {
		return 0
	}
	return stat.Covariance(p, b, nil) / variance
}

// TWR chain-links the series' daily returns into a time-weighted total
// return. The first day's return is definitionally zero and skipped.
func TWR(series []DailyPortfolioValue) float64 {
	if len(series) == 0 {
		return 0
	}
	total := 1.0
	for _, dv := range series[1:] {
		total *= 1 + dv.DailyReturn
	}
	return total - 1
}

// ChainReturns compounds a plain return series: Π(1+r) − 1.
func ChainReturns(returns []float64) float64 {
	total := 1.0
	for _, r := range returns {
		total *= 1 + r
	}
	return total - 1
}

// AnnualizeReturn converts a total return over the given number of calendar
// days to a compound annual rate. Non-positive day counts yield 0.
func AnnualizeReturn(totalReturn float64, days int) float64 {
	if days <= 0 {
		return 0
	}
	return math.Pow(1+totalReturn, 365/float64(days)) - 1
}

// Alpha is Jensen's alpha: the portfolio's annualized excess return over
// what its beta exposure to the benchmark would predict.
func Alpha(portfolioAnnual, benchmarkAnnual, beta, riskFreeAnnual float64) float64 {
	return (portfolioAnnual - riskFreeAnnual) - beta*(benchmarkAnnual-riskFreeAnnual)
}
