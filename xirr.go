package kitefolio

import (
	"math"

	"github.com/rachitg/kitefolio/date"
)

// XIRR solver bracket. Rates below -99% or above 1000% annualized are not
// meaningful for this data; failure to bracket a root inside these bounds
// degrades to 0 rather than erroring.
const (
	xirrLow  = -0.99
	xirrHigh = 10.0
)

// XIRR computes the extended internal rate of return of the inferred
// transactions: the rate r at which the net present value of all signed
// cash flows, plus a terminal pseudo-flow equal to the current portfolio
// value at endDate, is zero. Returns 0 when there are no transactions or
// the solver cannot converge.
func XIRR(txns []Transaction, currentValue float64, endDate date.Date) float64 {
	if len(txns) == 0 {
		return 0
	}

	start := txns[0].Date
	for _, tx := range txns[1:] {
		if tx.Date.Before(start) {
			start = tx.Date
		}
	}

	type flow struct {
		years  float64
		amount float64
	}
	flows := make([]flow, 0, len(txns)+1)
	for _, tx := range txns {
		flows = append(flows, flow{years: float64(tx.Date.Sub(start)) / 365, amount: tx.Amount})
	}
	flows = append(flows, flow{years: float64(endDate.Sub(start)) / 365, amount: currentValue})

	npv := func(rate float64) float64 {
		var sum float64
		for _, f := range flows {
			sum += f.amount / math.Pow(1+rate, f.years)
		}
		return sum
	}

	rate, ok := solveBisect(npv, xirrLow, xirrHigh)
	if !ok {
		return 0
	}
	return rate
}

// solveBisect finds a root of f inside [lo, hi] by bisection. It reports
// false when the interval does not bracket a sign change or the iteration
// limit is reached before converging.
func solveBisect(f func(float64) float64, lo, hi float64) (float64, bool) {
	const (
		tolerance     = 1e-9
		maxIterations = 200
	)

	flo, fhi := f(lo), f(hi)
	if math.IsNaN(flo) || math.IsNaN(fhi) || flo*fhi > 0 {
		return 0, false
	}
	if flo == 0 {
		return lo, true
	}
	if fhi == 0 {
		return hi, true
	}

	for i := 0; i < maxIterations; i++ {
		mid := (lo + hi) / 2
		fmid := f(mid)
		if math.Abs(fmid) < tolerance || (hi-lo)/2 < tolerance {
			return mid, true
		}
		if flo*fmid < 0 {
			hi = mid
		} else {
			lo, flo = mid, fmid
		}
	}
	return 0, false
}
