package kitefolio

import "github.com/rachitg/kitefolio/date"

// PriceTable holds fetched daily closes per ticker. Sparse: trading days
// only, and tickers with no data at all are simply absent.
type PriceTable map[string]map[date.Date]float64

// Resolver resolves a price for an (instrument, day) pair with a three-tier
// fallback: fetched price on or before the day (forward-fill), then the
// instrument's last snapshot LTP on or before the day, then absent. An
// absent price contributes zero to that day's valuation; it never aborts
// the run.
type Resolver struct {
	prices map[string]*date.History[float64] // by yahoo ticker
	ltps   map[string]*date.History[float64] // by instrument name
	ticker map[string]string                 // instrument -> yahoo ticker
}

// NewResolver builds a resolver from the fetched price table and the
// snapshots' reported last-traded prices.
func NewResolver(snapshots []Snapshot, table PriceTable) *Resolver {
	r := &Resolver{
		prices: make(map[string]*date.History[float64], len(table)),
		ltps:   make(map[string]*date.History[float64]),
		ticker: make(map[string]string),
	}
	for ticker, closes := range table {
		h := &date.History[float64]{}
		for day, price := range closes {
			h.Append(day, price)
		}
		r.prices[ticker] = h
	}
	for _, snap := range snapshots {
		for _, h := range snap.Holdings {
			if _, ok := r.ticker[h.Instrument]; !ok {
				r.ticker[h.Instrument] = YahooTicker(h.Instrument, h.Exchange)
			}
			ltp, ok := r.ltps[h.Instrument]
			if !ok {
				ltp = &date.History[float64]{}
				r.ltps[h.Instrument] = ltp
			}
			ltp.Append(snap.Date, h.LTP)
		}
	}
	return r
}

// Resolve returns the best-known price for an instrument on a day, or false
// when no price source covers it.
func (r *Resolver) Resolve(instrument string, day date.Date) (float64, bool) {
	if h, ok := r.prices[r.ticker[instrument]]; ok {
		if price, ok := h.ValueAsOf(day); ok {
			return price, true
		}
	}
	if h, ok := r.ltps[instrument]; ok {
		if ltp, ok := h.ValueAsOf(day); ok {
			return ltp, true
		}
	}
	return 0, false
}

// HasPrices reports whether any fetched price exists for the given ticker.
// Tickers without any are surfaced as warnings by the orchestrator.
func (r *Resolver) HasPrices(ticker string) bool {
	h, ok := r.prices[ticker]
	return ok && h.Len() > 0
}
