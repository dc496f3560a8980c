package kitefolio

import "github.com/rachitg/kitefolio/date"

// DailyPortfolioValue is the portfolio marked to market on one calendar day.
// The series covers every day between the first and last snapshot, weekends
// and holidays included: gaps in market data are bridged by the resolver's
// forward-fill.
type DailyPortfolioValue struct {
	Date        date.Date
	TotalValue  float64
	TotalCost   float64
	DailyReturn float64
}

// BuildDailySeries replays the inferred transactions day by day over the
// closed range rng and values the resulting holdings with the resolver.
//
// The cost basis is a single commingled scalar across instruments, reduced
// by a sale's gross proceeds rather than by the position's own average cost.
// That keeps the series cheap to compute but the aggregate cost basis is
// only indicative when several instruments are held.
func BuildDailySeries(snapshots []Snapshot, txns []Transaction, table PriceTable, rng date.Range) []DailyPortfolioValue {
	resolver := NewResolver(snapshots, table)

	byDay := make(map[date.Date][]Transaction)
	for _, tx := range txns {
		byDay[tx.Date] = append(byDay[tx.Date], tx)
	}

	holdings := make(map[string]int)
	// Instruments in first-buy order, for deterministic valuation. An
	// instrument enters once and stays even across a full liquidation, so
	// a later re-buy cannot enter it twice.
	var order []string
	ordered := make(map[string]bool)
	var totalCost float64
	var prevValue float64

	series := make([]DailyPortfolioValue, 0, rng.Days())
	for day := range rng.All() {
		for _, tx := range byDay[day] {
			switch tx.Type {
			case Buy:
				if !ordered[tx.Instrument] {
					ordered[tx.Instrument] = true
					order = append(order, tx.Instrument)
				}
				holdings[tx.Instrument] += tx.Quantity
				totalCost += tx.Price * float64(tx.Quantity)
			case Sell:
				holdings[tx.Instrument] -= tx.Quantity
				if holdings[tx.Instrument] <= 0 {
					delete(holdings, tx.Instrument)
				}
				totalCost -= tx.Price * float64(tx.Quantity)
				if totalCost < 0 {
					totalCost = 0
				}
			}
		}

		var totalValue float64
		for _, instrument := range order {
			qty, held := holdings[instrument]
			if !held {
				continue
			}
			if price, ok := resolver.Resolve(instrument, day); ok {
				totalValue += float64(qty) * price
			}
		}

		var dailyReturn float64
		if len(series) > 0 && prevValue > 0 {
			dailyReturn = (totalValue - prevValue) / prevValue
		}
		series = append(series, DailyPortfolioValue{
			Date:        day,
			TotalValue:  totalValue,
			TotalCost:   totalCost,
			DailyReturn: dailyReturn,
		})
		prevValue = totalValue
	}
	return series
}
