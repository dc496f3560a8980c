package kitefolio

import (
	"math"
	"strconv"
	"testing"

	"github.com/rachitg/kitefolio/date"
)

// makeRow builds a raw snapshot row in store order:
// [date, instrument, qty, avg_cost, ltp, current_value, pnl, pnl_percent,
// day_change, day_change_percent, exchange]. current_value is derived as
// qty × ltp, the way the broker reports it; deliberately malformed qty/ltp
// inputs leave it at "0".
func makeRow(on, instrument, qty, avgCost, ltp string) []string {
	value := "0"
	q, qerr := strconv.Atoi(qty)
	p, perr := strconv.ParseFloat(ltp, 64)
	if qerr == nil && perr == nil {
		value = formatFloat(float64(q) * p)
	}
	return []string{on, instrument, qty, avgCost, ltp, value, "0", "0", "0", "0", "NSE"}
}

// makeHolding builds a snapshot holding with derived value/pnl fields.
func makeHolding(on date.Date, instrument string, qty int, avgCost, ltp float64) SnapshotHolding {
	return SnapshotHolding{
		Date: on,
		Holding: Holding{
			Instrument:   instrument,
			Quantity:     qty,
			AvgCost:      avgCost,
			LTP:          ltp,
			CurrentValue: ltp * float64(qty),
			PnL:          (ltp - avgCost) * float64(qty),
			Exchange:     DefaultExchange,
		},
	}
}

func makeSnapshot(on string, holdings ...SnapshotHolding) Snapshot {
	return Snapshot{Date: date.MustParse(on), Holdings: holdings}
}

// approx fails the test when got is not within tolerance of want.
func approx(t *testing.T, name string, got, want, tolerance float64) {
	t.Helper()
	if math.Abs(got-want) > tolerance {
		t.Errorf("%s = %v, want %v (±%v)", name, got, want, tolerance)
	}
}
