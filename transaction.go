package kitefolio

import "github.com/rachitg/kitefolio/date"

// TxType is the direction of an inferred transaction.
type TxType string

const (
	Buy  TxType = "BUY"
	Sell TxType = "SELL"
)

// Transaction is a single inferred trade. Amount is the signed cash effect:
// negative for a BUY (cash out), positive for a SELL (cash in). Transactions
// are produced only by InferTransactions and never mutated afterwards.
type Transaction struct {
	Date       date.Date
	Instrument string
	Type       TxType
	Quantity   int
	Price      float64
	Amount     float64
}

func buy(on date.Date, instrument string, quantity int, price float64) Transaction {
	return Transaction{
		Date:       on,
		Instrument: instrument,
		Type:       Buy,
		Quantity:   quantity,
		Price:      price,
		Amount:     -price * float64(quantity),
	}
}

func sell(on date.Date, instrument string, quantity int, price float64) Transaction {
	return Transaction{
		Date:       on,
		Instrument: instrument,
		Type:       Sell,
		Quantity:   quantity,
		Price:      price,
		Amount:     price * float64(quantity),
	}
}

// InferTransactions produces the unique transaction sequence whose cumulative
// effect reproduces every snapshot's per-instrument quantity, assuming trades
// happen only on snapshot dates. Snapshots must be sorted ascending by date.
//
// The first snapshot is an implicit baseline: everything in it is bought at
// its average cost. Each later snapshot is diffed against its predecessor.
func InferTransactions(snapshots []Snapshot) []Transaction {
	if len(snapshots) == 0 {
		return nil
	}

	var txns []Transaction
	for _, h := range snapshots[0].Holdings {
		txns = append(txns, buy(snapshots[0].Date, h.Instrument, h.Quantity, h.AvgCost))
	}
	for i := 1; i < len(snapshots); i++ {
		txns = append(txns, inferBetween(snapshots[i-1], snapshots[i])...)
	}
	return txns
}

// inferBetween diffs two consecutive snapshots. All resulting transactions
// carry the date of the later snapshot.
func inferBetween(prev, curr Snapshot) []Transaction {
	prevMap := prev.byInstrument()
	currMap := curr.byInstrument()
	var txns []Transaction

	for _, currH := range curr.Holdings {
		prevH, held := prevMap[currH.Instrument]
		switch {
		case !held:
			// New instrument: bought at its reported average cost.
			txns = append(txns, buy(curr.Date, currH.Instrument, currH.Quantity, currH.AvgCost))

		case currH.Quantity > prevH.Quantity:
			// Additional buy. The execution price is back-solved from the
			// weighted-average-cost identity. When the reported average cost
			// moved inconsistently (split, data anomaly) the back-solved
			// price can go non-positive; fall back to the current average
			// cost, an approximation since the true price is unrecoverable.
			qty := currH.Quantity - prevH.Quantity
			price := (currH.AvgCost*float64(currH.Quantity) - prevH.AvgCost*float64(prevH.Quantity)) / float64(qty)
			if price <= 0 {
				price = currH.AvgCost
			}
			txns = append(txns, buy(curr.Date, currH.Instrument, qty, price))

		case currH.Quantity < prevH.Quantity:
			// Partial sale, priced at the last traded price before the sale
			// was observed. The actual execution price is unknown.
			qty := prevH.Quantity - currH.Quantity
			txns = append(txns, sell(curr.Date, currH.Instrument, qty, prevH.LTP))

			// Unchanged quantity: no transaction, even if avg_cost or LTP moved.
		}
	}

	// Disappeared instruments: full liquidation at the previous LTP.
	for _, prevH := range prev.Holdings {
		if _, held := currMap[prevH.Instrument]; !held {
			txns = append(txns, sell(curr.Date, prevH.Instrument, prevH.Quantity, prevH.LTP))
		}
	}
	return txns
}
