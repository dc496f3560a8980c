package kitefolio

import (
	"testing"

	"github.com/rachitg/kitefolio/date"
)

func TestInferTransactionsEmpty(t *testing.T) {
	if txns := InferTransactions(nil); len(txns) != 0 {
		t.Errorf("got %d transactions, want 0", len(txns))
	}
}

func TestInferTransactionsBaselineBuys(t *testing.T) {
	snap := makeSnapshot("2025-01-15",
		makeHolding(date.MustParse("2025-01-15"), "RELIANCE", 10, 2450.5, 2500.0),
		makeHolding(date.MustParse("2025-01-15"), "TCS", 5, 3200.0, 3350.0),
	)
	txns := InferTransactions([]Snapshot{snap})
	if len(txns) != 2 {
		t.Fatalf("got %d transactions, want 2", len(txns))
	}
	for _, tx := range txns {
		if tx.Type != Buy {
			t.Errorf("baseline transaction for %s is %s, want BUY", tx.Instrument, tx.Type)
		}
		if tx.Date != date.MustParse("2025-01-15") {
			t.Errorf("baseline transaction dated %s, want 2025-01-15", tx.Date)
		}
	}
	first := txns[0]
	if first.Instrument != "RELIANCE" || first.Quantity != 10 || first.Price != 2450.5 {
		t.Errorf("baseline buy = %+v", first)
	}
	approx(t, "baseline amount", first.Amount, -24505.0, 1e-9)
}

func TestInferTransactionsNewInstrument(t *testing.T) {
	snapshots := []Snapshot{
		makeSnapshot("2025-01-15",
			makeHolding(date.MustParse("2025-01-15"), "RELIANCE", 10, 2450.5, 2500.0)),
		makeSnapshot("2025-01-20",
			makeHolding(date.MustParse("2025-01-20"), "RELIANCE", 10, 2450.5, 2550.0),
			makeHolding(date.MustParse("2025-01-20"), "TCS", 5, 3200.0, 3350.0)),
	}
	txns := InferTransactions(snapshots)
	var tcs []Transaction
	for _, tx := range txns {
		if tx.Instrument == "TCS" {
			tcs = append(tcs, tx)
		}
	}
	if len(tcs) != 1 {
		t.Fatalf("got %d TCS transactions, want 1", len(tcs))
	}
	tx := tcs[0]
	if tx.Type != Buy || tx.Quantity != 5 || tx.Price != 3200.0 {
		t.Errorf("new-instrument buy = %+v", tx)
	}
	approx(t, "amount", tx.Amount, -16000.0, 1e-9)
}

func TestInferTransactionsQuantityIncrease(t *testing.T) {
	// avg_cost moved from 2450.5 to 2460.0 after buying 5 more:
	// price = (2460*15 - 2450.5*10) / 5 = 2479.0
	snapshots := []Snapshot{
		makeSnapshot("2025-01-15",
			makeHolding(date.MustParse("2025-01-15"), "RELIANCE", 10, 2450.5, 2500.0)),
		makeSnapshot("2025-01-20",
			makeHolding(date.MustParse("2025-01-20"), "RELIANCE", 15, 2460.0, 2550.0)),
	}
	txns := InferTransactions(snapshots)
	if len(txns) != 2 {
		t.Fatalf("got %d transactions, want 2", len(txns))
	}
	tx := txns[1]
	if tx.Type != Buy || tx.Quantity != 5 || tx.Date != date.MustParse("2025-01-20") {
		t.Errorf("incremental buy = %+v", tx)
	}
	approx(t, "back-solved price", tx.Price, 2479.0, 1e-9)
	approx(t, "amount", tx.Amount, -2479.0*5, 1e-9)
}

func TestInferTransactionsQuantityDecrease(t *testing.T) {
	snapshots := []Snapshot{
		makeSnapshot("2025-01-15",
			makeHolding(date.MustParse("2025-01-15"), "RELIANCE", 10, 2450.5, 2500.0)),
		makeSnapshot("2025-01-20",
			makeHolding(date.MustParse("2025-01-20"), "RELIANCE", 7, 2450.5, 2550.0)),
	}
	txns := InferTransactions(snapshots)
	if len(txns) != 2 {
		t.Fatalf("got %d transactions, want 2", len(txns))
	}
	tx := txns[1]
	if tx.Type != Sell || tx.Quantity != 3 {
		t.Errorf("partial sell = %+v", tx)
	}
	// Priced at the previous snapshot's LTP, not the current one.
	approx(t, "sell price", tx.Price, 2500.0, 1e-9)
	approx(t, "amount", tx.Amount, 7500.0, 1e-9)
}

func TestInferTransactionsDisappearedInstrument(t *testing.T) {
	snapshots := []Snapshot{
		makeSnapshot("2025-01-15",
			makeHolding(date.MustParse("2025-01-15"), "RELIANCE", 10, 2450.5, 2500.0),
			makeHolding(date.MustParse("2025-01-15"), "TCS", 5, 3200.0, 3350.0)),
		makeSnapshot("2025-01-20",
			makeHolding(date.MustParse("2025-01-20"), "RELIANCE", 10, 2450.5, 2550.0)),
	}
	txns := InferTransactions(snapshots)
	var liquidation *Transaction
	for i, tx := range txns {
		if tx.Instrument == "TCS" && tx.Type == Sell {
			liquidation = &txns[i]
		}
	}
	if liquidation == nil {
		t.Fatal("no liquidation SELL for TCS")
	}
	if liquidation.Quantity != 5 || liquidation.Price != 3350.0 {
		t.Errorf("liquidation = %+v", *liquidation)
	}
	approx(t, "amount", liquidation.Amount, 16750.0, 1e-9)
}

func TestInferTransactionsUnchangedPosition(t *testing.T) {
	// Same quantity with a moved LTP: no transaction for the second snapshot.
	snapshots := []Snapshot{
		makeSnapshot("2025-01-15",
			makeHolding(date.MustParse("2025-01-15"), "RELIANCE", 10, 2450.5, 2500.0)),
		makeSnapshot("2025-01-20",
			makeHolding(date.MustParse("2025-01-20"), "RELIANCE", 10, 2450.5, 2550.0)),
	}
	txns := InferTransactions(snapshots)
	if len(txns) != 1 {
		t.Fatalf("got %d transactions, want only the baseline buy", len(txns))
	}
	if txns[0].Date != date.MustParse("2025-01-15") {
		t.Errorf("transaction dated %s, want 2025-01-15", txns[0].Date)
	}
}

func TestInferTransactionsDegeneratePriceFallsBack(t *testing.T) {
	// avg_cost collapsed while quantity grew: the back-solved price is
	// negative, so the current avg_cost is used instead.
	snapshots := []Snapshot{
		makeSnapshot("2025-01-15",
			makeHolding(date.MustParse("2025-01-15"), "RELIANCE", 10, 5000.0, 5100.0)),
		makeSnapshot("2025-01-20",
			makeHolding(date.MustParse("2025-01-20"), "RELIANCE", 12, 100.0, 150.0)),
	}
	txns := InferTransactions(snapshots)
	if len(txns) != 2 {
		t.Fatalf("got %d transactions, want 2", len(txns))
	}
	approx(t, "fallback price", txns[1].Price, 100.0, 1e-9)
}

// TestInferTransactionsReplay checks the defining property of the inferrer:
// replaying the transactions against an empty portfolio reproduces every
// snapshot's per-instrument quantity exactly.
func TestInferTransactionsReplay(t *testing.T) {
	snapshots := []Snapshot{
		makeSnapshot("2025-01-15",
			makeHolding(date.MustParse("2025-01-15"), "RELIANCE", 10, 2450.5, 2500.0),
			makeHolding(date.MustParse("2025-01-15"), "TCS", 5, 3200.0, 3350.0)),
		makeSnapshot("2025-01-20",
			makeHolding(date.MustParse("2025-01-20"), "RELIANCE", 15, 2460.0, 2550.0),
			makeHolding(date.MustParse("2025-01-20"), "INFY", 20, 1500.0, 1520.0)),
		makeSnapshot("2025-01-25",
			makeHolding(date.MustParse("2025-01-25"), "RELIANCE", 8, 2460.0, 2600.0),
			makeHolding(date.MustParse("2025-01-25"), "INFY", 20, 1500.0, 1550.0)),
	}
	txns := InferTransactions(snapshots)

	positions := make(map[string]int)
	for _, snap := range snapshots {
		for _, tx := range txns {
			if tx.Date != snap.Date {
				continue
			}
			switch tx.Type {
			case Buy:
				positions[tx.Instrument] += tx.Quantity
			case Sell:
				positions[tx.Instrument] -= tx.Quantity
			}
		}
		want := make(map[string]int)
		for _, h := range snap.Holdings {
			want[h.Instrument] = h.Quantity
		}
		for instrument, qty := range positions {
			if qty == 0 {
				continue
			}
			if want[instrument] != qty {
				t.Errorf("on %s: replayed %s = %d, snapshot says %d", snap.Date, instrument, qty, want[instrument])
			}
		}
		for instrument, qty := range want {
			if positions[instrument] != qty {
				t.Errorf("on %s: snapshot %s = %d, replay says %d", snap.Date, instrument, qty, positions[instrument])
			}
		}
	}
}

// TestInferTransactionsRoundTrip: a position appearing then disappearing
// nets out to zero via BUY at avg_cost then SELL at the prior LTP.
func TestInferTransactionsRoundTrip(t *testing.T) {
	snapshots := []Snapshot{
		makeSnapshot("2025-01-15"),
		makeSnapshot("2025-01-20",
			makeHolding(date.MustParse("2025-01-20"), "TCS", 10, 3200.0, 3350.0)),
		makeSnapshot("2025-01-25"),
	}
	txns := InferTransactions(snapshots)
	if len(txns) != 2 {
		t.Fatalf("got %d transactions, want 2", len(txns))
	}
	if txns[0].Type != Buy || txns[0].Quantity != 10 || txns[0].Price != 3200.0 {
		t.Errorf("buy = %+v", txns[0])
	}
	if txns[1].Type != Sell || txns[1].Quantity != 10 || txns[1].Price != 3350.0 {
		t.Errorf("sell = %+v", txns[1])
	}
}
