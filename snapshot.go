package kitefolio

import (
	"slices"

	"github.com/rachitg/kitefolio/date"
)

// SnapshotHolding is a Holding observed on a specific date. One exists per
// (date, instrument) pair.
type SnapshotHolding struct {
	Date date.Date
	Holding
}

// Snapshot is the complete set of holdings observed on one date. Snapshots
// are never persisted as such: they are rebuilt wholesale from the stored
// rows on every analysis run.
type Snapshot struct {
	Date     date.Date
	Holdings []SnapshotHolding
}

// ParseSnapshots groups raw holdings rows by date and returns the snapshots
// sorted ascending by date. Each row is
// [date, instrument, quantity, avg_cost, ltp, current_value, pnl,
// pnl_percent, day_change, day_change_percent, exchange?].
// A malformed date or numeric field fails the whole call with a *ParseError.
func ParseSnapshots(rows [][]string) ([]Snapshot, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	byDate := make(map[string]*Snapshot)
	var order []string // first-seen order of date strings, for stable grouping
	for _, row := range rows {
		if len(row) < 10 {
			return nil, &ParseError{Field: "row", Value: firstField(row), Reason: "want at least 10 columns"}
		}
		on, err := date.Parse(row[0])
		if err != nil {
			return nil, &ParseError{Field: "date", Value: row[0], Reason: "not an ISO-8601 date"}
		}
		h, err := ParseHolding(row[1:])
		if err != nil {
			return nil, err
		}
		key := row[0]
		snap, ok := byDate[key]
		if !ok {
			snap = &Snapshot{Date: on}
			byDate[key] = snap
			order = append(order, key)
		}
		snap.Holdings = append(snap.Holdings, SnapshotHolding{Date: on, Holding: h})
	}

	snapshots := make([]Snapshot, 0, len(order))
	for _, key := range order {
		snapshots = append(snapshots, *byDate[key])
	}
	slices.SortStableFunc(snapshots, func(a, b Snapshot) int { return a.Date.Compare(b.Date) })
	return snapshots, nil
}

func firstField(row []string) string {
	if len(row) == 0 {
		return "<empty>"
	}
	return row[0]
}

// byInstrument indexes a snapshot's holdings by instrument name.
func (s Snapshot) byInstrument() map[string]SnapshotHolding {
	m := make(map[string]SnapshotHolding, len(s.Holdings))
	for _, h := range s.Holdings {
		m[h.Instrument] = h
	}
	return m
}

// Weights returns each instrument's share of the snapshot's total current
// value. An empty snapshot, or one with a non-positive total, yields nil.
func (s Snapshot) Weights() map[string]float64 {
	var total float64
	for _, h := range s.Holdings {
		total += h.CurrentValue
	}
	if total <= 0 {
		return nil
	}
	weights := make(map[string]float64, len(s.Holdings))
	for _, h := range s.Holdings {
		weights[h.Instrument] = h.CurrentValue / total
	}
	return weights
}
