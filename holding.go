// Package kitefolio reconstructs an investor's transaction history and
// performance metrics from periodic holdings snapshots of a Kite (Zerodha)
// account. No trade ledger is available: the only source of record is a
// series of dated point-in-time exports of the holdings page, from which
// transactions are inferred, a daily valuation series is rebuilt, and
// risk/return metrics are computed against the Nifty 50 benchmark.
package kitefolio

import (
	"fmt"
	"strconv"
)

// DefaultExchange is assumed when a holding row carries no exchange column.
const DefaultExchange = "NSE"

// Holding is one line of the broker's holdings page: a position as reported
// on the day it was captured.
type Holding struct {
	Instrument       string
	Quantity         int
	AvgCost          float64
	LTP              float64
	CurrentValue     float64
	PnL              float64
	PnLPercent       float64
	DayChange        float64
	DayChangePercent float64
	Exchange         string
}

// HoldingCSVHeader is the header row of a stored holdings CSV file.
var HoldingCSVHeader = []string{
	"instrument", "quantity", "avg_cost", "ltp", "current_value",
	"pnl", "pnl_percent", "day_change", "day_change_percent", "exchange",
}

// CSVRow returns the holding as a CSV record matching HoldingCSVHeader.
func (h Holding) CSVRow() []string {
	return []string{
		h.Instrument,
		strconv.Itoa(h.Quantity),
		formatFloat(h.AvgCost),
		formatFloat(h.LTP),
		formatFloat(h.CurrentValue),
		formatFloat(h.PnL),
		formatFloat(h.PnLPercent),
		formatFloat(h.DayChange),
		formatFloat(h.DayChangePercent),
		h.Exchange,
	}
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// ParseHolding parses a CSV record (without date column) into a Holding.
// The exchange column is optional and defaults to NSE.
func ParseHolding(row []string) (Holding, error) {
	if len(row) < 9 {
		return Holding{}, &ParseError{Field: "row", Value: fmt.Sprint(row), Reason: fmt.Sprintf("want at least 9 columns, got %d", len(row))}
	}
	h := Holding{Instrument: row[0], Exchange: DefaultExchange}
	if len(row) > 9 && row[9] != "" {
		h.Exchange = row[9]
	}

	var err error
	if h.Quantity, err = parseInt("quantity", row[1]); err != nil {
		return Holding{}, err
	}
	fields := []struct {
		name string
		dst  *float64
		raw  string
	}{
		{"avg_cost", &h.AvgCost, row[2]},
		{"ltp", &h.LTP, row[3]},
		{"current_value", &h.CurrentValue, row[4]},
		{"pnl", &h.PnL, row[5]},
		{"pnl_percent", &h.PnLPercent, row[6]},
		{"day_change", &h.DayChange, row[7]},
		{"day_change_percent", &h.DayChangePercent, row[8]},
	}
	for _, f := range fields {
		if *f.dst, err = parseFloat(f.name, f.raw); err != nil {
			return Holding{}, err
		}
	}
	return h, nil
}

// ParseError reports a structurally invalid field in a raw holdings row.
// It is fatal for the whole analysis run: there is no partial-row recovery,
// the caller must supply well-formed rows.
type ParseError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: invalid value %q: %s", e.Field, e.Value, e.Reason)
}

func parseInt(field, raw string) (int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ParseError{Field: field, Value: raw, Reason: "not an integer"}
	}
	return v, nil
}

func parseFloat(field, raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &ParseError{Field: field, Value: raw, Reason: "not a number"}
	}
	return v, nil
}

// PortfolioSummary aggregates a set of holdings into the headline figures of
// the holdings page.
type PortfolioSummary struct {
	TotalInvestment float64
	CurrentValue    float64
	TotalPnL        float64
	TotalPnLPercent float64
	DayPnL          float64
	DayPnLPercent   float64
	NumHoldings     int
}

// NewPortfolioSummary computes the aggregate figures from a list of holdings.
// An empty list yields the zero summary.
func NewPortfolioSummary(holdings []Holding) PortfolioSummary {
	if len(holdings) == 0 {
		return PortfolioSummary{}
	}
	var s PortfolioSummary
	s.NumHoldings = len(holdings)
	for _, h := range holdings {
		s.CurrentValue += h.CurrentValue
		s.TotalPnL += h.PnL
		s.DayPnL += h.DayChange * float64(h.Quantity)
	}
	s.TotalInvestment = s.CurrentValue - s.TotalPnL
	if s.TotalInvestment != 0 {
		s.TotalPnLPercent = s.TotalPnL / s.TotalInvestment * 100
	}
	if s.CurrentValue != 0 {
		s.DayPnLPercent = s.DayPnL / s.CurrentValue * 100
	}
	return s
}
