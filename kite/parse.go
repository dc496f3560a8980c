package kite

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rachitg/kitefolio"
)

var (
	tDayLabelRe = regexp.MustCompile(`T\d+:`)
	numberRe    = regexp.MustCompile(`[\d,]+`)
)

// RowData is one holdings table row as scraped from the page, every cell
// still in its display form.
type RowData struct {
	Instrument       string `json:"instrument"`
	Quantity         string `json:"quantity"`
	AvgCost          string `json:"avg_cost"`
	LTP              string `json:"ltp"`
	CurrentValue     string `json:"current_value"`
	PnL              string `json:"pnl"`
	PnLPercent       string `json:"pnl_percent"`
	DayChangePercent string `json:"day_change_percent"`
	// DayChangeTooltip is the raw tooltip of the Day chg. cell, holding the
	// absolute change like "-22.72 (-0.13%)". Empty when the cell has none.
	DayChangeTooltip string `json:"day_change_tooltip"`
}

// ParseRow converts a scraped row into a Holding. A row with an empty
// instrument or an unparsable cell is an error; the caller skips it.
func ParseRow(row RowData) (kitefolio.Holding, error) {
	instrument := strings.TrimSpace(row.Instrument)
	if instrument == "" {
		return kitefolio.Holding{}, fmt.Errorf("row has no instrument")
	}

	qty, err := parseQuantity(row.Quantity)
	if err != nil {
		return kitefolio.Holding{}, fmt.Errorf("holding %s: %w", instrument, err)
	}

	h := kitefolio.Holding{
		Instrument: instrument,
		Quantity:   qty,
		Exchange:   kitefolio.DefaultExchange,
	}
	fields := []struct {
		name string
		dst  *float64
		raw  string
	}{
		{"avg_cost", &h.AvgCost, row.AvgCost},
		{"ltp", &h.LTP, row.LTP},
		{"current_value", &h.CurrentValue, row.CurrentValue},
		{"pnl", &h.PnL, row.PnL},
		{"pnl_percent", &h.PnLPercent, row.PnLPercent},
		{"day_change", &h.DayChange, tooltipValue(row.DayChangeTooltip)},
		{"day_change_percent", &h.DayChangePercent, row.DayChangePercent},
	}
	for _, f := range fields {
		if *f.dst, err = cleanNumber(f.raw); err != nil {
			return kitefolio.Holding{}, fmt.Errorf("holding %s: %s: %w", instrument, f.name, err)
		}
	}
	return h, nil
}

// parseQuantity sums the numbers of a Qty. cell. Kite annotates unsettled
// shares with T-day labels, e.g. "T1: 3 3" means 3 awaiting delivery plus
// 3 settled for a total of 6.
func parseQuantity(text string) (int, error) {
	cleaned := tDayLabelRe.ReplaceAllString(text, "")
	numbers := numberRe.FindAllString(cleaned, -1)
	if len(numbers) == 0 {
		return 0, fmt.Errorf("no quantity in %q", text)
	}
	var total int
	for _, n := range numbers {
		v, err := strconv.Atoi(strings.ReplaceAll(n, ",", ""))
		if err != nil {
			return 0, fmt.Errorf("bad quantity %q: %w", text, err)
		}
		total += v
	}
	return total, nil
}

// cleanNumber parses a display number, dropping thousands separators, the
// percent sign and an explicit plus.
func cleanNumber(text string) (float64, error) {
	r := strings.NewReplacer(",", "", "%", "", "+", "")
	cleaned := strings.TrimSpace(r.Replace(text))
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("bad number %q", text)
	}
	return v, nil
}

// tooltipValue extracts the absolute value from a tooltip like
// "-22.72 (-0.13%)". An empty tooltip yields "0".
func tooltipValue(tooltip string) string {
	if tooltip == "" {
		return "0"
	}
	value, _, _ := strings.Cut(tooltip, "(")
	return strings.TrimSpace(value)
}
