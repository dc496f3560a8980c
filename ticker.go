package kitefolio

import "strings"

// BenchmarkTicker is the Nifty 50 index on Yahoo Finance.
const BenchmarkTicker = "^NSEI"

// specialTickers maps benchmark index names, when they show up as holdings,
// to their index ticker.
var specialTickers = map[string]string{
	"NIFTY 50": BenchmarkTicker,
	"NIFTY50":  BenchmarkTicker,
}

// YahooTicker converts an NSE/BSE instrument name to a Yahoo Finance ticker
// symbol. BSE listings get the ".BO" suffix, everything else ".NS".
func YahooTicker(instrument, exchange string) string {
	instrument = strings.TrimSpace(instrument)
	if t, ok := specialTickers[instrument]; ok {
		return t
	}
	if exchange == "BSE" {
		return instrument + ".BO"
	}
	return instrument + ".NS"
}
