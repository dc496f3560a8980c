package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/rachitg/kitefolio"
	"github.com/rachitg/kitefolio/renderer"
)

// analyzeCmd runs the full analysis over every stored snapshot and prints
// the metrics report.
type analyzeCmd struct {
	riskFree float64
	withTxns bool
}

func (*analyzeCmd) Name() string     { return "analyze" }
func (*analyzeCmd) Synopsis() string { return "compute performance and risk metrics" }
func (*analyzeCmd) Usage() string {
	return `kf analyze [-rf <rate>] [-txns]

  Rebuilds the transaction history from all stored snapshots, fetches
  market data, and prints XIRR, TWR, alpha, beta, Sharpe, Sortino,
  drawdown, VaR and concentration against the Nifty 50.
`
}

func (c *analyzeCmd) SetFlags(f *flag.FlagSet) {
	f.Float64Var(&c.riskFree, "rf", kitefolio.DefaultOptions().RiskFreeRate, "Annual risk-free rate")
	f.BoolVar(&c.withTxns, "txns", false, "Also print the inferred transaction log")
}

func (c *analyzeCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	log := newLogger()

	rows, err := holdingsStore().Rows()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading data store: %v\n", err)
		return subcommands.ExitFailure
	}
	if len(rows) == 0 {
		fmt.Fprintf(os.Stderr, "No snapshots in %s, run 'kf scrape' first\n", *dataDir)
		return subcommands.ExitFailure
	}

	opts := kitefolio.Options{RiskFreeRate: c.riskFree}
	result, _, txns, err := kitefolio.RunAnalysis(rows, priceSource(log), opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error analyzing portfolio: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.RenderSummary(result))
	if c.withTxns {
		printMarkdown(renderer.RenderTransactions(txns))
	}
	return subcommands.ExitSuccess
}
