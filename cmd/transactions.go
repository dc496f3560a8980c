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

// transactionsCmd prints the transaction log inferred from the stored
// snapshots. It needs no market data.
type transactionsCmd struct{}

func (*transactionsCmd) Name() string     { return "transactions" }
func (*transactionsCmd) Synopsis() string { return "print the transaction log inferred from snapshots" }
func (*transactionsCmd) Usage() string {
	return `kf transactions

  Reconstructs buys and sells by diffing consecutive stored snapshots
  and prints them as a table.
`
}

func (*transactionsCmd) SetFlags(f *flag.FlagSet) {}

func (c *transactionsCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	rows, err := holdingsStore().Rows()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading data store: %v\n", err)
		return subcommands.ExitFailure
	}

	snapshots, err := kitefolio.ParseSnapshots(rows)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing snapshots: %v\n", err)
		return subcommands.ExitFailure
	}
	if len(snapshots) == 0 {
		fmt.Fprintf(os.Stderr, "No snapshots in %s, run 'kf scrape' first\n", *dataDir)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.RenderTransactions(kitefolio.InferTransactions(snapshots)))
	return subcommands.ExitSuccess
}
