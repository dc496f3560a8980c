package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"github.com/rachitg/kitefolio"
	"github.com/rachitg/kitefolio/date"
)

// uploadCmd imports an existing holdings CSV file into the data store,
// backdated to the capture date.
type uploadCmd struct {
	on string
}

func (*uploadCmd) Name() string     { return "upload" }
func (*uploadCmd) Synopsis() string { return "import a holdings CSV file into the data store" }
func (*uploadCmd) Usage() string {
	return `kf upload [-d <date>] <file.csv>

  Imports a holdings CSV (as written by 'kf scrape') into the data store.
  The capture date is taken from the file name when it follows the
  holdings_YYYYMMDD_HHMMSS.csv pattern, and may be overridden with -d.
`
}

func (c *uploadCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.on, "d", "", "Capture date (YYYY-MM-DD), overriding the file name")
}

func (c *uploadCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: expected exactly one holdings CSV file")
		return subcommands.ExitUsageError
	}
	path := f.Arg(0)

	on := kitefolio.FileDate(path)
	if c.on != "" {
		var err error
		if on, err = date.Parse(c.on); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	holdings, err := kitefolio.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", path, err)
		return subcommands.ExitFailure
	}
	if len(holdings) == 0 {
		fmt.Fprintf(os.Stderr, "No holdings in %s, nothing saved\n", path)
		return subcommands.ExitFailure
	}

	captured := time.Date(on.Year(), on.Month(), on.Day(), 12, 0, 0, 0, time.UTC)
	saved, err := holdingsStore().Save(holdings, captured)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error saving holdings: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Imported %d holdings dated %s into %s\n", len(holdings), on, saved)
	return subcommands.ExitSuccess
}
