package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"github.com/rachitg/kitefolio/kite"
	"github.com/rachitg/kitefolio/renderer"
)

// scrapeCmd captures the current holdings from the Kite website and stores
// them as a new dated snapshot.
type scrapeCmd struct {
	loginTimeout time.Duration
}

func (*scrapeCmd) Name() string     { return "scrape" }
func (*scrapeCmd) Synopsis() string { return "capture current holdings from Kite into the data store" }
func (*scrapeCmd) Usage() string {
	return `kf scrape [-login-timeout <duration>]

  Opens a Chrome window on the Kite login page. When KITE_USER_ID and
  KITE_PASSWORD are set (for example in a .env file) the credentials are
  filled automatically; the 2FA step is always completed by hand. Once
  logged in, the holdings table is read and saved as a new snapshot.
`
}

func (c *scrapeCmd) SetFlags(f *flag.FlagSet) {
	f.DurationVar(&c.loginTimeout, "login-timeout", 5*time.Minute, "How long to wait for the manual 2FA step")
}

func (c *scrapeCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	log := newLogger()

	browserCtx, cancel := kite.NewBrowser(ctx)
	defer cancel()

	fetcher := kite.NewFetcher(browserCtx, log)
	if err := fetcher.OpenLoginPage(); err != nil {
		fmt.Fprintf(os.Stderr, "Error opening Kite: %v\n", err)
		return subcommands.ExitFailure
	}

	userID, password := os.Getenv("KITE_USER_ID"), os.Getenv("KITE_PASSWORD")
	if userID != "" && password != "" {
		if err := fetcher.FillLoginCredentials(userID, password); err != nil {
			fmt.Fprintf(os.Stderr, "Error filling credentials: %v\n", err)
			return subcommands.ExitFailure
		}
	} else {
		log.Info().Msg("KITE_USER_ID/KITE_PASSWORD not set, log in manually")
	}

	if err := fetcher.WaitForLogin(c.loginTimeout); err != nil {
		fmt.Fprintf(os.Stderr, "Error waiting for login: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := fetcher.NavigateToHoldings(); err != nil {
		fmt.Fprintf(os.Stderr, "Error opening holdings page: %v\n", err)
		return subcommands.ExitFailure
	}

	holdings, err := fetcher.FetchHoldings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching holdings: %v\n", err)
		return subcommands.ExitFailure
	}
	if len(holdings) == 0 {
		fmt.Fprintln(os.Stderr, "No holdings found, nothing saved")
		return subcommands.ExitFailure
	}

	path, err := holdingsStore().Save(holdings, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error saving holdings: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.RenderHoldings(holdings))
	fmt.Printf("Saved %d holdings to %s\n", len(holdings), path)
	return subcommands.ExitSuccess
}
