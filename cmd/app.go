// Package cmd implements the kf CLI application.
package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"

	"github.com/rachitg/kitefolio"
	"github.com/rachitg/kitefolio/marketdata"
)

// Commands lists every subcommand. A main package registers them on its
// commander and executes the user-selected one.
var Commands = []subcommands.Command{
	&scrapeCmd{},
	&uploadCmd{},
	&analyzeCmd{},
	&transactionsCmd{},
}

// As a short-lived CLI application, shared flags live in globals.
var (
	dataDir  = flag.String("data", getEnv("KF_DATA_DIR", "data"), "Directory holding the dated holdings CSV files")
	cacheDir = flag.String("cache", getEnv("KF_CACHE_DIR", "cache"), "Directory for cached market data")
	plain    = flag.Bool("plain", false, "Print reports as raw markdown without terminal styling")
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// newLogger builds the application logger. KF_LOG_LEVEL selects the level,
// defaulting to info.
func newLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(getEnv("KF_LOG_LEVEL", "info"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

func holdingsStore() kitefolio.Store {
	return kitefolio.Store{Dir: *dataDir}
}

func priceSource(log zerolog.Logger) *marketdata.Client {
	return marketdata.NewClient(*cacheDir, log)
}

// printMarkdown renders markdown for the terminal. With -plain, or when
// rendering fails, the raw markdown is printed instead.
func printMarkdown(md string) {
	if !*plain {
		if out, err := glamour.Render(md, "auto"); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Println(md)
}
