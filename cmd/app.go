// Package cmd implements the CLI application to compute realized gains.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/taxlot"
	"github.com/etnz/taxlot/internal/config"
	"github.com/etnz/taxlot/server"
	"github.com/etnz/taxlot/store"
	"github.com/google/subcommands"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	cfg       *config.Config
	dbPath    *string
	ratesPath *string
	home      *string
	plain     *bool
)

// Register the subcommands and the global flags, defaults are taken from c.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(commander *subcommands.Commander, c *config.Config) {
	cfg = c
	dbPath = flag.String("db", c.Database.Path, "Path to the transactions database (SQLite)")
	ratesPath = flag.String("rates", c.Report.RatesPath, "Path to the exchange rate table (CSV), ignored if missing")
	home = flag.String("home", c.Report.HomeCurrency, "Currency reports are converted into")
	plain = flag.Bool("plain", false, "Print raw markdown instead of terminal formatted output")

	commander.Register(&importCmd{}, "transactions")
	commander.Register(&removeCmd{}, "transactions")
	commander.Register(&transactionsCmd{}, "transactions")

	commander.Register(&reportCmd{}, "reports")
	commander.Register(&exportCmd{}, "reports")

	commander.Register(&serveCmd{}, "server")
	commander.Register(&topicCmd{}, "help")
}

// OpenService is the central function to open the persisted ledger and the
// rate table. The returned function closes the database.
func OpenService(ctx context.Context) (*server.Service, func(), error) {
	rates, err := DecodeRates()
	if err != nil {
		return nil, nil, err
	}
	db, err := store.Open(ctx, *dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open database %q: %w", *dbPath, err)
	}
	closeDB := func() {
		if err := db.Close(); err != nil {
			log.Printf("cannot close database: %v", err)
		}
	}
	txs, err := db.Load(ctx)
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	ledger, err := taxlot.RestoreLedger(cfg.Report.Aliases, txs)
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	return server.NewService(ledger, rates, db), closeDB, nil
}

// DecodeRates decodes the rate table from the app rates path. A missing table
// yields a nil index: no amount gets converted.
func DecodeRates() (*taxlot.RateIndex, error) {
	f, err := os.Open(*ratesPath)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("warning, rate table %q does not exist, converted amounts are not available", *ratesPath)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rows, err := taxlot.DecodeRates(f)
	if err != nil {
		return nil, fmt.Errorf("rate table %q: %w", *ratesPath, err)
	}
	return taxlot.NewRateIndex(*home, rows)
}

// printMarkdown prints md to stdout, formatted for the terminal unless -plain.
func printMarkdown(md string) {
	if *plain {
		fmt.Print(md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(160))
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

// printWarnings logs the advisories of a matching run on stderr.
func printWarnings(res *taxlot.Result) {
	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %v\n", w)
	}
}
