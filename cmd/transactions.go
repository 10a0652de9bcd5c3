package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/taxlot/renderer"
	"github.com/google/subcommands"
)

type transactionsCmd struct {
	instrument string
}

func (*transactionsCmd) Name() string     { return "transactions" }
func (*transactionsCmd) Synopsis() string { return "list transactions with their FIFO matching" }
func (*transactionsCmd) Usage() string {
	return `taxlot transactions [-i <instrument>]

  Lists transactions per instrument with their exchange rate, matched quantity,
  realization years and running position.
`
}

func (c *transactionsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.instrument, "i", "", "Only list this instrument")
}

func (c *transactionsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	svc, closeDB, err := OpenService(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeDB()

	res, err := svc.Result()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing matches: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.instrument != "" {
		res = res.Only(strings.ToUpper(c.instrument))
	}
	printMarkdown(renderer.TransactionsMarkdown(res))
	printWarnings(res)
	return subcommands.ExitSuccess
}
