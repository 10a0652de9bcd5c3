package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/taxlot"
	"github.com/etnz/taxlot/renderer"
	"github.com/google/subcommands"
)

type reportCmd struct {
	group string
	year  int
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "realized gains summary" }
func (*reportCmd) Usage() string {
	return `taxlot report [-group instrument|year|global] [-year <yyyy>]

  Summarizes the matched share of proceeds, commissions and cost basis, in the
  original currency and converted into the home currency.

  -group instrument  one row per instrument, all years together
  -group year        one row per instrument and realization year
  -group global      one row per realization year and a grand total
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.group, "group", taxlot.ByInstrument.String(), "Grouping of the rows (instrument, year, global)")
	f.IntVar(&c.year, "year", 0, "Only report gains realized this year")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	group, err := taxlot.ParseGroupBy(c.group)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing group: %v\n", err)
		return subcommands.ExitUsageError
	}
	if c.year != 0 && group == taxlot.ByInstrument {
		group = taxlot.ByInstrumentYear
	}

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
	rows := taxlot.Summarize(res, group)
	title := "Realized gains"
	if c.year != 0 {
		rows = taxlot.FilterYear(rows, c.year)
		title = fmt.Sprintf("Realized gains %d", c.year)
	}
	printMarkdown(renderer.ReportMarkdown(res, rows, title))
	return subcommands.ExitSuccess
}
