package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/taxlot"
	"github.com/google/subcommands"
)

type exportCmd struct {
	output string
	format string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the realized gains table" }
func (*exportCmd) Usage() string {
	return `taxlot export [-o <file>] [-format csv|jsonl]

  Exports, per instrument, one row per realization year followed by the
  instrument total, and a grand total (csv). With -format jsonl, exports every
  transaction with its match state instead.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Output file, defaults to stdout")
	f.StringVar(&c.format, "format", "csv", "Output format (csv, jsonl)")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.format != "csv" && c.format != "jsonl" {
		fmt.Fprintf(os.Stderr, "Error: unsupported format %q\n", c.format)
		return subcommands.ExitUsageError
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
	printWarnings(res)

	var w io.Writer = os.Stdout
	if c.output != "" {
		file, err := os.Create(c.output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating %q: %v\n", c.output, err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		w = file
	}

	if err := export(w, res, c.format); err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func export(w io.Writer, res *taxlot.Result, format string) error {
	if format == "jsonl" {
		return taxlot.EncodeMatchesJSONL(w, res)
	}
	return taxlot.EncodeRowsCSV(w, taxlot.Export(res))
}
