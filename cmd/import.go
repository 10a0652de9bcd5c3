package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/taxlot"
	"github.com/google/subcommands"
)

type importCmd struct {
	format string
	path   string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import trades from broker files" }
func (*importCmd) Usage() string {
	return `taxlot import [-format csv|json|html] [-path <jsonpath>] <file>...

  Imports trades from CSV tables, JSON documents or HTML activity statements
  into the database.
  The format defaults to the file extension. Subtotal lines and lines without
  basis are skipped, invalid lines are reported and not imported.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.format, "format", "", "File format (csv, json, html). Defaults to the file extension.")
	f.StringVar(&c.path, "path", taxlot.DefaultRecordsPath, "jsonpath expression selecting the trades in JSON documents")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one file is required")
		return subcommands.ExitUsageError
	}

	svc, closeDB, err := OpenService(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeDB()

	status := subcommands.ExitSuccess
	for _, name := range f.Args() {
		records, err := c.decode(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %q: %v\n", name, err)
			return subcommands.ExitFailure
		}
		ids, err := svc.Import(ctx, records)
		var recErr *taxlot.RecordError
		if err != nil && !errors.As(err, &recErr) {
			fmt.Fprintf(os.Stderr, "Error importing %q: %v\n", name, err)
			return subcommands.ExitFailure
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Some lines of %q were rejected:\n%v\n", name, err)
			status = subcommands.ExitFailure
		}
		fmt.Printf("Imported %d transactions from %s\n", len(ids), name)
	}
	return status
}

// decode reads the raw records of a file.
func (c *importCmd) decode(name string) ([]taxlot.RawRecord, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return decodeRecords(file, c.format, name, c.path)
}

func decodeRecords(r io.Reader, format, name, path string) ([]taxlot.RawRecord, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	}
	switch format {
	case "csv":
		return taxlot.DecodeRecordsCSV(r)
	case "json":
		return taxlot.DecodeRecordsJSON(r, path)
	case "html", "htm":
		return taxlot.DecodeRecordsHTML(r)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}
