package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/google/subcommands"
)

type removeCmd struct{}

func (*removeCmd) Name() string     { return "remove" }
func (*removeCmd) Synopsis() string { return "remove transactions by id" }
func (*removeCmd) Usage() string {
	return `taxlot remove <id>...

  Removes transactions from the database. Reports are recomputed without them.
`
}

func (*removeCmd) SetFlags(f *flag.FlagSet) {}

func (c *removeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one id is required")
		return subcommands.ExitUsageError
	}
	ids := make([]int, f.NArg())
	for i, arg := range f.Args() {
		id, err := strconv.Atoi(arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid id %q\n", arg)
			return subcommands.ExitUsageError
		}
		ids[i] = id
	}

	svc, closeDB, err := OpenService(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeDB()

	for _, id := range ids {
		if err := svc.Remove(ctx, id); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Removed transaction %d\n", id)
	}
	return subcommands.ExitSuccess
}
