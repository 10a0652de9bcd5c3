// Command taxlot matches buy and sell transactions and reports realized gains.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path"

	"github.com/etnz/taxlot/cmd"
	"github.com/etnz/taxlot/docs"
	"github.com/etnz/taxlot/internal/config"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	completion().Complete("taxlot")

	c, err := config.Load()
	if err != nil {
		log.Fatalf("cannot load configuration: %v", err)
	}

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "help")
	commander.Register(commander.FlagsCommand(), "help")
	commander.Register(commander.CommandsCommand(), "help")
	cmd.Register(commander, c)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// completion describes the command line for shell completion, enabled with
// COMP_INSTALL=1 taxlot.
func completion() *complete.Command {
	files := predict.Files("*")
	topics, _ := docs.GetAllTopics()
	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"db":    predict.Files("*.db"),
			"rates": predict.Files("*.csv"),
			"home":  predict.Something,
			"plain": predict.Nothing,
		},
		Sub: map[string]*complete.Command{
			"import": {
				Flags: map[string]complete.Predictor{
					"format": predict.Set{"csv", "json", "html"},
					"path":   predict.Something,
				},
				Args: files,
			},
			"remove": {Args: predict.Something},
			"transactions": {
				Flags: map[string]complete.Predictor{"i": predict.Something},
			},
			"report": {
				Flags: map[string]complete.Predictor{
					"group": predict.Set{"instrument", "year", "global"},
					"year":  predict.Something,
				},
			},
			"export": {
				Flags: map[string]complete.Predictor{
					"o":      files,
					"format": predict.Set{"csv", "jsonl"},
				},
			},
			"serve": {
				Flags: map[string]complete.Predictor{"addr": predict.Something},
			},
			"topic": {
				Flags: map[string]complete.Predictor{"l": predict.Nothing},
				Args:  predict.Set(append(topics, "readme", "*")),
			},
		},
	}
}
