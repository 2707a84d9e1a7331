// Command arvo manages an investment portfolio: ledger of operations,
// positions, monthly taxes, returns and reports.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/arvowealth/portfolio"
	"github.com/arvowealth/portfolio/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	completion(commander).Complete(commander.Name())

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// completion describes the subcommands and their flags for shell completion.
func completion(commander *subcommands.Commander) *complete.Command {
	root := &complete.Command{
		Sub: map[string]*complete.Command{},
		Flags: map[string]complete.Predictor{
			"config": predict.Files("*.toml"),
			"owner":  predict.Something,
		},
	}
	commander.VisitCommands(func(_ *subcommands.CommandGroup, c subcommands.Command) {
		fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(fs)
		sub := &complete.Command{Flags: map[string]complete.Predictor{}}
		fs.VisitAll(func(f *flag.Flag) {
			sub.Flags[f.Name] = predictFlag(c.Name(), f.Name)
		})
		switch c.Name() {
		case "import":
			sub.Args = predict.Or(predict.Files("*.csv"), predict.Files("*.jsonl"), predict.Files("*.pdf"))
		case "help":
			sub.Args = predict.Set(commandNames(commander))
		}
		root.Sub[c.Name()] = sub
	})
	return root
}

// predictFlag returns the values suggested for a flag of a command.
func predictFlag(command, name string) complete.Predictor {
	switch {
	case name == "class":
		var classes predict.Set
		for _, c := range portfolio.AssetClasses {
			classes = append(classes, c.String())
		}
		return classes
	case name == "p" && command == "log":
		return predict.Set{"day", "week", "month", "quarter", "year"}
	case name == "method":
		return predict.Set{"realized", "flat-margin"}
	case name == "frontmatter" || name == "chart":
		return predict.Files("*")
	case name == "o":
		return predict.Dirs("*")
	case name == "json" || name == "n":
		return predict.Nothing
	default:
		return predict.Something
	}
}

func commandNames(commander *subcommands.Commander) []string {
	var names []string
	commander.VisitCommands(func(_ *subcommands.CommandGroup, c subcommands.Command) {
		names = append(names, c.Name())
	})
	return names
}
