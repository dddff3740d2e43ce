// Command atr tracks personal assets and displays their total value in a
// currency of choice.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/assets"
	"github.com/etnz/assets/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	for _, c := range cmd.Commands {
		commander.Register(c, "")
	}

	// Exits when invoked by the shell for completion.
	completion(commander).Complete(commander.Name())

	flag.Parse()

	// Unknown subcommands may be provided by an atr-<name> binary.
	if name := flag.Arg(0); name != "" && !registered(commander, name) {
		if found, code := cmd.RunExtension(name, flag.Args()[1:]); found {
			os.Exit(code)
		}
	}
	os.Exit(int(commander.Execute(context.Background())))
}

// registered reports whether name is a registered subcommand.
func registered(commander *subcommands.Commander, name string) bool {
	found := false
	commander.VisitCommands(func(_ *subcommands.CommandGroup, c subcommands.Command) {
		if c.Name() == name {
			found = true
		}
	})
	return found
}

// completion describes the command line for shell completion: global flags
// and, for each subcommand, its own flags.
func completion(commander *subcommands.Commander) *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: predictors(flag.CommandLine),
	}
	commander.VisitCommands(func(_ *subcommands.CommandGroup, c subcommands.Command) {
		fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(fs)
		root.Sub[c.Name()] = &complete.Command{Flags: predictors(fs)}
	})
	return root
}

// predictors returns a predictor for each flag of fs.
func predictors(fs *flag.FlagSet) map[string]complete.Predictor {
	currencies := predict.Set(assets.DisplayCurrencies)
	keys := make(predict.Set, len(assets.SortKeys))
	for i, k := range assets.SortKeys {
		keys[i] = string(k)
	}
	types := make(predict.Set, len(assets.AssetTypes))
	for i, t := range assets.AssetTypes {
		types[i] = string(t)
	}

	flags := map[string]complete.Predictor{}
	fs.VisitAll(func(f *flag.Flag) {
		switch f.Name {
		case "c", "currency":
			flags[f.Name] = currencies
		case "sort", "by":
			flags[f.Name] = keys
		case "type":
			flags[f.Name] = types
		case "store":
			flags[f.Name] = predict.Set{"file", "memory", "postgres"}
		case "log-level":
			flags[f.Name] = predict.Set{"debug", "info", "warn", "error"}
		case "config":
			flags[f.Name] = predict.Files("*.yaml")
		case "store-path", "o":
			flags[f.Name] = predict.Files("*")
		default:
			if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
				flags[f.Name] = predict.Nothing
			} else {
				flags[f.Name] = predict.Something
			}
		}
	})
	return flags
}
