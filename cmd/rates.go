package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/assets/renderer"
	"github.com/google/subcommands"
)

type ratesCmd struct{}

func (*ratesCmd) Name() string     { return "rates" }
func (*ratesCmd) Synopsis() string { return "display the exchange rates in use" }
func (*ratesCmd) Usage() string {
	return `atr rates

  Displays the exchange rates, in units per 1 USD, and where they come from.
`
}

func (*ratesCmd) SetFlags(f *flag.FlagSet) {}

func (*ratesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening assets: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	printMarkdown(renderer.RenderRates(renderer.NewRateList(a.coll.Rates())))
	return subcommands.ExitSuccess
}
