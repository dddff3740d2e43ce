package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/assets"
	"github.com/google/subcommands"
)

type sortCmd struct {
	key  string
	desc bool
}

func (*sortCmd) Name() string     { return "sort" }
func (*sortCmd) Synopsis() string { return "sort assets and store the new order" }
func (*sortCmd) Usage() string {
	return `atr sort -by <key> [-desc]

  Sorts the assets and stores the new order. Values are compared once
  converted into the display currency. Assets with equal keys keep their
  relative order.
`
}

func (c *sortCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.key, "by", string(assets.ByName), "Sort key: "+sortKeyList())
	f.BoolVar(&c.desc, "desc", false, "Sort in descending order")
}

func (c *sortCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	key, err := assets.ParseSortKey(c.key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing sort key: %v\n", err)
		return subcommands.ExitUsageError
	}

	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening assets: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if err := sortBy(ctx, a.coll, key, c.desc, a.coll.DisplayCurrency()); err != nil {
		return exitStatus("sorting assets", err)
	}
	fmt.Printf("Successfully sorted by %s, %s\n", key, a.coll.SortState().Direction)
	return subcommands.ExitSuccess
}
