package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/assets"
	"github.com/etnz/assets/renderer"
	"github.com/google/subcommands"
)

// listCmd holds the flags for the 'list' subcommand.
type listCmd struct {
	currency string
	sortKey  string
	desc     bool
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "display all assets and their total" }
func (*listCmd) Usage() string {
	return `atr list [-c <currency>] [-sort <key> [-desc]]

  Displays the assets, their value converted into the display currency and the
  total. With -sort, the list is displayed sorted but the stored order is left
  unchanged.
`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "c", "", "Display currency (default from config)")
	f.StringVar(&c.sortKey, "sort", "", "Sort key: "+sortKeyList())
	f.BoolVar(&c.desc, "desc", false, "Sort in descending order")
}

func (c *listCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening assets: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	md, err := listMarkdown(ctx, a.coll, c.currency, c.sortKey, c.desc)
	if err != nil {
		return exitStatus("listing assets", err)
	}
	printMarkdown(md)
	return subcommands.ExitSuccess
}

// listMarkdown renders coll in currency, or its display currency. When
// sortKey is set, a sorted copy of coll is rendered.
func listMarkdown(ctx context.Context, coll *assets.Collection, currency, sortKey string, desc bool) (string, error) {
	if currency == "" {
		currency = coll.DisplayCurrency()
	}
	currency = strings.ToUpper(currency)

	if sortKey != "" {
		key, err := assets.ParseSortKey(sortKey)
		if err != nil {
			return "", err
		}
		sorted, err := assets.Open(ctx, assets.NewMemoryStore(coll.Assets()...), assets.WithRates(coll.Rates()))
		if err != nil {
			return "", err
		}
		if err := sortBy(ctx, sorted, key, desc, currency); err != nil {
			return "", err
		}
		coll = sorted
	}

	v, err := coll.View(currency, coll.Rates())
	if err != nil {
		return "", err
	}
	return renderer.RenderAssetList(renderer.NewAssetList(v)), nil
}

// sortBy sorts coll by key in the requested direction.
func sortBy(ctx context.Context, coll *assets.Collection, key assets.SortKey, desc bool, currency string) error {
	if err := coll.SortBy(ctx, key, currency, coll.Rates()); err != nil {
		return err
	}
	if desc {
		// sorting again by the same key toggles the direction
		return coll.SortBy(ctx, key, currency, coll.Rates())
	}
	return nil
}

func sortKeyList() string {
	keys := make([]string, len(assets.SortKeys))
	for i, k := range assets.SortKeys {
		keys[i] = string(k)
	}
	return strings.Join(keys, ", ")
}
