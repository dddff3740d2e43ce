package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/assets"
	"github.com/google/subcommands"
)

// draftFlags registers one flag per draft field.
func draftFlags(f *flag.FlagSet, d *assets.Draft) {
	f.StringVar(&d.Name, "name", "", "Name of the asset")
	f.StringVar(&d.Type, "type", "", "Type of the asset: Digital, Cash, Metal, Crypto or any other")
	f.StringVar(&d.Value, "value", "", "Value of the asset in its currency")
	f.StringVar(&d.Currency, "currency", "", "Currency code of the value, e.g. USD")
	f.StringVar(&d.Location, "location", "", "Where the asset is kept")
	f.StringVar(&d.Notes, "notes", "", "Free text")
}

// draftFromFlags applies to d the draft flags actually set in f.
func draftFromFlags(d assets.Draft, f *flag.FlagSet) (assets.Draft, error) {
	var err error
	f.Visit(func(fl *flag.Flag) {
		if fl.Name == "id" || err != nil {
			return
		}
		err = setField(&d, fl.Name, fl.Value.String())
	})
	return d, err
}

// addCmd holds the flags for the 'add' subcommand.
type addCmd struct {
	draft assets.Draft
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "add an asset" }
func (*addCmd) Usage() string {
	return `atr add -name <name> -type <type> -value <value> -currency <code> [-location <location>] [-notes <notes>]

  Adds an asset at the end of the list.

Usage Examples:
$ atr add -name Laptop -type Digital -value 1200 -currency USD -location Home
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) { draftFlags(f, &c.draft) }

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening assets: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	asset, err := a.coll.Create(ctx, c.draft)
	if err != nil {
		return exitStatus("adding asset", err)
	}
	fmt.Printf("Successfully added %q as %s\n", asset.Name, asset.ID)
	return subcommands.ExitSuccess
}

// editCmd holds the flags for the 'edit' subcommand.
type editCmd struct {
	id    string
	draft assets.Draft
}

func (*editCmd) Name() string     { return "edit" }
func (*editCmd) Synopsis() string { return "change the fields of an asset" }
func (*editCmd) Usage() string {
	return `atr edit -id <id> [-name <name>] [-type <type>] [-value <value>] [-currency <code>] [-location <location>] [-notes <notes>]

  Changes only the fields given on the command line. The asset keeps its
  position. <id> is a row number or a unique prefix of the asset ID.
`
}

func (c *editCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Row number or ID prefix of the asset")
	draftFlags(f, &c.draft)
}

func (c *editCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening assets: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	id, err := resolveID(a.coll, c.id)
	if err != nil {
		return exitStatus("editing asset", err)
	}
	current, err := a.coll.Get(id)
	if err != nil {
		return exitStatus("editing asset", err)
	}

	d, err := draftFromFlags(assets.DraftOf(current), f)
	if err != nil {
		return exitStatus("editing asset", err)
	}

	if _, err := a.coll.Update(ctx, id, d); err != nil {
		return exitStatus("editing asset", err)
	}
	fmt.Printf("Successfully updated %s\n", id)
	return subcommands.ExitSuccess
}
