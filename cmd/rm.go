package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type rmCmd struct {
	id string
}

func (*rmCmd) Name() string     { return "rm" }
func (*rmCmd) Synopsis() string { return "remove an asset" }
func (*rmCmd) Usage() string {
	return `atr rm -id <id>

  Removes an asset. <id> is a row number or a unique prefix of the asset ID.
`
}

func (c *rmCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Row number or ID prefix of the asset")
}

func (c *rmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening assets: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	id, err := resolveID(a.coll, c.id)
	if err == nil {
		err = a.coll.Delete(ctx, id)
	}
	if err != nil {
		return exitStatus("removing asset", err)
	}
	fmt.Printf("Successfully removed %s\n", id)
	return subcommands.ExitSuccess
}

// moveCmd implements both 'up' and 'down'.
type moveCmd struct {
	name     string
	synopsis string
	id       string
}

func (c *moveCmd) Name() string     { return c.name }
func (c *moveCmd) Synopsis() string { return c.synopsis }
func (c *moveCmd) Usage() string {
	return fmt.Sprintf(`atr %s -id <id>

  Swaps an asset with its neighbor. <id> is a row number or a unique prefix of
  the asset ID.
`, c.name)
}

func (c *moveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Row number or ID prefix of the asset")
}

func (c *moveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening assets: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	id, err := resolveID(a.coll, c.id)
	if err == nil {
		if c.name == "up" {
			err = a.coll.MoveUp(ctx, id)
		} else {
			err = a.coll.MoveDown(ctx, id)
		}
	}
	if err != nil {
		return exitStatus("moving asset", err)
	}
	fmt.Printf("Successfully moved %s %s\n", id, c.name)
	return subcommands.ExitSuccess
}
