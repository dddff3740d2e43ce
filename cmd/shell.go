package cmd

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/assets"
	"github.com/etnz/assets/exchangerate"
	"github.com/etnz/assets/renderer"
	"github.com/google/subcommands"
)

type shellCmd struct{}

func (*shellCmd) Name() string     { return "shell" }
func (*shellCmd) Synopsis() string { return "manage assets interactively" }
func (*shellCmd) Usage() string {
	return `atr shell

  Starts an interactive session on the assets. Type 'help' for the list of
  commands. The exchange rates are fetched once at start, from the daily
  cache when possible. Use 'refresh' to fetch them again from the source.
`
}

func (*shellCmd) SetFlags(f *flag.FlagSet) {}

func (*shellCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening assets: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	s := &session{coll: a.coll, rates: a.rates, out: os.Stdout, render: terminal}
	if err := s.run(ctx, os.Stdin); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

const prompt = "atr> "

const shellHelp = `Commands:
  list                          display the assets
  add field=value ...           add an asset, fields: name, type, value, currency, location, notes
  edit <id> field=value ...     change some fields of an asset
  rm <id>                       remove an asset
  up <id>, down <id>            move an asset
  sort <key>                    sort by name, type, value, currency, location or notes, again to reverse
  currency <code>               change the display currency
  refresh                       fetch the exchange rates again, skipping the daily cache
  rates                         display the exchange rates
  help                          display this help
  quit                          leave the session

<id> is a row number or a unique prefix of the asset ID. Quote values with spaces: name="Gold coins".
`

// errOffline is returned by 'refresh' without a rate source.
var errOffline = errors.New("offline: no exchange rate source")

// session is an interactive session on a collection.
type session struct {
	coll *assets.Collection
	// rates is nil in offline mode.
	rates  assets.RateProvider
	out    io.Writer
	render func(md string) string
}

// run executes commands read from in until 'quit' or the end of in.
func (s *session) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(s.out, prompt)
	for scanner.Scan() {
		quit, err := s.exec(ctx, scanner.Text())
		if err != nil {
			s.report(err)
		}
		if quit {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(s.out, prompt)
	}
	return scanner.Err()
}

// report prints err as a warning when the session can simply go on.
func (s *session) report(err error) {
	switch {
	case errors.Is(err, assets.ErrNotFound),
		errors.Is(err, assets.ErrAtBoundary),
		errors.Is(err, assets.ErrRateFetchFailed),
		errors.Is(err, errOffline):
		fmt.Fprintf(s.out, "warning: %v\n", err)
	default:
		fmt.Fprintf(s.out, "error: %v\n", err)
	}
}

// exec executes a single command line.
func (s *session) exec(ctx context.Context, line string) (quit bool, err error) {
	args, err := splitLine(line)
	if err != nil || len(args) == 0 {
		return false, err
	}
	name, args := args[0], args[1:]

	switch name {
	case "quit", "exit":
		return true, nil
	case "help":
		fmt.Fprint(s.out, shellHelp)
		return false, nil
	case "list":
		return false, s.list()
	case "rates":
		fmt.Fprint(s.out, s.render(renderer.RenderRates(renderer.NewRateList(s.coll.Rates()))))
		return false, nil
	case "add":
		d, err := draftFrom(assets.Draft{}, args)
		if err != nil {
			return false, err
		}
		a, err := s.coll.Create(ctx, d)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(s.out, "added %s\n", a.ID)
		return false, s.list()
	case "edit":
		if len(args) == 0 {
			return false, errors.New("usage: edit <id> field=value ...")
		}
		id, err := resolveID(s.coll, args[0])
		if err != nil {
			return false, err
		}
		current, err := s.coll.Get(id)
		if err != nil {
			return false, err
		}
		d, err := draftFrom(assets.DraftOf(current), args[1:])
		if err != nil {
			return false, err
		}
		if _, err := s.coll.Update(ctx, id, d); err != nil {
			return false, err
		}
		return false, s.list()
	case "rm", "up", "down":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: %s <id>", name)
		}
		id, err := resolveID(s.coll, args[0])
		if err != nil {
			return false, err
		}
		switch name {
		case "rm":
			err = s.coll.Delete(ctx, id)
		case "up":
			err = s.coll.MoveUp(ctx, id)
		case "down":
			err = s.coll.MoveDown(ctx, id)
		}
		if err != nil {
			return false, err
		}
		return false, s.list()
	case "sort":
		if len(args) != 1 {
			return false, errors.New("usage: sort <key>")
		}
		key, err := assets.ParseSortKey(args[0])
		if err != nil {
			return false, err
		}
		if err := s.coll.Sort(ctx, key); err != nil {
			return false, err
		}
		return false, s.list()
	case "currency":
		if len(args) != 1 {
			return false, errors.New("usage: currency <code>")
		}
		if err := s.coll.SetDisplayCurrency(args[0]); err != nil {
			return false, err
		}
		return false, s.list()
	case "refresh":
		if s.rates == nil {
			return false, errOffline
		}
		err := s.coll.RefreshRates(exchangerate.Reload(ctx), s.rates)
		if lerr := s.list(); lerr != nil {
			return false, lerr
		}
		return false, err
	default:
		return false, fmt.Errorf("unknown command %q, type 'help' for the list of commands", name)
	}
}

// list prints the current view.
func (s *session) list() error {
	v, err := s.coll.Current()
	if err != nil {
		return err
	}
	fmt.Fprint(s.out, s.render(renderer.RenderAssetList(renderer.NewAssetList(v))))
	return nil
}
