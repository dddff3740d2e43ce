package cmd

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/assets/renderer"
	"github.com/google/subcommands"
)

type exportCmd struct {
	currency string
	html     bool
	output   string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write the asset list as markdown or HTML" }
func (*exportCmd) Usage() string {
	return `atr export [-c <currency>] [-html] [-o <file>]

  Writes the asset list, as displayed by 'list', in markdown or in a
  standalone HTML page. By default the document is written to stdout.

Usage Examples:
$ atr export -html -o assets.html
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "c", "", "Display currency (default from config)")
	f.BoolVar(&c.html, "html", false, "Write HTML instead of markdown")
	f.StringVar(&c.output, "o", "", "Output file (default stdout)")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening assets: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	md, err := listMarkdown(ctx, a.coll, c.currency, "", false)
	if err != nil {
		return exitStatus("exporting assets", err)
	}

	var buf bytes.Buffer
	if err := export(&buf, md, c.html); err != nil {
		return exitStatus("exporting assets", err)
	}

	if c.output == "" {
		io.Copy(os.Stdout, &buf)
		return subcommands.ExitSuccess
	}
	if err := os.WriteFile(c.output, buf.Bytes(), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", c.output, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "Successfully exported to %s\n", c.output)
	return subcommands.ExitSuccess
}

// export writes md to w, converted to HTML if asked.
func export(w io.Writer, md string, html bool) error {
	if html {
		return renderer.WriteHTML(w, "Assets", md)
	}
	_, err := io.WriteString(w, md)
	return err
}
