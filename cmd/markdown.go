package cmd

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// terminal renders markdown for the terminal. It falls back to the raw
// markdown when it cannot be rendered.
func terminal(md string) string {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

func printMarkdown(md string) { fmt.Print(terminal(md)) }
