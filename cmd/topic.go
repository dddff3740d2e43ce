package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/assets/docs"
	"github.com/google/subcommands"
)

type topicCmd struct{}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "show documentation" }
func (*topicCmd) Usage() string {
	return `atr topic [<topic>...]

Show documentation for the given topics, '*' for all of them. Without topic,
list the available topics.
`
}

func (c *topicCmd) SetFlags(f *flag.FlagSet) {}

func (c *topicCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	topics := f.Args()
	if len(topics) == 0 {
		md, err := topicList()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading doc: %v\n", err)
			return subcommands.ExitFailure
		}
		printMarkdown(md)
		return subcommands.ExitSuccess
	}

	doc, err := docs.GetTopics(topics...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading doc: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(doc)

	return subcommands.ExitSuccess
}

// topicList renders the readme followed by the title of each topic.
func topicList() (string, error) {
	readme, err := docs.GetTopic(docs.Readme)
	if err != nil {
		return "", err
	}
	topics, err := docs.AllTopics()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(readme)
	b.WriteString("\n## Topics\n\n")
	for _, t := range topics {
		title, err := docs.Title(t)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "- `%s`: %s\n", t, title)
	}
	return b.String(), nil
}
