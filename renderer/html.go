package renderer

import (
	"bytes"
	"fmt"
	"html"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// markdown is the converter used for HTML output. Tables need the GFM
// extension.
var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// WriteHTML converts the markdown document md into a standalone HTML page.
func WriteHTML(w io.Writer, title, md string) error {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(md), &body); err != nil {
		return fmt.Errorf("cannot convert markdown to html: %w", err)
	}
	_, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.3em 0.6em; }
</style>
</head>
<body>
%s</body>
</html>
`, html.EscapeString(title), body.String())
	return err
}
