// Package renderer turns asset views and rate tables into markdown documents.
//
// Documents are produced by text/template files embedded in the binary, a main
// template plus the partials it depends on. The markdown can then be printed
// as is, rendered in a terminal, or converted to HTML.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed templates/*.md
var templates embed.FS

var funcs = template.FuncMap{
	"cell": cell,
}

// cell escapes s to fit in a markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, `|`, `\|`)
	s = strings.ReplaceAll(s, "\r\n", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

// RenderAssetList renders the AssetList struct to a markdown string.
func RenderAssetList(l *AssetList) string {
	partials := map[string]string{
		"asset_list_title":    "asset_list_title.md",
		"asset_list_table":    "asset_list_table.md",
		"asset_list_warnings": "asset_list_warnings.md",
	}
	return renderTemplate("assetList", "asset_list.md", partials, l)
}

// RenderRates renders the RateList struct to a markdown string.
func RenderRates(r *RateList) string {
	return renderTemplate("rates", "rates.md", nil, r)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, "templates/"+mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			var readErr error
			content, readErr = fs.ReadFile(templates, "templates/"+file)
			if readErr != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, readErr)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
