package renderer

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/etnz/assets"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// tables parses md and returns the cells of every table, header included.
func tables(t *testing.T, md string) [][][]string {
	t.Helper()
	source := []byte(md)
	doc := goldmark.New(goldmark.WithExtensions(extension.Table)).Parser().Parse(text.NewReader(source))

	var (
		all   [][][]string
		table [][]string
		row   []string
	)
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch n := n.(type) {
		case *east.Table:
			if entering {
				table = nil
			} else {
				all = append(all, table)
			}
		case *east.TableHeader, *east.TableRow:
			if entering {
				row = nil
			} else {
				table = append(table, row)
			}
		case *east.TableCell:
			if entering {
				row = append(row, cellText(n, source))
				return ast.WalkSkipChildren, nil
			}
		}
		return ast.WalkContinue, nil
	})
	require.NoError(t, err)
	return all
}

// cellText concatenates the text segments under n.
func cellText(n ast.Node, source []byte) string {
	var b strings.Builder
	ast.Walk(n, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); ok && entering {
			b.Write(t.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

func testView(t *testing.T) assets.View {
	t.Helper()
	ctx := context.Background()
	table, err := assets.RatesFromFloats(map[string]float64{"EUR": 0.5})
	require.NoError(t, err)
	store := assets.NewMemoryStore(
		assets.Asset{ID: "01A", Name: "Laptop", Type: assets.Digital, Value: decimal.RequireFromString("1200"), Currency: "USD", Location: "Home"},
		assets.Asset{ID: "01B", Name: "Gold | coins", Type: assets.Metal, Value: decimal.RequireFromString("100.5"), Currency: "EUR", Notes: "line1\nline2"},
		assets.Asset{ID: "01C", Name: "Yen", Type: assets.Cash, Value: decimal.RequireFromString("10"), Currency: "JPY"},
	)
	c, err := assets.Open(ctx, store, assets.WithRates(table))
	require.NoError(t, err)
	v, err := c.View("EUR", table)
	require.NoError(t, err)
	return v
}

func TestNewAssetList(t *testing.T) {
	l := NewAssetList(testView(t))
	assert.Equal(t, "EUR", l.Currency)
	assert.Equal(t, 3, l.Count)
	assert.Equal(t, "unsorted", l.Sort)
	assert.Equal(t, assets.SourceStatic, l.RatesSource)
	require.Len(t, l.Rows, 3)

	assert.Equal(t, AssetListRow{
		Position: 1, ID: "01A", Name: "Laptop", Type: "Digital",
		Value: "1200.00", AssetCurrency: "USD", Converted: "600.00", Location: "Home",
	}, l.Rows[0])
	assert.Equal(t, "100.50", l.Rows[1].Converted)
	// JPY is unknown: its value is read as USD.
	assert.Equal(t, "5.00", l.Rows[2].Converted)
	require.Len(t, l.Warnings, 1)
	assert.True(t, strings.HasPrefix(l.Warnings[0], "Yen: "), l.Warnings[0])
	assert.Contains(t, l.Total, "705.50")
}

func TestRenderAssetList(t *testing.T) {
	md := RenderAssetList(NewAssetList(testView(t)))
	assert.NotContains(t, md, "error ")
	assert.True(t, strings.HasPrefix(md, "# Assets in EUR\n"), md)

	all := tables(t, md)
	require.Len(t, all, 1, md)
	rows := all[0]
	require.Len(t, rows, 4, md)
	assert.Equal(t, []string{"#", "ID", "Name", "Type", "Value", "Currency", "Value (EUR)", "Location", "Notes"}, rows[0])
	assert.Equal(t, []string{"1", "01A", "Laptop", "Digital", "1200.00", "USD", "600.00", "Home", ""}, rows[1])
	assert.Equal(t, "Gold | coins", rows[2][2], "pipes are escaped")
	assert.Equal(t, "line1 line2", rows[2][8], "new lines are replaced")

	assert.Contains(t, md, "\n\n**Total: ")
	assert.Contains(t, md, "\n\n> **Warnings**\n> - Yen: ")
}

func TestRenderAssetList_Empty(t *testing.T) {
	c, err := assets.Open(context.Background(), assets.NewMemoryStore())
	require.NoError(t, err)
	v, err := c.Current()
	require.NoError(t, err)

	md := RenderAssetList(NewAssetList(v))
	assert.Empty(t, tables(t, md))
	assert.Contains(t, md, "_No assets._")
	assert.NotContains(t, md, "Warnings")
}

func TestRenderRates(t *testing.T) {
	md := RenderRates(NewRateList(assets.FallbackRates()))
	assert.Contains(t, md, "source: fallback\n")
	assert.NotContains(t, md, "as of")

	all := tables(t, md)
	require.Len(t, all, 1, md)
	assert.Equal(t, [][]string{
		{"Currency", "Rate"},
		{"CHF", "0.92"},
		{"EUR", "0.85"},
		{"USD", "1"},
	}, all[0])
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	md := RenderAssetList(NewAssetList(testView(t)))
	require.NoError(t, WriteHTML(&buf, "My <assets>", md))

	html := buf.String()
	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "<title>My &lt;assets&gt;</title>")
	assert.Contains(t, html, "<h1>Assets in EUR</h1>")
	assert.Contains(t, html, "<th>Name</th>")
	assert.Contains(t, html, "<td>Laptop</td>")
	assert.Contains(t, html, "<blockquote>")
}

func TestCell(t *testing.T) {
	assert.Equal(t, `a \| b`, cell("a | b"))
	assert.Equal(t, "a b c", cell("a\nb\r\nc"))
}
