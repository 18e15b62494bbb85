package htmlutil

import (
	"bytes"
	"context"
	"net/url"

	"rostersync-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"
)

var tracer = otel.Tracer("rostersync.lib.htmlutil")

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// CleanText returns the visible text of a selection with non-printable
// runes stripped and whitespace collapsed.
func CleanText(sel *goquery.Selection) string {
	text := textutil.RemoveNonPrintable(sel.Text())
	return textutil.CollapseWhitespace(text)
}

type Anchor struct {
	Name string
	Href string
}

// GetAnchors collects anchors under sel, resolving hrefs against base
// when base is non-nil. Anchors whose href cannot be parsed are skipped.
func GetAnchors(ctx context.Context, sel *goquery.Selection, base *url.URL) []Anchor {
	ctx, span := tracer.Start(ctx, "GetAnchors")
	defer span.End()

	anchors := []Anchor{}
	for _, n := range sel.Nodes {
		href := ""
		for _, a := range n.Attr {
			if a.Key == "href" {
				href = a.Val
				break
			}
		}

		link, err := url.Parse(href)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "got error while parsing url")
			continue
		}
		if base != nil {
			link = base.ResolveReference(link)
		}

		name := GetText(n)
		name = textutil.RemoveNonPrintable(name)
		name = textutil.CollapseWhitespace(name)

		linkStr := link.String()
		anchors = append(anchors, Anchor{
			Name: name,
			Href: linkStr,
		})
		span.AddEvent("anchor", trace.WithAttributes(
			attribute.String("name", name),
			attribute.String("url", linkStr),
		))
	}

	return anchors
}

// RowCells returns the cell selections of a table or ARIA grid row, in
// document order. Covers plain <td>/<th> and role=gridcell/columnheader/cell.
func RowCells(row *goquery.Selection) []*goquery.Selection {
	var cells []*goquery.Selection
	row.Find("td, th, [role=gridcell], [role=columnheader], [role=cell]").Each(
		func(_ int, cell *goquery.Selection) {
			// cells of nested tables belong to their own row
			closest := cell.Closest("tr, [role=row]")
			if len(closest.Nodes) > 0 && len(row.Nodes) > 0 && closest.Nodes[0] == row.Nodes[0] {
				cells = append(cells, cell)
			}
		})
	return cells
}

// Rows returns the rows of a table-like container: <tr> elements or
// role=row children for ARIA grids.
func Rows(container *goquery.Selection) []*goquery.Selection {
	var rows []*goquery.Selection
	container.Find("tr, [role=row]").Each(func(_ int, row *goquery.Selection) {
		rows = append(rows, row)
	})
	return rows
}
