package rosterpage

import (
	"context"
	"net/url"
	"strings"

	"rostersync-backend/lib/htmlutil"
	"rostersync-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type PageKind string

const (
	PageRoster     PageKind = "roster"
	PageExport     PageKind = "export"
	PageGradebook  PageKind = "gradebook"
	PageAttendance PageKind = "attendance"
	PageUnknown    PageKind = "unknown"
)

// path keyword lists are checked in this fixed order, the first kind
// with a hit wins
var pageKindKeywords = []struct {
	kind     PageKind
	keywords []string
}{
	{PageExport, []string{".csv", "export", "download"}},
	{PageGradebook, []string{"gradebook", "grades", "scores", "assignments"}},
	{PageAttendance, []string{"attendance", "absence", "tardies"}},
	{PageRoster, []string{"roster", "students", "classlist", "enrollment", "directory"}},
}

var rosterHeaderKeywords = []string{"name", "student"}

// Classify decides which parser variant applies to a document. The
// source is picked off the page's network origin, the page kind off
// path keywords with a structural fallback: any table with more than 5
// rows and a name/student-ish header row is assumed to be a roster.
// PageUnknown is not an error, it just means "extract nothing."
func Classify(ctx context.Context, doc *goquery.Document, pageURL *url.URL) (SourceKind, PageKind) {
	ctx, span := tracer.Start(ctx, "Classify")
	defer span.End()

	source := classifySource(pageURL)
	kind := classifyPath(pageURL)
	if kind == PageUnknown && doc != nil && looksLikeRoster(doc) {
		kind = PageRoster
	}

	pageStr := ""
	if pageURL != nil {
		pageStr = pageURL.String()
	}
	span.SetAttributes(
		attribute.String("source", string(source)),
		attribute.String("page_kind", string(kind)),
	)
	span.AddEvent("classified", trace.WithAttributes(
		attribute.String("url", pageStr),
	))
	return source, kind
}

func classifySource(pageURL *url.URL) SourceKind {
	if pageURL == nil {
		return SourceGeneric
	}
	host := strings.ToLower(pageURL.Hostname())
	for _, cfg := range Sources() {
		for _, h := range cfg.Hosts {
			if host == h || strings.Contains(host, h) {
				return cfg.Kind
			}
		}
	}
	return SourceGeneric
}

func classifyPath(pageURL *url.URL) PageKind {
	if pageURL == nil {
		return PageUnknown
	}
	path := strings.ToLower(pageURL.Path)
	for _, entry := range pageKindKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(path, keyword) {
				return entry.kind
			}
		}
	}
	return PageUnknown
}

func looksLikeRoster(doc *goquery.Document) bool {
	found := false
	doc.Find("table, [role=grid]").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		rows := htmlutil.Rows(table)
		if len(rows) <= 5 {
			return true
		}
		for _, cell := range htmlutil.RowCells(rows[0]) {
			if textutil.MatchKeyword(cell.Text(), rosterHeaderKeywords) {
				found = true
				return false
			}
		}
		return true
	})
	return found
}
