// Package rosterpage turns scraped SIS/LMS documents into canonical
// student records. One engine handles every source: the per-source
// differences (selectors, column patterns, id regexes) live in
// SourceConfig data, not in control flow.
package rosterpage

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"rostersync-backend/lib/fieldmatch"
	"rostersync-backend/lib/htmlutil"
	"rostersync-backend/lib/sis"
	"rostersync-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("rostersync.scrapers.rosterpage")

// Parse extracts roster records from a document. It is a pure function
// of the document: no network access, and any structural surprise
// resolves to an empty slice rather than an error.
func Parse(ctx context.Context, doc *goquery.Document, cfg SourceConfig) []sis.Record {
	ctx, span := tracer.Start(ctx, "Parse")
	defer span.End()
	span.SetAttributes(attribute.String("source", string(cfg.Kind)))

	if doc == nil {
		return nil
	}

	var records []sis.Record
	if cfg.Layout == LayoutCards {
		records = parseCards(ctx, doc, cfg)
	} else {
		records = parseTable(ctx, doc, cfg)
	}

	span.SetAttributes(attribute.Int("records", len(records)))
	return records
}

// findContainer walks the ranked source selectors, then falls back to
// the largest table/grid-like structure with more than 3 rows.
func findContainer(doc *goquery.Document, cfg SourceConfig) *goquery.Selection {
	for _, selector := range cfg.ContainerSelectors {
		sel := doc.Find(selector).First()
		if len(sel.Nodes) > 0 && len(htmlutil.Rows(sel)) > 0 {
			return sel
		}
	}

	var largest *goquery.Selection
	largestRows := 3
	doc.Find("table, [role=grid]").Each(func(_ int, table *goquery.Selection) {
		n := len(htmlutil.Rows(table))
		if n > largestRows {
			largest = table
			largestRows = n
		}
	})
	return largest
}

type columnAssignment struct {
	index int
	field sis.Field
	label string
}

// mapHeader assigns canonical fields to header cells. Unmatched columns
// are kept around so table variants can preserve them into Extra.
func mapHeader(header *goquery.Selection, cfg SourceConfig) (mapped []columnAssignment, unmapped []columnAssignment) {
	for i, cell := range htmlutil.RowCells(header) {
		label := htmlutil.CleanText(cell)
		field := fieldmatch.Match(label, cfg.ColumnRules)
		assignment := columnAssignment{index: i, field: field, label: label}
		if field == sis.FieldUnmatched {
			unmapped = append(unmapped, assignment)
			continue
		}
		mapped = append(mapped, assignment)
	}
	return mapped, unmapped
}

func parseTable(ctx context.Context, doc *goquery.Document, cfg SourceConfig) []sis.Record {
	container := findContainer(doc, cfg)
	if container == nil {
		return nil
	}
	rows := htmlutil.Rows(container)
	if len(rows) < 2 {
		return nil
	}

	mapped, unmapped := mapHeader(rows[0], cfg)
	if len(mapped) == 0 {
		// refusing to guess keeps unrelated tables from producing garbage
		slog.DebugContext(ctx, "no header columns mapped, skipping table", "source", cfg.Kind)
		return nil
	}

	var records []sis.Record
	for rowIndex := 1; rowIndex < len(rows); rowIndex++ {
		cells := htmlutil.RowCells(rows[rowIndex])
		record := buildRowRecord(cells, mapped, unmapped, cfg)

		applyIdentityFallback(&record, rows[rowIndex], cfg, rowIndex)

		if !record.Valid() {
			continue
		}
		records = append(records, record)
	}
	return records
}

func buildRowRecord(cells []*goquery.Selection, mapped, unmapped []columnAssignment, cfg SourceConfig) sis.Record {
	var record sis.Record
	for _, col := range mapped {
		if col.index >= len(cells) {
			continue
		}
		value := htmlutil.CleanText(cells[col.index])
		if col.field == sis.FieldFullName {
			first, last := fieldmatch.SplitCombinedName(value)
			record.Set(sis.FieldFirstName, first)
			record.Set(sis.FieldLastName, last)
			continue
		}
		record.Set(col.field, value)
	}
	if cfg.KeepExtraColumns {
		for _, col := range unmapped {
			if col.index >= len(cells) {
				continue
			}
			record.SetExtra(col.label, htmlutil.CleanText(cells[col.index]))
		}
	}
	return record
}

func parseCards(ctx context.Context, doc *goquery.Document, cfg SourceConfig) []sis.Record {
	if cfg.CardSelector == "" {
		return nil
	}

	var records []sis.Record
	doc.Find(cfg.CardSelector).Each(func(cardIndex int, card *goquery.Selection) {
		var record sis.Record

		name := htmlutil.CleanText(card.Find("h1, h2, h3, h4, .name, [class*=name]").First())
		first, last := fieldmatch.SplitCombinedName(name)
		record.Set(sis.FieldFirstName, first)
		record.Set(sis.FieldLastName, last)

		// dt/dd and label-tagged pairs are the only stable structure
		// tiles offer, there is no column concept to preserve extras from
		card.Find("dt").Each(func(_ int, dt *goquery.Selection) {
			value := htmlutil.CleanText(dt.Next())
			field := fieldmatch.Match(dt.Text(), cfg.ColumnRules)
			setSplittable(&record, field, value)
		})
		card.Find("[class*=label]").Each(func(_ int, label *goquery.Selection) {
			value := htmlutil.CleanText(label.Next())
			field := fieldmatch.Match(label.Text(), cfg.ColumnRules)
			setSplittable(&record, field, value)
		})

		applyIdentityFallback(&record, card, cfg, cardIndex+1)

		if record.Valid() {
			records = append(records, record)
		}
	})
	return records
}

func setSplittable(record *sis.Record, field sis.Field, value string) {
	if field == sis.FieldFullName {
		first, last := fieldmatch.SplitCombinedName(value)
		record.Set(sis.FieldFirstName, first)
		record.Set(sis.FieldLastName, last)
		return
	}
	record.Set(field, value)
}

// applyIdentityFallback guarantees a non-empty, deterministic SourcedID:
// recover a numeric id from a profile link when the row carried none,
// else synthesize one from the normalized name and row position. The
// synthesized form is stable across re-parses of an unchanged document
// but not across row reorders.
func applyIdentityFallback(record *sis.Record, row *goquery.Selection, cfg SourceConfig, rowIndex int) {
	if record.SourcedID != "" {
		return
	}

	if id := extractRowID(row, cfg); id != "" {
		record.SourcedID = id
		return
	}

	record.SourcedID = fmt.Sprintf(
		"%s_%s_%s_%d",
		cfg.Prefix,
		textutil.NormalizeLabel(record.LastName),
		textutil.NormalizeLabel(record.FirstName),
		rowIndex,
	)
}

// extractRowID scans every link in a row or card for a recoverable
// student id. Rows routinely carry decorative links (photo, email) next
// to the profile link, so the first anchor is not enough.
func extractRowID(row *goquery.Selection, cfg SourceConfig) string {
	id := ""
	row.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		id = ExtractID(strings.TrimSpace(href), cfg)
		return id == ""
	})
	return id
}

// ExtractID runs the source's id patterns over a link target and
// returns the first capture, or "".
func ExtractID(href string, cfg SourceConfig) string {
	if href == "" {
		return ""
	}
	if parsed, err := url.Parse(href); err != nil || parsed == nil {
		return ""
	}
	for _, pattern := range cfg.IDPatterns {
		groups := pattern.FindStringSubmatch(href)
		if len(groups) >= 2 && groups[1] != "" {
			return groups[1]
		}
	}
	return ""
}
