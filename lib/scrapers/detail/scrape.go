package detail

import (
	"fmt"

	"rostersync-backend/lib/fieldmatch"
	"rostersync-backend/lib/htmlutil"
	"rostersync-backend/lib/sis"
	"rostersync-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

var scheduleHeadingKeywords = []string{"schedule", "classes", "courses", "timetable"}

// scrapeDetail runs every extraction strategy over a detail page in
// priority order. Fields follow first-match-wins so a later strategy
// never overwrites an earlier one, and unrecognized label/value pairs
// land in Extra instead of being dropped.
func scrapeDetail(doc *goquery.Document, record *sis.DeepRecord) {
	rules := fieldmatch.DetailRules()
	schedTables := scheduleTables(doc)

	scrapeTwoColumnTables(doc, record, rules, schedTables)
	scrapeDefinitionLists(doc, record, rules)
	scrapeLabeledElements(doc, record, rules)
	scrapeReadOnlyFields(doc, record, rules)
	scrapeSchedules(schedTables, record)
}

func applyPair(record *sis.DeepRecord, rules []fieldmatch.Rule, label, value string) {
	label = textutil.CollapseWhitespace(label)
	value = textutil.CollapseWhitespace(value)
	if label == "" || value == "" {
		return
	}

	switch field := fieldmatch.Match(label, rules); field {
	case sis.FieldUnmatched:
		record.SetExtra(label, value)
	case sis.FieldFullName:
		first, last := fieldmatch.SplitCombinedName(value)
		record.Set(sis.FieldFirstName, first)
		record.Set(sis.FieldLastName, last)
	default:
		record.Set(field, value)
	}
}

// scrapeTwoColumnTables treats every two-cell row as a label/value
// pair. Schedule tables are excluded, they get their own strategy.
func scrapeTwoColumnTables(doc *goquery.Document, record *sis.DeepRecord, rules []fieldmatch.Rule, exclude []*goquery.Selection) {
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		if containsSelection(exclude, table) {
			return
		}
		for _, row := range htmlutil.Rows(table) {
			cells := htmlutil.RowCells(row)
			if len(cells) != 2 {
				continue
			}
			applyPair(record, rules, htmlutil.CleanText(cells[0]), htmlutil.CleanText(cells[1]))
		}
	})
}

func scrapeDefinitionLists(doc *goquery.Document, record *sis.DeepRecord, rules []fieldmatch.Rule) {
	doc.Find("dt").Each(func(_ int, dt *goquery.Selection) {
		applyPair(record, rules, htmlutil.CleanText(dt), htmlutil.CleanText(dt.Next()))
	})
}

// scrapeLabeledElements pairs <label> elements with either the element
// their for-attribute points at or their next sibling.
func scrapeLabeledElements(doc *goquery.Document, record *sis.DeepRecord, rules []fieldmatch.Rule) {
	doc.Find("label").Each(func(_ int, label *goquery.Selection) {
		value := ""
		if forID := label.AttrOr("for", ""); forID != "" {
			value = fieldValue(doc.Find("#" + forID).First())
		}
		if value == "" {
			value = fieldValue(label.Next())
		}
		applyPair(record, rules, htmlutil.CleanText(label), value)
	})
}

// scrapeReadOnlyFields catches read-only form inputs whose labels are
// attributes rather than <label> elements.
func scrapeReadOnlyFields(doc *goquery.Document, record *sis.DeepRecord, rules []fieldmatch.Rule) {
	doc.Find("input[readonly], input[disabled], textarea[readonly]").Each(func(_ int, input *goquery.Selection) {
		label := input.AttrOr("aria-label", "")
		if label == "" {
			if id := input.AttrOr("id", ""); id != "" {
				label = htmlutil.CleanText(doc.Find(fmt.Sprintf("label[for=%s]", id)).First())
			}
		}
		if label == "" {
			label = input.AttrOr("name", "")
		}
		applyPair(record, rules, label, fieldValue(input))
	})
}

func fieldValue(sel *goquery.Selection) string {
	if len(sel.Nodes) == 0 {
		return ""
	}
	if sel.Is("input, textarea, select") {
		if value := sel.AttrOr("value", ""); value != "" {
			return textutil.CollapseWhitespace(value)
		}
	}
	return htmlutil.CleanText(sel)
}

// scheduleTables finds tables announced by a schedule-like heading: at
// most 5 forward siblings of the heading are scanned for the table.
func scheduleTables(doc *goquery.Document) []*goquery.Selection {
	var tables []*goquery.Selection
	doc.Find("h1, h2, h3, h4, h5, [class*=heading]").Each(func(_ int, heading *goquery.Selection) {
		if !textutil.MatchKeyword(heading.Text(), scheduleHeadingKeywords) {
			return
		}
		sibling := heading.Next()
		for i := 0; i < 5 && len(sibling.Nodes) > 0; i++ {
			if sibling.Is("table") {
				tables = append(tables, sibling)
				return
			}
			if nested := sibling.Find("table").First(); len(nested.Nodes) > 0 {
				tables = append(tables, nested)
				return
			}
			sibling = sibling.Next()
		}
	})
	return tables
}

func scrapeSchedules(tables []*goquery.Selection, record *sis.DeepRecord) {
	for _, table := range tables {
		for _, row := range htmlutil.Rows(table) {
			cells := htmlutil.RowCells(row)
			if len(cells) < 2 || isHeaderRow(row) {
				continue
			}
			record.SetSchedule(htmlutil.CleanText(cells[0]), htmlutil.CleanText(cells[1]))
		}
	}
}

func isHeaderRow(row *goquery.Selection) bool {
	return len(row.Find("th, [role=columnheader]").Nodes) > 0
}

func containsSelection(set []*goquery.Selection, sel *goquery.Selection) bool {
	if len(sel.Nodes) == 0 {
		return false
	}
	for _, candidate := range set {
		if len(candidate.Nodes) > 0 && candidate.Nodes[0] == sel.Nodes[0] {
			return true
		}
	}
	return false
}
