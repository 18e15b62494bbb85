// Package csvexport parses SIS roster CSV exports into canonical
// student records. Exports are more standardized than scraped DOM
// labels, so headers resolve through a fixed lookup table instead of
// the pattern matcher the page parsers use.
package csvexport

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"rostersync-backend/lib/fieldmatch"
	"rostersync-backend/lib/sis"
	"rostersync-backend/lib/textutil"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("rostersync.scrapers.csvexport")

// idPrefix namespaces synthesized ids, CSV rows never carry links to
// recover an id from.
const idPrefix = "csv"

// headerFields maps normalized header spellings to canonical fields.
// Lookup is exact after normalization (lowercase, punctuation and
// whitespace stripped), so "Last Name", "last_name" and "LASTNAME" all
// land on the same entry.
var headerFields = map[string]sis.Field{
	"studentid":        sis.FieldSourcedID,
	"studentnumber":    sis.FieldSourcedID,
	"sourcedid":        sis.FieldSourcedID,
	"localid":          sis.FieldSourcedID,
	"sisid":            sis.FieldSourcedID,
	"id":               sis.FieldSourcedID,
	"lastname":         sis.FieldLastName,
	"lname":            sis.FieldLastName,
	"surname":          sis.FieldLastName,
	"familyname":       sis.FieldLastName,
	"firstname":        sis.FieldFirstName,
	"fname":            sis.FieldFirstName,
	"givenname":        sis.FieldFirstName,
	"name":             sis.FieldFullName,
	"studentname":      sis.FieldFullName,
	"fullname":         sis.FieldFullName,
	"grade":            sis.FieldGradeLevel,
	"gradelevel":       sis.FieldGradeLevel,
	"homeroom":         sis.FieldHomeRoom,
	"homeroomteacher":  sis.FieldHomeRoom,
	"status":           sis.FieldEnrollStatus,
	"enrollmentstatus": sis.FieldEnrollStatus,
	"enrollstatus":     sis.FieldEnrollStatus,
	"email":            sis.FieldEmail,
	"emailaddress":     sis.FieldEmail,
	"studentemail":     sis.FieldEmail,
	"school":           sis.FieldSchoolID,
	"schoolid":         sis.FieldSchoolID,
	"dob":              sis.FieldDOB,
	"dateofbirth":      sis.FieldDOB,
	"birthdate":        sis.FieldDOB,
	"gender":           sis.FieldGender,
	"sex":              sis.FieldGender,
}

// tokenize splits raw CSV text into rows of fields with RFC 4180
// semantics: quoted fields may embed commas, newlines and doubled
// quotes, both \r\n and bare \n terminate rows, and a leading BOM is
// stripped. Malformed input never fails, an unterminated quote just
// swallows the rest of the text into its field.
func tokenize(text string) [][]string {
	text = strings.TrimPrefix(text, "\ufeff")

	var rows [][]string
	var row []string
	var field strings.Builder
	inQuotes := false

	flushField := func() {
		row = append(row, field.String())
		field.Reset()
	}
	flushRow := func() {
		flushField()
		rows = append(rows, row)
		row = nil
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		if inQuotes {
			if c != '"' {
				field.WriteByte(c)
				continue
			}
			if i+1 < len(text) && text[i+1] == '"' {
				field.WriteByte('"')
				i++
				continue
			}
			inQuotes = false
			continue
		}

		switch c {
		case '"':
			inQuotes = true
		case ',':
			flushField()
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			flushRow()
		case '\n':
			flushRow()
		default:
			field.WriteByte(c)
		}
	}
	if field.Len() > 0 || len(row) > 0 {
		flushRow()
	}
	return rows
}

type column struct {
	index int
	field sis.Field
	label string
}

// Parse extracts roster records from CSV export text. Pure function of
// the text: anything unparseable resolves to an empty result, never an
// error.
func Parse(ctx context.Context, text string) []sis.Record {
	ctx, span := tracer.Start(ctx, "Parse")
	defer span.End()

	rows := tokenize(text)
	if len(rows) < 2 {
		return nil
	}

	var mapped, unmapped []column
	for i, raw := range rows[0] {
		label := textutil.CollapseWhitespace(raw)
		field, ok := headerFields[textutil.NormalizeLabel(label)]
		if !ok {
			unmapped = append(unmapped, column{index: i, label: label})
			continue
		}
		mapped = append(mapped, column{index: i, field: field, label: label})
	}
	if len(mapped) == 0 {
		slog.DebugContext(ctx, "no csv headers mapped, skipping export")
		return nil
	}

	var records []sis.Record
	for rowIndex := 1; rowIndex < len(rows); rowIndex++ {
		cells := rows[rowIndex]
		if blankRow(cells) {
			continue
		}

		var record sis.Record
		for _, col := range mapped {
			if col.index >= len(cells) {
				continue
			}
			value := cells[col.index]
			if col.field == sis.FieldFullName {
				first, last := fieldmatch.SplitCombinedName(value)
				record.Set(sis.FieldFirstName, first)
				record.Set(sis.FieldLastName, last)
				continue
			}
			record.Set(col.field, value)
		}
		for _, col := range unmapped {
			if col.index >= len(cells) {
				continue
			}
			record.SetExtra(col.label, cells[col.index])
		}

		if record.SourcedID == "" {
			record.SourcedID = fmt.Sprintf(
				"%s_%s_%s_%d",
				idPrefix,
				textutil.NormalizeLabel(record.LastName),
				textutil.NormalizeLabel(record.FirstName),
				rowIndex,
			)
		}
		if !record.Valid() {
			continue
		}
		records = append(records, record)
	}

	span.SetAttributes(attribute.Int("records", len(records)))
	return records
}

func blankRow(cells []string) bool {
	for _, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
