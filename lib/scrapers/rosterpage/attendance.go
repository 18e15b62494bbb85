package rosterpage

import (
	"context"
	"time"

	"rostersync-backend/lib/fieldmatch"
	"rostersync-backend/lib/htmlutil"
	"rostersync-backend/lib/sis"
	"rostersync-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
)

const (
	fieldDate   sis.Field = "date"
	fieldStatus sis.Field = "status"
	fieldPeriod sis.Field = "period"
)

func attendanceRules() []fieldmatch.Rule {
	return []fieldmatch.Rule{
		fieldmatch.NewRule(fieldStudentID, `^(studentid|studentnumber|id)$`),
		fieldmatch.NewRule(fieldDate, `^(date|day|attendancedate)$`),
		fieldmatch.NewRule(fieldStatus, `^(status|attendance|attendancecode|code|mark)$`),
		fieldmatch.NewRule(fieldPeriod, `^(period|per|block|hour)$`),
		fieldmatch.NewRule(fieldStudent, `^(student|studentname|name|pupil)$`),
	}
}

var statusAliases = map[string]sis.AttendanceStatus{
	"present":          sis.AttendancePresent,
	"p":                sis.AttendancePresent,
	"here":             sis.AttendancePresent,
	"ontime":           sis.AttendancePresent,
	"absent":           sis.AttendanceAbsent,
	"a":                sis.AttendanceAbsent,
	"unexcused":        sis.AttendanceAbsent,
	"unexcusedabsence": sis.AttendanceAbsent,
	"tardy":            sis.AttendanceTardy,
	"t":                sis.AttendanceTardy,
	"late":             sis.AttendanceTardy,
	"excused":          sis.AttendanceExcused,
	"e":                sis.AttendanceExcused,
	"excusedabsence":   sis.AttendanceExcused,
}

// attempted in order; sources disagree on date formats far more than on
// anything else
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"02-Jan-2006",
}

func normalizeDate(raw string) (string, bool) {
	raw = textutil.CollapseWhitespace(raw)
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}

// ParseAttendance extracts day-level attendance marks. Rows with an
// unparseable date or a status outside the canonical four are dropped:
// attendance is only useful when both halves are trustworthy.
func ParseAttendance(ctx context.Context, doc *goquery.Document, cfg SourceConfig) []sis.AttendanceRecord {
	ctx, span := tracer.Start(ctx, "ParseAttendance")
	defer span.End()
	span.SetAttributes(attribute.String("source", string(cfg.Kind)))

	if doc == nil {
		return nil
	}
	container := findContainer(doc, cfg)
	if container == nil {
		return nil
	}
	rows := htmlutil.Rows(container)
	if len(rows) < 2 {
		return nil
	}

	rules := attendanceRules()
	columns := map[sis.Field]int{}
	for i, cell := range htmlutil.RowCells(rows[0]) {
		field := fieldmatch.Match(cell.Text(), rules)
		if field == sis.FieldUnmatched {
			continue
		}
		if _, taken := columns[field]; !taken {
			columns[field] = i
		}
	}
	if _, ok := columns[fieldDate]; !ok {
		return nil
	}
	if _, ok := columns[fieldStatus]; !ok {
		return nil
	}

	pageStudent := htmlutil.CleanText(doc.Find("h1, h2, .student-name").First())

	var records []sis.AttendanceRecord
	for rowIndex := 1; rowIndex < len(rows); rowIndex++ {
		cells := htmlutil.RowCells(rows[rowIndex])
		read := func(f sis.Field) string {
			i, ok := columns[f]
			if !ok || i >= len(cells) {
				return ""
			}
			return htmlutil.CleanText(cells[i])
		}

		date, ok := normalizeDate(read(fieldDate))
		if !ok {
			continue
		}
		status, ok := statusAliases[textutil.NormalizeLabel(read(fieldStatus))]
		if !ok {
			continue
		}

		student := read(fieldStudent)
		if student == "" {
			student = pageStudent
		}
		id := read(fieldStudentID)
		if id == "" {
			id = extractRowID(rows[rowIndex], cfg)
		}

		records = append(records, sis.AttendanceRecord{
			SourcedID:   id,
			StudentName: student,
			Date:        date,
			Status:      status,
			Period:      read(fieldPeriod),
		})
	}

	span.SetAttributes(attribute.Int("records", len(records)))
	return records
}
