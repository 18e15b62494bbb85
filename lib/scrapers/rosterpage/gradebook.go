package rosterpage

import (
	"context"

	"rostersync-backend/lib/fieldmatch"
	"rostersync-backend/lib/htmlutil"
	"rostersync-backend/lib/sis"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
)

// gradebook tables have their own column vocabulary, separate from the
// roster rules so "Grade" can mean a score here and a level there
const (
	fieldAssignment sis.Field = "assignment"
	fieldScore      sis.Field = "score"
	fieldMaxScore   sis.Field = "maxScore"
	fieldCategory   sis.Field = "category"
	fieldClassName  sis.Field = "className"
	fieldStudent    sis.Field = "student"
	fieldStudentID  sis.Field = "studentId"
)

func gradebookRules() []fieldmatch.Rule {
	return []fieldmatch.Rule{
		fieldmatch.NewRule(fieldStudentID, `^(studentid|studentnumber|id)$`),
		fieldmatch.NewRule(fieldAssignment, `^(assignment|assignmentname|assignmenttitle|task|item)$`),
		fieldmatch.NewRule(fieldMaxScore, `^(maxscore|max|maxpoints|pointspossible|possible|outof|total)$`),
		fieldmatch.NewRule(fieldScore, `^(score|points|pointsearned|earned|grade|mark|result)$`),
		fieldmatch.NewRule(fieldCategory, `^(category|type|assignmenttype|weightcategory)$`),
		fieldmatch.NewRule(fieldClassName, `^(class|classname|course|coursename|section|subject)$`),
		fieldmatch.NewRule(fieldStudent, `^(student|studentname|name|pupil)$`),
	}
}

// ParseGradebook extracts scored assignments from a gradebook view.
// Rows are grouped into one GradeRecord per (student, class) pair in
// first-appearance order. When the table carries no student column the
// page-level heading is assumed to name the single student in view.
func ParseGradebook(ctx context.Context, doc *goquery.Document, cfg SourceConfig) []sis.GradeRecord {
	ctx, span := tracer.Start(ctx, "ParseGradebook")
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

	rules := gradebookRules()
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
	// a gradebook without assignment+score columns is not a gradebook
	if _, ok := columns[fieldAssignment]; !ok {
		return nil
	}
	if _, ok := columns[fieldScore]; !ok {
		return nil
	}

	pageStudent := htmlutil.CleanText(doc.Find("h1, h2, .student-name").First())

	var order []string
	grouped := map[string]*sis.GradeRecord{}

	for rowIndex := 1; rowIndex < len(rows); rowIndex++ {
		cells := htmlutil.RowCells(rows[rowIndex])
		read := func(f sis.Field) string {
			i, ok := columns[f]
			if !ok || i >= len(cells) {
				return ""
			}
			return htmlutil.CleanText(cells[i])
		}

		assignment := read(fieldAssignment)
		if assignment == "" {
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
		class := read(fieldClassName)

		key := id + "\x1f" + student + "\x1f" + class
		record, ok := grouped[key]
		if !ok {
			record = &sis.GradeRecord{
				SourcedID:   id,
				StudentName: student,
				ClassName:   class,
			}
			grouped[key] = record
			order = append(order, key)
		}
		record.Grades = append(record.Grades, sis.GradeEntry{
			Assignment: assignment,
			Score:      read(fieldScore),
			MaxScore:   read(fieldMaxScore),
			Category:   read(fieldCategory),
		})
	}

	records := make([]sis.GradeRecord, 0, len(order))
	for _, key := range order {
		records = append(records, *grouped[key])
	}
	span.SetAttributes(attribute.Int("records", len(records)))
	return records
}
