package commands

import (
	"os"

	"rostersync-backend/lib/scrapers/rosterpage"
	"rostersync-backend/lib/serviceutil"
	"rostersync-backend/lib/sis"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	parseURL    *string
	parseSource *string
)

func init() {
	parseURL = parseCmd.Flags().String("url", "", "The URL the document was downloaded from, used for classification.")
	parseSource = parseCmd.Flags().String("source", "", "Force a source kind (powerschool, aeries, moodle, ...) instead of classifying.")
	rootCmd.AddCommand(parseCmd)
}

var parseCmd = &cobra.Command{
	Use:   "parse <path/to/page.html|export.csv>",
	Short: "Parses a roster document and prints the extracted records without syncing.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		out, err := extractDocument(cmd.Context(), args[0], *parseURL, *parseSource)
		if err != nil {
			serviceutil.Fatal("failed to extract records", err)
		}

		switch out.Kind {
		case rosterpage.PageGradebook:
			renderGrades(out.Grades)
		case rosterpage.PageAttendance:
			renderAttendance(out.Attendance)
		default:
			renderRecords(out.Records)
		}
	},
}

func newTable(header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(header)
	t.SetStyle(table.StyleRounded)
	return t
}

func renderRecords(records []sis.Record) {
	t := newTable(table.Row{"Id", "Last", "First", "Grade", "Home Room", "Email", "Extra"})
	for _, r := range records {
		extra := ""
		for label, value := range r.Extra {
			if extra != "" {
				extra += "; "
			}
			extra += label + "=" + value
		}
		t.AppendRow(table.Row{
			r.SourcedID, r.LastName, r.FirstName,
			r.GradeLevel, r.HomeRoom, r.Email, extra,
		})
	}
	t.Render()
}

func renderGrades(records []sis.GradeRecord) {
	t := newTable(table.Row{"Student", "Class", "Assignment", "Score", "Max", "Category"})
	for _, r := range records {
		for _, g := range r.Grades {
			t.AppendRow(table.Row{
				r.StudentName, r.ClassName,
				g.Assignment, g.Score, g.MaxScore, g.Category,
			})
		}
	}
	t.Render()
}

func renderAttendance(records []sis.AttendanceRecord) {
	t := newTable(table.Row{"Student", "Date", "Period", "Status"})
	for _, r := range records {
		t.AppendRow(table.Row{r.StudentName, r.Date, r.Period, string(r.Status)})
	}
	t.Render()
}
