package csvexport

import (
	"context"
	"testing"

	"rostersync-backend/lib/sis"

	"github.com/google/go-cmp/cmp"
)

func TestTokenizeQuotedFields(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  [][]string
	}{
		{
			name:  "embedded comma and newline stay in one field",
			input: "\"Doe, Jane\",\"Smith High, Annex\nBldg B\"",
			want:  [][]string{{"Doe, Jane", "Smith High, Annex\nBldg B"}},
		},
		{
			name:  "doubled quotes escape",
			input: `"said ""hi""",plain`,
			want:  [][]string{{`said "hi"`, "plain"}},
		},
		{
			name:  "crlf and bare lf both end rows",
			input: "a,b\r\nc,d\ne,f",
			want:  [][]string{{"a", "b"}, {"c", "d"}, {"e", "f"}},
		},
		{
			name:  "leading BOM stripped",
			input: "\ufeffid,name\n1,x",
			want:  [][]string{{"id", "name"}, {"1", "x"}},
		},
		{
			name:  "trailing newline adds no empty row",
			input: "a,b\n",
			want:  [][]string{{"a", "b"}},
		},
		{
			name:  "empty fields survive",
			input: "a,,c",
			want:  [][]string{{"a", "", "c"}},
		},
	}

	for _, test := range testCases {
		diff := cmp.Diff(test.want, tokenize(test.input))
		if diff != "" {
			t.Fatalf("%s: %s", test.name, diff)
		}
	}
}

func TestParseExport(t *testing.T) {
	ctx := context.Background()
	input := "Student ID,Last Name,First Name,Grade,Counselor\r\n" +
		"1001,Doe,Jane,10,\"Reyes, Sam\"\r\n" +
		",,,,\r\n" +
		",Smith,John,10,\r\n"

	want := []sis.Record{
		{
			SourcedID:  "1001",
			FirstName:  "Jane",
			LastName:   "Doe",
			GradeLevel: "10",
			Extra:      map[string]string{"Counselor": "Reyes, Sam"},
		},
		{
			SourcedID:  "csv_smith_john_3",
			FirstName:  "John",
			LastName:   "Smith",
			GradeLevel: "10",
		},
	}
	diff := cmp.Diff(want, Parse(ctx, input))
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestParseCombinedNameColumn(t *testing.T) {
	ctx := context.Background()
	input := "Name,Grade\n\"Doe, Jane\",10\n"

	records := Parse(ctx, input)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].FirstName != "Jane" || records[0].LastName != "Doe" {
		t.Fatalf("combined name split failed: %+v", records[0])
	}
	if records[0].SourcedID != "csv_doe_jane_1" {
		t.Fatalf("expected synthesized id, got %q", records[0].SourcedID)
	}
}

func TestParseUnmappedHeaders(t *testing.T) {
	ctx := context.Background()
	input := "Quarter,Revenue\nQ1,10\nQ2,20\n"

	records := Parse(ctx, input)
	if len(records) != 0 {
		t.Fatalf("expected nothing from an unrelated csv, got %d records", len(records))
	}
}

func TestParseEmptyAndHeaderOnly(t *testing.T) {
	ctx := context.Background()
	if records := Parse(ctx, ""); len(records) != 0 {
		t.Fatalf("expected nothing from empty text, got %d records", len(records))
	}
	if records := Parse(ctx, "Last Name,First Name\n"); len(records) != 0 {
		t.Fatalf("expected nothing from a header-only export, got %d records", len(records))
	}
}
