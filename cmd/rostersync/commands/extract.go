package commands

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"rostersync-backend/lib/scrapers/csvexport"
	"rostersync-backend/lib/scrapers/rosterpage"
	"rostersync-backend/lib/sis"

	"github.com/PuerkitoBio/goquery"
)

// Extraction is whatever one document yielded, shaped by how it was
// classified.
type Extraction struct {
	Kind       rosterpage.PageKind
	Records    []sis.Record
	Grades     []sis.GradeRecord
	Attendance []sis.AttendanceRecord
}

// extractDocument reads a local roster document (HTML page or CSV
// export) and runs it through classification and the matching parser.
// pageURL is only used to classify, it is never fetched.
func extractDocument(ctx context.Context, path, pageURL, source string) (Extraction, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Extraction{}, err
	}

	if strings.HasSuffix(strings.ToLower(path), ".csv") {
		return Extraction{
			Kind:    rosterpage.PageExport,
			Records: csvexport.Parse(ctx, string(raw)),
		}, nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return Extraction{}, err
	}

	var parsed *url.URL
	if pageURL != "" {
		parsed, err = url.Parse(pageURL)
		if err != nil {
			return Extraction{}, err
		}
	}

	srcKind, kind := rosterpage.Classify(ctx, doc, parsed)
	if source != "" {
		srcKind = rosterpage.SourceKind(source)
	}
	cfg := rosterpage.ConfigFor(srcKind)

	out := Extraction{Kind: kind}
	switch kind {
	case rosterpage.PageExport:
		out.Records = csvexport.Parse(ctx, string(raw))
	case rosterpage.PageGradebook:
		out.Grades = rosterpage.ParseGradebook(ctx, doc, cfg)
	case rosterpage.PageAttendance:
		out.Attendance = rosterpage.ParseAttendance(ctx, doc, cfg)
	case rosterpage.PageRoster:
		out.Records = rosterpage.Parse(ctx, doc, cfg)
	}
	// an unknown page yields nothing, guessing at its rows would feed
	// unvetted data into sync
	return out, nil
}

// extractRecords is the roster-only path used by sync.
func extractRecords(ctx context.Context, path, pageURL, source string) ([]sis.Record, error) {
	out, err := extractDocument(ctx, path, pageURL, source)
	if err != nil {
		return nil, err
	}
	if out.Kind == rosterpage.PageGradebook || out.Kind == rosterpage.PageAttendance {
		return nil, fmt.Errorf("page classified as %s, it holds no roster records", out.Kind)
	}
	return out.Records, nil
}
