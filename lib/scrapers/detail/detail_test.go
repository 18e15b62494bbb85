package detail

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"rostersync-backend/lib/scrapers/rosterpage"
	"rostersync-backend/lib/sis"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestExtractLinks(t *testing.T) {
	html := `
<nav><a href="/help/article/123">Help</a></nav>
<table>
	<tr><td><a href="/students/101">Doe, Jane</a></td></tr>
	<tr><td><a href="/students/101?tab=contact">contact</a></td></tr>
	<tr><td><a href="/students/102">Smith, John</a></td></tr>
</table>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	base, err := url.Parse("https://sis.example.org/district/roster")
	require.NoError(t, err)

	links := ExtractLinks(context.Background(), doc, base, rosterpage.ConfigFor(rosterpage.SourceGeneric))
	require.Equal(t, []Link{
		{ID: "101", DisplayName: "Doe, Jane", URL: "https://sis.example.org/students/101"},
		{ID: "102", DisplayName: "Smith, John", URL: "https://sis.example.org/students/102"},
	}, links)
}

const detailPage = `
<html><body>
<h1>Student Detail</h1>
<table>
	<tr><td>Counselor</td><td>Reyes, Sam</td></tr>
	<tr><td>Locker</td><td>118</td></tr>
	<tr><td>Favorite Color</td><td>green</td></tr>
</table>
<dl>
	<dt>Guardian</dt><dd>Pat Doe</dd>
	<dt>Counselor</dt><dd>someone else entirely</dd>
</dl>
<label for="gpa">GPA</label><input id="gpa" value="3.8" readonly>
<label>Bus Route</label><span>42</span>
<input readonly aria-label="Home Phone" value="555-0100">
<h3>Class Schedule</h3>
<div>spring semester</div>
<table>
	<tr><th>Period</th><th>Class</th></tr>
	<tr><td>1</td><td>Biology</td></tr>
	<tr><td>2</td><td>History</td></tr>
</table>
</body></html>`

func TestCrawl(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/students/1":
			fmt.Fprint(w, detailPage)
		case "/students/2":
			http.Error(w, "session expired", http.StatusInternalServerError)
		case "/students/3":
			fmt.Fprint(w, "<html><body><p>nothing on file</p></body></html>")
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client, err := NewClient(ClientOptions{BaseUrl: server.URL})
	require.NoError(t, err)

	links := []Link{
		{ID: "1", DisplayName: "Doe, Jane", URL: server.URL + "/students/1"},
		{ID: "2", DisplayName: "Smith, John", URL: server.URL + "/students/2"},
		{ID: "3", DisplayName: "Lee, Ann", URL: server.URL + "/students/3"},
	}

	var progress []string
	records := client.Crawl(
		context.Background(),
		links,
		func(current, total int, displayName string) {
			progress = append(progress, fmt.Sprintf("%d/%d %s", current, total, displayName))
		},
	)

	require.Equal(t, []string{
		"1/3 Doe, Jane",
		"2/3 Smith, John",
		"3/3 Lee, Ann",
	}, progress)

	require.Len(t, records, 2)

	jane := records[0]
	require.Equal(t, "1", jane.SourcedID)
	require.Equal(t, "Reyes, Sam", jane.Counselor)
	require.Equal(t, "118", jane.Locker)
	require.Equal(t, "Pat Doe", jane.GuardianName)
	require.Equal(t, "3.8", jane.GPA)
	require.Equal(t, "42", jane.BusRoute)
	require.Equal(t, "555-0100", jane.HomePhone)
	require.Equal(t, map[string]string{"Favorite Color": "green"}, jane.Extra)
	require.Equal(t, map[string]string{"1": "Biology", "2": "History"}, jane.Schedule)

	ann := records[1]
	require.Equal(t, "3", ann.SourcedID)
	require.Equal(t, "Ann", ann.FirstName)
	require.Equal(t, "Lee", ann.LastName)
}

func TestEnrichFromRoster(t *testing.T) {
	records := []sis.DeepRecord{
		{Record: sis.Record{
			SourcedID: "101",
			FirstName: "Jane",
			LastName:  "Doe",
			Email:     "jdoe@district.org",
			Extra:     map[string]string{"Locker #": "118"},
		}},
		{Record: sis.Record{SourcedID: "102", FirstName: "John", LastName: "Smith"}},
	}
	roster := []sis.Record{
		{
			SourcedID:  "101",
			FirstName:  "Janet", // the crawled value must win
			GradeLevel: "9",
			HomeRoom:   "B12",
			Email:      "stale@district.org",
			Extra:      map[string]string{"Counselor": "Reyes, Sam"},
		},
		{SourcedID: "999", FirstName: "No", LastName: "Match"},
	}

	EnrichFromRoster(records, roster)

	require.Equal(t, sis.Record{
		SourcedID:  "101",
		FirstName:  "Jane",
		LastName:   "Doe",
		GradeLevel: "9",
		HomeRoom:   "B12",
		Email:      "jdoe@district.org",
		Extra: map[string]string{
			"Locker #":  "118",
			"Counselor": "Reyes, Sam",
		},
	}, records[0].Record)

	// no roster match leaves the crawled record untouched
	require.Equal(t, sis.Record{SourcedID: "102", FirstName: "John", LastName: "Smith"}, records[1].Record)
}

func TestCrawlCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body></body></html>")
	}))
	defer server.Close()

	// the first fetch finishes in milliseconds, so this lands inside the
	// inter-item delay and the crawl must stop before the second link
	go func() {
		time.Sleep(200 * time.Millisecond)
		cancel()
	}()

	client, err := NewClient(ClientOptions{BaseUrl: server.URL})
	require.NoError(t, err)

	links := []Link{
		{ID: "1", DisplayName: "Doe, Jane", URL: server.URL + "/students/1"},
		{ID: "2", DisplayName: "Smith, John", URL: server.URL + "/students/2"},
	}

	fetched := 0
	records := client.Crawl(
		ctx,
		links,
		func(current, total int, displayName string) { fetched++ },
	)

	require.Equal(t, 1, fetched)
	require.Len(t, records, 1)
	require.Equal(t, sis.DeepRecord{
		Record: sis.Record{SourcedID: "1", FirstName: "Jane", LastName: "Doe"},
	}, records[0])
}
