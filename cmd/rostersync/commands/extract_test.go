package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"rostersync-backend/lib/scrapers/rosterpage"

	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// a roster-shaped table, but too short for the structural fallback to
// classify it
const shortRosterPage = `<html><body><table>
<tr><th>Student ID</th><th>Name</th><th>Grade</th></tr>
<tr><td>1001</td><td>Doe, Jane</td><td>9</td></tr>
<tr><td>1002</td><td>Smith, John</td><td>9</td></tr>
<tr><td>1003</td><td>Lee, Ann</td><td>10</td></tr>
<tr><td>1004</td><td>Park, Min</td><td>10</td></tr>
</table></body></html>`

func TestExtractUnknownPageYieldsNothing(t *testing.T) {
	ctx := context.Background()
	path := writeDoc(t, "page.html", shortRosterPage)

	out, err := extractDocument(ctx, path, "https://sis.example.org/view", "")
	require.NoError(t, err)
	require.Equal(t, rosterpage.PageUnknown, out.Kind)
	require.Empty(t, out.Records)
	require.Empty(t, out.Grades)
	require.Empty(t, out.Attendance)
}

func TestExtractRosterURL(t *testing.T) {
	ctx := context.Background()
	path := writeDoc(t, "page.html", shortRosterPage)

	// same document, but the path marks it as a roster
	out, err := extractDocument(ctx, path, "https://sis.example.org/students/list", "")
	require.NoError(t, err)
	require.Equal(t, rosterpage.PageRoster, out.Kind)
	require.Len(t, out.Records, 4)
	require.Equal(t, "Jane", out.Records[0].FirstName)
	require.Equal(t, "Doe", out.Records[0].LastName)
}
