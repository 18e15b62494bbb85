package textutil

import (
	"regexp"
	"strings"
	"unicode"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)
var labelJunkRegex = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeLabel lowercases a column header or field label and strips
// all whitespace and punctuation, so "Last Name", "last_name" and
// "LNAME " can be compared against the same pattern set.
func NormalizeLabel(label string) string {
	label = strings.ToLower(label)
	label = strings.Trim(label, " \n\t")
	label = labelJunkRegex.ReplaceAllString(label, "")
	return label
}

// CollapseWhitespace trims a cell value and squashes inner runs of
// whitespace into single spaces. An all-whitespace cell collapses to "".
func CollapseWhitespace(s string) string {
	s = strings.TrimSpace(s)
	return whitespaceRegex.ReplaceAllString(s, " ")
}

// RemoveNonPrintable strips control and other non-printable runes that
// tend to leak out of contenteditable widgets and pasted spreadsheets.
func RemoveNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// MatchKeyword reports whether the normalized form of s contains any of
// the given (already normalized) keywords.
func MatchKeyword(s string, keywords []string) bool {
	s = NormalizeLabel(s)
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
