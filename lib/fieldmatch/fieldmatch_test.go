package fieldmatch

import (
	"testing"

	"rostersync-backend/lib/sis"
)

func TestMatchRosterHeaders(t *testing.T) {
	testCases := []struct {
		label    string
		expected sis.Field
	}{
		{"Last Name", sis.FieldLastName},
		{"last_name", sis.FieldLastName},
		{"LNAME", sis.FieldLastName},
		{"Surname", sis.FieldLastName},
		{"First Name", sis.FieldFirstName},
		{"Given Name", sis.FieldFirstName},
		{"Student ID", sis.FieldSourcedID},
		{"Student Number", sis.FieldSourcedID},
		{"ID", sis.FieldSourcedID},
		{"Grade Level", sis.FieldGradeLevel},
		{"Grade", sis.FieldGradeLevel},
		{"Home Room", sis.FieldHomeRoom},
		{"Enrollment Status", sis.FieldEnrollStatus},
		{"E-Mail Address", sis.FieldEmail},
		{"Date of Birth", sis.FieldDOB},
		{"D.O.B.", sis.FieldDOB},
		{"Gender", sis.FieldGender},
		// the combined-name catch-all must not shadow specific rules
		{"Student Name", sis.FieldFullName},
		{"Name", sis.FieldFullName},
		{"Favorite Color", sis.FieldUnmatched},
		{"", sis.FieldUnmatched},
	}

	rules := RosterRules()
	for _, test := range testCases {
		got := Match(test.label, rules)
		if got != test.expected {
			t.Fatalf("Match(%q) = %q, expected %q", test.label, got, test.expected)
		}
	}
}

func TestMatchFuzzyFallback(t *testing.T) {
	rules := RosterRules()

	// a transposition typo should still land via the fuzzy pass
	if got := Match("Frist Name", rules); got != sis.FieldFirstName {
		t.Fatalf("expected fuzzy match to firstName, got %q", got)
	}
	// but an unrelated label must not
	if got := Match("Period", rules); got != sis.FieldUnmatched {
		t.Fatalf("expected no match, got %q", got)
	}
}

func TestSpecificBeforeGeneric(t *testing.T) {
	// "Last Name" contains no comma with "Name", but ordering alone is
	// what keeps it off the combined-name rule
	rules := RosterRules()
	if got := Match("Last Name", rules); got != sis.FieldLastName {
		t.Fatalf("generic name rule shadowed the specific one: %q", got)
	}
}

func TestSplitCombinedName(t *testing.T) {
	testCases := []struct {
		raw   string
		first string
		last  string
	}{
		{"Doe, Jane", "Jane", "Doe"},
		{"Doe,Jane", "Jane", "Doe"},
		{"Jane Doe", "Jane", "Doe"},
		{"Mary Ann Smith", "Mary", "Ann Smith"},
		{"Cher", "", "Cher"},
		{"  Doe ,  Jane  ", "Jane", "Doe"},
		{"", "", ""},
	}

	for _, test := range testCases {
		first, last := SplitCombinedName(test.raw)
		if first != test.first || last != test.last {
			t.Fatalf(
				"SplitCombinedName(%q) = (%q, %q), expected (%q, %q)",
				test.raw, first, last, test.first, test.last,
			)
		}
	}
}

func TestDetailRulesIncludeRoster(t *testing.T) {
	rules := DetailRules()
	if got := Match("Guardian Name", rules); got != sis.FieldGuardianName {
		t.Fatalf("expected guardianName, got %q", got)
	}
	if got := Match("Counselor", rules); got != sis.FieldCounselor {
		t.Fatalf("expected counselor, got %q", got)
	}
	// roster fields must still resolve on detail pages
	if got := Match("Grade Level", rules); got != sis.FieldGradeLevel {
		t.Fatalf("expected gradeLevel, got %q", got)
	}
}
