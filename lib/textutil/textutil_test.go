package textutil

import "testing"

func TestNormalizeLabel(t *testing.T) {
	cases := []struct {
		input  string
		expect string
	}{
		{"Last Name", "lastname"},
		{"last_name", "lastname"},
		{" LNAME \t", "lname"},
		{"Grade Level:", "gradelevel"},
		{"E-mail Address", "emailaddress"},
		{"", ""},
		{"???", ""},
	}

	for _, test := range cases {
		got := NormalizeLabel(test.input)
		if got != test.expect {
			t.Fatalf("NormalizeLabel(%q) = %q, expected %q", test.input, got, test.expect)
		}
	}
}

func TestCollapseWhitespace(t *testing.T) {
	cases := []struct {
		input  string
		expect string
	}{
		{"  Doe,   Jane \n", "Doe, Jane"},
		{"\t\n ", ""},
		{"one two", "one two"},
	}

	for _, test := range cases {
		got := CollapseWhitespace(test.input)
		if got != test.expect {
			t.Fatalf("CollapseWhitespace(%q) = %q, expected %q", test.input, got, test.expect)
		}
	}
}

func TestMatchKeyword(t *testing.T) {
	if !MatchKeyword("Student Name", []string{"name", "student"}) {
		t.Fatal("expected a match on a student header")
	}
	if MatchKeyword("Quarterly Revenue", []string{"name", "student"}) {
		t.Fatal("expected no match on an unrelated header")
	}
}
