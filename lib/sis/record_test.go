package sis

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSetFirstMatchWins(t *testing.T) {
	var r Record
	r.Set(FieldFirstName, "  Jane  ")
	r.Set(FieldFirstName, "Janet")
	r.Set(FieldLastName, "")
	r.Set(FieldLastName, "Doe")

	if r.FirstName != "Jane" {
		t.Fatalf("expected first write to win, got %q", r.FirstName)
	}
	if r.LastName != "Doe" {
		t.Fatalf("empty value should not occupy a field, got %q", r.LastName)
	}
}

func TestValid(t *testing.T) {
	if (Record{}).Valid() {
		t.Fatal("record with no name should be invalid")
	}
	if !(Record{FirstName: "Jane"}).Valid() {
		t.Fatal("first name alone should be valid")
	}
	if !(Record{LastName: "Doe"}).Valid() {
		t.Fatal("last name alone should be valid")
	}
}

func TestMerge(t *testing.T) {
	a := Record{
		SourcedID: "42",
		FirstName: "Jane",
		Extra:     map[string]string{"Homeroom Teacher": "Mr. Banner"},
	}
	b := Record{
		SourcedID:  "999",
		FirstName:  "Janet",
		LastName:   "Doe",
		GradeLevel: "10",
		Extra: map[string]string{
			"Homeroom Teacher": "Ms. Clark",
			"Locker":           "118",
		},
	}

	got := Merge(a, b)
	want := Record{
		SourcedID:  "42",
		FirstName:  "Jane",
		LastName:   "Doe",
		GradeLevel: "10",
		Extra: map[string]string{
			"Homeroom Teacher": "Mr. Banner",
			"Locker":           "118",
		},
	}
	diff := cmp.Diff(want, got)
	if diff != "" {
		t.Fatal(diff)
	}

	// inputs must not be mutated by the merge
	if a.Extra["Locker"] != "" {
		t.Fatal("merge mutated its input")
	}
}

func TestDeepRecordSet(t *testing.T) {
	var d DeepRecord
	d.Set(FieldFirstName, "Jane")
	d.Set(FieldGuardianName, "John Doe")
	d.Set(FieldGuardianName, "Someone Else")
	d.SetSchedule("1", "Biology")
	d.SetSchedule("1", "Chemistry")

	if d.FirstName != "Jane" {
		t.Fatal("core field should pass through to the embedded record")
	}
	if d.GuardianName != "John Doe" {
		t.Fatalf("expected first guardian write to win, got %q", d.GuardianName)
	}
	if d.Schedule["1"] != "Biology" {
		t.Fatalf("expected first schedule write to win, got %q", d.Schedule["1"])
	}
}
