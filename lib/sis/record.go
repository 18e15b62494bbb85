// Package sis holds the canonical student record shapes every source is
// normalized into. The types carry no behavior beyond first-match-wins
// field population, which keeps precedence between extraction passes an
// explicit, testable operation instead of implicit write ordering.
package sis

import "rostersync-backend/lib/textutil"

// Field names a canonical destination for an extracted value.
type Field string

const (
	FieldUnmatched Field = ""

	FieldSourcedID    Field = "sourcedId"
	FieldFirstName    Field = "firstName"
	FieldLastName     Field = "lastName"
	FieldGradeLevel   Field = "gradeLevel"
	FieldHomeRoom     Field = "homeRoom"
	FieldEnrollStatus Field = "enrollStatus"
	FieldEmail        Field = "email"
	FieldSchoolID     Field = "schoolId"
	FieldDOB          Field = "dob"
	FieldGender       Field = "gender"

	// FieldFullName is a combined "Last, First" or "First Last" value
	// that needs splitting before it can land in the record.
	FieldFullName Field = "fullName"
)

// Record is the unit of sync.
type Record struct {
	SourcedID    string `json:"sourcedId"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	GradeLevel   string `json:"gradeLevel,omitempty"`
	HomeRoom     string `json:"homeRoom,omitempty"`
	EnrollStatus string `json:"enrollStatus,omitempty"`
	Email        string `json:"email,omitempty"`
	SchoolID     string `json:"schoolId,omitempty"`
	DOB          string `json:"dob,omitempty"`
	Gender       string `json:"gender,omitempty"`

	// Extra preserves unmatched columns verbatim, keyed by the raw
	// source label.
	Extra map[string]string `json:"extra,omitempty"`
}

// Valid reports whether the record is allowed to leave a parser: at
// least one of the name halves must be populated.
func (r Record) Valid() bool {
	return r.FirstName != "" || r.LastName != ""
}

// Set writes a value into the named field unless that field already has
// one. Values are whitespace-collapsed first and empty values are
// treated as absent, so a blank cell can never clobber data from an
// earlier pass.
func (r *Record) Set(f Field, value string) {
	value = textutil.CollapseWhitespace(value)
	if value == "" {
		return
	}
	switch f {
	case FieldSourcedID:
		if r.SourcedID == "" {
			r.SourcedID = value
		}
	case FieldFirstName:
		if r.FirstName == "" {
			r.FirstName = value
		}
	case FieldLastName:
		if r.LastName == "" {
			r.LastName = value
		}
	case FieldGradeLevel:
		if r.GradeLevel == "" {
			r.GradeLevel = value
		}
	case FieldHomeRoom:
		if r.HomeRoom == "" {
			r.HomeRoom = value
		}
	case FieldEnrollStatus:
		if r.EnrollStatus == "" {
			r.EnrollStatus = value
		}
	case FieldEmail:
		if r.Email == "" {
			r.Email = value
		}
	case FieldSchoolID:
		if r.SchoolID == "" {
			r.SchoolID = value
		}
	case FieldDOB:
		if r.DOB == "" {
			r.DOB = value
		}
	case FieldGender:
		if r.Gender == "" {
			r.Gender = value
		}
	}
}

// SetExtra records an unmatched label/value pair, first occurrence wins.
func (r *Record) SetExtra(label, value string) {
	label = textutil.CollapseWhitespace(label)
	value = textutil.CollapseWhitespace(value)
	if label == "" || value == "" {
		return
	}
	if r.Extra == nil {
		r.Extra = map[string]string{}
	}
	if _, ok := r.Extra[label]; !ok {
		r.Extra[label] = value
	}
}

// Merge combines two partial records, preferring a's populated fields
// and falling back to b's.
func Merge(a, b Record) Record {
	out := a
	out.Set(FieldSourcedID, b.SourcedID)
	out.Set(FieldFirstName, b.FirstName)
	out.Set(FieldLastName, b.LastName)
	out.Set(FieldGradeLevel, b.GradeLevel)
	out.Set(FieldHomeRoom, b.HomeRoom)
	out.Set(FieldEnrollStatus, b.EnrollStatus)
	out.Set(FieldEmail, b.Email)
	out.Set(FieldSchoolID, b.SchoolID)
	out.Set(FieldDOB, b.DOB)
	out.Set(FieldGender, b.Gender)
	if len(a.Extra) > 0 || len(b.Extra) > 0 {
		// fresh map, the inputs must stay untouched
		out.Extra = make(map[string]string, len(a.Extra)+len(b.Extra))
		for label, value := range a.Extra {
			out.Extra[label] = value
		}
		for label, value := range b.Extra {
			if _, ok := out.Extra[label]; !ok {
				out.Extra[label] = value
			}
		}
	}
	return out
}
