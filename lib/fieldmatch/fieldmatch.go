// Package fieldmatch maps free-text column headers and field labels
// onto canonical record fields. Matching happens against a normalized
// form of the label (lowercased, punctuation and whitespace stripped)
// through an ordered rule list: rule order is load-bearing, generic
// catch-alls must come after every specific pattern or they shadow it.
package fieldmatch

import (
	"regexp"

	"rostersync-backend/lib/sis"
	"rostersync-backend/lib/textutil"

	"github.com/antzucaro/matchr"
)

type Rule struct {
	Field   sis.Field
	Pattern *regexp.Regexp
	// Exemplars are normalized label spellings used for the fuzzy
	// fallback pass, which catches near-misses like "frist name".
	Exemplars []string
}

func NewRule(field sis.Field, expr string, exemplars ...string) Rule {
	return Rule{
		Field:     field,
		Pattern:   regexp.MustCompile(expr),
		Exemplars: exemplars,
	}
}

// fuzzy matches below this similarity are ignored, the threshold is
// deliberately strict since a wrong column assignment poisons every row
const fuzzyThreshold = 0.93

// Match returns the canonical field for a header/label, or
// sis.FieldUnmatched. Two passes over the ordered rules: exact regexp
// first, then a Jaro-Winkler pass against rule exemplars.
func Match(label string, rules []Rule) sis.Field {
	normalized := textutil.NormalizeLabel(label)
	if normalized == "" {
		return sis.FieldUnmatched
	}

	for _, rule := range rules {
		if rule.Pattern.MatchString(normalized) {
			return rule.Field
		}
	}

	for _, rule := range rules {
		for _, exemplar := range rule.Exemplars {
			if matchr.JaroWinkler(normalized, exemplar, false) >= fuzzyThreshold {
				return rule.Field
			}
		}
	}

	return sis.FieldUnmatched
}

// RosterRules is the shared ordered rule set for roster-shaped tables.
// The combined-name catch-all sits last on purpose.
func RosterRules() []Rule {
	return []Rule{
		NewRule(sis.FieldSourcedID, `^(studentid|studentnumber|sourcedid|localid|idnumber|sisid|id)$`, "studentid", "studentnumber"),
		NewRule(sis.FieldLastName, `^(lastname|lname|surname|familyname|last)$`, "lastname", "surname"),
		NewRule(sis.FieldFirstName, `^(firstname|fname|givenname|first|preferredfirstname)$`, "firstname", "givenname"),
		NewRule(sis.FieldGradeLevel, `^(gradelevel|grade|gradelvl|yearlevel|level)$`, "gradelevel"),
		NewRule(sis.FieldHomeRoom, `^(homeroom|homeroomteacher|advisory|hr)$`, "homeroom"),
		NewRule(sis.FieldEnrollStatus, `^(enrollstatus|enrollmentstatus|status|enrolled)$`, "enrollmentstatus"),
		NewRule(sis.FieldEmail, `^(email|emailaddress|studentemail|mail)$`, "emailaddress"),
		NewRule(sis.FieldSchoolID, `^(schoolid|school|campus|building)$`, "schoolid"),
		NewRule(sis.FieldDOB, `^(dob|dateofbirth|birthdate|birthday)$`, "dateofbirth"),
		NewRule(sis.FieldGender, `^(gender|sex)$`),
		NewRule(sis.FieldFullName, `^(name|studentname|student|fullname|pupil)$`, "studentname"),
	}
}

// DetailRules maps the label/value pairs of per-student detail pages.
// Core roster labels are included so a detail page can backfill fields
// the roster view never showed.
func DetailRules() []Rule {
	rules := []Rule{
		NewRule(sis.FieldMiddleName, `^(middlename|middle|mi)$`),
		NewRule(sis.FieldPreferredName, `^(preferredname|nickname|goesby)$`),
		NewRule(sis.FieldGuardianName, `^(guardian|guardian1|guardianname|parent|parent1|parentguardian|mother|contact1)(name)?$`, "guardianname", "parentname"),
		NewRule(sis.FieldGuardianPhone, `^(guardian1?|parent1?)(phone|phonenumber)$`, "guardianphone"),
		NewRule(sis.FieldGuardianEmail, `^(guardian1?|parent1?)email$`),
		NewRule(sis.FieldGuardian2Name, `^(guardian2|parent2|father|contact2)(name)?$`),
		NewRule(sis.FieldGuardian2Phone, `^(guardian2|parent2)(phone|phonenumber)$`),
		NewRule(sis.FieldGuardian2Email, `^(guardian2|parent2)email$`),
		NewRule(sis.FieldAddress, `^(address|streetaddress|homeaddress|street)$`, "homeaddress"),
		NewRule(sis.FieldCity, `^city$`),
		NewRule(sis.FieldState, `^(state|province)$`),
		NewRule(sis.FieldZip, `^(zip|zipcode|postalcode)$`),
		NewRule(sis.FieldHomePhone, `^(homephone|phone|phonenumber|telephone)$`, "homephone"),
		NewRule(sis.FieldMobilePhone, `^(mobilephone|cellphone|mobile|cell)$`),
		NewRule(sis.FieldEmergencyContact, `^emergency(contact)?(name)?$`),
		NewRule(sis.FieldEmergencyPhone, `^emergency(contact)?phone$`),
		NewRule(sis.FieldCounselor, `^(counselor|counsellor|guidancecounselor)$`, "counselor"),
		NewRule(sis.FieldAdvisor, `^(advisor|adviser|mentor)$`),
		NewRule(sis.FieldLocker, `^(locker|lockernumber|lockerno)$`),
		NewRule(sis.FieldBusRoute, `^(bus|busroute|busnumber|transportation)$`),
		NewRule(sis.FieldGPA, `^(gpa|gradepointaverage|cumulativegpa)$`),
		NewRule(sis.FieldGradYear, `^(gradyear|graduationyear|classof|cohort)$`),
		NewRule(sis.FieldHomeLanguage, `^(homelanguage|language|primarylanguage|nativelanguage)$`),
		NewRule(sis.FieldEthnicity, `^(ethnicity|race|raceethnicity)$`),
		NewRule(sis.FieldIEP, `^iep$`),
		NewRule(sis.FieldPlan504, `^(504|504plan|plan504)$`),
		NewRule(sis.FieldELL, `^(ell|esl|eld|englishlearner)$`),
		NewRule(sis.FieldMealProgram, `^(mealprogram|lunchstatus|freereducedlunch|frl)$`),
	}
	return append(rules, RosterRules()...)
}

var commaSplit = regexp.MustCompile(`\s*,\s*`)

// SplitCombinedName breaks a combined name into given/family halves.
// "Last, First" splits on the comma; otherwise the first token is the
// given name and the remainder the surname. Lossy for multi-word
// surnames without a comma ("Mary Ann Smith" -> "Mary" / "Ann Smith"),
// which is an accepted limitation of the heuristic.
func SplitCombinedName(raw string) (first, last string) {
	raw = textutil.CollapseWhitespace(raw)
	if raw == "" {
		return "", ""
	}

	if parts := commaSplit.Split(raw, 2); len(parts) == 2 {
		return textutil.CollapseWhitespace(parts[1]), textutil.CollapseWhitespace(parts[0])
	}

	for i, c := range raw {
		if c == ' ' {
			return raw[:i], raw[i+1:]
		}
	}
	// single token, treat it as a surname
	return "", raw
}
