package sis

import "rostersync-backend/lib/textutil"

// Detail fields only ever produced by scraping a per-student page.
const (
	FieldMiddleName       Field = "middleName"
	FieldPreferredName    Field = "preferredName"
	FieldGuardianName     Field = "guardianName"
	FieldGuardianPhone    Field = "guardianPhone"
	FieldGuardianEmail    Field = "guardianEmail"
	FieldGuardian2Name    Field = "guardian2Name"
	FieldGuardian2Phone   Field = "guardian2Phone"
	FieldGuardian2Email   Field = "guardian2Email"
	FieldAddress          Field = "address"
	FieldCity             Field = "city"
	FieldState            Field = "state"
	FieldZip              Field = "zip"
	FieldHomePhone        Field = "homePhone"
	FieldMobilePhone      Field = "mobilePhone"
	FieldEmergencyContact Field = "emergencyContact"
	FieldEmergencyPhone   Field = "emergencyPhone"
	FieldCounselor        Field = "counselor"
	FieldAdvisor          Field = "advisor"
	FieldLocker           Field = "locker"
	FieldBusRoute         Field = "busRoute"
	FieldGPA              Field = "gpa"
	FieldGradYear         Field = "gradYear"
	FieldHomeLanguage     Field = "homeLanguage"
	FieldEthnicity        Field = "ethnicity"
	FieldIEP              Field = "iep"
	FieldPlan504          Field = "plan504"
	FieldELL              Field = "ell"
	FieldMealProgram      Field = "mealProgram"
)

// DeepRecord is a Record enriched by a detail-page crawl. It shares the
// Record identity (SourcedID) so it diffs through the same machinery.
type DeepRecord struct {
	Record

	MiddleName       string `json:"middleName,omitempty"`
	PreferredName    string `json:"preferredName,omitempty"`
	GuardianName     string `json:"guardianName,omitempty"`
	GuardianPhone    string `json:"guardianPhone,omitempty"`
	GuardianEmail    string `json:"guardianEmail,omitempty"`
	Guardian2Name    string `json:"guardian2Name,omitempty"`
	Guardian2Phone   string `json:"guardian2Phone,omitempty"`
	Guardian2Email   string `json:"guardian2Email,omitempty"`
	Address          string `json:"address,omitempty"`
	City             string `json:"city,omitempty"`
	State            string `json:"state,omitempty"`
	Zip              string `json:"zip,omitempty"`
	HomePhone        string `json:"homePhone,omitempty"`
	MobilePhone      string `json:"mobilePhone,omitempty"`
	EmergencyContact string `json:"emergencyContact,omitempty"`
	EmergencyPhone   string `json:"emergencyPhone,omitempty"`
	Counselor        string `json:"counselor,omitempty"`
	Advisor          string `json:"advisor,omitempty"`
	Locker           string `json:"locker,omitempty"`
	BusRoute         string `json:"busRoute,omitempty"`
	GPA              string `json:"gpa,omitempty"`
	GradYear         string `json:"gradYear,omitempty"`
	HomeLanguage     string `json:"homeLanguage,omitempty"`
	Ethnicity        string `json:"ethnicity,omitempty"`
	IEP              string `json:"iep,omitempty"`
	Plan504          string `json:"plan504,omitempty"`
	ELL              string `json:"ell,omitempty"`
	MealProgram      string `json:"mealProgram,omitempty"`

	// Schedule maps a period label to a class name.
	Schedule map[string]string `json:"schedule,omitempty"`
}

var deepFieldSetters = map[Field]func(*DeepRecord) *string{
	FieldMiddleName:       func(d *DeepRecord) *string { return &d.MiddleName },
	FieldPreferredName:    func(d *DeepRecord) *string { return &d.PreferredName },
	FieldGuardianName:     func(d *DeepRecord) *string { return &d.GuardianName },
	FieldGuardianPhone:    func(d *DeepRecord) *string { return &d.GuardianPhone },
	FieldGuardianEmail:    func(d *DeepRecord) *string { return &d.GuardianEmail },
	FieldGuardian2Name:    func(d *DeepRecord) *string { return &d.Guardian2Name },
	FieldGuardian2Phone:   func(d *DeepRecord) *string { return &d.Guardian2Phone },
	FieldGuardian2Email:   func(d *DeepRecord) *string { return &d.Guardian2Email },
	FieldAddress:          func(d *DeepRecord) *string { return &d.Address },
	FieldCity:             func(d *DeepRecord) *string { return &d.City },
	FieldState:            func(d *DeepRecord) *string { return &d.State },
	FieldZip:              func(d *DeepRecord) *string { return &d.Zip },
	FieldHomePhone:        func(d *DeepRecord) *string { return &d.HomePhone },
	FieldMobilePhone:      func(d *DeepRecord) *string { return &d.MobilePhone },
	FieldEmergencyContact: func(d *DeepRecord) *string { return &d.EmergencyContact },
	FieldEmergencyPhone:   func(d *DeepRecord) *string { return &d.EmergencyPhone },
	FieldCounselor:        func(d *DeepRecord) *string { return &d.Counselor },
	FieldAdvisor:          func(d *DeepRecord) *string { return &d.Advisor },
	FieldLocker:           func(d *DeepRecord) *string { return &d.Locker },
	FieldBusRoute:         func(d *DeepRecord) *string { return &d.BusRoute },
	FieldGPA:              func(d *DeepRecord) *string { return &d.GPA },
	FieldGradYear:         func(d *DeepRecord) *string { return &d.GradYear },
	FieldHomeLanguage:     func(d *DeepRecord) *string { return &d.HomeLanguage },
	FieldEthnicity:        func(d *DeepRecord) *string { return &d.Ethnicity },
	FieldIEP:              func(d *DeepRecord) *string { return &d.IEP },
	FieldPlan504:          func(d *DeepRecord) *string { return &d.Plan504 },
	FieldELL:              func(d *DeepRecord) *string { return &d.ELL },
	FieldMealProgram:      func(d *DeepRecord) *string { return &d.MealProgram },
}

// Set extends Record.Set to the detail-only fields, with the same
// first-match-wins rule.
func (d *DeepRecord) Set(f Field, value string) {
	getter, ok := deepFieldSetters[f]
	if !ok {
		d.Record.Set(f, value)
		return
	}
	value = textutil.CollapseWhitespace(value)
	if value == "" {
		return
	}
	dst := getter(d)
	if *dst == "" {
		*dst = value
	}
}

// SetSchedule records a period -> class pair, first occurrence wins.
func (d *DeepRecord) SetSchedule(period, class string) {
	period = textutil.CollapseWhitespace(period)
	class = textutil.CollapseWhitespace(class)
	if period == "" || class == "" {
		return
	}
	if d.Schedule == nil {
		d.Schedule = map[string]string{}
	}
	if _, ok := d.Schedule[period]; !ok {
		d.Schedule[period] = class
	}
}
