package sis

// GradeEntry is one scored assignment inside a gradebook view.
type GradeEntry struct {
	Assignment string `json:"assignment"`
	Score      string `json:"score"`
	MaxScore   string `json:"maxScore"`
	Category   string `json:"category,omitempty"`
}

// GradeRecord is an independent entity, it is never merged into Record.
type GradeRecord struct {
	SourcedID   string       `json:"sourcedId"`
	StudentName string       `json:"studentName"`
	ClassName   string       `json:"className"`
	Grades      []GradeEntry `json:"grades"`
}

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceTardy   AttendanceStatus = "tardy"
	AttendanceExcused AttendanceStatus = "excused"
)

type AttendanceRecord struct {
	SourcedID   string `json:"sourcedId"`
	StudentName string `json:"studentName"`
	// ISO 8601 date (2006-01-02)
	Date   string           `json:"date"`
	Status AttendanceStatus `json:"status"`
	Period string           `json:"period,omitempty"`
}
