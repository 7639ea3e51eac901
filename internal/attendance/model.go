package attendance

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the wire format for session dates and range bounds.
const DateLayout = "2006-01-02"

// Status is the attendance mark for one student in one session.
type Status string

const (
	StatusUnset   Status = ""
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
	StatusExcused Status = "excused"
)

// Statuses lists the marks a stored record may carry.
var Statuses = []Status{StatusPresent, StatusAbsent, StatusLate, StatusExcused}

// Valid reports whether s is one of the four recordable statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusExcused:
		return true
	}
	return false
}

// SessionType classifies a class meeting.
type SessionType string

const (
	SessionLecture    SessionType = "lecture"
	SessionLaboratory SessionType = "laboratory"
	SessionTutorial   SessionType = "tutorial"
	SessionExam       SessionType = "exam"
)

// MeetingType is how the class met.
type MeetingType string

const (
	MeetingInPerson MeetingType = "in-person"
	MeetingOnline   MeetingType = "online"
	MeetingHybrid   MeetingType = "hybrid"
)

// Session is one dated meeting of a class section.
type Session struct {
	ID              string      `json:"session_id"`
	SectionCourseID string      `json:"section_course_id"`
	Date            string      `json:"session_date"`
	Title           string      `json:"title"`
	Description     string      `json:"description,omitempty"`
	SessionType     SessionType `json:"session_type"`
	MeetingType     MeetingType `json:"meeting_type"`
	StartTime       string      `json:"start_time,omitempty"`
	EndTime         string      `json:"end_time,omitempty"`
	AttendanceCount int         `json:"attendance_count"`
	CreatedAt       time.Time   `json:"created_at"`
}

// NewSession is the payload for creating a session.
type NewSession struct {
	SectionCourseID string      `json:"section_course_id"`
	Date            string      `json:"session_date"`
	Title           string      `json:"title"`
	Description     string      `json:"description,omitempty"`
	SessionType     SessionType `json:"session_type,omitempty"`
	MeetingType     MeetingType `json:"meeting_type,omitempty"`
	StartTime       string      `json:"start_time,omitempty"`
	EndTime         string      `json:"end_time,omitempty"`
}

// Record is one student's mark as submitted for a session.
type Record struct {
	EnrollmentID string `json:"enrollment_id"`
	Status       Status `json:"status"`
	Remarks      string `json:"remarks"`
}

// Student is a roster entry for a class section.
type Student struct {
	StudentID     string `json:"student_id"`
	EnrollmentID  string `json:"enrollment_id"`
	FullName      string `json:"full_name"`
	StudentNumber string `json:"student_number"`
	Photo         string `json:"student_photo,omitempty"`
	ContactEmail  string `json:"contact_email,omitempty"`
}

// LogEntry is a stored attendance record joined with its student and session.
type LogEntry struct {
	AttendanceID    string      `json:"attendance_id"`
	EnrollmentID    string      `json:"enrollment_id"`
	SessionID       string      `json:"session_id"`
	SectionCourseID string      `json:"section_course_id,omitempty"`
	Status          Status      `json:"status"`
	SessionDate     string      `json:"session_date"`
	Remarks         string      `json:"remarks"`
	RecordedAt      time.Time   `json:"recorded_at"`
	StudentID       string      `json:"student_id,omitempty"`
	FullName        string      `json:"full_name,omitempty"`
	StudentNumber   string      `json:"student_number,omitempty"`
	Title           string      `json:"title,omitempty"`
	SessionType     SessionType `json:"session_type,omitempty"`
	MeetingType     MeetingType `json:"meeting_type,omitempty"`
}

// StudentStats aggregates one student's records over a date range.
type StudentStats struct {
	StudentID            string  `json:"student_id"`
	FullName             string  `json:"full_name"`
	StudentNumber        string  `json:"student_number"`
	TotalSessions        int     `json:"total_sessions"`
	PresentCount         int     `json:"present_count"`
	AbsentCount          int     `json:"absent_count"`
	LateCount            int     `json:"late_count"`
	ExcusedCount         int     `json:"excused_count"`
	AttendancePercentage float64 `json:"attendance_percentage"`
}

// CourseSummary is one row of a faculty member's dashboard.
type CourseSummary struct {
	SectionCourseID        string  `json:"section_course_id"`
	CourseCode             string  `json:"course_code"`
	CourseTitle            string  `json:"course_title"`
	SectionCode            string  `json:"section_code"`
	TotalSessions          int     `json:"total_sessions"`
	TotalAttendanceRecords int     `json:"total_attendance_records"`
	PresentCount           int     `json:"present_count"`
	AbsentCount            int     `json:"absent_count"`
	LateCount              int     `json:"late_count"`
	ExcusedCount           int     `json:"excused_count"`
	OverallPercentage      float64 `json:"overall_attendance_percentage"`
}

// ExportRow is one line of an attendance export.
type ExportRow struct {
	StudentName   string    `json:"student_name"`
	StudentNumber string    `json:"student_number"`
	SessionTitle  string    `json:"session_title"`
	SessionDate   string    `json:"session_date"`
	SessionType   string    `json:"session_type"`
	MeetingType   string    `json:"meeting_type"`
	Status        Status    `json:"status"`
	Remarks       string    `json:"remarks"`
	RecordedAt    time.Time `json:"recorded_at"`
}

// DateRange bounds a query by session date. It applies only when both ends are set.
type DateRange struct {
	Start string
	End   string
}

// Active reports whether both bounds are present.
func (r DateRange) Active() bool { return r.Start != "" && r.End != "" }

// Validate checks that any bound given parses as a date.
func (r DateRange) Validate() error {
	for _, v := range []string{r.Start, r.End} {
		if v == "" {
			continue
		}
		if _, err := time.Parse(DateLayout, v); err != nil {
			return Invalid("invalid date %q, expected YYYY-MM-DD", v)
		}
	}
	return nil
}

// Key is a stable identifier for the range, used in cache keys.
func (r DateRange) Key() string {
	if !r.Active() {
		return "all"
	}
	return r.Start + ".." + r.End
}

// LogFilter selects attendance log rows: a single date wins over a range.
type LogFilter struct {
	Date  string
	Range DateRange
}

// ErrNotFound is returned when a session or record does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError is a rejected request; its message is safe to show to users.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Invalid builds a ValidationError.
func Invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
