// Package recorder holds the faculty-side attendance capture workflow: the
// session draft, the per-student ledger, selection and bulk actions, the
// live tally and the two-step submission.
//
// Values in this package are owned by a single caller and are not safe for
// concurrent use.
package recorder

import (
	"strings"

	"classrecord/internal/attendance"
)

// Draft is the session descriptor being filled in before submission.
type Draft struct {
	SessionNumber string
	Topic         string
	Description   string
	StartTime     string
	EndTime       string
	SessionType   attendance.SessionType
	MeetingType   attendance.MeetingType
}

// NewDraft returns an empty draft with the default lecture / in-person types.
func NewDraft() Draft {
	return Draft{
		SessionType: attendance.SessionLecture,
		MeetingType: attendance.MeetingInPerson,
	}
}

// Valid reports whether the required fields are filled in. Session number and
// topic must be non-blank; times must be non-empty. Times are not compared.
func (d Draft) Valid() bool {
	return strings.TrimSpace(d.SessionNumber) != "" &&
		strings.TrimSpace(d.Topic) != "" &&
		d.StartTime != "" &&
		d.EndTime != ""
}

// NewSession builds the create-session payload for a section on date.
func (d Draft) NewSession(sectionCourseID, date string) attendance.NewSession {
	return attendance.NewSession{
		SectionCourseID: sectionCourseID,
		Date:            date,
		Title:           d.Topic,
		Description:     d.Description,
		SessionType:     d.SessionType,
		MeetingType:     d.MeetingType,
		StartTime:       d.StartTime,
		EndTime:         d.EndTime,
	}
}
