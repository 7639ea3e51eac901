package recorder

import (
	"strings"

	"classrecord/internal/attendance"
)

// Filter narrows the visible roster. An empty Status shows every student.
type Filter struct {
	Query  string
	Status attendance.Status
}

// Sheet is the attendance input for one class section: the roster, the
// ledger being filled in, the bulk-action selection and the session draft.
type Sheet struct {
	SectionCourseID string
	Date            string
	Draft           Draft
	Filter          Filter

	roster    []attendance.Student
	ledger    *Ledger
	selection *Selection
}

// NewSheet starts an empty sheet for the roster of a section on date.
func NewSheet(sectionCourseID, date string, roster []attendance.Student) *Sheet {
	return &Sheet{
		SectionCourseID: sectionCourseID,
		Date:            date,
		Draft:           NewDraft(),
		roster:          roster,
		ledger:          NewLedger(),
		selection:       NewSelection(),
	}
}

// Roster returns the students of the section in roster order.
func (s *Sheet) Roster() []attendance.Student { return s.roster }

// Ledger exposes the per-student marks.
func (s *Sheet) Ledger() *Ledger { return s.ledger }

// Selection exposes the bulk-action selection.
func (s *Sheet) Selection() *Selection { return s.selection }

// Mark sets one student's status and remarks.
func (s *Sheet) Mark(studentID string, status attendance.Status, remarks string) {
	s.ledger.Mark(studentID, status, remarks)
}

// MarkAllPresent marks every roster student present, overwriting earlier marks.
func (s *Sheet) MarkAllPresent() { s.markAll(attendance.StatusPresent) }

// MarkAllAbsent marks every roster student absent, overwriting earlier marks.
func (s *Sheet) MarkAllAbsent() { s.markAll(attendance.StatusAbsent) }

// MarkSelectedPresent marks the selected students present and clears the selection.
func (s *Sheet) MarkSelectedPresent() { s.markSelected(attendance.StatusPresent) }

// MarkSelectedAbsent marks the selected students absent and clears the selection.
func (s *Sheet) MarkSelectedAbsent() { s.markSelected(attendance.StatusAbsent) }

func (s *Sheet) markAll(status attendance.Status) {
	ids := make([]string, len(s.roster))
	for i, st := range s.roster {
		ids[i] = st.StudentID
	}
	s.ledger.apply(ids, status, "")
}

func (s *Sheet) markSelected(status attendance.Status) {
	s.ledger.apply(s.selection.IDs(), status, "")
	s.selection.Clear()
}

// Visible returns the roster students matching the current filter, in roster order.
func (s *Sheet) Visible() []attendance.Student {
	query := strings.ToLower(strings.TrimSpace(s.Filter.Query))
	out := make([]attendance.Student, 0, len(s.roster))
	for _, st := range s.roster {
		if query != "" &&
			!strings.Contains(strings.ToLower(st.FullName), query) &&
			!strings.Contains(strings.ToLower(st.StudentNumber), query) {
			continue
		}
		if s.Filter.Status != attendance.StatusUnset && s.ledger.Status(st.StudentID) != s.Filter.Status {
			continue
		}
		out = append(out, st)
	}
	return out
}

// SelectAllVisible replaces the selection with the currently visible students.
func (s *Sheet) SelectAllVisible() {
	visible := s.Visible()
	ids := make([]string, len(visible))
	for i, st := range visible {
		ids[i] = st.StudentID
	}
	s.selection.SelectAll(ids)
}

// Tally counts the ledger against the roster.
func (s *Sheet) Tally() Tally { return Count(s.roster, s.ledger) }

// Records builds one record per roster student. Students left unmarked get DefaultStatus.
func (s *Sheet) Records() []attendance.Record {
	out := make([]attendance.Record, 0, len(s.roster))
	for _, st := range s.roster {
		status := s.ledger.Status(st.StudentID)
		if status == attendance.StatusUnset {
			status = DefaultStatus
		}
		out = append(out, attendance.Record{
			EnrollmentID: st.EnrollmentID,
			Status:       status,
			Remarks:      s.ledger.Remarks(st.StudentID),
		})
	}
	return out
}

// Reset discards the marks, the selection and the draft after a successful submission.
func (s *Sheet) Reset() {
	s.ledger.Clear()
	s.selection.Clear()
	s.Draft = NewDraft()
}
