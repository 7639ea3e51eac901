package recorder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classrecord/internal/attendance"
	"classrecord/internal/testutil"
)

func newTestSheet(n int) *Sheet {
	return NewSheet("sec-1", "2025-03-10", testutil.NewTestRoster(n))
}

func TestSheet_MarkAllPresentOverwritesEverything(t *testing.T) {
	s := newTestSheet(3)
	s.Mark("stu-2", attendance.StatusLate, "traffic")
	s.MarkAllPresent()

	for _, st := range s.Roster() {
		e, ok := s.Ledger().Entry(st.StudentID)
		require.True(t, ok)
		assert.Equal(t, attendance.StatusPresent, e.Status)
		assert.Empty(t, e.Remarks, "bulk marking clears remarks")
	}
}

func TestSheet_MarkAllAbsentThenUndo(t *testing.T) {
	s := newTestSheet(3)
	s.Mark("stu-1", attendance.StatusExcused, "clinic")
	s.MarkAllAbsent()
	assert.Equal(t, 3, s.Tally().Absent)

	require.True(t, s.Ledger().Undo())
	tally := s.Tally()
	assert.Equal(t, 1, tally.Excused)
	assert.Equal(t, 2, tally.Unmarked)
	assert.Equal(t, "clinic", s.Ledger().Remarks("stu-1"))
}

func TestSheet_MarkSelectedTouchesOnlySelectionAndClearsIt(t *testing.T) {
	s := newTestSheet(4)
	s.Selection().Toggle("stu-1")
	s.Selection().Toggle("stu-3")
	s.MarkSelectedAbsent()

	assert.Equal(t, attendance.StatusAbsent, s.Ledger().Status("stu-1"))
	assert.Equal(t, attendance.StatusAbsent, s.Ledger().Status("stu-3"))
	assert.Equal(t, attendance.StatusUnset, s.Ledger().Status("stu-2"))
	assert.Equal(t, 0, s.Selection().Len())
}

func TestSheet_MarkSelectedAbsentOverMarkedStudents(t *testing.T) {
	s := newTestSheet(2)
	s.Mark("stu-1", attendance.StatusPresent, "")
	s.Mark("stu-2", attendance.StatusLate, "")
	s.Selection().Toggle("stu-2")
	s.MarkSelectedAbsent()

	assert.Equal(t, attendance.StatusPresent, s.Ledger().Status("stu-1"))
	assert.Equal(t, attendance.StatusAbsent, s.Ledger().Status("stu-2"))
	assert.Equal(t, 0, s.Selection().Len())
}

func TestSheet_MarkSelectedWithEmptySelectionIsNoop(t *testing.T) {
	s := newTestSheet(2)
	s.MarkSelectedPresent()
	assert.Equal(t, 0, s.Ledger().Len())
	assert.False(t, s.Ledger().CanUndo())
}

func TestSheet_VisibleFiltersByQueryAndStatus(t *testing.T) {
	s := newTestSheet(12)
	s.Filter.Query = "student 1"
	visible := s.Visible()
	// Student 10, 11, 12 match "student 1"; Student 01 does not because of the zero padding.
	require.Len(t, visible, 3)
	assert.Equal(t, "stu-10", visible[0].StudentID)

	s.Filter = Filter{Query: "2024-0003"}
	visible = s.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, "stu-3", visible[0].StudentID)

	s.Filter = Filter{Status: attendance.StatusLate}
	assert.Empty(t, s.Visible())
	s.Mark("stu-5", attendance.StatusLate, "")
	visible = s.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, "stu-5", visible[0].StudentID)
}

func TestSheet_SelectAllVisibleThenMarkPresent(t *testing.T) {
	s := newTestSheet(12)
	s.Filter.Query = "student 1"
	s.SelectAllVisible()
	s.MarkSelectedPresent()

	tally := s.Tally()
	assert.Equal(t, 3, tally.Present)
	assert.Equal(t, 9, tally.Unmarked)
}

func TestSheet_TallyInvariant(t *testing.T) {
	s := newTestSheet(6)
	s.Mark("stu-1", attendance.StatusPresent, "")
	s.Mark("stu-2", attendance.StatusAbsent, "")
	s.Mark("stu-3", attendance.StatusLate, "")
	s.Mark("stu-4", attendance.StatusExcused, "")
	s.Mark("ghost", attendance.StatusPresent, "")
	s.Mark("stu-5", attendance.Status("tardy"), "")

	tally := s.Tally()
	assert.Equal(t, Tally{Total: 6, Present: 1, Absent: 1, Late: 1, Excused: 1, Unmarked: 2}, tally)
	assert.Equal(t, tally.Total, tally.Present+tally.Absent+tally.Late+tally.Excused+tally.Unmarked)
}

func TestSheet_RecordsDefaultUnmarkedToPresent(t *testing.T) {
	s := newTestSheet(3)
	s.Mark("stu-2", attendance.StatusAbsent, "no show")

	recs := s.Records()
	require.Len(t, recs, 3)
	assert.Equal(t, attendance.Record{EnrollmentID: "enr-1", Status: attendance.StatusPresent}, recs[0])
	assert.Equal(t, attendance.Record{EnrollmentID: "enr-2", Status: attendance.StatusAbsent, Remarks: "no show"}, recs[1])
	assert.Equal(t, attendance.Record{EnrollmentID: "enr-3", Status: attendance.StatusPresent}, recs[2])
}

func TestSheet_RecordsIgnoreStudentsOffRoster(t *testing.T) {
	s := newTestSheet(1)
	s.Mark("ghost", attendance.StatusAbsent, "")
	assert.Len(t, s.Records(), 1)
}

func TestSheet_ResetClearsMarksSelectionAndDraft(t *testing.T) {
	s := newTestSheet(2)
	s.Draft.Topic = "Sorting"
	s.Mark("stu-1", attendance.StatusAbsent, "")
	s.Selection().Toggle("stu-2")
	s.Reset()

	assert.Equal(t, 0, s.Ledger().Len())
	assert.Equal(t, 0, s.Selection().Len())
	assert.Equal(t, NewDraft(), s.Draft)
	assert.Len(t, s.Roster(), 2)
}
