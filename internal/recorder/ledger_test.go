package recorder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classrecord/internal/attendance"
)

func TestLedger_MarkReplacesStatusAndRemarks(t *testing.T) {
	l := NewLedger()
	l.Mark("s1", attendance.StatusLate, "bus")
	l.Mark("s1", attendance.StatusPresent, "")

	e, ok := l.Entry("s1")
	require.True(t, ok)
	assert.Equal(t, attendance.StatusPresent, e.Status)
	assert.Empty(t, e.Remarks)
	assert.Equal(t, 1, l.Len())
}

func TestLedger_UnknownStudentIsUnset(t *testing.T) {
	l := NewLedger()
	assert.Equal(t, attendance.StatusUnset, l.Status("nobody"))
	assert.Empty(t, l.Remarks("nobody"))
	_, ok := l.Entry("nobody")
	assert.False(t, ok)
}

func TestLedger_UndoRevertsOneBatch(t *testing.T) {
	l := NewLedger()
	l.Mark("s1", attendance.StatusAbsent, "sick")
	l.apply([]string{"s1", "s2"}, attendance.StatusPresent, "")

	require.True(t, l.Undo())
	assert.Equal(t, attendance.StatusAbsent, l.Status("s1"))
	assert.Equal(t, "sick", l.Remarks("s1"))
	_, ok := l.Entry("s2")
	assert.False(t, ok, "entry created by the undone batch should be removed")

	require.True(t, l.Undo())
	assert.Equal(t, 0, l.Len())
	assert.False(t, l.Undo())
	assert.False(t, l.CanUndo())
}

func TestLedger_ClearDropsHistory(t *testing.T) {
	l := NewLedger()
	l.Mark("s1", attendance.StatusPresent, "")
	l.Clear()

	assert.Equal(t, 0, l.Len())
	assert.False(t, l.CanUndo())
}

func TestLedger_EmptyBatchIsNotRecorded(t *testing.T) {
	l := NewLedger()
	l.apply(nil, attendance.StatusPresent, "")
	assert.False(t, l.CanUndo())
}
