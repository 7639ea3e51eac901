package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classrecord/internal/attendance"
	"classrecord/internal/testutil"
)

func TestSummarize_Totals(t *testing.T) {
	stats := []attendance.StudentStats{
		testutil.NewTestStats(1, testutil.WithCounts(40, 5, 3, 2)),
		testutil.NewTestStats(2, testutil.WithCounts(40, 10, 0, 0)),
	}
	o, ok := Summarize(stats, testutil.NewTestSessions(1, 2, 3))
	require.True(t, ok)

	assert.Equal(t, 2, o.TotalStudents)
	assert.Equal(t, 3, o.TotalSessions)
	assert.Equal(t, 100, o.TotalRecords)
	assert.Equal(t, 80, o.TotalPresent)
	assert.Equal(t, 15, o.TotalAbsent)
	assert.Equal(t, 3, o.TotalLate)
	assert.Equal(t, 2, o.TotalExcused)
	assert.InDelta(t, 80.0, o.AttendanceRate, 1e-9)
}

func TestSummarize_NoStudents(t *testing.T) {
	_, ok := Summarize(nil, testutil.NewTestSessions(4))
	assert.False(t, ok)
}

func TestAttendanceRate_NoRecordsIsZero(t *testing.T) {
	assert.Equal(t, 0.0, AttendanceRate(0, 0))
	assert.InDelta(t, 80.0, AttendanceRate(80, 100), 1e-9)
}

func TestLowAttendance_SortedAndCapped(t *testing.T) {
	pcts := []float64{90, 60, 74.99, 75, 10, 50, 70, 30}
	stats := make([]attendance.StudentStats, len(pcts))
	for i, p := range pcts {
		stats[i] = testutil.NewTestStats(i+1, testutil.WithPercentage(p))
	}

	got := LowAttendance(stats, LowAttendanceThreshold, LowAttendanceLimit)
	require.Len(t, got, LowAttendanceLimit)
	var order []float64
	for _, st := range got {
		order = append(order, st.AttendancePercentage)
	}
	assert.Equal(t, []float64{10, 30, 50, 60, 70}, order)

	all := LowAttendance(stats, LowAttendanceThreshold, 0)
	assert.Len(t, all, 6, "75 exactly is not below the threshold")
}

func TestLowAttendance_TiesKeepInputOrder(t *testing.T) {
	stats := []attendance.StudentStats{
		testutil.NewTestStats(1, testutil.WithPercentage(20)),
		testutil.NewTestStats(2, testutil.WithPercentage(20)),
	}
	got := LowAttendance(stats, LowAttendanceThreshold, LowAttendanceLimit)
	require.Len(t, got, 2)
	assert.Equal(t, "stu-1", got[0].StudentID)
	assert.Equal(t, "stu-2", got[1].StudentID)
}

func TestSearchSessions(t *testing.T) {
	sessions := testutil.NewTestSessions(1, 2, 3)
	sessions[1].Title = "Midterm review"
	sessions[2].SessionType = attendance.SessionLaboratory

	assert.Len(t, SearchSessions(sessions, ""), 3)
	got := SearchSessions(sessions, "MIDTERM")
	require.Len(t, got, 1)
	assert.Equal(t, "ses-2", got[0].ID)
	got = SearchSessions(sessions, "lab")
	require.Len(t, got, 1)
	assert.Equal(t, "ses-3", got[0].ID)
	assert.Empty(t, SearchSessions(sessions, "quiz"))
}
