package analytics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classrecord/internal/attendance"
	"classrecord/internal/testutil"
)

func TestLoad_BuildsReport(t *testing.T) {
	api := testutil.NewFakeAPI(nil)
	api.StudentStats = []attendance.StudentStats{
		testutil.NewTestStats(1, testutil.WithCounts(9, 1, 0, 0)),
		testutil.NewTestStats(2, testutil.WithCounts(3, 7, 0, 0)),
	}
	api.Sessions = testutil.NewTestSessions(10, 10, 10, 4, 4, 4)

	rep, err := Load(context.Background(), api, "sec-1", attendance.DateRange{})
	require.NoError(t, err)
	assert.True(t, rep.HasData)
	assert.Equal(t, TrendImproving, rep.Trend)
	assert.InDelta(t, 60.0, rep.Overall.AttendanceRate, 1e-9)
	require.Len(t, rep.LowAttendance, 1)
	assert.Equal(t, "stu-2", rep.LowAttendance[0].StudentID)
}

func TestLoad_PropagatesErrors(t *testing.T) {
	api := testutil.NewFakeAPI(nil)
	api.StatsErr = errors.New("forbidden")

	_, err := Load(context.Background(), api, "sec-1", attendance.DateRange{})
	require.Error(t, err)
	assert.ErrorIs(t, err, api.StatsErr)
}

func TestBuild_NoData(t *testing.T) {
	rep := Build("sec-1", nil, nil)
	assert.False(t, rep.HasData)
	assert.Equal(t, TrendStable, rep.Trend)
	assert.Empty(t, rep.LowAttendance)
}
