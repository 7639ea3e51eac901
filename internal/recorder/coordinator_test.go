package recorder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classrecord/internal/attendance"
	"classrecord/internal/testutil"
)

func readySheet(n int) *Sheet {
	s := newTestSheet(n)
	s.Draft.SessionNumber = "1"
	s.Draft.Topic = "Intro"
	s.Draft.StartTime = "09:00"
	s.Draft.EndTime = "10:00"
	return s
}

func TestCoordinator_InvalidDraftMakesNoRequests(t *testing.T) {
	api := testutil.NewFakeAPI(nil)
	co := NewCoordinator(api)
	s := newTestSheet(2)

	_, err := co.Submit(context.Background(), s)
	require.ErrorIs(t, err, ErrIncompleteSession)
	assert.Equal(t, 0, api.CreateCalls)
	assert.Equal(t, 0, api.MarkCalls)
	assert.Equal(t, StateDraft, co.State())
}

func TestCoordinator_CreateFailureNeverMarks(t *testing.T) {
	api := testutil.NewFakeAPI(nil)
	api.CreateErr = errors.New("section closed")
	co := NewCoordinator(api)
	s := readySheet(2)
	s.Mark("stu-1", attendance.StatusAbsent, "")

	_, err := co.Submit(context.Background(), s)
	require.Error(t, err)
	assert.ErrorIs(t, err, api.CreateErr)
	assert.Equal(t, 1, api.CreateCalls)
	assert.Equal(t, 0, api.MarkCalls)
	assert.Equal(t, StateDraft, co.State())
	assert.Equal(t, attendance.StatusAbsent, s.Ledger().Status("stu-1"), "marks are kept after a failure")
}

func TestCoordinator_SubmitSendsOneRecordPerStudentAndResets(t *testing.T) {
	api := testutil.NewFakeAPI(nil)
	co := NewCoordinator(api)
	s := readySheet(3)
	s.Mark("stu-3", attendance.StatusLate, "bus")

	sess, err := co.Submit(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "ses-created", sess.ID)
	assert.Equal(t, StateRecordsSubmitted, co.State())

	recs := api.Marked["ses-created"]
	require.Len(t, recs, 3)
	assert.Equal(t, DefaultStatus, recs[0].Status)
	assert.Equal(t, DefaultStatus, recs[1].Status)
	assert.Equal(t, attendance.StatusLate, recs[2].Status)
	assert.Equal(t, "bus", recs[2].Remarks)

	require.Len(t, api.Created, 1)
	assert.Equal(t, "Intro", api.Created[0].Title)
	assert.Equal(t, "2025-03-10", api.Created[0].Date)

	assert.Equal(t, 0, s.Ledger().Len())
	assert.False(t, s.Draft.Valid())
}

func TestCoordinator_EmptyDateDefaultsToToday(t *testing.T) {
	api := testutil.NewFakeAPI(nil)
	co := NewCoordinator(api)
	co.now = func() time.Time { return time.Date(2025, 9, 1, 14, 0, 0, 0, time.UTC) }
	s := readySheet(1)
	s.Date = ""

	_, err := co.Submit(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "2025-09-01", api.Created[0].Date)
}

func TestCoordinator_PartialFailureThenRetry(t *testing.T) {
	api := testutil.NewFakeAPI(nil)
	api.MarkErr = errors.New("timeout")
	api.MarkFailures = 1
	co := NewCoordinator(api)
	s := readySheet(2)
	s.Mark("stu-1", attendance.StatusAbsent, "")

	sess, err := co.Submit(context.Background(), s)
	require.Error(t, err)
	assert.Equal(t, StateFailedPartial, co.State())
	pending, ok := co.Pending()
	require.True(t, ok)
	assert.Equal(t, sess.ID, pending.ID)
	assert.Equal(t, attendance.StatusAbsent, s.Ledger().Status("stu-1"))

	_, err = co.Submit(context.Background(), s)
	require.ErrorIs(t, err, ErrPendingRecords)
	assert.Equal(t, 1, api.CreateCalls, "no second session while records are pending")

	_, err = co.RetryRecords(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, StateRecordsSubmitted, co.State())
	assert.Equal(t, 1, api.CreateCalls)
	assert.Equal(t, 2, api.MarkCalls)
	assert.Len(t, api.Marked[pending.ID], 2)
}

func TestCoordinator_RetryWithoutPendingFails(t *testing.T) {
	co := NewCoordinator(testutil.NewFakeAPI(nil))
	_, err := co.RetryRecords(context.Background(), readySheet(1))
	assert.ErrorIs(t, err, ErrNothingToRetry)
}

func TestCoordinator_AbandonReturnsToDraft(t *testing.T) {
	api := testutil.NewFakeAPI(nil)
	api.MarkErr = errors.New("boom")
	co := NewCoordinator(api)
	s := readySheet(1)

	_, err := co.Submit(context.Background(), s)
	require.Error(t, err)

	sess, ok := co.Abandon()
	assert.True(t, ok)
	assert.Equal(t, "ses-created", sess.ID)
	assert.Equal(t, StateDraft, co.State())
	_, ok = co.Pending()
	assert.False(t, ok)

	api.MarkErr = nil
	_, err = co.Submit(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 2, api.CreateCalls)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "failed-partial", StateFailedPartial.String())
	assert.Equal(t, "state(9)", State(9).String())
}
