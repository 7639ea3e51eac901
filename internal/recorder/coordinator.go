package recorder

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"classrecord/internal/attendance"
)

// DefaultStatus is submitted for students left unmarked.
const DefaultStatus = attendance.StatusPresent

var (
	// ErrIncompleteSession is returned before any request is made when the draft is not valid.
	ErrIncompleteSession = errors.New("please fill in all required session details")
	// ErrPendingRecords is returned by Submit while a created session still lacks its records.
	ErrPendingRecords = errors.New("attendance records for the created session were not saved; retry or abandon it first")
	// ErrNothingToRetry is returned by RetryRecords when no session is waiting for records.
	ErrNothingToRetry = errors.New("no session is waiting for attendance records")
)

// Submitter is the part of the attendance API the coordinator needs.
type Submitter interface {
	CreateSession(ctx context.Context, ns attendance.NewSession) (attendance.Session, error)
	MarkAttendance(ctx context.Context, sessionID string, records []attendance.Record) error
}

// State is the progress of one submission.
type State int

const (
	StateDraft State = iota
	StateSessionCreated
	StateRecordsSubmitted
	StateFailedPartial
)

func (s State) String() string {
	switch s {
	case StateDraft:
		return "draft"
	case StateSessionCreated:
		return "session-created"
	case StateRecordsSubmitted:
		return "records-submitted"
	case StateFailedPartial:
		return "failed-partial"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Coordinator creates a session and then submits its records, in that order.
// The records request is never sent unless the session was created. Nothing is
// retried automatically; after a records failure the created session is kept
// so the caller can RetryRecords or Abandon it.
type Coordinator struct {
	api     Submitter
	now     func() time.Time
	state   State
	pending attendance.Session
}

// NewCoordinator creates a coordinator that talks to api.
func NewCoordinator(api Submitter) *Coordinator {
	return &Coordinator{api: api, now: time.Now}
}

// State returns the current submission state.
func (c *Coordinator) State() State { return c.state }

// Pending returns the session created by a submission whose records failed.
func (c *Coordinator) Pending() (attendance.Session, bool) {
	return c.pending, c.state == StateFailedPartial
}

// Submit validates the sheet's draft, creates the session and submits one
// record per roster student. On success the sheet is reset.
func (c *Coordinator) Submit(ctx context.Context, sheet *Sheet) (attendance.Session, error) {
	if c.state == StateFailedPartial {
		return attendance.Session{}, ErrPendingRecords
	}
	if sheet == nil || sheet.SectionCourseID == "" || !sheet.Draft.Valid() {
		return attendance.Session{}, ErrIncompleteSession
	}
	c.state = StateDraft

	date := sheet.Date
	if date == "" {
		date = c.now().Format(attendance.DateLayout)
	}
	sess, err := c.api.CreateSession(ctx, sheet.Draft.NewSession(sheet.SectionCourseID, date))
	if err != nil {
		log.Printf("error creating session for %s: %v", sheet.SectionCourseID, err)
		return attendance.Session{}, fmt.Errorf("create session: %w", err)
	}
	c.state = StateSessionCreated
	c.pending = sess
	return c.submitRecords(ctx, sheet)
}

// RetryRecords resubmits the records of the sheet for the pending session.
func (c *Coordinator) RetryRecords(ctx context.Context, sheet *Sheet) (attendance.Session, error) {
	if c.state != StateFailedPartial {
		return attendance.Session{}, ErrNothingToRetry
	}
	return c.submitRecords(ctx, sheet)
}

// Abandon forgets the pending session and returns to the draft state. The
// session stays on the server without records; the caller may delete it.
func (c *Coordinator) Abandon() (attendance.Session, bool) {
	sess, ok := c.Pending()
	c.state = StateDraft
	c.pending = attendance.Session{}
	return sess, ok
}

func (c *Coordinator) submitRecords(ctx context.Context, sheet *Sheet) (attendance.Session, error) {
	if err := c.api.MarkAttendance(ctx, c.pending.ID, sheet.Records()); err != nil {
		c.state = StateFailedPartial
		log.Printf("error submitting attendance for session %s: %v", c.pending.ID, err)
		return c.pending, fmt.Errorf("submit attendance records: %w", err)
	}
	sess := c.pending
	c.state = StateRecordsSubmitted
	c.pending = attendance.Session{}
	sheet.Reset()
	return sess, nil
}
