package testutil

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"classrecord/internal/attendance"
	"classrecord/internal/client"
	"classrecord/internal/queue"
)

// FakeAPI stands in for the REST client. Each *Err field fails the matching call.
type FakeAPI struct {
	mu sync.Mutex

	Roster       []attendance.Student
	StudentStats []attendance.StudentStats
	Sessions     []attendance.Session

	CreateErr error
	MarkErr   error
	StatsErr  error
	// MarkFailures fails the first n MarkAttendance calls with MarkErr.
	MarkFailures int

	CreateCalls int
	MarkCalls   int
	Created     []attendance.NewSession
	Marked      map[string][]attendance.Record
	Deleted     []string
}

// NewFakeAPI returns a fake serving roster.
func NewFakeAPI(roster []attendance.Student) *FakeAPI {
	return &FakeAPI{Roster: roster, Marked: make(map[string][]attendance.Record)}
}

func (f *FakeAPI) CreateSession(_ context.Context, ns attendance.NewSession) (attendance.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CreateCalls++
	if f.CreateErr != nil {
		return attendance.Session{}, f.CreateErr
	}
	f.Created = append(f.Created, ns)
	return attendance.Session{
		ID:              "ses-created",
		SectionCourseID: ns.SectionCourseID,
		Date:            ns.Date,
		Title:           ns.Title,
		SessionType:     ns.SessionType,
		MeetingType:     ns.MeetingType,
	}, nil
}

func (f *FakeAPI) MarkAttendance(_ context.Context, sessionID string, records []attendance.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.MarkCalls++
	if f.MarkErr != nil && (f.MarkFailures == 0 || f.MarkCalls <= f.MarkFailures) {
		return f.MarkErr
	}
	f.Marked[sessionID] = append([]attendance.Record(nil), records...)
	return nil
}

func (f *FakeAPI) Stats(context.Context, string, attendance.DateRange) ([]attendance.StudentStats, error) {
	if f.StatsErr != nil {
		return nil, f.StatsErr
	}
	return f.StudentStats, nil
}

func (f *FakeAPI) ListSessions(context.Context, string, attendance.DateRange) ([]attendance.Session, error) {
	return f.Sessions, nil
}

func (f *FakeAPI) ListStudents(context.Context, string) ([]attendance.Student, error) {
	return f.Roster, nil
}

func (f *FakeAPI) DeleteSession(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Deleted = append(f.Deleted, sessionID)
	return nil
}

func (f *FakeAPI) Export(_ context.Context, sectionCourseID, format string, _ attendance.DateRange) (*client.Download, error) {
	if format != "csv" && format != "json" {
		return nil, errors.New("unsupported format")
	}
	return &client.Download{
		Filename: "attendance_" + sectionCourseID + "." + format,
		Body:     io.NopCloser(strings.NewReader(`"Student Name"`)),
	}, nil
}

// Publisher records published messages.
type Publisher struct {
	mu       sync.Mutex
	Err      error
	Messages []queue.Message
}

func (p *Publisher) Publish(_ context.Context, msg queue.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Messages = append(p.Messages, msg)
	return nil
}

// Published returns a copy of the messages seen so far.
func (p *Publisher) Published() []queue.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]queue.Message(nil), p.Messages...)
}
