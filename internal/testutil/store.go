package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"classrecord/internal/attendance"
)

// FakeStore is an in-memory attendance.Store. Set Err to make every call fail.
type FakeStore struct {
	mu       sync.Mutex
	Err      error
	Rosters  map[string][]attendance.Student
	Sessions map[string]attendance.Session
	Records  map[string][]attendance.Record
	Logs     map[string]attendance.LogEntry
	// Summaries is returned by FacultySummary, keyed by faculty id.
	Summaries map[string][]attendance.CourseSummary

	StatsCalls int
	// OnStats runs at the start of every StudentStats call.
	OnStats func()
}

var _ attendance.Store = (*FakeStore)(nil)

// NewFakeStore returns an empty store.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		Rosters:   make(map[string][]attendance.Student),
		Sessions:  make(map[string]attendance.Session),
		Records:   make(map[string][]attendance.Record),
		Logs:      make(map[string]attendance.LogEntry),
		Summaries: make(map[string][]attendance.CourseSummary),
	}
}

func inRange(date string, r attendance.DateRange) bool {
	return !r.Active() || (date >= r.Start && date <= r.End)
}

func (f *FakeStore) ListSessions(_ context.Context, sectionCourseID string, r attendance.DateRange) ([]attendance.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	out := []attendance.Session{}
	for _, s := range f.Sessions {
		if s.SectionCourseID != sectionCourseID || !inRange(s.Date, r) {
			continue
		}
		s.AttendanceCount = 0
		for _, rec := range f.Records[s.ID] {
			if rec.Status == attendance.StatusPresent || rec.Status == attendance.StatusLate {
				s.AttendanceCount++
			}
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (f *FakeStore) GetSession(_ context.Context, sessionID string) (attendance.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return attendance.Session{}, f.Err
	}
	s, ok := f.Sessions[sessionID]
	if !ok {
		return attendance.Session{}, fmt.Errorf("session %s: %w", sessionID, attendance.ErrNotFound)
	}
	return s, nil
}

func (f *FakeStore) CreateSession(_ context.Context, s attendance.Session) (attendance.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return attendance.Session{}, f.Err
	}
	s.CreatedAt = time.Now()
	f.Sessions[s.ID] = s
	return s, nil
}

func (f *FakeStore) DeleteSession(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	if _, ok := f.Sessions[sessionID]; !ok {
		return fmt.Errorf("session %s: %w", sessionID, attendance.ErrNotFound)
	}
	delete(f.Sessions, sessionID)
	delete(f.Records, sessionID)
	return nil
}

func (f *FakeStore) ReplaceRecords(_ context.Context, s attendance.Session, records []attendance.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.Records[s.ID] = append([]attendance.Record(nil), records...)
	return nil
}

func (f *FakeStore) ListStudents(_ context.Context, sectionCourseID string) ([]attendance.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	return append([]attendance.Student{}, f.Rosters[sectionCourseID]...), nil
}

// StudentStats derives statistics from the stored records of the section's sessions.
func (f *FakeStore) StudentStats(_ context.Context, sectionCourseID string, r attendance.DateRange) ([]attendance.StudentStats, error) {
	if f.OnStats != nil {
		f.OnStats()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.StatsCalls++
	if f.Err != nil {
		return nil, f.Err
	}
	byEnrollment := make(map[string]*attendance.StudentStats)
	out := make([]attendance.StudentStats, 0, len(f.Rosters[sectionCourseID]))
	for _, st := range f.Rosters[sectionCourseID] {
		out = append(out, attendance.StudentStats{StudentID: st.StudentID, FullName: st.FullName, StudentNumber: st.StudentNumber})
		byEnrollment[st.EnrollmentID] = &out[len(out)-1]
	}
	for id, recs := range f.Records {
		s := f.Sessions[id]
		if s.SectionCourseID != sectionCourseID || !inRange(s.Date, r) {
			continue
		}
		for _, rec := range recs {
			st, ok := byEnrollment[rec.EnrollmentID]
			if !ok {
				continue
			}
			st.TotalSessions++
			switch rec.Status {
			case attendance.StatusPresent:
				st.PresentCount++
			case attendance.StatusAbsent:
				st.AbsentCount++
			case attendance.StatusLate:
				st.LateCount++
			case attendance.StatusExcused:
				st.ExcusedCount++
			}
		}
	}
	for i := range out {
		if out[i].TotalSessions > 0 {
			out[i].AttendancePercentage = float64(out[i].PresentCount) / float64(out[i].TotalSessions) * 100
		}
	}
	return out, nil
}

func (f *FakeStore) UpdateRecord(_ context.Context, attendanceID string, status attendance.Status, remarks string) (attendance.LogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return attendance.LogEntry{}, f.Err
	}
	e, ok := f.Logs[attendanceID]
	if !ok {
		return attendance.LogEntry{}, fmt.Errorf("attendance record %s: %w", attendanceID, attendance.ErrNotFound)
	}
	e.Status, e.Remarks = status, remarks
	f.Logs[attendanceID] = e
	return e, nil
}

func (f *FakeStore) ClassAttendance(_ context.Context, sectionCourseID string, lf attendance.LogFilter) ([]attendance.LogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	out := []attendance.LogEntry{}
	for _, e := range f.Logs {
		if e.SectionCourseID != sectionCourseID {
			continue
		}
		if lf.Date != "" && e.SessionDate != lf.Date {
			continue
		}
		if lf.Date == "" && !inRange(e.SessionDate, lf.Range) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AttendanceID < out[j].AttendanceID })
	return out, nil
}

func (f *FakeStore) ExportRows(_ context.Context, sectionCourseID string, r attendance.DateRange) ([]attendance.ExportRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	names := make(map[string]attendance.Student)
	for _, st := range f.Rosters[sectionCourseID] {
		names[st.EnrollmentID] = st
	}
	out := []attendance.ExportRow{}
	for id, recs := range f.Records {
		s := f.Sessions[id]
		if s.SectionCourseID != sectionCourseID || !inRange(s.Date, r) {
			continue
		}
		for _, rec := range recs {
			st := names[rec.EnrollmentID]
			out = append(out, attendance.ExportRow{
				StudentName:   st.FullName,
				StudentNumber: st.StudentNumber,
				SessionTitle:  s.Title,
				SessionDate:   s.Date,
				SessionType:   string(s.SessionType),
				MeetingType:   string(s.MeetingType),
				Status:        rec.Status,
				Remarks:       rec.Remarks,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SessionDate != out[j].SessionDate {
			return out[i].SessionDate > out[j].SessionDate
		}
		return out[i].StudentName < out[j].StudentName
	})
	return out, nil
}

func (f *FakeStore) FacultySummary(_ context.Context, facultyID string, _ attendance.DateRange) ([]attendance.CourseSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	return append([]attendance.CourseSummary{}, f.Summaries[facultyID]...), nil
}

// RecordsFor returns a copy of the records stored for a session.
func (f *FakeStore) RecordsFor(sessionID string) []attendance.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]attendance.Record(nil), f.Records[sessionID]...)
}
