package attendance

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"classrecord/internal/metrics"
	"classrecord/internal/queue"
)

// Store persists sessions, rosters and attendance logs.
type Store interface {
	ListSessions(ctx context.Context, sectionCourseID string, r DateRange) ([]Session, error)
	GetSession(ctx context.Context, sessionID string) (Session, error)
	CreateSession(ctx context.Context, s Session) (Session, error)
	DeleteSession(ctx context.Context, sessionID string) error
	ReplaceRecords(ctx context.Context, s Session, records []Record) error
	ListStudents(ctx context.Context, sectionCourseID string) ([]Student, error)
	StudentStats(ctx context.Context, sectionCourseID string, r DateRange) ([]StudentStats, error)
	UpdateRecord(ctx context.Context, attendanceID string, status Status, remarks string) (LogEntry, error)
	ClassAttendance(ctx context.Context, sectionCourseID string, f LogFilter) ([]LogEntry, error)
	ExportRows(ctx context.Context, sectionCourseID string, r DateRange) ([]ExportRow, error)
	FacultySummary(ctx context.Context, facultyID string, r DateRange) ([]CourseSummary, error)
}

// StatsCache keeps per-student statistics keyed by section and date range.
// Every Invalidate bumps the section's version; Set stores only when the
// version it was given is still current and returns ErrStaleStats otherwise.
type StatsCache interface {
	Get(ctx context.Context, sectionCourseID, rangeKey string) ([]StudentStats, bool, error)
	Version(ctx context.Context, sectionCourseID string) (int64, error)
	Set(ctx context.Context, sectionCourseID, rangeKey string, version int64, stats []StudentStats) error
	Invalidate(ctx context.Context, sectionCourseID string) error
}

// ErrStaleStats is returned by StatsCache.Set when the section was
// invalidated after the statistics were read.
var ErrStaleStats = errors.New("stats cache: section changed since read")

// Publisher announces attendance changes to background workers.
type Publisher interface {
	Publish(ctx context.Context, msg queue.Message) error
}

// Service applies attendance rules on top of a Store.
type Service struct {
	store  Store
	cache  StatsCache
	events Publisher
	now    func() time.Time
}

// NewService creates a service. cache and events may be nil.
func NewService(store Store, cache StatsCache, events Publisher) *Service {
	return &Service{store: store, cache: cache, events: events, now: time.Now}
}

// ListSessions returns a section's sessions, newest first.
func (s *Service) ListSessions(ctx context.Context, sectionCourseID string, r DateRange) ([]Session, error) {
	if strings.TrimSpace(sectionCourseID) == "" {
		return nil, Invalid("section_course_id is required")
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return s.store.ListSessions(ctx, sectionCourseID, r)
}

// CreateSession validates and stores a new session.
func (s *Service) CreateSession(ctx context.Context, ns NewSession) (Session, error) {
	if ns.SectionCourseID == "" || ns.Date == "" || strings.TrimSpace(ns.Title) == "" {
		return Session{}, Invalid("section_course_id, session_date, and title are required")
	}
	if _, err := time.Parse(DateLayout, ns.Date); err != nil {
		return Session{}, Invalid("invalid session_date %q, expected YYYY-MM-DD", ns.Date)
	}
	if ns.SessionType == "" {
		ns.SessionType = SessionLecture
	}
	if ns.MeetingType == "" {
		ns.MeetingType = MeetingInPerson
	}
	switch ns.SessionType {
	case SessionLecture, SessionLaboratory, SessionTutorial, SessionExam:
	default:
		return Session{}, Invalid("invalid session_type %q", ns.SessionType)
	}
	switch ns.MeetingType {
	case MeetingInPerson, MeetingOnline, MeetingHybrid:
	default:
		return Session{}, Invalid("invalid meeting_type %q", ns.MeetingType)
	}

	created, err := s.store.CreateSession(ctx, Session{
		ID:              uuid.NewString(),
		SectionCourseID: ns.SectionCourseID,
		Date:            ns.Date,
		Title:           strings.TrimSpace(ns.Title),
		Description:     ns.Description,
		SessionType:     ns.SessionType,
		MeetingType:     ns.MeetingType,
		StartTime:       ns.StartTime,
		EndTime:         ns.EndTime,
	})
	if err != nil {
		return Session{}, fmt.Errorf("create session: %w", err)
	}
	metrics.SessionsCreated.WithLabelValues(string(created.SessionType)).Inc()
	return created, nil
}

// DeleteSession removes a session together with its records.
func (s *Service) DeleteSession(ctx context.Context, sessionID string) error {
	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteSession(ctx, sessionID); err != nil {
		return err
	}
	s.changed(ctx, queue.TypeSessionDeleted, sess.SectionCourseID, sessionID)
	return nil
}

// Mark replaces all records of a session with the given ones.
func (s *Service) Mark(ctx context.Context, sessionID string, records []Record) error {
	if sessionID == "" || records == nil {
		return Invalid("session_id and attendance_records array are required")
	}
	for _, rec := range records {
		if rec.EnrollmentID == "" {
			return Invalid("enrollment_id is required for every attendance record")
		}
		if !rec.Status.Valid() {
			return Invalid("invalid status %q for enrollment %s", rec.Status, rec.EnrollmentID)
		}
	}
	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := s.store.ReplaceRecords(ctx, sess, records); err != nil {
		return fmt.Errorf("mark attendance: %w", err)
	}
	for _, rec := range records {
		metrics.RecordsMarked.WithLabelValues(string(rec.Status)).Inc()
	}
	s.changed(ctx, queue.TypeAttendanceMarked, sess.SectionCourseID, sessionID)
	return nil
}

// ListStudents returns the section's roster ordered by name.
func (s *Service) ListStudents(ctx context.Context, sectionCourseID string) ([]Student, error) {
	if strings.TrimSpace(sectionCourseID) == "" {
		return nil, Invalid("section_course_id is required")
	}
	return s.store.ListStudents(ctx, sectionCourseID)
}

// Stats returns per-student statistics, served from the cache when possible.
func (s *Service) Stats(ctx context.Context, sectionCourseID string, r DateRange) ([]StudentStats, error) {
	if strings.TrimSpace(sectionCourseID) == "" {
		return nil, Invalid("section_course_id is required")
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if s.cache != nil {
		stats, ok, err := s.cache.Get(ctx, sectionCourseID, r.Key())
		switch {
		case err != nil:
			log.Printf("stats cache get %s: %v", sectionCourseID, err)
		case ok:
			metrics.StatsCache.WithLabelValues("hit").Inc()
			return stats, nil
		}
		metrics.StatsCache.WithLabelValues("miss").Inc()
	}
	return s.loadStats(ctx, sectionCourseID, r)
}

// RefreshStats recomputes the unbounded statistics of a section into the cache.
func (s *Service) RefreshStats(ctx context.Context, sectionCourseID string) ([]StudentStats, error) {
	return s.loadStats(ctx, sectionCourseID, DateRange{})
}

// loadStats reads the store and caches the result unless the section was
// invalidated while the read was in flight.
func (s *Service) loadStats(ctx context.Context, sectionCourseID string, r DateRange) ([]StudentStats, error) {
	cached := s.cache != nil
	var version int64
	if cached {
		v, err := s.cache.Version(ctx, sectionCourseID)
		if err != nil {
			log.Printf("stats cache version %s: %v", sectionCourseID, err)
			cached = false
		}
		version = v
	}
	stats, err := s.store.StudentStats(ctx, sectionCourseID, r)
	if err != nil {
		return nil, err
	}
	if cached {
		err := s.cache.Set(ctx, sectionCourseID, r.Key(), version, stats)
		switch {
		case errors.Is(err, ErrStaleStats):
			metrics.StatsCache.WithLabelValues("stale").Inc()
		case err != nil:
			log.Printf("stats cache set %s: %v", sectionCourseID, err)
		}
	}
	return stats, nil
}

// UpdateRecord changes the status and remarks of one stored record.
func (s *Service) UpdateRecord(ctx context.Context, attendanceID string, status Status, remarks string) (LogEntry, error) {
	if attendanceID == "" {
		return LogEntry{}, Invalid("attendance_id is required")
	}
	if !status.Valid() {
		return LogEntry{}, Invalid("invalid status %q", status)
	}
	entry, err := s.store.UpdateRecord(ctx, attendanceID, status, remarks)
	if err != nil {
		return LogEntry{}, err
	}
	s.changed(ctx, queue.TypeAttendanceMarked, entry.SectionCourseID, entry.SessionID)
	return entry, nil
}

// ClassAttendance lists stored records of a section.
func (s *Service) ClassAttendance(ctx context.Context, sectionCourseID string, f LogFilter) ([]LogEntry, error) {
	if strings.TrimSpace(sectionCourseID) == "" {
		return nil, Invalid("section_course_id is required")
	}
	if err := (DateRange{Start: f.Date}).Validate(); err != nil {
		return nil, err
	}
	if err := f.Range.Validate(); err != nil {
		return nil, err
	}
	return s.store.ClassAttendance(ctx, sectionCourseID, f)
}

// Export returns the rows of an attendance export.
func (s *Service) Export(ctx context.Context, sectionCourseID string, r DateRange) ([]ExportRow, error) {
	if strings.TrimSpace(sectionCourseID) == "" {
		return nil, Invalid("section_course_id is required")
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return s.store.ExportRows(ctx, sectionCourseID, r)
}

// Summary returns per-course totals for the sections a faculty member teaches.
func (s *Service) Summary(ctx context.Context, facultyID string, r DateRange) ([]CourseSummary, error) {
	if strings.TrimSpace(facultyID) == "" {
		return nil, Invalid("faculty_id is required")
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return s.store.FacultySummary(ctx, facultyID, r)
}

// Now returns the service clock.
func (s *Service) Now() time.Time { return s.now() }

// changed drops cached stats for the section and notifies workers. Failures are logged only.
func (s *Service) changed(ctx context.Context, typ, sectionCourseID, sessionID string) {
	if sectionCourseID == "" {
		return
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, sectionCourseID); err != nil {
			log.Printf("stats cache invalidate %s: %v", sectionCourseID, err)
		}
	}
	if s.events != nil {
		msg := queue.Message{Type: typ, SectionCourseID: sectionCourseID, SessionID: sessionID, At: s.now().UTC()}
		if err := s.events.Publish(ctx, msg); err != nil {
			log.Printf("queue publish failed: %v", err)
		}
	}
}
