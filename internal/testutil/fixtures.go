// Package testutil provides fixtures and in-memory fakes shared by package tests.
package testutil

import (
	"fmt"

	"classrecord/internal/attendance"
)

// NewTestStudent returns roster entry n with predictable ids.
func NewTestStudent(n int) attendance.Student {
	return attendance.Student{
		StudentID:     fmt.Sprintf("stu-%d", n),
		EnrollmentID:  fmt.Sprintf("enr-%d", n),
		FullName:      fmt.Sprintf("Student %02d", n),
		StudentNumber: fmt.Sprintf("2024-%04d", n),
	}
}

// NewTestRoster returns n students numbered from 1.
func NewTestRoster(n int) []attendance.Student {
	out := make([]attendance.Student, n)
	for i := range out {
		out[i] = NewTestStudent(i + 1)
	}
	return out
}

// StatsOption customizes a StudentStats fixture.
type StatsOption func(*attendance.StudentStats)

// WithCounts sets the status counts and derives total and percentage.
func WithCounts(present, absent, late, excused int) StatsOption {
	return func(s *attendance.StudentStats) {
		s.PresentCount, s.AbsentCount, s.LateCount, s.ExcusedCount = present, absent, late, excused
		s.TotalSessions = present + absent + late + excused
		if s.TotalSessions > 0 {
			s.AttendancePercentage = float64(present) / float64(s.TotalSessions) * 100
		}
	}
}

// WithPercentage overrides the attendance percentage.
func WithPercentage(p float64) StatsOption {
	return func(s *attendance.StudentStats) { s.AttendancePercentage = p }
}

// NewTestStats returns statistics for student n.
func NewTestStats(n int, opts ...StatsOption) attendance.StudentStats {
	st := NewTestStudent(n)
	s := attendance.StudentStats{StudentID: st.StudentID, FullName: st.FullName, StudentNumber: st.StudentNumber}
	for _, o := range opts {
		o(&s)
	}
	return s
}

// NewTestSessions returns sessions carrying the given attendance counts, in the given order.
func NewTestSessions(counts ...int) []attendance.Session {
	out := make([]attendance.Session, len(counts))
	for i, c := range counts {
		out[i] = attendance.Session{
			ID:              fmt.Sprintf("ses-%d", i+1),
			SectionCourseID: "sec-1",
			Title:           fmt.Sprintf("Session %d", i+1),
			SessionType:     attendance.SessionLecture,
			MeetingType:     attendance.MeetingInPerson,
			AttendanceCount: c,
		}
	}
	return out
}
