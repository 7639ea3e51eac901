// Package analytics derives class-level figures from per-student statistics
// and session history.
package analytics

import (
	"sort"
	"strings"

	"classrecord/internal/attendance"
)

// Overall sums per-student statistics for a section.
type Overall struct {
	TotalStudents  int     `json:"total_students"`
	TotalSessions  int     `json:"total_sessions"`
	TotalRecords   int     `json:"total_records"`
	TotalPresent   int     `json:"total_present"`
	TotalAbsent    int     `json:"total_absent"`
	TotalLate      int     `json:"total_late"`
	TotalExcused   int     `json:"total_excused"`
	AttendanceRate float64 `json:"overall_attendance_rate"`
}

// Summarize totals the statistics. It reports false when there are no students.
func Summarize(stats []attendance.StudentStats, sessions []attendance.Session) (Overall, bool) {
	if len(stats) == 0 {
		return Overall{}, false
	}
	o := Overall{TotalStudents: len(stats), TotalSessions: len(sessions)}
	for _, st := range stats {
		o.TotalRecords += st.TotalSessions
		o.TotalPresent += st.PresentCount
		o.TotalAbsent += st.AbsentCount
		o.TotalLate += st.LateCount
		o.TotalExcused += st.ExcusedCount
	}
	o.AttendanceRate = AttendanceRate(o.TotalPresent, o.TotalRecords)
	return o, true
}

// AttendanceRate is present over records as a percentage, 0 when there are no records.
func AttendanceRate(present, records int) float64 {
	if records == 0 {
		return 0
	}
	return float64(present) / float64(records) * 100
}

const (
	// LowAttendanceThreshold is the percentage under which a student is flagged.
	LowAttendanceThreshold = 75.0
	// LowAttendanceLimit caps the flagged list.
	LowAttendanceLimit = 5
)

// LowAttendance returns up to limit students under threshold percent, lowest first.
// A limit of zero or less returns every flagged student.
func LowAttendance(stats []attendance.StudentStats, threshold float64, limit int) []attendance.StudentStats {
	var out []attendance.StudentStats
	for _, st := range stats {
		if st.AttendancePercentage < threshold {
			out = append(out, st)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AttendancePercentage < out[j].AttendancePercentage
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// SearchSessions filters sessions whose title or session type contains query, case-insensitively.
func SearchSessions(sessions []attendance.Session, query string) []attendance.Session {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return sessions
	}
	var out []attendance.Session
	for _, s := range sessions {
		if strings.Contains(strings.ToLower(s.Title), q) || strings.Contains(strings.ToLower(string(s.SessionType)), q) {
			out = append(out, s)
		}
	}
	return out
}
