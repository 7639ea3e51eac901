package analytics

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"classrecord/internal/attendance"
)

// Source is the part of the attendance API the analytics view reads.
type Source interface {
	Stats(ctx context.Context, sectionCourseID string, r attendance.DateRange) ([]attendance.StudentStats, error)
	ListSessions(ctx context.Context, sectionCourseID string, r attendance.DateRange) ([]attendance.Session, error)
}

// Report is the analytics view of one section.
type Report struct {
	SectionCourseID string                    `json:"section_course_id"`
	Overall         Overall                   `json:"overall"`
	HasData         bool                      `json:"has_data"`
	Trend           Trend                     `json:"trend"`
	LowAttendance   []attendance.StudentStats `json:"low_attendance"`
	Students        []attendance.StudentStats `json:"students"`
	Sessions        []attendance.Session      `json:"sessions"`
}

// Build derives a report from already loaded statistics and sessions.
func Build(sectionCourseID string, stats []attendance.StudentStats, sessions []attendance.Session) Report {
	overall, ok := Summarize(stats, sessions)
	return Report{
		SectionCourseID: sectionCourseID,
		Overall:         overall,
		HasData:         ok,
		Trend:           ClassifyTrend(sessions),
		LowAttendance:   LowAttendance(stats, LowAttendanceThreshold, LowAttendanceLimit),
		Students:        stats,
		Sessions:        sessions,
	}
}

// Load fetches statistics and sessions concurrently and builds the report.
func Load(ctx context.Context, src Source, sectionCourseID string, r attendance.DateRange) (Report, error) {
	var (
		stats    []attendance.StudentStats
		sessions []attendance.Session
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = src.Stats(gctx, sectionCourseID, r)
		return err
	})
	g.Go(func() error {
		var err error
		sessions, err = src.ListSessions(gctx, sectionCourseID, r)
		return err
	})
	if err := g.Wait(); err != nil {
		return Report{}, fmt.Errorf("load attendance analytics: %w", err)
	}
	return Build(sectionCourseID, stats, sessions), nil
}
