// Package worker handles attendance events published by the API.
package worker

import (
	"context"
	"log"

	"classrecord/internal/analytics"
	"classrecord/internal/attendance"
	"classrecord/internal/metrics"
	"classrecord/internal/queue"
)

// Refresher recomputes a section's statistics into the shared cache.
type Refresher interface {
	RefreshStats(ctx context.Context, sectionCourseID string) ([]attendance.StudentStats, error)
}

// Worker refreshes statistics after every attendance change and logs the
// students of the section that fall under Threshold.
type Worker struct {
	stats     Refresher
	Threshold float64
	// Alert is called for each student under the threshold. Defaults to logging.
	Alert func(sectionCourseID string, st attendance.StudentStats)
}

// New creates a worker reporting students under threshold percent.
func New(stats Refresher, threshold float64) *Worker {
	if threshold <= 0 {
		threshold = analytics.LowAttendanceThreshold
	}
	return &Worker{stats: stats, Threshold: threshold, Alert: logAlert}
}

func logAlert(sectionCourseID string, st attendance.StudentStats) {
	log.Printf("low attendance in %s: %s (%s) at %.2f%%", sectionCourseID, st.FullName, st.StudentNumber, st.AttendancePercentage)
}

// Run handles messages until the channel closes or ctx is done.
func (w *Worker) Run(ctx context.Context, messages <-chan queue.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			if err := w.Handle(ctx, msg); err != nil {
				log.Printf("handle %s for %s failed: %v", msg.Type, msg.SectionCourseID, err)
			}
		}
	}
}

// Handle processes one message. Unknown message types are skipped.
func (w *Worker) Handle(ctx context.Context, msg queue.Message) error {
	switch msg.Type {
	case queue.TypeAttendanceMarked, queue.TypeSessionDeleted:
	default:
		metrics.WorkerEvents.WithLabelValues(msg.Type, "skipped").Inc()
		return nil
	}
	stats, err := w.stats.RefreshStats(ctx, msg.SectionCourseID)
	if err != nil {
		metrics.WorkerEvents.WithLabelValues(msg.Type, "failed").Inc()
		return err
	}
	for _, st := range analytics.LowAttendance(stats, w.Threshold, 0) {
		w.Alert(msg.SectionCourseID, st)
	}
	metrics.WorkerEvents.WithLabelValues(msg.Type, "processed").Inc()
	return nil
}
