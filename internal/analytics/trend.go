package analytics

import "classrecord/internal/attendance"

// Trend labels how attendance moved between recent and earlier sessions.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

const (
	// TrendWindow is the number of sessions in each compared slice.
	TrendWindow = 3
	// MinTrendSessions is the fewest sessions for which a trend is computed.
	MinTrendSessions = 2
	// ImprovingFactor: recent average above older average times this is improving.
	ImprovingFactor = 1.1
	// DecliningFactor: recent average below older average times this is declining.
	DecliningFactor = 0.9
)

// ClassifyTrend compares the attendance counts of the latest TrendWindow
// sessions with the TrendWindow before them. sessions must be ordered most
// recent first.
func ClassifyTrend(sessions []attendance.Session) Trend {
	counts := make([]int, len(sessions))
	for i, s := range sessions {
		counts[i] = s.AttendanceCount
	}
	return ClassifyCounts(counts)
}

// ClassifyCounts is ClassifyTrend over bare attendance counts, most recent first.
func ClassifyCounts(counts []int) Trend {
	if len(counts) < MinTrendSessions {
		return TrendStable
	}
	recent := window(counts, 0)
	older := window(counts, TrendWindow)
	if len(older) == 0 {
		return TrendStable
	}
	recentAvg, olderAvg := mean(recent), mean(older)
	switch {
	case recentAvg > olderAvg*ImprovingFactor:
		return TrendImproving
	case recentAvg < olderAvg*DecliningFactor:
		return TrendDeclining
	}
	return TrendStable
}

func window(counts []int, from int) []int {
	if from >= len(counts) {
		return nil
	}
	to := from + TrendWindow
	if to > len(counts) {
		to = len(counts)
	}
	return counts[from:to]
}

func mean(xs []int) float64 {
	sum := 0
	for _, x := range xs {
		sum += x
	}
	return float64(sum) / float64(len(xs))
}
