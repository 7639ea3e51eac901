package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"classrecord/internal/testutil"
)

func TestClassifyTrend(t *testing.T) {
	tests := []struct {
		name   string
		counts []int
		want   Trend
	}{
		{"improving", []int{10, 10, 10, 4, 4, 4}, TrendImproving},
		{"declining", []int{4, 4, 4, 10, 10, 10}, TrendDeclining},
		{"flat", []int{5, 5, 5, 5, 5, 5}, TrendStable},
		{"three sessions have no older window", []int{9, 1, 1}, TrendStable},
		{"single session", []int{7}, TrendStable},
		{"no sessions", nil, TrendStable},
		{"four sessions compare against one", []int{10, 10, 10, 2}, TrendImproving},
		{"within ten percent", []int{105, 105, 105, 100, 100, 100}, TrendStable},
		{"only six most recent count", []int{10, 10, 10, 10, 10, 10, 0, 0}, TrendStable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyCounts(tt.counts))
			assert.Equal(t, tt.want, ClassifyTrend(testutil.NewTestSessions(tt.counts...)))
		})
	}
}

func TestClassifyCounts_OlderAverageOfZero(t *testing.T) {
	assert.Equal(t, TrendImproving, ClassifyCounts([]int{3, 3, 3, 0, 0, 0}))
	assert.Equal(t, TrendStable, ClassifyCounts([]int{0, 0, 0, 0, 0, 0}))
}
