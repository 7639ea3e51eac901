// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "classrecord",
		Name:      "sessions_created_total",
		Help:      "Attendance sessions created, by session type.",
	}, []string{"session_type"})

	RecordsMarked = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "classrecord",
		Name:      "attendance_records_marked_total",
		Help:      "Attendance records written, by status.",
	}, []string{"status"})

	StatsCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "classrecord",
		Name:      "stats_cache_lookups_total",
		Help:      "Stats cache lookups, by result.",
	}, []string{"result"})

	WorkerEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "classrecord",
		Name:      "worker_events_total",
		Help:      "Queue events handled by the worker, by type and outcome.",
	}, []string{"type", "outcome"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "classrecord",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and status code.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "code"})
)

// GinMiddleware observes request latency per matched route.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		RequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
