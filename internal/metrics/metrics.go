package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label value constants to prevent typos
const (
	ResultCompleted = "completed"
	ResultMissed    = "missed"

	ReasonPolicyViolation = "policy_violation"
	ReasonValidation      = "validation"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"route", "status_code"},
	)
)

// Business Metrics
var (
	AssignmentsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assignments_created_total",
			Help: "Total number of program assignments created",
		},
		[]string{"assignment_type"},
	)

	ReassignmentsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reassignments_total",
			Help: "Total number of destructive schedule reassignments",
		},
	)

	ScheduleEditsBlockedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schedule_edits_blocked_total",
			Help: "Total number of schedule edits blocked before persistence",
		},
		[]string{"reason"},
	)

	CompletionsRecordedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "completions_recorded_total",
			Help: "Total number of workout completions recorded",
		},
		[]string{"result"},
	)

	SweepClosedAssignmentsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sweep_closed_assignments_total",
			Help: "Total number of assignments closed by the daily sweep",
		},
	)
)

// Middleware records request totals and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		HTTPRequestsTotal.WithLabelValues(route, status).Inc()
		HTTPRequestDuration.WithLabelValues(route, status).Observe(time.Since(start).Seconds())
	}
}
