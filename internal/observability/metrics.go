// Package observability holds the process-wide Prometheus collectors and the gin
// middleware that feeds the HTTP histogram.
package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "gym_nexus"

var (
	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route, method and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method", "status"})

	checkIns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "access",
		Name:      "checkins_total",
		Help:      "Check-in scans by resulting action (checkin, checkout, denied) and deny reason.",
	}, []string{"action", "reason"})

	membershipTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "membership",
		Name:      "transitions_total",
		Help:      "Membership status changes by kind.",
	}, []string{"kind"})

	remindersSent = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "membership",
		Name:      "expiry_reminders_total",
		Help:      "Expiring-soon reminders delivered to members.",
	})
)

func init() {
	prometheus.MustRegister(httpDuration, checkIns, membershipTransitions, remindersSent)
}

// RecordCheckIn counts one scan outcome.
func RecordCheckIn(action, reason string) {
	checkIns.WithLabelValues(action, reason).Inc()
}

// RecordMembershipTransition counts a status change such as "suspended" or "expired".
func RecordMembershipTransition(kind string) {
	membershipTransitions.WithLabelValues(kind).Inc()
}

func RecordReminderSent() {
	remindersSent.Inc()
}

// GinMiddleware observes request latency labelled with the matched route template.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpDuration.
			WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
