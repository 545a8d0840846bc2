package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	issuesReportedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "issues_reported_total",
			Help: "Total number of item issues reported to customers",
		},
		[]string{"type"},
	)

	responsesProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "responses_processed_total",
			Help: "Total number of customer responses processed",
		},
		[]string{"action"},
	)

	agentNotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_notifications_total",
			Help: "Total number of AI agent webhook notifications",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(issuesReportedTotal)
	prometheus.MustRegister(responsesProcessedTotal)
	prometheus.MustRegister(agentNotificationsTotal)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()

		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

func RecordIssueReported(issueType string) {
	issuesReportedTotal.WithLabelValues(issueType).Inc()
}

func RecordResponseProcessed(action string) {
	responsesProcessedTotal.WithLabelValues(action).Inc()
}

func RecordAgentNotification(status string) {
	agentNotificationsTotal.WithLabelValues(status).Inc()
}
