package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	ReconcilesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workout_reconciles_total",
			Help: "Workout reconciliations, by outcome",
		},
		[]string{"outcome"},
	)

	PracticeSessionsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "practice_sessions_started_total",
			Help: "Practice sessions started",
		},
	)

	PracticeSessionsClosed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "practice_sessions_closed_total",
			Help: "Practice sessions evaluated and closed",
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(ReconcilesTotal)
	prometheus.MustRegister(PracticeSessionsStarted)
	prometheus.MustRegister(PracticeSessionsClosed)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
