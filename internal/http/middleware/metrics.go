package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trialdesk_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trialdesk_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trialdesk_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	signupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trialdesk_signups_total",
			Help: "Total number of signup requests by account type",
		},
		[]string{"account_type", "outcome"},
	)

	assignmentsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trialdesk_assignments_total",
			Help: "Total number of trial request assignments",
		},
	)

	demoRegenerationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trialdesk_demo_regenerations_total",
			Help: "Total number of demo credential regenerations",
		},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
	})
}

func RecordSignup(accountType, outcome string) {
	signupsTotal.WithLabelValues(accountType, outcome).Inc()
}

func RecordAssignment() {
	assignmentsTotal.Inc()
}

func RecordDemoRegeneration() {
	demoRegenerationsTotal.Inc()
}
