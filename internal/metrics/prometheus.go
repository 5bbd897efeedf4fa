// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yarsdash_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "code"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "yarsdash_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"route"},
	)

	// Snapshot metrics
	SnapshotLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yarsdash_snapshot_loads_total",
			Help: "Total number of snapshot loads",
		},
		[]string{"status"}, // status: success|not_found|error
	)

	SnapshotIssues = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "yarsdash_snapshot_validation_issues_total",
			Help: "Total number of non-fatal snapshot validation issues",
		},
	)

	SnapshotAge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "yarsdash_snapshot_age_seconds",
			Help: "Age of the last loaded snapshot, from its scraped_at",
		},
	)

	// Action metrics
	ActionCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yarsdash_action_calls_total",
			Help: "Total number of proxy actions",
		},
		[]string{"action", "status"}, // status: success|error|throttled
	)

	ActionLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "yarsdash_action_latency_seconds",
			Help:    "Proxy action latency in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"action"},
	)
)

var initOnce sync.Once

// Init registers all metrics with Prometheus. It is safe to call more than
// once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(HTTPRequests)
		prometheus.MustRegister(HTTPDuration)

		prometheus.MustRegister(SnapshotLoads)
		prometheus.MustRegister(SnapshotIssues)
		prometheus.MustRegister(SnapshotAge)

		prometheus.MustRegister(ActionCalls)
		prometheus.MustRegister(ActionLatency)
	})
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records a served request
func RecordHTTPRequest(route, method string, code int, duration time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	HTTPDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordSnapshotLoad records a snapshot load outcome
func RecordSnapshotLoad(status string, issues int, scrapedAt time.Time) {
	SnapshotLoads.WithLabelValues(status).Inc()
	if issues > 0 {
		SnapshotIssues.Add(float64(issues))
	}
	if !scrapedAt.IsZero() {
		SnapshotAge.Set(time.Since(scrapedAt).Seconds())
	}
}

// RecordAction records a proxy action
func RecordAction(action string, latency time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	ActionCalls.WithLabelValues(action, status).Inc()
	ActionLatency.WithLabelValues(action).Observe(latency.Seconds())
}

// RecordThrottled records a proxy action rejected by the rate limiter
func RecordThrottled(action string) {
	ActionCalls.WithLabelValues(action, "throttled").Inc()
}
