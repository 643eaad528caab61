package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PaymentsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kova_payments_recorded_total",
			Help: "Milestone payments recorded, by resulting milestone status",
		},
		[]string{"status"},
	)

	PaymentsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kova_payments_rejected_total",
			Help: "Milestone payments rejected before any write",
		},
		[]string{"reason"}, // forbidden, validation, overshoot, cancelled
	)

	ShareLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kova_share_lookups_total",
			Help: "Public share token lookups",
		},
		[]string{"result"}, // found, not_found, malformed, limited
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kova_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "route", "status"},
	)

	SlowQueries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kova_db_slow_queries_total",
			Help: "Database queries slower than the configured threshold",
		},
	)
)

func RecordPayment(status string) {
	PaymentsRecorded.WithLabelValues(status).Inc()
}

func RejectPayment(reason string) {
	PaymentsRejected.WithLabelValues(reason).Inc()
}

func RecordShareLookup(result string) {
	ShareLookups.WithLabelValues(result).Inc()
}

func RecordHTTPRequest(method, route, status string, d time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
}

func IncrementSlowQuery() {
	SlowQueries.Inc()
}
