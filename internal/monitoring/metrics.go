package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reservationOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reservation_operations_total",
			Help: "Reservation operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method and status",
		},
		[]string{"method", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

// Reservation outcomes recorded by the reservation engine.
const (
	OutcomeAccepted         = "accepted"
	OutcomeNotFound         = "not_found"
	OutcomeAlreadyAttending = "already_attending"
	OutcomeFull             = "full"
	OutcomeNotAttending     = "not_attending"
	OutcomeUnknown          = "unknown"
	OutcomeError            = "error"
)

// ObserveReservation records one join/leave attempt and its outcome.
func ObserveReservation(operation, outcome string) {
	reservationOps.WithLabelValues(operation, outcome).Inc()
}

// ObserveHTTPRequest records one served request.
func ObserveHTTPRequest(method string, status int, duration time.Duration) {
	httpRequests.WithLabelValues(method, statusLabel(status)).Inc()
	httpDuration.WithLabelValues(method).Observe(duration.Seconds())
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
