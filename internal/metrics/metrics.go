package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestTotal counts HTTP requests by method, route and status.
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cursorapi_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	// RequestDuration is the latency of HTTP requests.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cursorapi_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	// RoundTripsTotal counts backend round trips of the pagination protocol.
	RoundTripsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cursorapi_backend_round_trips_total",
			Help: "Total number of backend round trips",
		},
		[]string{"resource", "stage", "status"},
	)
	RoundTripDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cursorapi_backend_round_trip_duration_seconds",
			Help:    "Backend round trip latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"resource", "stage"},
	)
	// RateLimited counts requests rejected by the per-client limiter.
	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cursorapi_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)
)

// ObserveRoundTrip records one backend round trip.
func ObserveRoundTrip(resource, stage string, started time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	RoundTripsTotal.WithLabelValues(resource, stage, status).Inc()
	RoundTripDuration.WithLabelValues(resource, stage).Observe(time.Since(started).Seconds())
}
