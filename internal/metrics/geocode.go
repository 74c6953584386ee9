package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "restdir"

// Geocoding Prometheus metrics.
var (
	GeocodeRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Total number of geocoding lookups",
		},
		[]string{"result"}, // "ok" / "not_found" / "unavailable"
	)

	GeocodeRequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_request_duration_seconds",
			Help:      "Geocoding lookup duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8},
		},
	)
)

// Geocode result label values.
const (
	GeocodeOK          = "ok"
	GeocodeNotFound    = "not_found"
	GeocodeUnavailable = "unavailable"
)

var geocodeMetricsRegistered bool

// RegisterGeocodeMetrics registers Prometheus geocoding metrics. Must be called once from main.
func RegisterGeocodeMetrics() {
	if geocodeMetricsRegistered {
		return
	}
	prometheus.MustRegister(GeocodeRequestsTotal)
	prometheus.MustRegister(GeocodeRequestDuration)
	geocodeMetricsRegistered = true
}
