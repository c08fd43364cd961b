package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the check-in module.
type Metrics struct {
	// Check-in outcomes by result
	CheckInOutcome *prometheus.CounterVec

	// Distance between claimed and reference locations, in meters
	Distance prometheus.Histogram

	// Overall check-in latency including persistence
	CheckInLatency prometheus.Histogram
}

// New creates a new Metrics instance with all check-in module metrics registered.
func New() *Metrics {
	return &Metrics{
		CheckInOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "muster_checkin_outcomes_total",
			Help: "Total check-in outcomes by result",
		}, []string{"outcome"}), // outcome: "recorded", "duplicate", "denied", "invalid", "config_error", "error"

		Distance: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "muster_checkin_distance_meters",
			Help:    "Distance between claimed and reference locations",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 10000},
		}),

		CheckInLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "muster_checkin_duration_seconds",
			Help:    "Duration of full check-in handling including persistence",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// IncrementOutcome records a check-in outcome.
func (m *Metrics) IncrementOutcome(outcome string) {
	if m != nil {
		m.CheckInOutcome.WithLabelValues(outcome).Inc()
	}
}

// ObserveDistance records the evaluated geofence distance.
func (m *Metrics) ObserveDistance(meters float64) {
	if m != nil {
		m.Distance.Observe(meters)
	}
}

// ObserveLatency records the total check-in duration.
func (m *Metrics) ObserveLatency(d time.Duration) {
	if m != nil {
		m.CheckInLatency.Observe(d.Seconds())
	}
}
