package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MovementMetrics records ledger write outcomes and consistency repairs.
type MovementMetrics struct {
	duration *prometheus.HistogramVec
	total    *prometheus.CounterVec
	repairs  prometheus.Counter
	drift    prometheus.Gauge
}

// NewMovementMetrics registers the movement metrics on the provided registerer.
func NewMovementMetrics(reg prometheus.Registerer) *MovementMetrics {
	if reg == nil {
		return &MovementMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inventory_movement_duration_seconds",
		Help:    "Duration of ledger write operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"type"})
	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_movements_total",
		Help: "Ledger write attempts by movement type and outcome.",
	}, []string{"type", "outcome"})
	repairs := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stock_repairs_total",
		Help: "Cached balances rewritten by consistency verification.",
	})
	drift := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "stock_drift_products",
		Help: "Products whose cached balance disagreed with the ledger at last verification.",
	})
	reg.MustRegister(duration, total, repairs, drift)
	return &MovementMetrics{
		duration: duration,
		total:    total,
		repairs:  repairs,
		drift:    drift,
	}
}

// ObserveDuration records how long a ledger write took.
func (m *MovementMetrics) ObserveDuration(movementType string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(movementType)).Observe(duration.Seconds())
}

// IncMovement counts a ledger write attempt with its outcome.
func (m *MovementMetrics) IncMovement(movementType, outcome string) {
	if m == nil || m.total == nil {
		return
	}
	m.total.WithLabelValues(normalizeLabel(movementType), normalizeLabel(outcome)).Inc()
}

// IncRepair counts a cached balance rewritten during verification.
func (m *MovementMetrics) IncRepair() {
	if m == nil || m.repairs == nil {
		return
	}
	m.repairs.Inc()
}

// SetDrift records how many products were found inconsistent.
func (m *MovementMetrics) SetDrift(count int) {
	if m == nil || m.drift == nil {
		return
	}
	m.drift.Set(float64(count))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
