package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dshills/poaudit/internal/schema"
)

// Metrics provides observability for audit runs and context loading.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Audits by risk and recommendation
	Audits *prometheus.CounterVec

	// Anomalies by id and severity
	Anomalies *prometheus.CounterVec

	AuditLatency prometheus.Histogram

	// Context loading latencies by source
	ContextLatency *prometheus.HistogramVec
}

// New creates a Metrics instance registered on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Audits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "poaudit_audits_total",
			Help: "Total audits by risk and recommendation",
		}, []string{"risk", "recommendation"}),

		Anomalies: f.NewCounterVec(prometheus.CounterOpts{
			Name: "poaudit_anomalies_total",
			Help: "Total anomalies reported by anomaly id and severity",
		}, []string{"id", "severity"}),

		AuditLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "poaudit_audit_duration_seconds",
			Help:    "Duration of the audit pipeline, excluding context loading",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),

		ContextLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "poaudit_context_load_duration_seconds",
			Help:    "Duration of policy context loading by source",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"source"}), // source: "file", "postgres", "redis"
	}
}

// ObserveReport records the outcome of one audit and its duration.
func (m *Metrics) ObserveReport(r *schema.Report, d time.Duration) {
	if m == nil || r == nil {
		return
	}
	m.Audits.WithLabelValues(string(r.Risk), string(r.Recommendation)).Inc()
	for _, a := range r.Anomalies {
		m.Anomalies.WithLabelValues(a.ID, string(a.Severity)).Inc()
	}
	m.AuditLatency.Observe(d.Seconds())
}

// ObserveContextLatency records the duration of loading a context from a source.
func (m *Metrics) ObserveContextLatency(source string, d time.Duration) {
	if m != nil {
		m.ContextLatency.WithLabelValues(source).Observe(d.Seconds())
	}
}
