// Package metrics exposes scan pipeline counters and latencies to
// Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the scan pipeline. A nil *Metrics
// records nothing.
type Metrics struct {
	// Scan outcomes by extraction method and result
	ScanOutcome *prometheus.CounterVec

	// Rejected requests by reason
	Rejected *prometheus.CounterVec

	// Stage latencies: extraction, forensics, total
	StageLatency *prometheus.HistogramVec

	// Combined authenticity scores
	AuthenticityScore prometheus.Histogram

	// Forensic check results by check and pass/fail
	CheckResult *prometheus.CounterVec
}

// New creates a Metrics instance registered with reg. A nil reg uses the
// default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		ScanOutcome: f.NewCounterVec(prometheus.CounterOpts{
			Name: "docverify_scans_total",
			Help: "Total scans by extraction method and outcome",
		}, []string{"method", "outcome"}), // outcome: "extracted", "not_extracted"

		Rejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "docverify_rejected_requests_total",
			Help: "Requests rejected before scanning, by reason",
		}, []string{"reason"}),

		StageLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "docverify_stage_duration_seconds",
			Help:    "Duration of pipeline stages",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"stage"}),

		AuthenticityScore: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "docverify_authenticity_score",
			Help:    "Distribution of combined authenticity scores",
			Buckets: prometheus.LinearBuckets(10, 10, 9),
		}),

		CheckResult: f.NewCounterVec(prometheus.CounterOpts{
			Name: "docverify_forensic_checks_total",
			Help: "Forensic check results by check name",
		}, []string{"check", "result"}), // result: "pass", "fail"
	}
}

// ObserveScan records a completed scan.
func (m *Metrics) ObserveScan(method string, extracted bool, score int) {
	if m == nil {
		return
	}
	outcome := "not_extracted"
	if extracted {
		outcome = "extracted"
	}
	m.ScanOutcome.WithLabelValues(method, outcome).Inc()
	m.AuthenticityScore.Observe(float64(score))
}

// ObserveStage records the duration of a pipeline stage.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m != nil {
		m.StageLatency.WithLabelValues(stage).Observe(d.Seconds())
	}
}

// ObserveCheck records one forensic check result.
func (m *Metrics) ObserveCheck(name string, passed bool) {
	if m == nil {
		return
	}
	result := "fail"
	if passed {
		result = "pass"
	}
	m.CheckResult.WithLabelValues(name, result).Inc()
}

// IncrementRejected records a request rejected before scanning.
func (m *Metrics) IncrementRejected(reason string) {
	if m != nil {
		m.Rejected.WithLabelValues(reason).Inc()
	}
}
