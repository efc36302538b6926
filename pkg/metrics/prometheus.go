package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	runsTotal    *prometheus.CounterVec
	alertsTotal  *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	deliveries   *prometheus.CounterVec
	fetchLatency *prometheus.HistogramVec
	macroScore   prometheus.Gauge
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		runsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketpulse_runs_total",
				Help: "Total number of scan runs",
			},
			[]string{"policy"},
		),
		alertsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketpulse_alerts_total",
				Help: "Total number of alerts produced",
			},
			[]string{"category"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		deliveries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketpulse_deliveries_total",
				Help: "Message deliveries by outcome",
			},
			[]string{"outcome"},
		),
		fetchLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "marketpulse_fetch_duration_seconds",
				Help:    "Duration of provider fetches in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		macroScore: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "marketpulse_macro_score",
				Help: "Macro risk score from the most recent run",
			},
		),
	}
}

// RecordRun counts one scan run under its report policy.
func (r *Recorder) RecordRun(policy string) {
	r.runsTotal.WithLabelValues(policy).Inc()
}

// RecordAlert counts one produced alert by category.
func (r *Recorder) RecordAlert(category string) {
	r.alertsTotal.WithLabelValues(category).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordFetchLatency records provider fetch latency in seconds.
func (r *Recorder) RecordFetchLatency(op string, seconds float64) {
	r.fetchLatency.WithLabelValues(op).Observe(seconds)
}

// RecordMacroScore records the latest macro score.
func (r *Recorder) RecordMacroScore(score float64) {
	r.macroScore.Set(score)
}

// RecordDelivery counts a delivery attempt by outcome.
func (r *Recorder) RecordDelivery(ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	r.deliveries.WithLabelValues(outcome).Inc()
}
