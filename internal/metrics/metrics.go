package metrics

import (
	"github.com/godilite/qa-scorecard/internal/scorecard"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors exported by the scoring service.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	scorings  *prometheus.CounterVec
	scores    *prometheus.HistogramVec
	templates *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		scorings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scorecard",
			Name:      "scorings_total",
			Help:      "Score reconciliations by role, mode and status.",
		}, []string{"role", "mode", "status"}),
		scores: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "scorecard",
			Name:      "score_percent",
			Help:      "Distribution of assigned quality scores.",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		}, []string{"role", "mode"}),
		templates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scorecard",
			Name:      "template_applications_total",
			Help:      "Template scorecard presets applied, by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(m.scorings, m.scores, m.templates)
	return m
}

// ObserveOutcome records one reconciled score.
func (m *Metrics) ObserveOutcome(role string, out scorecard.Outcome) {
	if m == nil {
		return
	}
	m.scorings.WithLabelValues(role, string(out.Mode), string(out.Status())).Inc()
	if out.Score != nil {
		m.scores.WithLabelValues(role, string(out.Mode)).Observe(float64(*out.Score))
	}
}

// ObserveTemplate records a template application attempt.
func (m *Metrics) ObserveTemplate(result string) {
	if m == nil {
		return
	}
	m.templates.WithLabelValues(result).Inc()
}
