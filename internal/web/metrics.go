package web

import (
	"net/http"
	"time"

	"github.com/bimmerbailey/soudan/internal/prompt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Consultation outcomes recorded in soudan_consultations_total.
const (
	outcomeAnswered      = "answered"
	outcomeEmptyInput    = "empty_input"
	outcomeUpstreamError = "upstream_error"
)

// Metrics holds the Prometheus collectors for the web server.
type Metrics struct {
	registry      *prometheus.Registry
	consultations *prometheus.CounterVec
	duration      *prometheus.HistogramVec
}

// NewMetrics creates collectors on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		consultations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "soudan",
			Name:      "consultations_total",
			Help:      "Consultations by persona and outcome.",
		}, []string{"persona", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "soudan",
			Name:      "consultation_duration_seconds",
			Help:      "Time spent waiting for the language model.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		}, []string{"persona"}),
	}
	reg.MustRegister(m.consultations, m.duration)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observe(p prompt.Persona, outcome string, elapsed time.Duration) {
	label := personaLabel(p)
	m.consultations.WithLabelValues(label, outcome).Inc()
	if outcome != outcomeEmptyInput {
		m.duration.WithLabelValues(label).Observe(elapsed.Seconds())
	}
}

// personaLabel bounds label cardinality: free-form persona values collapse to "other".
func personaLabel(p prompt.Persona) string {
	if p.Known() {
		return string(p)
	}
	return "other"
}
