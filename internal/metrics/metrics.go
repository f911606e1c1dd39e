// Package metrics holds the Prometheus collectors of the assistant.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "vlarm"

	// OutcomeScheduled labels an utterance that produced an alarm.
	OutcomeScheduled = "scheduled"
	// OutcomeUnparsed labels an utterance nothing understood.
	OutcomeUnparsed = "unparsed"
	// OutcomeFailed labels an utterance whose alarm could not be stored.
	OutcomeFailed = "failed"
)

// Metrics exposes the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	utterances      *prometheus.CounterVec
	alarms          prometheus.Gauge
	rings           *prometheus.CounterVec
	speechFallbacks *prometheus.CounterVec
	synthesis       *prometheus.HistogramVec
}

// MustNewMetrics registers the collectors with reg and panics on conflicts.
// A nil reg means the default registerer.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		utterances: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "utterances_total",
				Help:      "Interpreted utterances by matched rule and outcome.",
			},
			[]string{"rule", "outcome"},
		),
		alarms: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "alarms",
				Help:      "Number of alarms in the collection.",
			},
		),
		rings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rings_total",
				Help:      "Alarms rung, by kind.",
			},
			[]string{"kind"},
		),
		speechFallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "speech_fallbacks_total",
				Help:      "Synthesizer failures that moved speech to the next synthesizer.",
			},
			[]string{"synthesizer"},
		),
		synthesis: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "speech_synthesis_duration_seconds",
				Help:      "Time spent synthesizing one utterance.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"synthesizer", "status"},
		),
	}

	reg.MustRegister(m.utterances, m.alarms, m.rings, m.speechFallbacks, m.synthesis)

	return m
}

// ObserveUtterance counts one interpreted utterance.
func (m *Metrics) ObserveUtterance(rule, outcome string) {
	if m == nil {
		return
	}

	m.utterances.WithLabelValues(rule, outcome).Inc()
}

// SetAlarms records the collection size.
func (m *Metrics) SetAlarms(n int) {
	if m == nil {
		return
	}

	m.alarms.Set(float64(n))
}

// ObserveRing counts one rung alarm.
func (m *Metrics) ObserveRing(kind string) {
	if m == nil {
		return
	}

	m.rings.WithLabelValues(kind).Inc()
}

// ObserveSpeechFallback counts a failure of the named synthesizer.
func (m *Metrics) ObserveSpeechFallback(synthesizer string) {
	if m == nil {
		return
	}

	m.speechFallbacks.WithLabelValues(synthesizer).Inc()
}

// ObserveSynthesis records how long the named synthesizer took.
func (m *Metrics) ObserveSynthesis(synthesizer string, d time.Duration, err error) {
	if m == nil {
		return
	}

	status := "ok"
	if err != nil {
		status = "error"
	}

	m.synthesis.WithLabelValues(synthesizer, status).Observe(d.Seconds())
}
