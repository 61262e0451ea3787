package metrics

import "github.com/prometheus/client_golang/prometheus"

// CallMetrics exposes counters for the voice assistant call flow.
type CallMetrics struct {
	callsStarted *prometheus.CounterVec
	callsEnded   *prometheus.CounterVec
	turnsTotal   *prometheus.CounterVec
	escalations  *prometheus.CounterVec
	bookings     *prometheus.CounterVec
	modelLatency prometheus.Histogram
}

// NewCallMetrics registers the call flow metrics on reg, falling back to the
// default registerer when reg is nil.
func NewCallMetrics(reg prometheus.Registerer) *CallMetrics {
	m := &CallMetrics{
		callsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "callseva",
			Subsystem: "voice",
			Name:      "calls_started_total",
			Help:      "Total inbound calls answered",
		}, []string{"status"}),
		callsEnded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "callseva",
			Subsystem: "voice",
			Name:      "calls_ended_total",
			Help:      "Total calls ended, by outcome",
		}, []string{"outcome"}),
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "callseva",
			Subsystem: "dialogue",
			Name:      "turns_total",
			Help:      "Total dialogue turns processed, by resulting directive",
		}, []string{"directive"}),
		escalations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "callseva",
			Subsystem: "dialogue",
			Name:      "escalations_total",
			Help:      "Total escalation decisions, by action",
		}, []string{"action"}),
		bookings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "callseva",
			Subsystem: "booking",
			Name:      "bookings_total",
			Help:      "Total booking save attempts, by status",
		}, []string{"status"}),
		modelLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "callseva",
			Subsystem: "dialogue",
			Name:      "model_latency_seconds",
			Help:      "Latency of language model invocations",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.callsStarted, m.callsEnded, m.turnsTotal, m.escalations, m.bookings, m.modelLatency)
	return m
}

func (m *CallMetrics) CallStarted(status string) {
	if m == nil {
		return
	}
	m.callsStarted.WithLabelValues(status).Inc()
}

func (m *CallMetrics) CallEnded(outcome string) {
	if m == nil {
		return
	}
	m.callsEnded.WithLabelValues(outcome).Inc()
}

func (m *CallMetrics) TurnProcessed(directive string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(directive).Inc()
}

func (m *CallMetrics) Escalation(action string) {
	if m == nil {
		return
	}
	m.escalations.WithLabelValues(action).Inc()
}

func (m *CallMetrics) BookingSaved(status string) {
	if m == nil {
		return
	}
	m.bookings.WithLabelValues(status).Inc()
}

func (m *CallMetrics) ObserveModelLatency(seconds float64) {
	if m == nil {
		return
	}
	m.modelLatency.Observe(seconds)
}
