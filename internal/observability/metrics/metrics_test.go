package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCallMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCallMetrics(reg)

	m.CallStarted("ok")
	m.TurnProcessed("speak")
	m.TurnProcessed("speak")
	m.Escalation("transfer")
	m.BookingSaved("ok")
	m.CallEnded("completed")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.callsStarted.WithLabelValues("ok")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.turnsTotal.WithLabelValues("speak")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.escalations.WithLabelValues("transfer")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.bookings.WithLabelValues("ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.callsEnded.WithLabelValues("completed")))
}

func TestNilMetricsSafe(t *testing.T) {
	var m *CallMetrics
	assert.NotPanics(t, func() {
		m.CallStarted("ok")
		m.CallEnded("completed")
		m.TurnProcessed("speak")
		m.Escalation("decline")
		m.BookingSaved("error")
		m.ObserveModelLatency(0.1)
	})
}
