package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestBookingMetricsCustomRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)

	m.ObserveCreated()
	m.ObserveCreated()
	m.ObserveRejected("duplicate")
	m.ObserveItemRemoved()
	m.ObserveCancelled()
	m.ObserveSlotQuery()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.created))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejected.WithLabelValues("duplicate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cancelled))
}

func TestBookingMetricsNilSafe(t *testing.T) {
	var m *BookingMetrics
	m.ObserveCreated()
	m.ObserveRejected("identity")
	m.ObserveItemRemoved()
	m.ObserveCancelled()
	m.ObserveSlotQuery()
}
