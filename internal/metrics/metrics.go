// Package metrics exposes Prometheus counters for the booking engine.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics counts booking lifecycle outcomes.  A nil *BookingMetrics
// is valid and records nothing.
type BookingMetrics struct {
	created     prometheus.Counter
	rejected    *prometheus.CounterVec
	itemRemoved prometheus.Counter
	cancelled   prometheus.Counter
	slotQueries prometheus.Counter
}

// NewBookingMetrics registers the booking collectors on reg, or on the
// default registerer when reg is nil.
func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "bookings",
			Name:      "created_total",
			Help:      "Bookings created",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "bookings",
			Name:      "rejected_total",
			Help:      "Booking attempts rejected, by reason",
		}, []string{"reason"}),
		itemRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "bookings",
			Name:      "items_removed_total",
			Help:      "Booking items removed individually",
		}),
		cancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "bookings",
			Name:      "cancelled_total",
			Help:      "Bookings cancelled",
		}),
		slotQueries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "availability",
			Name:      "queries_total",
			Help:      "Free slot computations",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.created, m.rejected, m.itemRemoved, m.cancelled, m.slotQueries)
	return m
}

func (m *BookingMetrics) ObserveCreated() {
	if m == nil {
		return
	}
	m.created.Inc()
}

func (m *BookingMetrics) ObserveRejected(reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(reason).Inc()
}

func (m *BookingMetrics) ObserveItemRemoved() {
	if m == nil {
		return
	}
	m.itemRemoved.Inc()
}

func (m *BookingMetrics) ObserveCancelled() {
	if m == nil {
		return
	}
	m.cancelled.Inc()
}

func (m *BookingMetrics) ObserveSlotQuery() {
	if m == nil {
		return
	}
	m.slotQueries.Inc()
}
