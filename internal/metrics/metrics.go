package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// PortalMetrics exposes counters/histograms for backend calls and bookings.
type PortalMetrics struct {
	upstreamTotal   *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
	bookingTotal    *prometheus.CounterVec
	activeStores    prometheus.Gauge
}

func NewPortalMetrics(reg prometheus.Registerer) *PortalMetrics {
	m := &PortalMetrics{
		upstreamTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hospital",
			Subsystem: "portal",
			Name:      "upstream_requests_total",
			Help:      "Total requests sent to the REST backend",
		}, []string{"method", "status"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hospital",
			Subsystem: "portal",
			Name:      "upstream_latency_seconds",
			Help:      "Latency of REST backend requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		bookingTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hospital",
			Subsystem: "portal",
			Name:      "booking_attempts_total",
			Help:      "Appointment booking attempts by outcome",
		}, []string{"outcome"}),
		activeStores: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hospital",
			Subsystem: "portal",
			Name:      "active_stores",
			Help:      "Session state containers currently held in memory",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.upstreamTotal, m.upstreamLatency, m.bookingTotal, m.activeStores)
	return m
}

// ObserveUpstream records one backend round trip. status 0 means no response.
func (m *PortalMetrics) ObserveUpstream(method string, status int, seconds float64) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.upstreamTotal.WithLabelValues(method, label).Inc()
	m.upstreamLatency.WithLabelValues(method).Observe(seconds)
}

func (m *PortalMetrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookingTotal.WithLabelValues(outcome).Inc()
}

func (m *PortalMetrics) SetActiveStores(n int) {
	if m == nil {
		return
	}
	m.activeStores.Set(float64(n))
}
