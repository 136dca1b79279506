package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the application's Prometheus collectors.
type Metrics struct {
	// Total HTTP requests (method, path, status_code)
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency (method, path)
	HTTPRequestDuration *prometheus.HistogramVec

	// Booking attempts by outcome (status: success, conflict, locator_exhausted, error)
	BookingsTotal *prometheus.CounterVec

	// Payment attempts by outcome (status: success, amount_mismatch, duplicate, error)
	PaymentsTotal *prometheus.CounterVec

	// Seat conflicts observed during allocation (stage: precheck, insert)
	SeatConflictsTotal *prometheus.CounterVec

	// Reservations currently awaiting payment
	ActiveReservations prometheus.Gauge
}

// New creates a Metrics instance registered on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers all collectors on the given registry.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		BookingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookings_total",
				Help: "Total number of reservation attempts",
			},
			[]string{"status"},
		),
		PaymentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_total",
				Help: "Total number of payment attempts",
			},
			[]string{"status"},
		),
		SeatConflictsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seat_conflicts_total",
				Help: "Seat allocation conflicts by detection stage",
			},
			[]string{"stage"},
		),
		ActiveReservations: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "active_reservations",
				Help: "Number of reservations awaiting payment",
			},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.BookingsTotal,
		m.PaymentsTotal,
		m.SeatConflictsTotal,
		m.ActiveReservations,
	)

	return m
}

var defaultMetrics *Metrics

// Init initializes the default metrics instance.
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

// Get returns the default metrics instance, which may be nil when Init
// was never called (unit tests).
func Get() *Metrics {
	return defaultMetrics
}
