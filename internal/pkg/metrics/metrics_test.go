package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	require.NotNil(t, m)
	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.HTTPRequestDuration)
	assert.NotNil(t, m.BookingsTotal)
	assert.NotNil(t, m.PaymentsTotal)
	assert.NotNil(t, m.SeatConflictsTotal)
	assert.NotNil(t, m.ActiveReservations)
}

func TestHTTPRequestsTotal(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/trips", "200").Inc()
	m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/reservations", "201").Inc()
	m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/reservations", "409").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "http_requests_total" {
			found = true
			assert.Equal(t, 3, len(f.GetMetric()))
		}
	}
	assert.True(t, found, "http_requests_total metric not found")
}

func TestBookingsTotal(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.BookingsTotal.WithLabelValues("success").Inc()
	m.BookingsTotal.WithLabelValues("success").Inc()
	m.BookingsTotal.WithLabelValues("conflict").Inc()
	m.BookingsTotal.WithLabelValues("locator_exhausted").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "bookings_total" {
			found = true
			assert.Equal(t, 3, len(f.GetMetric()))
		}
	}
	assert.True(t, found, "bookings_total metric not found")
}

func TestSeatConflictsTotal(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.SeatConflictsTotal.WithLabelValues("precheck").Inc()
	m.SeatConflictsTotal.WithLabelValues("insert").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "seat_conflicts_total" {
			found = true
			assert.Equal(t, 2, len(f.GetMetric()))
		}
	}
	assert.True(t, found, "seat_conflicts_total metric not found")
}

func TestInitAndGet(t *testing.T) {
	m := Init()
	require.NotNil(t, m)
	assert.Equal(t, m, Get())
}
