package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"salon_backend/internal/models"
)

// SchedulerMetrics counts booking, lifecycle and client-resolution events.
// It satisfies services.MetricsRecorder.
type SchedulerMetrics struct {
	bookings        *prometheus.CounterVec
	transitions     *prometheus.CounterVec
	clientsResolved *prometheus.CounterVec
}

// NewSchedulerMetrics registers the domain counters on registry.
func NewSchedulerMetrics(registry *prometheus.Registry) *SchedulerMetrics {
	return &SchedulerMetrics{
		bookings: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "salon_appointments_booked_total",
				Help: "Booking attempts by outcome",
			},
			[]string{"outcome"},
		),
		transitions: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "salon_appointment_transitions_total",
				Help: "Appointment status transitions by edge and outcome",
			},
			[]string{"from", "to", "outcome"},
		),
		clientsResolved: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "salon_clients_resolved_total",
				Help: "Client resolutions by phone, split by whether a client was created",
			},
			[]string{"created"},
		),
	}
}

func (m *SchedulerMetrics) AppointmentBooked(outcome string) {
	m.bookings.WithLabelValues(outcome).Inc()
}

func (m *SchedulerMetrics) AppointmentTransitioned(from, to models.AppointmentStatus, outcome string) {
	m.transitions.WithLabelValues(string(from), string(to), outcome).Inc()
}

func (m *SchedulerMetrics) ClientResolved(created bool) {
	m.clientsResolved.WithLabelValues(strconv.FormatBool(created)).Inc()
}

// RegisterRuntimeCollectors adds the Go runtime and process collectors.
func RegisterRuntimeCollectors(registry *prometheus.Registry) {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}
