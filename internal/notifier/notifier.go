package notifier

import (
	"context"
	"sync"
	"time"

	"salon_backend/internal/models"
	"salon_backend/pkg/utils"
)

const (
	EventAppointmentBooked        = "appointment.booked"
	EventAppointmentStatusChanged = "appointment.status_changed"
)

// Event is the payload published for appointment changes.
type Event struct {
	Type          string                   `json:"type"`
	AppointmentID int64                    `json:"appointment_id"`
	ClientID      *int64                   `json:"client_id,omitempty"`
	Name          string                   `json:"name"`
	Phone         string                   `json:"phone"`
	Service       string                   `json:"service"`
	Date          string                   `json:"date"`
	Time          string                   `json:"time"`
	Status        models.AppointmentStatus `json:"status"`
	PrevStatus    models.AppointmentStatus `json:"prev_status,omitempty"`
	OccurredAt    time.Time                `json:"occurred_at"`
}

// NewEvent builds an event from appt. prev is empty for bookings.
func NewEvent(eventType string, appt *models.Appointment, prev models.AppointmentStatus) Event {
	return Event{
		Type:          eventType,
		AppointmentID: appt.ID,
		ClientID:      appt.ClientID,
		Name:          appt.Name,
		Phone:         appt.Phone,
		Service:       appt.Service,
		Date:          appt.Date,
		Time:          appt.Time,
		Status:        appt.Status,
		PrevStatus:    prev,
		OccurredAt:    time.Now().UTC(),
	}
}

// Notifier tells the outside world about appointment changes. Delivery failures never
// affect the stored appointment.
type Notifier interface {
	AppointmentBooked(ctx context.Context, appt *models.Appointment) error
	AppointmentStatusChanged(ctx context.Context, appt *models.Appointment, from models.AppointmentStatus) error
	Close() error
}

// LogNotifier writes events to the application log.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (LogNotifier) AppointmentBooked(_ context.Context, appt *models.Appointment) error {
	utils.LogInfo("Notify: appointment booked", map[string]interface{}{
		"appointment_id": appt.ID, "phone": appt.Phone, "date": appt.Date, "time": appt.Time,
	})
	return nil
}

func (LogNotifier) AppointmentStatusChanged(_ context.Context, appt *models.Appointment, from models.AppointmentStatus) error {
	utils.LogInfo("Notify: appointment status changed", map[string]interface{}{
		"appointment_id": appt.ID, "from": from, "to": appt.Status,
	})
	return nil
}

func (LogNotifier) Close() error { return nil }

// Dispatcher runs notifications in the background, detached from the request that caused
// them, each bounded by a timeout.
type Dispatcher struct {
	notifier Notifier
	timeout  time.Duration
	wg       sync.WaitGroup
}

func NewDispatcher(n Notifier, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{notifier: n, timeout: timeout}
}

func (d *Dispatcher) run(appointmentID int64, fn func(ctx context.Context) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			utils.LogError(err, "Notifier: delivery failed", map[string]interface{}{"appointment_id": appointmentID})
		}
	}()
}

// Booked notifies about a new appointment. appt is copied before the goroutine starts.
func (d *Dispatcher) Booked(appt *models.Appointment) {
	snapshot := *appt
	d.run(snapshot.ID, func(ctx context.Context) error {
		return d.notifier.AppointmentBooked(ctx, &snapshot)
	})
}

func (d *Dispatcher) StatusChanged(appt *models.Appointment, from models.AppointmentStatus) {
	snapshot := *appt
	d.run(snapshot.ID, func(ctx context.Context) error {
		return d.notifier.AppointmentStatusChanged(ctx, &snapshot, from)
	})
}

// Wait blocks until every in-flight notification finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
