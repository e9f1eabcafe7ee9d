package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salon_backend/internal/models"
)

type fakeWriter struct {
	mu       sync.Mutex
	failures int
	calls    int
	messages []kafka.Message
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls++
	if w.failures > 0 {
		w.failures--
		return errors.New("broker unavailable")
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func testAppointment() *models.Appointment {
	clientID := int64(7)
	return &models.Appointment{
		ID:       42,
		ClientID: &clientID,
		Name:     "Ana",
		Phone:    "11987654321",
		Service:  "Corte",
		Date:     "2030-05-10",
		Time:     "14:30",
		Status:   models.AppointmentStatusPending,
	}
}

func TestKafkaNotifierPublishesKeyedEvent(t *testing.T) {
	w := &fakeWriter{}
	n := newKafkaNotifier(w, "salon.appointments")

	require.NoError(t, n.AppointmentBooked(context.Background(), testAppointment()))
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, "42", string(msg.Key))

	var event Event
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, EventAppointmentBooked, event.Type)
	assert.Equal(t, int64(42), event.AppointmentID)
	assert.Equal(t, models.AppointmentStatusPending, event.Status)
	assert.Empty(t, event.PrevStatus)
}

func TestKafkaNotifierRetriesTransientFailures(t *testing.T) {
	w := &fakeWriter{failures: 2}
	n := newKafkaNotifier(w, "salon.appointments")

	appt := testAppointment()
	appt.Status = models.AppointmentStatusConfirmed
	require.NoError(t, n.AppointmentStatusChanged(context.Background(), appt, models.AppointmentStatusPending))

	assert.Equal(t, 3, w.calls)
	require.Len(t, w.messages, 1)

	var event Event
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &event))
	assert.Equal(t, models.AppointmentStatusPending, event.PrevStatus)
	assert.Equal(t, models.AppointmentStatusConfirmed, event.Status)
}

func TestKafkaNotifierGivesUp(t *testing.T) {
	w := &fakeWriter{failures: 100}
	n := newKafkaNotifier(w, "salon.appointments")

	err := n.AppointmentBooked(context.Background(), testAppointment())
	require.Error(t, err)
	assert.Equal(t, 4, w.calls)
	assert.Empty(t, w.messages)
}

func TestNewKafkaNotifierRequiresBrokers(t *testing.T) {
	_, err := NewKafkaNotifier(nil, "topic")
	assert.Error(t, err)
}

type recordingNotifier struct {
	mu     sync.Mutex
	booked []int64
	moved  []models.AppointmentStatus
}

func (r *recordingNotifier) AppointmentBooked(_ context.Context, appt *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.booked = append(r.booked, appt.ID)
	return nil
}

func (r *recordingNotifier) AppointmentStatusChanged(_ context.Context, _ *models.Appointment, from models.AppointmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.moved = append(r.moved, from)
	return errors.New("delivery failures are only logged")
}

func (r *recordingNotifier) Close() error { return nil }

func TestDispatcherRunsDetached(t *testing.T) {
	rec := &recordingNotifier{}
	d := NewDispatcher(rec, time.Second)

	appt := testAppointment()
	d.Booked(appt)
	appt.ID = 99 // mutation after dispatch must not leak into the notification
	d.StatusChanged(appt, models.AppointmentStatusPending)
	d.Wait()

	assert.Equal(t, []int64{42}, rec.booked)
	assert.Equal(t, []models.AppointmentStatus{models.AppointmentStatusPending}, rec.moved)
}
