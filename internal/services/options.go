package services

import (
	"time"

	"salon_backend/internal/models"
)

// MetricsRecorder receives domain events worth counting. internal/metrics implements it.
type MetricsRecorder interface {
	AppointmentBooked(outcome string)
	AppointmentTransitioned(from, to models.AppointmentStatus, outcome string)
	ClientResolved(created bool)
}

type noopRecorder struct{}

func (noopRecorder) AppointmentBooked(string) {}
func (noopRecorder) AppointmentTransitioned(models.AppointmentStatus, models.AppointmentStatus, string) {}
func (noopRecorder) ClientResolved(bool) {}

// Options carries the collaborators shared by every service.
type Options struct {
	// Location is the business time zone used for "today" and past-slot checks.
	Location *time.Location
	Now      func() time.Time
	Metrics  MetricsRecorder
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Metrics == nil {
		o.Metrics = noopRecorder{}
	}
	return o
}

// now returns the current instant in the business time zone.
func (o Options) now() time.Time {
	return o.Now().In(o.Location)
}

const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)
