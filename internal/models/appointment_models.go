package models

import (
	"fmt"
	"time"
)

// AppointmentStatus is the closed set of lifecycle states.
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCanceled  AppointmentStatus = "canceled"
)

// StatusFilterAll selects every status in list queries.
const StatusFilterAll = "all"

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// AllAppointmentStatuses lists the statuses in lifecycle order.
var AllAppointmentStatuses = []AppointmentStatus{
	AppointmentStatusPending,
	AppointmentStatusConfirmed,
	AppointmentStatusCompleted,
	AppointmentStatusCanceled,
}

// ParseAppointmentStatus converts an inbound string. Anything outside the four states is rejected.
func ParseAppointmentStatus(s string) (AppointmentStatus, error) {
	status := AppointmentStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("unknown appointment status %q", s)
	}
	return status, nil
}

// IsValid checks if the status is one of the four known values.
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case AppointmentStatusPending,
		AppointmentStatusConfirmed,
		AppointmentStatusCompleted,
		AppointmentStatusCanceled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is permitted.
func (s AppointmentStatus) IsTerminal() bool {
	return s == AppointmentStatusCompleted || s == AppointmentStatusCanceled
}

// CanTransitionTo encodes the lifecycle edges. Nothing may move back to pending.
func (s AppointmentStatus) CanTransitionTo(to AppointmentStatus) bool {
	switch s {
	case AppointmentStatusPending:
		return to == AppointmentStatusConfirmed || to == AppointmentStatusCanceled
	case AppointmentStatusConfirmed:
		return to == AppointmentStatusCompleted || to == AppointmentStatusCanceled
	default:
		return false
	}
}

// Appointment is a booked slot. Service is a name snapshot, ClientID a weak reference.
type Appointment struct {
	ID        int64             `json:"id" db:"id"`
	ClientID  *int64            `json:"client_id" db:"client_id"`
	Name      string            `json:"name" db:"name"`
	Phone     string            `json:"phone" db:"phone"`
	Service   string            `json:"service" db:"service"`
	Date      string            `json:"date" db:"date"` // YYYY-MM-DD
	Time      string            `json:"time" db:"time"` // HH:MM
	Status    AppointmentStatus `json:"status" db:"status"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt time.Time         `json:"updated_at" db:"updated_at"`
}

// AppointmentFilters defines the available filters for querying appointments.
// All set fields are ANDed; zero values impose no constraint.
type AppointmentFilters struct {
	Status   *AppointmentStatus
	Date     *string // exact YYYY-MM-DD
	DateFrom *string // inclusive, used by stats windows
	DateTo   *string // inclusive
	Search   string  // name or phone substring
	Page     int
	PageSize int
}
