package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"salon_backend/internal/models"
	"salon_backend/internal/repositories"
	"salon_backend/pkg/utils"
)

// --- Appointment DTOs ---

// BookAppointmentRequest is the public booking form. Fields are validated by Book so every
// problem is reported in one response.
type BookAppointmentRequest struct {
	Name     string  `json:"name"`
	Phone    string  `json:"phone"`
	Email    *string `json:"email"`
	Service  string  `json:"service"`
	Date     string  `json:"date"`
	Time     string  `json:"time"`
	ClientID *int64  `json:"client_id"`
}

type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AppointmentService owns appointment creation and the status lifecycle.
type AppointmentService interface {
	Book(ctx context.Context, req BookAppointmentRequest) (*models.Appointment, error)
	// Transition moves an appointment to status, enforcing the lifecycle edges.
	// Returns the updated appointment and the status it left.
	Transition(ctx context.Context, id int64, status models.AppointmentStatus) (*models.Appointment, models.AppointmentStatus, error)
	GetAppointmentByID(ctx context.Context, id int64) (*models.Appointment, error)
}

type appointmentService struct {
	repo    repositories.AppointmentRepository
	clients ClientService
	catalog CatalogService
	opts    Options
}

// NewAppointmentService creates a new instance of AppointmentService.
func NewAppointmentService(
	repo repositories.AppointmentRepository,
	clients ClientService,
	catalog CatalogService,
	opts Options,
) AppointmentService {
	return &appointmentService{
		repo:    repo,
		clients: clients,
		catalog: catalog,
		opts:    opts.withDefaults(),
	}
}

// parseStrict parses value with layout and rejects anything that does not format back
// identically, so "9:30" or "2024-1-5" fail.
func parseStrict(layout, value string, loc *time.Location) (time.Time, bool) {
	t, err := time.ParseInLocation(layout, value, loc)
	if err != nil || t.Format(layout) != value {
		return time.Time{}, false
	}
	return t, true
}

// validateBooking checks the request shape and rejects slots before the current minute.
func (s *appointmentService) validateBooking(req BookAppointmentRequest) error {
	v := &ValidationError{}
	if utils.IsEmpty(req.Name) {
		v.Add("field required", "body", "name")
	}
	if utils.IsEmpty(req.Phone) {
		v.Add("field required", "body", "phone")
	} else if utils.NormalizePhone(req.Phone) == "" {
		v.Add("phone must contain at least one digit", "body", "phone")
	}
	if email := trimOptional(req.Email); email != nil && !utils.IsValidEmail(*email) {
		v.Add("value is not a valid email address", "body", "email")
	}
	if utils.IsEmpty(req.Service) {
		v.Add("field required", "body", "service")
	}

	day, dateOK := parseStrict(models.DateLayout, req.Date, s.opts.Location)
	switch {
	case utils.IsEmpty(req.Date):
		v.Add("field required", "body", "date")
	case !dateOK:
		v.Add("date must be in YYYY-MM-DD format", "body", "date")
	}
	clock, timeOK := parseStrict(models.TimeLayout, req.Time, time.UTC)
	switch {
	case utils.IsEmpty(req.Time):
		v.Add("field required", "body", "time")
	case !timeOK:
		v.Add("time must be in HH:MM format", "body", "time")
	}
	if err := v.Err(); err != nil {
		return err
	}

	slot := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, s.opts.Location)
	if slot.Before(s.opts.now().Truncate(time.Minute)) {
		return newValidationError("appointment cannot be booked in the past", "body", "time")
	}
	return nil
}

// Book validates the request, checks the service, resolves the client and stores a pending
// appointment. Nothing is written unless every check passes.
func (s *appointmentService) Book(ctx context.Context, req BookAppointmentRequest) (*models.Appointment, error) {
	if err := s.validateBooking(req); err != nil {
		s.opts.Metrics.AppointmentBooked(OutcomeInvalid)
		return nil, err
	}

	svc, err := s.catalog.GetActiveByName(ctx, strings.TrimSpace(req.Service))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.opts.Metrics.AppointmentBooked(OutcomeInvalid)
			return nil, newValidationError("service not found or inactive", "body", "service")
		}
		s.opts.Metrics.AppointmentBooked(OutcomeError)
		return nil, err
	}

	client, err := s.resolveClient(ctx, req)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			s.opts.Metrics.AppointmentBooked(OutcomeInvalid)
		} else {
			s.opts.Metrics.AppointmentBooked(OutcomeError)
		}
		return nil, err
	}

	now := s.opts.now()
	appt := &models.Appointment{
		ClientID:  &client.ID,
		Name:      strings.TrimSpace(req.Name),
		Phone:     utils.NormalizePhone(req.Phone),
		Service:   svc.Name,
		Date:      req.Date,
		Time:      req.Time,
		Status:    models.AppointmentStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, appt); err != nil {
		s.opts.Metrics.AppointmentBooked(OutcomeError)
		return nil, storageErr(err, "creating appointment")
	}

	s.opts.Metrics.AppointmentBooked(OutcomeSuccess)
	utils.LogInfo("Appointment booked", map[string]interface{}{
		"appointment_id": appt.ID,
		"client_id":      client.ID,
		"service":        appt.Service,
		"date":           appt.Date,
		"time":           appt.Time,
	})
	return appt, nil
}

// resolveClient links an explicit client_id when given, otherwise resolves by phone.
func (s *appointmentService) resolveClient(ctx context.Context, req BookAppointmentRequest) (*models.Client, error) {
	if req.ClientID != nil {
		client, err := s.clients.GetClientByID(ctx, *req.ClientID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, newValidationError("client not found", "body", "client_id")
			}
			return nil, err
		}
		return client, nil
	}
	return s.clients.ResolveOrCreate(ctx, req.Phone, req.Name, req.Email)
}

func (s *appointmentService) GetAppointmentByID(ctx context.Context, id int64) (*models.Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr(err, "appointment")
	}
	return appt, nil
}

// Transition applies one lifecycle edge as a compare-and-set on the status that was read.
// When another writer got there first the request is re-validated against the new status and
// rejected either way, so racing pending->confirmed and pending->canceled never both succeed.
func (s *appointmentService) Transition(ctx context.Context, id int64, to models.AppointmentStatus) (*models.Appointment, models.AppointmentStatus, error) {
	if !to.IsValid() {
		return nil, "", newValidationError(fmt.Sprintf("unknown status %q", to), "body", "status")
	}

	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, "", storageErr(err, "appointment")
	}
	from := appt.Status
	if !from.CanTransitionTo(to) {
		s.opts.Metrics.AppointmentTransitioned(from, to, OutcomeInvalid)
		return nil, "", fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	now := s.opts.now()
	err = s.repo.UpdateStatus(ctx, id, from, to, now)
	if errors.Is(err, repositories.ErrStatusConflict) {
		return nil, "", s.lostTransition(ctx, id, from, to)
	}
	if err != nil {
		s.opts.Metrics.AppointmentTransitioned(from, to, OutcomeError)
		return nil, "", storageErr(err, "updating appointment status")
	}

	appt.Status = to
	appt.UpdatedAt = now
	s.opts.Metrics.AppointmentTransitioned(from, to, OutcomeSuccess)
	utils.LogInfo("Appointment status changed", map[string]interface{}{
		"appointment_id": id, "from": from, "to": to,
	})

	if to == models.AppointmentStatusCompleted && appt.ClientID != nil {
		// The transition is committed; a failed visit update must not undo it.
		if err := s.clients.RecordVisit(ctx, *appt.ClientID); err != nil {
			utils.LogError(err, "AppointmentService: failed to record client visit", map[string]interface{}{
				"appointment_id": id, "client_id": *appt.ClientID,
			})
		}
	}
	return appt, from, nil
}

// lostTransition explains a failed compare-and-set using the status now stored.
func (s *appointmentService) lostTransition(ctx context.Context, id int64, from, to models.AppointmentStatus) error {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return storageErr(err, "appointment")
	}
	utils.LogDebug("Appointment status changed concurrently", map[string]interface{}{
		"appointment_id": id, "expected": from, "current": current.Status, "requested": to,
	})
	if !current.Status.CanTransitionTo(to) {
		s.opts.Metrics.AppointmentTransitioned(current.Status, to, OutcomeInvalid)
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, to)
	}
	s.opts.Metrics.AppointmentTransitioned(from, to, OutcomeError)
	return fmt.Errorf("%w: appointment %d changed from %s to %s while updating", ErrConflict, id, from, current.Status)
}
