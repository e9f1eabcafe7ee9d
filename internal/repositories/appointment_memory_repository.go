package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"salon_backend/internal/models"
	"salon_backend/pkg/utils"
)

type memoryAppointmentRepository struct {
	mu           sync.RWMutex
	nextID       int64
	appointments map[int64]*models.Appointment
}

// NewMemoryAppointmentRepository returns an in-process AppointmentRepository.
func NewMemoryAppointmentRepository() AppointmentRepository {
	return &memoryAppointmentRepository{appointments: make(map[int64]*models.Appointment)}
}

func cloneAppointment(a *models.Appointment) *models.Appointment {
	out := *a
	if a.ClientID != nil {
		id := *a.ClientID
		out.ClientID = &id
	}
	return &out
}

func (r *memoryAppointmentRepository) Create(_ context.Context, appt *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	appt.ID = r.nextID
	r.appointments[appt.ID] = cloneAppointment(appt)
	return nil
}

func (r *memoryAppointmentRepository) GetByID(_ context.Context, id int64) (*models.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneAppointment(a), nil
}

func appointmentMatches(a *models.Appointment, f models.AppointmentFilters, term, digits string) bool {
	if f.Status != nil && a.Status != *f.Status {
		return false
	}
	// Dates are zero-padded YYYY-MM-DD so string order is calendar order.
	if f.Date != nil && a.Date != *f.Date {
		return false
	}
	if f.DateFrom != nil && a.Date < *f.DateFrom {
		return false
	}
	if f.DateTo != nil && a.Date > *f.DateTo {
		return false
	}
	if term == "" {
		return true
	}
	if utils.ContainsFold(a.Name, term) || utils.ContainsFold(a.Phone, term) {
		return true
	}
	return digits != "" && strings.Contains(a.Phone, digits)
}

func (r *memoryAppointmentRepository) List(_ context.Context, filters models.AppointmentFilters) ([]models.Appointment, int, error) {
	term := strings.TrimSpace(filters.Search)
	digits := utils.NormalizePhone(term)

	r.mu.RLock()
	matched := make([]models.Appointment, 0, len(r.appointments))
	for _, a := range r.appointments {
		if appointmentMatches(a, filters, term, digits) {
			matched = append(matched, *cloneAppointment(a))
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.Date != b.Date {
			return a.Date > b.Date
		}
		if a.Time != b.Time {
			return a.Time > b.Time
		}
		return a.ID > b.ID
	})

	total := len(matched)
	if filters.PageSize <= 0 {
		return matched, total, nil
	}
	start, end := utils.PageBounds(total, filters.Page, filters.PageSize)
	return matched[start:end], total, nil
}

func (r *memoryAppointmentRepository) UpdateStatus(_ context.Context, id int64, from, to models.AppointmentStatus, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.appointments[id]
	if !ok {
		return ErrNotFound
	}
	if a.Status != from {
		return ErrStatusConflict
	}
	a.Status = to
	a.UpdatedAt = at
	return nil
}

func (r *memoryAppointmentRepository) CountByService(_ context.Context, limit int) ([]models.ServiceReportItem, error) {
	r.mu.RLock()
	counts := make(map[string]int)
	for _, a := range r.appointments {
		counts[a.Service]++
	}
	r.mu.RUnlock()

	items := make([]models.ServiceReportItem, 0, len(counts))
	for name, n := range counts {
		items = append(items, models.ServiceReportItem{Name: name, Count: n})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].Name < items[j].Name
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (r *memoryAppointmentRepository) CountByClient(_ context.Context) (map[int64]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[int64]int)
	for _, a := range r.appointments {
		if a.ClientID != nil {
			counts[*a.ClientID]++
		}
	}
	return counts, nil
}
