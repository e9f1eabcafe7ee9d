package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"salon_backend/internal/models"
)

type memoryServiceRepository struct {
	mu       sync.RWMutex
	nextID   int64
	services map[int64]*models.Service
}

// NewMemoryServiceRepository returns an in-process ServiceRepository.
func NewMemoryServiceRepository() ServiceRepository {
	return &memoryServiceRepository{services: make(map[int64]*models.Service)}
}

func cloneService(s *models.Service) *models.Service {
	out := *s
	if s.Description != nil {
		d := *s.Description
		out.Description = &d
	}
	return &out
}

// nameTakenLocked reports whether another active service already uses name, ignoring case.
func (r *memoryServiceRepository) nameTakenLocked(name string, exceptID int64) bool {
	for id, s := range r.services {
		if id != exceptID && s.IsActive && strings.EqualFold(s.Name, name) {
			return true
		}
	}
	return false
}

func (r *memoryServiceRepository) Create(_ context.Context, service *models.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if service.IsActive && r.nameTakenLocked(service.Name, 0) {
		return fmt.Errorf("%w: service name %q", ErrDuplicateKey, service.Name)
	}
	r.nextID++
	service.ID = r.nextID
	r.services[service.ID] = cloneService(service)
	return nil
}

func (r *memoryServiceRepository) GetByID(_ context.Context, id int64) (*models.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.services[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneService(s), nil
}

func (r *memoryServiceRepository) GetActiveByName(_ context.Context, name string) (*models.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.services {
		if s.IsActive && s.Name == name {
			return cloneService(s), nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryServiceRepository) List(_ context.Context, includeInactive bool) ([]models.Service, error) {
	r.mu.RLock()
	services := make([]models.Service, 0, len(r.services))
	for _, s := range r.services {
		if includeInactive || s.IsActive {
			services = append(services, *cloneService(s))
		}
	}
	r.mu.RUnlock()

	sort.Slice(services, func(i, j int) bool {
		if services[i].Name != services[j].Name {
			return services[i].Name < services[j].Name
		}
		return services[i].ID < services[j].ID
	})
	return services, nil
}

func (r *memoryServiceRepository) Update(_ context.Context, service *models.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.services[service.ID]; !ok {
		return ErrNotFound
	}
	if service.IsActive && r.nameTakenLocked(service.Name, service.ID) {
		return fmt.Errorf("%w: service name %q", ErrDuplicateKey, service.Name)
	}
	r.services[service.ID] = cloneService(service)
	return nil
}

func (r *memoryServiceRepository) Deactivate(_ context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.services[id]
	if !ok {
		return ErrNotFound
	}
	s.IsActive = false
	s.UpdatedAt = at
	return nil
}
