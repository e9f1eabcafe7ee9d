package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"salon_backend/internal/models"
	"salon_backend/pkg/utils"
)

type memoryClientRepository struct {
	mu      sync.RWMutex
	nextID  int64
	clients map[int64]*models.Client
	byPhone map[string]int64
}

// NewMemoryClientRepository returns an in-process ClientRepository. Safe for concurrent use.
func NewMemoryClientRepository() ClientRepository {
	return &memoryClientRepository{
		clients: make(map[int64]*models.Client),
		byPhone: make(map[string]int64),
	}
}

func cloneClient(c *models.Client) *models.Client {
	out := *c
	if c.Email != nil {
		e := *c.Email
		out.Email = &e
	}
	if c.LastVisit != nil {
		t := *c.LastVisit
		out.LastVisit = &t
	}
	if c.ArchivedAt != nil {
		t := *c.ArchivedAt
		out.ArchivedAt = &t
	}
	return &out
}

func (r *memoryClientRepository) Create(_ context.Context, client *models.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byPhone[client.Phone]; taken {
		return fmt.Errorf("%w: phone %s", ErrDuplicateKey, client.Phone)
	}
	r.nextID++
	client.ID = r.nextID
	r.clients[client.ID] = cloneClient(client)
	r.byPhone[client.Phone] = client.ID
	return nil
}

func (r *memoryClientRepository) GetByID(_ context.Context, id int64) (*models.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.clients[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneClient(c), nil
}

func (r *memoryClientRepository) GetByPhone(_ context.Context, phone string) (*models.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byPhone[phone]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneClient(r.clients[id]), nil
}

func clientMatches(c *models.Client, term, digits string) bool {
	if term == "" {
		return true
	}
	if utils.ContainsFold(c.Name, term) || utils.ContainsFold(c.Phone, term) {
		return true
	}
	if c.Email != nil && utils.ContainsFold(*c.Email, term) {
		return true
	}
	return digits != "" && strings.Contains(c.Phone, digits)
}

func (r *memoryClientRepository) List(_ context.Context, filters models.ClientFilters) ([]models.Client, int, error) {
	term := strings.TrimSpace(filters.Query)
	digits := utils.NormalizePhone(term)

	r.mu.RLock()
	matched := make([]models.Client, 0, len(r.clients))
	for _, c := range r.clients {
		if !filters.IncludeArchived && c.IsArchived() {
			continue
		}
		if clientMatches(c, term, digits) {
			matched = append(matched, *cloneClient(c))
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	if filters.PageSize <= 0 {
		return matched, total, nil
	}
	start, end := utils.PageBounds(total, filters.Page, filters.PageSize)
	return matched[start:end], total, nil
}

func (r *memoryClientRepository) Update(_ context.Context, client *models.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.clients[client.ID]
	if !ok {
		return ErrNotFound
	}
	if client.Phone != existing.Phone {
		if _, taken := r.byPhone[client.Phone]; taken {
			return fmt.Errorf("%w: phone %s", ErrDuplicateKey, client.Phone)
		}
		delete(r.byPhone, existing.Phone)
		r.byPhone[client.Phone] = client.ID
	}
	existing.Name = client.Name
	existing.Phone = client.Phone
	existing.Email = cloneClient(client).Email
	existing.UpdatedAt = client.UpdatedAt
	return nil
}

func (r *memoryClientRepository) Archive(_ context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.clients[id]
	if !ok {
		return ErrNotFound
	}
	if c.ArchivedAt == nil {
		c.ArchivedAt = &at
	}
	c.UpdatedAt = at
	return nil
}

func (r *memoryClientRepository) RecordVisit(_ context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.clients[id]
	if !ok {
		return ErrNotFound
	}
	c.TotalVisits++
	c.LastVisit = &at
	c.UpdatedAt = at
	return nil
}

func (r *memoryClientRepository) CountActive(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, c := range r.clients {
		if !c.IsArchived() {
			n++
		}
	}
	return n, nil
}
