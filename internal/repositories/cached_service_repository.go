package repositories

import (
	"context"
	"time"

	"salon_backend/internal/models"
	"salon_backend/pkg/utils"
)

// cachedServiceRepository decorates a ServiceRepository with a read-through cache for
// the lookups booking and stats hit on every request. Writes go to the store first and
// then invalidate; cache failures are logged and never fail the call.
type cachedServiceRepository struct {
	repo  ServiceRepository
	cache ServiceCache
}

// NewCachedServiceRepository wraps repo with cache.
func NewCachedServiceRepository(repo ServiceRepository, cache ServiceCache) ServiceRepository {
	return &cachedServiceRepository{repo: repo, cache: cache}
}

func (r *cachedServiceRepository) invalidate(ctx context.Context, names ...string) {
	if err := r.cache.Invalidate(ctx, names...); err != nil {
		utils.LogWarn("Failed to invalidate service cache", map[string]interface{}{"error": err.Error()})
	}
}

func (r *cachedServiceRepository) Create(ctx context.Context, service *models.Service) error {
	if err := r.repo.Create(ctx, service); err != nil {
		return err
	}
	r.invalidate(ctx, service.Name)
	return nil
}

func (r *cachedServiceRepository) GetByID(ctx context.Context, id int64) (*models.Service, error) {
	return r.repo.GetByID(ctx, id)
}

func (r *cachedServiceRepository) GetActiveByName(ctx context.Context, name string) (*models.Service, error) {
	cached, err := r.cache.GetService(ctx, name)
	if err != nil {
		utils.LogWarn("Error getting service from cache", map[string]interface{}{"error": err.Error(), "name": name})
	}
	if cached != nil && cached.IsActive {
		return cached, nil
	}

	svc, err := r.repo.GetActiveByName(ctx, name)
	if err != nil {
		if cached != nil {
			r.invalidate(ctx, name)
		}
		return nil, err
	}
	if err := r.cache.SetService(ctx, svc); err != nil {
		utils.LogWarn("Failed to cache service", map[string]interface{}{"error": err.Error(), "name": name})
		return svc, nil
	}
	// A write that landed between the read and the set has already invalidated;
	// re-read so its result is not overwritten by the older copy.
	if fresh, err := r.repo.GetActiveByName(ctx, name); err != nil || !sameService(fresh, svc) {
		r.invalidate(ctx, name)
	}
	return svc, nil
}

// List caches only the active catalog; the full listing is a staff view and goes to the store.
func (r *cachedServiceRepository) List(ctx context.Context, includeInactive bool) ([]models.Service, error) {
	if includeInactive {
		return r.repo.List(ctx, true)
	}

	cached, err := r.cache.GetActiveList(ctx)
	if err != nil {
		utils.LogWarn("Error getting active services from cache", map[string]interface{}{"error": err.Error()})
	}
	if cached != nil {
		return cached, nil
	}

	services, err := r.repo.List(ctx, false)
	if err != nil {
		return nil, err
	}
	if err := r.cache.SetActiveList(ctx, services); err != nil {
		utils.LogWarn("Failed to cache active services", map[string]interface{}{"error": err.Error()})
		return services, nil
	}
	if fresh, err := r.repo.List(ctx, false); err != nil || !sameCatalog(fresh, services) {
		r.invalidate(ctx)
	}
	return services, nil
}

func (r *cachedServiceRepository) Update(ctx context.Context, service *models.Service) error {
	names := []string{service.Name}
	if old, err := r.repo.GetByID(ctx, service.ID); err == nil {
		names = append(names, old.Name)
	}
	if err := r.repo.Update(ctx, service); err != nil {
		return err
	}
	r.invalidate(ctx, names...)
	return nil
}

func (r *cachedServiceRepository) Deactivate(ctx context.Context, id int64, at time.Time) error {
	var names []string
	if old, err := r.repo.GetByID(ctx, id); err == nil {
		names = append(names, old.Name)
	}
	if err := r.repo.Deactivate(ctx, id, at); err != nil {
		return err
	}
	r.invalidate(ctx, names...)
	return nil
}

func sameService(a, b *models.Service) bool {
	return a.ID == b.ID &&
		a.Name == b.Name &&
		a.Price == b.Price &&
		a.Duration == b.Duration &&
		a.IsActive == b.IsActive &&
		a.UpdatedAt.Equal(b.UpdatedAt)
}

func sameCatalog(a, b []models.Service) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !sameService(&a[i], &b[i]) {
			return false
		}
	}
	return true
}
