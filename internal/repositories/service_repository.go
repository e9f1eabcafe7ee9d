package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"salon_backend/internal/models"
)

// ServiceRepository defines storage operations for the service catalog.
// Active service names are unique ignoring case.
type ServiceRepository interface {
	Create(ctx context.Context, service *models.Service) error
	GetByID(ctx context.Context, id int64) (*models.Service, error)
	// GetActiveByName matches the name exactly and only among active services.
	GetActiveByName(ctx context.Context, name string) (*models.Service, error)
	List(ctx context.Context, includeInactive bool) ([]models.Service, error)
	Update(ctx context.Context, service *models.Service) error
	Deactivate(ctx context.Context, id int64, at time.Time) error
}

type serviceRepository struct {
	db SQLExecutor
}

// NewServiceRepository creates a new postgres-backed ServiceRepository.
func NewServiceRepository(db *sql.DB) ServiceRepository {
	return &serviceRepository{db: db}
}

const serviceColumns = `id, name, description, price, duration, is_active, created_at, updated_at`

func scanService(s scanner) (*models.Service, error) {
	var (
		svc  models.Service
		desc sql.NullString
	)
	if err := s.Scan(&svc.ID, &svc.Name, &desc, &svc.Price, &svc.Duration, &svc.IsActive, &svc.CreatedAt, &svc.UpdatedAt); err != nil {
		return nil, err
	}
	if desc.Valid {
		svc.Description = &desc.String
	}
	return &svc, nil
}

func (r *serviceRepository) Create(ctx context.Context, service *models.Service) error {
	query := `INSERT INTO services (name, description, price, duration, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		service.Name, nullString(service.Description), service.Price, service.Duration,
		service.IsActive, service.CreatedAt, service.UpdatedAt,
	).Scan(&service.ID)
	if err != nil {
		return wrapDBError(err, "creating service")
	}
	return nil
}

func (r *serviceRepository) GetByID(ctx context.Context, id int64) (*models.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE id = $1`
	svc, err := scanService(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, wrapDBError(err, fmt.Sprintf("getting service by ID %d", id))
	}
	return svc, nil
}

func (r *serviceRepository) GetActiveByName(ctx context.Context, name string) (*models.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE name = $1 AND is_active`
	svc, err := scanService(r.db.QueryRowContext(ctx, query, name))
	if err != nil {
		return nil, wrapDBError(err, "getting service by name")
	}
	return svc, nil
}

// List returns services ordered by name.
func (r *serviceRepository) List(ctx context.Context, includeInactive bool) ([]models.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services`
	if !includeInactive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY name ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapDBError(err, "querying services")
	}
	defer rows.Close()

	services := []models.Service{}
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, wrapDBError(err, "scanning service")
		}
		services = append(services, *svc)
	}
	if err = rows.Err(); err != nil {
		return nil, wrapDBError(err, "iterating service rows")
	}
	return services, nil
}

func (r *serviceRepository) Update(ctx context.Context, service *models.Service) error {
	query := `UPDATE services SET name = $1, description = $2, price = $3, duration = $4, is_active = $5, updated_at = $6
	          WHERE id = $7`
	res, err := r.db.ExecContext(ctx, query,
		service.Name, nullString(service.Description), service.Price, service.Duration,
		service.IsActive, service.UpdatedAt, service.ID)
	if err != nil {
		return wrapDBError(err, fmt.Sprintf("updating service %d", service.ID))
	}
	return checkAffected(res, "updating service")
}

// Deactivate soft-deletes a service. Past appointments keep their name snapshot.
func (r *serviceRepository) Deactivate(ctx context.Context, id int64, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE services SET is_active = FALSE, updated_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return wrapDBError(err, fmt.Sprintf("deactivating service %d", id))
	}
	return checkAffected(res, "deactivating service")
}
