package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"salon_backend/internal/models"
	"salon_backend/internal/repositories"
	"salon_backend/pkg/utils"
)

// --- Service catalog DTOs ---
type CreateServiceRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	Price       float64 `json:"price" binding:"gte=0"`
	Duration    int     `json:"duration" binding:"required,gt=0"`
}

type UpdateServiceRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Duration    *int     `json:"duration"`
	IsActive    *bool    `json:"is_active"`
}

// CatalogService manages the bookable services.
type CatalogService interface {
	CreateService(ctx context.Context, req CreateServiceRequest) (*models.Service, error)
	GetServiceByID(ctx context.Context, id int64) (*models.Service, error)
	// GetActiveByName is the booking lookup: exact, case-sensitive, active services only.
	GetActiveByName(ctx context.Context, name string) (*models.Service, error)
	ListServices(ctx context.Context, includeInactive bool) ([]models.Service, error)
	UpdateService(ctx context.Context, id int64, req UpdateServiceRequest) (*models.Service, error)
	DeleteService(ctx context.Context, id int64) error
	// ActivePrices maps each active service name to its current price.
	ActivePrices(ctx context.Context) (map[string]float64, error)
}

type catalogService struct {
	repo repositories.ServiceRepository
	opts Options
}

// NewCatalogService creates a new instance of CatalogService.
func NewCatalogService(repo repositories.ServiceRepository, opts Options) CatalogService {
	return &catalogService{repo: repo, opts: opts.withDefaults()}
}

func validateService(svc *models.Service) error {
	v := &ValidationError{}
	if utils.IsEmpty(svc.Name) {
		v.Add("field required", "body", "name")
	}
	if svc.Price < 0 {
		v.Add("must be at least 0", "body", "price")
	}
	if svc.Duration <= 0 {
		v.Add("must be greater than 0", "body", "duration")
	}
	return v.Err()
}

func (s *catalogService) CreateService(ctx context.Context, req CreateServiceRequest) (*models.Service, error) {
	now := s.opts.now()
	svc := &models.Service{
		Name:        strings.TrimSpace(req.Name),
		Description: trimOptional(req.Description),
		Price:       req.Price,
		Duration:    req.Duration,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := validateService(svc); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, svc); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: service %q already exists", ErrConflict, svc.Name)
		}
		return nil, storageErr(err, "creating service")
	}
	utils.LogInfo("Service created", map[string]interface{}{"service_id": svc.ID, "name": svc.Name})
	return svc, nil
}

func (s *catalogService) GetServiceByID(ctx context.Context, id int64) (*models.Service, error) {
	svc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr(err, "service")
	}
	return svc, nil
}

func (s *catalogService) GetActiveByName(ctx context.Context, name string) (*models.Service, error) {
	svc, err := s.repo.GetActiveByName(ctx, name)
	if err != nil {
		return nil, storageErr(err, "service")
	}
	return svc, nil
}

func (s *catalogService) ListServices(ctx context.Context, includeInactive bool) ([]models.Service, error) {
	services, err := s.repo.List(ctx, includeInactive)
	if err != nil {
		return nil, storageErr(err, "listing services")
	}
	return services, nil
}

func (s *catalogService) UpdateService(ctx context.Context, id int64, req UpdateServiceRequest) (*models.Service, error) {
	svc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr(err, "service")
	}

	if req.Name != nil {
		svc.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		svc.Description = trimOptional(req.Description)
	}
	if req.Price != nil {
		svc.Price = *req.Price
	}
	if req.Duration != nil {
		svc.Duration = *req.Duration
	}
	if req.IsActive != nil {
		svc.IsActive = *req.IsActive
	}
	if err := validateService(svc); err != nil {
		return nil, err
	}

	svc.UpdatedAt = s.opts.now()
	if err := s.repo.Update(ctx, svc); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: service %q already exists", ErrConflict, svc.Name)
		}
		return nil, storageErr(err, "updating service")
	}
	return svc, nil
}

// DeleteService deactivates the service. Existing appointments keep their snapshot of the name.
func (s *catalogService) DeleteService(ctx context.Context, id int64) error {
	if err := s.repo.Deactivate(ctx, id, s.opts.now()); err != nil {
		return storageErr(err, "service")
	}
	utils.LogInfo("Service deactivated", map[string]interface{}{"service_id": id})
	return nil
}

func (s *catalogService) ActivePrices(ctx context.Context) (map[string]float64, error) {
	services, err := s.ListServices(ctx, false)
	if err != nil {
		return nil, err
	}
	prices := make(map[string]float64, len(services))
	for _, svc := range services {
		prices[svc.Name] = svc.Price
	}
	return prices, nil
}
