package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"salon_backend/internal/models"
	"salon_backend/internal/repositories"
	"salon_backend/pkg/utils"
)

// --- Client DTOs ---
type CreateClientRequest struct {
	Name  string  `json:"name" binding:"required"`
	Phone string  `json:"phone" binding:"required"`
	Email *string `json:"email"`
}

type UpdateClientRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Email *string `json:"email"`
}

// ClientService is the client directory: identity by phone, search and visit history.
type ClientService interface {
	// ResolveOrCreate returns the client owning phone, creating it when absent.
	// An existing client is returned unchanged even if name or email differ.
	ResolveOrCreate(ctx context.Context, phone, name string, email *string) (*models.Client, error)
	Search(ctx context.Context, query string, page, pageSize int) (*models.Page[models.Client], error)
	RecordVisit(ctx context.Context, clientID int64) error

	CreateClient(ctx context.Context, req CreateClientRequest) (*models.Client, error)
	GetClientByID(ctx context.Context, id int64) (*models.Client, error)
	UpdateClient(ctx context.Context, id int64, req UpdateClientRequest) (*models.Client, error)
	ArchiveClient(ctx context.Context, id int64) error
	CountActive(ctx context.Context) (int, error)
}

type clientService struct {
	repo repositories.ClientRepository
	opts Options
}

// NewClientService creates a new instance of ClientService.
func NewClientService(repo repositories.ClientRepository, opts Options) ClientService {
	return &clientService{repo: repo, opts: opts.withDefaults()}
}

// trimOptional trims an optional string and maps blank to nil.
func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	return utils.NewNullString(strings.TrimSpace(*s))
}

func validateClientFields(v *ValidationError, name, phone string, email *string) {
	if utils.IsEmpty(name) {
		v.Add("field required", "body", "name")
	}
	if phone == "" {
		v.Add("phone must contain at least one digit", "body", "phone")
	}
	if email != nil && !utils.IsValidEmail(*email) {
		v.Add("value is not a valid email address", "body", "email")
	}
}

func resolveBackOff(ctx context.Context) backoff.BackOffContext {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 5 * time.Millisecond
	bo.MaxInterval = 50 * time.Millisecond
	bo.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(bo, 3), ctx)
}

func (s *clientService) ResolveOrCreate(ctx context.Context, phone, name string, email *string) (*models.Client, error) {
	digits := utils.NormalizePhone(phone)
	email = trimOptional(email)

	v := &ValidationError{}
	validateClientFields(v, name, digits, email)
	if err := v.Err(); err != nil {
		return nil, err
	}

	var created bool
	operation := func() (*models.Client, error) {
		existing, err := s.repo.GetByPhone(ctx, digits)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, backoff.Permanent(storageErr(err, "looking up client by phone"))
		}

		now := s.opts.now()
		client := &models.Client{
			Name:      strings.TrimSpace(name),
			Phone:     digits,
			Email:     email,
			CreatedAt: now,
			UpdatedAt: now,
		}
		err = s.repo.Create(ctx, client)
		if err == nil {
			created = true
			return client, nil
		}
		if errors.Is(err, repositories.ErrDuplicateKey) {
			// Lost the race on the phone constraint; the next attempt reads the winner.
			return nil, err
		}
		return nil, backoff.Permanent(storageErr(err, "creating client"))
	}

	client, err := backoff.RetryWithData(operation, resolveBackOff(ctx))
	if err != nil {
		if errors.Is(err, ErrStorage) {
			return nil, err
		}
		return nil, storageErr(err, "resolving client")
	}

	s.opts.Metrics.ClientResolved(created)
	if created {
		utils.LogInfo("Client created", map[string]interface{}{"client_id": client.ID})
	}
	return client, nil
}

func (s *clientService) Search(ctx context.Context, query string, page, pageSize int) (*models.Page[models.Client], error) {
	page, pageSize = utils.NormalizePage(page, pageSize)
	items, total, err := s.repo.List(ctx, models.ClientFilters{
		Query:    query,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, storageErr(err, "searching clients")
	}
	return &models.Page[models.Client]{
		Items:      items,
		TotalPages: utils.TotalPages(total, pageSize),
		Page:       page,
		Limit:      pageSize,
		Total:      total,
	}, nil
}

// RecordVisit bumps the visit counter. A missing client is not an error: the appointment
// outlives the client record and the caller only logs it.
func (s *clientService) RecordVisit(ctx context.Context, clientID int64) error {
	err := s.repo.RecordVisit(ctx, clientID, s.opts.now())
	if err == nil {
		return nil
	}
	if errors.Is(err, repositories.ErrNotFound) {
		utils.LogWarn("Visit recorded for unknown client", map[string]interface{}{"client_id": clientID})
		return nil
	}
	return storageErr(err, "recording visit")
}

func (s *clientService) CreateClient(ctx context.Context, req CreateClientRequest) (*models.Client, error) {
	digits := utils.NormalizePhone(req.Phone)
	email := trimOptional(req.Email)

	v := &ValidationError{}
	validateClientFields(v, req.Name, digits, email)
	if err := v.Err(); err != nil {
		return nil, err
	}

	now := s.opts.now()
	client := &models.Client{
		Name:      strings.TrimSpace(req.Name),
		Phone:     digits,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, client); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: client with phone %s already exists", ErrConflict, digits)
		}
		return nil, storageErr(err, "creating client")
	}
	utils.LogInfo("Client created", map[string]interface{}{"client_id": client.ID})
	return client, nil
}

func (s *clientService) GetClientByID(ctx context.Context, id int64) (*models.Client, error) {
	client, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr(err, "client")
	}
	return client, nil
}

func (s *clientService) UpdateClient(ctx context.Context, id int64, req UpdateClientRequest) (*models.Client, error) {
	client, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr(err, "client")
	}

	if req.Name != nil {
		client.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		client.Phone = utils.NormalizePhone(*req.Phone)
	}
	if req.Email != nil {
		client.Email = trimOptional(req.Email)
	}

	v := &ValidationError{}
	validateClientFields(v, client.Name, client.Phone, client.Email)
	if err := v.Err(); err != nil {
		return nil, err
	}

	client.UpdatedAt = s.opts.now()
	if err := s.repo.Update(ctx, client); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: client with phone %s already exists", ErrConflict, client.Phone)
		}
		return nil, storageErr(err, "updating client")
	}
	return client, nil
}

func (s *clientService) ArchiveClient(ctx context.Context, id int64) error {
	if err := s.repo.Archive(ctx, id, s.opts.now()); err != nil {
		return storageErr(err, "client")
	}
	utils.LogInfo("Client archived", map[string]interface{}{"client_id": id})
	return nil
}

func (s *clientService) CountActive(ctx context.Context) (int, error) {
	n, err := s.repo.CountActive(ctx)
	if err != nil {
		return 0, storageErr(err, "counting clients")
	}
	return n, nil
}
