package services

import (
	"context"
	"math"
	"strings"
	"time"

	"salon_backend/internal/models"
	"salon_backend/internal/repositories"
	"salon_backend/pkg/utils"
)

// QueryService is the read side over appointments: filtered listings and dashboard stats.
type QueryService interface {
	// ParseFilters validates raw query parameters. status accepts the four statuses,
	// "all" or empty; date must be YYYY-MM-DD when set.
	ParseFilters(status, date, search string) (models.AppointmentFilters, error)
	List(ctx context.Context, filters models.AppointmentFilters) ([]models.Appointment, error)
	Paginate(ctx context.Context, filters models.AppointmentFilters, page, pageSize int) (*models.Page[models.Appointment], error)
	Summarize(ctx context.Context, timeframe models.Timeframe) (*models.StatsSummary, error)
}

type queryService struct {
	repo    repositories.AppointmentRepository
	clients ClientService
	catalog CatalogService
	opts    Options
}

// NewQueryService creates a new instance of QueryService.
func NewQueryService(
	repo repositories.AppointmentRepository,
	clients ClientService,
	catalog CatalogService,
	opts Options,
) QueryService {
	return &queryService{repo: repo, clients: clients, catalog: catalog, opts: opts.withDefaults()}
}

func (s *queryService) ParseFilters(status, date, search string) (models.AppointmentFilters, error) {
	var filters models.AppointmentFilters
	v := &ValidationError{}

	status = strings.TrimSpace(status)
	if status != "" && status != models.StatusFilterAll {
		st, err := models.ParseAppointmentStatus(status)
		if err != nil {
			v.Add("status must be one of: pending, confirmed, completed, canceled, all", "query", "status")
		} else {
			filters.Status = &st
		}
	}

	date = strings.TrimSpace(date)
	if date != "" {
		if _, ok := parseStrict(models.DateLayout, date, time.UTC); !ok {
			v.Add("date must be in YYYY-MM-DD format", "query", "date")
		} else {
			filters.Date = &date
		}
	}

	filters.Search = strings.TrimSpace(search)
	return filters, v.Err()
}

func (s *queryService) List(ctx context.Context, filters models.AppointmentFilters) ([]models.Appointment, error) {
	filters.Page, filters.PageSize = 0, 0
	items, _, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, storageErr(err, "listing appointments")
	}
	return items, nil
}

func (s *queryService) Paginate(ctx context.Context, filters models.AppointmentFilters, page, pageSize int) (*models.Page[models.Appointment], error) {
	page, pageSize = utils.NormalizePage(page, pageSize)
	filters.Page, filters.PageSize = page, pageSize

	items, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, storageErr(err, "listing appointments")
	}
	return &models.Page[models.Appointment]{
		Items:      items,
		TotalPages: utils.TotalPages(total, pageSize),
		Page:       page,
		Limit:      pageSize,
		Total:      total,
	}, nil
}

// window returns the inclusive calendar dates covered by timeframe around today.
func window(timeframe models.Timeframe, now time.Time) (time.Time, time.Time) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch timeframe {
	case models.TimeframeWeek:
		monday := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))
		return monday, monday.AddDate(0, 0, 6)
	case models.TimeframeMonth:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		return first, first.AddDate(0, 1, -1)
	default:
		return today, today
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// Summarize counts and prices the appointments dated inside the window, whatever their
// status. PendingCount is the backlog across all dates.
func (s *queryService) Summarize(ctx context.Context, timeframe models.Timeframe) (*models.StatsSummary, error) {
	if timeframe == "" {
		timeframe = models.TimeframeDay
	}
	if !timeframe.IsValid() {
		return nil, newValidationError("timeframe must be one of: day, week, month", "query", "timeframe")
	}

	start, end := window(timeframe, s.opts.now())
	from, to := start.Format(models.DateLayout), end.Format(models.DateLayout)

	appointments, err := s.List(ctx, models.AppointmentFilters{DateFrom: &from, DateTo: &to})
	if err != nil {
		return nil, err
	}
	pending := models.AppointmentStatusPending
	_, pendingCount, err := s.repo.List(ctx, models.AppointmentFilters{Status: &pending, Page: 1, PageSize: 1})
	if err != nil {
		return nil, storageErr(err, "counting pending appointments")
	}
	prices, err := s.catalog.ActivePrices(ctx)
	if err != nil {
		return nil, err
	}
	totalClients, err := s.clients.CountActive(ctx)
	if err != nil {
		return nil, err
	}

	summary := &models.StatsSummary{
		Timeframe:    timeframe,
		From:         from,
		To:           to,
		Count:        len(appointments),
		PendingCount: pendingCount,
		TotalClients: totalClients,
	}
	for _, a := range appointments {
		price, ok := prices[a.Service]
		if !ok {
			summary.UnpricedCount++
			continue
		}
		summary.RevenueEstimate += price
	}
	summary.RevenueEstimate = roundCents(summary.RevenueEstimate)
	return summary, nil
}
