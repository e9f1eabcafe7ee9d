package services

import (
	"context"
	"math"
	"time"

	"salon_backend/internal/models"
	"salon_backend/internal/repositories"
)

const (
	DefaultReportMonths = 6
	MaxReportMonths     = 24
	DefaultTopServices  = 5
	MaxTopServices      = 50
)

// ReportService aggregates history for the admin reports page.
type ReportService interface {
	// RevenueByMonth sums completed appointments at current catalog prices for the last
	// months calendar months, oldest first. Months without revenue are present with 0.
	RevenueByMonth(ctx context.Context, months int) ([]models.RevenueReportItem, error)
	// AppointmentsByMonth counts appointments of any status over the same months.
	AppointmentsByMonth(ctx context.Context, months int) ([]models.AppointmentReportItem, error)
	TopServices(ctx context.Context, limit int) ([]models.ServiceReportItem, error)
	ClientRetention(ctx context.Context) (*models.ClientRetentionReport, error)
	// Summary compares the period ending today with the period of the same length before it.
	// Empty reportType and period default to revenue and month.
	Summary(ctx context.Context, reportType models.ReportType, period models.ReportPeriod) (*models.ReportSummary, error)
}

type reportService struct {
	repo    repositories.AppointmentRepository
	catalog CatalogService
	opts    Options
}

// NewReportService creates a new instance of ReportService.
func NewReportService(repo repositories.AppointmentRepository, catalog CatalogService, opts Options) ReportService {
	return &reportService{repo: repo, catalog: catalog, opts: opts.withDefaults()}
}

func clamp(v, fallback, limit int) int {
	if v <= 0 {
		return fallback
	}
	if v > limit {
		return limit
	}
	return v
}

// monthRange returns the YYYY-MM keys of the last months calendar months, oldest first,
// and the inclusive date range they span.
func monthRange(now time.Time, months int) ([]string, string, string) {
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	first := current.AddDate(0, -(months - 1), 0)

	keys := make([]string, months)
	for i := range keys {
		keys[i] = first.AddDate(0, i, 0).Format("2006-01")
	}
	return keys, first.Format(models.DateLayout), current.AddDate(0, 1, -1).Format(models.DateLayout)
}

func (s *reportService) RevenueByMonth(ctx context.Context, months int) ([]models.RevenueReportItem, error) {
	keys, from, to := monthRange(s.opts.now(), clamp(months, DefaultReportMonths, MaxReportMonths))

	completed := models.AppointmentStatusCompleted
	appointments, _, err := s.repo.List(ctx, models.AppointmentFilters{Status: &completed, DateFrom: &from, DateTo: &to})
	if err != nil {
		return nil, storageErr(err, "listing completed appointments")
	}
	prices, err := s.catalog.ActivePrices(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]models.RevenueReportItem, len(keys))
	index := make(map[string]int, len(keys))
	for i, key := range keys {
		items[i] = models.RevenueReportItem{Month: key}
		index[key] = i
	}
	for _, a := range appointments {
		if i, ok := index[a.Date[:7]]; ok {
			items[i].Value += prices[a.Service]
		}
	}
	for i := range items {
		items[i].Value = roundCents(items[i].Value)
	}
	return items, nil
}

func (s *reportService) AppointmentsByMonth(ctx context.Context, months int) ([]models.AppointmentReportItem, error) {
	keys, from, to := monthRange(s.opts.now(), clamp(months, DefaultReportMonths, MaxReportMonths))

	appointments, _, err := s.repo.List(ctx, models.AppointmentFilters{DateFrom: &from, DateTo: &to})
	if err != nil {
		return nil, storageErr(err, "listing appointments")
	}

	items := make([]models.AppointmentReportItem, len(keys))
	index := make(map[string]int, len(keys))
	for i, key := range keys {
		items[i] = models.AppointmentReportItem{Month: key}
		index[key] = i
	}
	for _, a := range appointments {
		if i, ok := index[a.Date[:7]]; ok {
			items[i].Count++
		}
	}
	return items, nil
}

func (s *reportService) TopServices(ctx context.Context, limit int) ([]models.ServiceReportItem, error) {
	items, err := s.repo.CountByService(ctx, clamp(limit, DefaultTopServices, MaxTopServices))
	if err != nil {
		return nil, storageErr(err, "counting appointments by service")
	}
	return items, nil
}

// ClientRetention treats a linked client with more than one appointment as recurring.
// With no linked clients everything counts as new.
func (s *reportService) ClientRetention(ctx context.Context) (*models.ClientRetentionReport, error) {
	counts, err := s.repo.CountByClient(ctx)
	if err != nil {
		return nil, storageErr(err, "counting appointments by client")
	}
	if len(counts) == 0 {
		return &models.ClientRetentionReport{Recurring: 0, New: 100}, nil
	}

	recurring := 0
	for _, n := range counts {
		if n > 1 {
			recurring++
		}
	}
	pct := int(math.Round(float64(recurring) * 100 / float64(len(counts))))
	return &models.ClientRetentionReport{Recurring: pct, New: 100 - pct, Clients: len(counts)}, nil
}

func (s *reportService) Summary(ctx context.Context, reportType models.ReportType, period models.ReportPeriod) (*models.ReportSummary, error) {
	if reportType == "" {
		reportType = models.ReportTypeRevenue
	}
	if period == "" {
		period = models.ReportPeriodMonth
	}
	v := &ValidationError{}
	if !reportType.IsValid() {
		v.Add("report_type must be one of: revenue, appointments", "query", "report_type")
	}
	days := period.Days()
	if days == 0 {
		v.Add("time_frame must be one of: week, month, quarter, year", "query", "time_frame")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	now := s.opts.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	currentStart := today.AddDate(0, 0, -(days - 1))
	from := currentStart.Format(models.DateLayout)
	to := today.Format(models.DateLayout)
	previousFrom := currentStart.AddDate(0, 0, -days).Format(models.DateLayout)

	appointments, _, err := s.repo.List(ctx, models.AppointmentFilters{DateFrom: &previousFrom, DateTo: &to})
	if err != nil {
		return nil, storageErr(err, "listing appointments")
	}

	var current, previous []models.Appointment
	for _, a := range appointments {
		if a.Date >= from {
			current = append(current, a)
		} else {
			previous = append(previous, a)
		}
	}

	summary := &models.ReportSummary{Type: reportType, Period: period, From: from, To: to}
	switch reportType {
	case models.ReportTypeRevenue:
		prices, err := s.catalog.ActivePrices(ctx)
		if err != nil {
			return nil, err
		}
		var priced int
		summary.Total, priced = completedRevenue(current, prices)
		summary.PreviousTotal, _ = completedRevenue(previous, prices)
		if priced > 0 {
			summary.AvgValue = summary.Total / float64(priced)
		}
	case models.ReportTypeAppointments:
		summary.Total = float64(len(current))
		summary.PreviousTotal = float64(len(previous))
		perClient := make(map[int64]int)
		linked := 0
		for _, a := range current {
			if a.ClientID != nil {
				perClient[*a.ClientID]++
				linked++
			}
		}
		if len(perClient) > 0 {
			summary.AvgValue = float64(linked) / float64(len(perClient))
		}
	}

	if summary.PreviousTotal > 0 {
		summary.GrowthRate = (summary.Total - summary.PreviousTotal) / summary.PreviousTotal * 100
	}
	summary.OccupationRate = math.Min(100, float64(len(current))*100/float64(days*models.SlotsPerDay))

	summary.Total = roundCents(summary.Total)
	summary.PreviousTotal = roundCents(summary.PreviousTotal)
	summary.GrowthRate = roundCents(summary.GrowthRate)
	summary.AvgValue = roundCents(summary.AvgValue)
	summary.OccupationRate = roundCents(summary.OccupationRate)
	return summary, nil
}

// completedRevenue sums the catalog price of completed appointments and reports how many
// of them had a price.
func completedRevenue(appointments []models.Appointment, prices map[string]float64) (float64, int) {
	var total float64
	var priced int
	for _, a := range appointments {
		if a.Status != models.AppointmentStatusCompleted {
			continue
		}
		if price, ok := prices[a.Service]; ok {
			total += price
			priced++
		}
	}
	return total, priced
}
