package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"salon_backend/internal/models"
	"salon_backend/internal/repositories"
)

// Wednesday 2025-03-12 10:00 UTC.
var testNow = time.Date(2025, time.March, 12, 10, 0, 0, 0, time.UTC)

const (
	today     = "2025-03-12"
	tomorrow  = "2025-03-13"
	yesterday = "2025-03-11"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

type testRecorder struct {
	mu          sync.Mutex
	booked      map[string]int
	transitions map[string]int
	resolved    map[bool]int
}

func newTestRecorder() *testRecorder {
	return &testRecorder{
		booked:      make(map[string]int),
		transitions: make(map[string]int),
		resolved:    make(map[bool]int),
	}
}

func (r *testRecorder) AppointmentBooked(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.booked[outcome]++
}

func (r *testRecorder) AppointmentTransitioned(from, to models.AppointmentStatus, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions[string(from)+"->"+string(to)+":"+outcome]++
}

func (r *testRecorder) ClientResolved(created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolved[created]++
}

type testEnv struct {
	clock    *testClock
	recorder *testRecorder

	clientRepo  repositories.ClientRepository
	serviceRepo repositories.ServiceRepository
	apptRepo    repositories.AppointmentRepository

	clients ClientService
	catalog CatalogService
	appts   AppointmentService
	query   QueryService
	reports ReportService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	e := &testEnv{
		clock:       &testClock{t: testNow},
		recorder:    newTestRecorder(),
		clientRepo:  repositories.NewMemoryClientRepository(),
		serviceRepo: repositories.NewMemoryServiceRepository(),
		apptRepo:    repositories.NewMemoryAppointmentRepository(),
	}
	opts := Options{Location: time.UTC, Now: e.clock.Now, Metrics: e.recorder}
	e.clients = NewClientService(e.clientRepo, opts)
	e.catalog = NewCatalogService(e.serviceRepo, opts)
	e.appts = NewAppointmentService(e.apptRepo, e.clients, e.catalog, opts)
	e.query = NewQueryService(e.apptRepo, e.clients, e.catalog, opts)
	e.reports = NewReportService(e.apptRepo, e.catalog, opts)
	return e
}

func (e *testEnv) addService(t *testing.T, name string, price float64) *models.Service {
	t.Helper()
	svc, err := e.catalog.CreateService(context.Background(), CreateServiceRequest{Name: name, Price: price, Duration: 30})
	require.NoError(t, err)
	return svc
}

func (e *testEnv) book(t *testing.T, req BookAppointmentRequest) *models.Appointment {
	t.Helper()
	appt, err := e.appts.Book(context.Background(), req)
	require.NoError(t, err)
	return appt
}

func (e *testEnv) countClients(t *testing.T) int {
	t.Helper()
	_, total, err := e.clientRepo.List(context.Background(), models.ClientFilters{IncludeArchived: true})
	require.NoError(t, err)
	return total
}

func (e *testEnv) countAppointments(t *testing.T) int {
	t.Helper()
	_, total, err := e.apptRepo.List(context.Background(), models.AppointmentFilters{})
	require.NoError(t, err)
	return total
}

func bookingFor(service, date, tm, name, phone string) BookAppointmentRequest {
	return BookAppointmentRequest{Service: service, Date: date, Time: tm, Name: name, Phone: phone}
}

func fieldLocs(t *testing.T, err error) []string {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected *ValidationError, got %T: %v", err, err)
	locs := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		locs = append(locs, f.Loc[len(f.Loc)-1])
	}
	return locs
}

// seed stores an appointment directly, bypassing the past-slot check.
func (e *testEnv) seed(t *testing.T, service, date, tm string, status models.AppointmentStatus, clientID *int64) *models.Appointment {
	t.Helper()
	appt := &models.Appointment{
		ClientID:  clientID,
		Name:      "Seeded",
		Phone:     "11900000000",
		Service:   service,
		Date:      date,
		Time:      tm,
		Status:    status,
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
	require.NoError(t, e.apptRepo.Create(context.Background(), appt))
	return appt
}

func int64Ptr(v int64) *int64 { return &v }
