package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salon_backend/internal/models"
	"salon_backend/internal/repositories"
	"salon_backend/internal/services"
	"salon_backend/pkg/utils"
)

// Wednesday 2025-03-12 10:00 UTC.
var fixedNow = time.Date(2025, time.March, 12, 10, 0, 0, 0, time.UTC)

type recordedEvents struct {
	mu      sync.Mutex
	booked  []int64
	changed []string
}

func (r *recordedEvents) Booked(appt *models.Appointment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.booked = append(r.booked, appt.ID)
}

func (r *recordedEvents) StatusChanged(appt *models.Appointment, from models.AppointmentStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changed = append(r.changed, string(from)+"->"+string(appt.Status))
}

type testServer struct {
	engine *gin.Engine
	events *recordedEvents
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.UseJSONFieldNames()

	events := &recordedEvents{}
	engine := gin.New()
	Setup(engine, Dependencies{
		Repos: Repositories{
			Clients:      repositories.NewMemoryClientRepository(),
			Services:     repositories.NewMemoryServiceRepository(),
			Appointments: repositories.NewMemoryAppointmentRepository(),
		},
		Options:  services.Options{Location: time.UTC, Now: func() time.Time { return fixedNow }},
		Events:   events,
		Registry: prometheus.NewRegistry(),
	})
	return &testServer{engine: engine, events: events}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type detailBody struct {
	Detail []utils.FieldError `json:"detail"`
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func detailLocs(t *testing.T, w *httptest.ResponseRecorder) []string {
	t.Helper()
	body := decode[detailBody](t, w)
	locs := make([]string, 0, len(body.Detail))
	for _, d := range body.Detail {
		locs = append(locs, strings.Join(d.Loc, "."))
	}
	return locs
}

func (s *testServer) seedService(t *testing.T, name string, price float64) {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{"name": name, "price": price, "duration": 30})
	require.NoError(t, err)
	w := s.do(t, http.MethodPost, "/services", string(body))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

const mariaBooking = `{"name":"Maria Silva","phone":"(11) 98765-4321","service":"Corte de Cabelo","date":"2025-03-13","time":"14:30"}`

func TestPing(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateAppointment(t *testing.T) {
	s := newTestServer(t)
	s.seedService(t, "Corte de Cabelo", 50)

	w := s.do(t, http.MethodPost, "/appointments", mariaBooking)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	appt := decode[models.Appointment](t, w)
	assert.Equal(t, models.AppointmentStatusPending, appt.Status)
	assert.Equal(t, "11987654321", appt.Phone)
	require.NotNil(t, appt.ClientID)
	assert.Equal(t, []int64{appt.ID}, s.events.booked)

	w = s.do(t, http.MethodGet, "/clients?search=98765", "")
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[models.Page[models.Client]](t, w)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, *appt.ClientID, page.Items[0].ID)
}

func TestCreateAppointmentValidation(t *testing.T) {
	s := newTestServer(t)
	s.seedService(t, "Corte de Cabelo", 50)

	tests := []struct {
		name string
		body string
		locs []string
	}{
		{"empty body object", `{}`, []string{"body.name", "body.phone", "body.service", "body.date", "body.time"}},
		{"past date", `{"name":"Maria","phone":"11987654321","service":"Corte de Cabelo","date":"2025-03-11","time":"14:30"}`, []string{"body.time"}},
		{"unknown service", `{"name":"Maria","phone":"11987654321","service":"Pintura","date":"2025-03-13","time":"14:30"}`, []string{"body.service"}},
		{"wrong type", `{"name":"Maria","phone":"11987654321","service":"Corte de Cabelo","date":20250313,"time":"14:30"}`, []string{"body.date"}},
		{"malformed json", `{"name":`, []string{"body"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/appointments", tt.body)
			require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
			assert.ElementsMatch(t, tt.locs, detailLocs(t, w))
		})
	}
	assert.Empty(t, s.events.booked)

	w := s.do(t, http.MethodGet, "/clients", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode[models.Page[models.Client]](t, w).Total)
}

func TestUpdateAppointmentStatus(t *testing.T) {
	s := newTestServer(t)
	s.seedService(t, "Corte de Cabelo", 50)
	appt := decode[models.Appointment](t, s.do(t, http.MethodPost, "/appointments", mariaBooking))
	path := "/appointments/" + utils.Int64ToStr(appt.ID)

	w := s.do(t, http.MethodPut, path, `{"status":"confirmed"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.AppointmentStatusConfirmed, decode[models.Appointment](t, w).Status)

	w = s.do(t, http.MethodPut, path, `{"status":"completed"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPut, path, `{"status":"canceled"}`)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, utils.ErrCodeInvalidTransition, decode[errorBody](t, w).Error.Code)

	w = s.do(t, http.MethodPut, path, `{"status":"done"}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, []string{"body.status"}, detailLocs(t, w))

	w = s.do(t, http.MethodPut, path, `{}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, []string{"body.status"}, detailLocs(t, w))

	w = s.do(t, http.MethodPut, "/appointments/999", `{"status":"confirmed"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPut, "/appointments/abc", `{"status":"confirmed"}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, []string{"path.id"}, detailLocs(t, w))

	assert.Equal(t, []string{"pending->confirmed", "confirmed->completed"}, s.events.changed)

	client := decode[models.Client](t, s.do(t, http.MethodGet, "/clients/"+utils.Int64ToStr(*appt.ClientID), ""))
	assert.Equal(t, 1, client.TotalVisits)
}

func TestGetAppointments(t *testing.T) {
	s := newTestServer(t)
	s.seedService(t, "Corte de Cabelo", 50)
	for _, body := range []string{
		mariaBooking,
		`{"name":"Ana Souza","phone":"21912345678","service":"Corte de Cabelo","date":"2025-03-14","time":"09:00"}`,
		`{"name":"João Lima","phone":"31900001111","service":"Corte de Cabelo","date":"2025-03-13","time":"16:00"}`,
	} {
		require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/appointments", body).Code)
	}

	w := s.do(t, http.MethodGet, "/appointments?date=2025-03-13&limit=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[models.Page[models.Appointment]](t, w)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "João Lima", page.Items[0].Name)

	w = s.do(t, http.MethodGet, "/appointments?status=all&search=ana", "")
	require.Equal(t, http.StatusOK, w.Code)
	page = decode[models.Page[models.Appointment]](t, w)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "Ana Souza", page.Items[0].Name)

	w = s.do(t, http.MethodGet, "/appointments?status=done&date=13-03-2025", "")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.ElementsMatch(t, []string{"query.status", "query.date"}, detailLocs(t, w))

	w = s.do(t, http.MethodGet, "/appointments/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Maria Silva", decode[models.Appointment](t, w).Name)
}

func TestClientRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/clients", `{"name":"Maria"}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, []string{"body.phone"}, detailLocs(t, w))

	w = s.do(t, http.MethodPost, "/clients", `{"name":"Maria","phone":"(11) 98765-4321"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	client := decode[models.Client](t, w)
	path := "/clients/" + utils.Int64ToStr(client.ID)

	w = s.do(t, http.MethodPost, "/clients", `{"name":"Other","phone":"11987654321"}`)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, utils.ErrCodeConflict, decode[errorBody](t, w).Error.Code)

	w = s.do(t, http.MethodPut, path, `{"name":"Maria Silva"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Maria Silva", decode[models.Client](t, w).Name)

	w = s.do(t, http.MethodDelete, path, "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, "/clients", "")
	assert.Equal(t, 0, decode[models.Page[models.Client]](t, w).Total)

	w = s.do(t, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, decode[models.Client](t, w).ArchivedAt)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/clients/404", "").Code)
}

func TestServiceRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/services", `{"name":"Corte","price":-1,"duration":0}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.ElementsMatch(t, []string{"body.price", "body.duration"}, detailLocs(t, w))

	s.seedService(t, "Corte", 50)
	s.seedService(t, "Escova", 40)
	assert.Equal(t, http.StatusConflict, s.do(t, http.MethodPost, "/services", `{"name":"corte","price":1,"duration":10}`).Code)

	require.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/services/1", "").Code)

	active := decode[[]models.Service](t, s.do(t, http.MethodGet, "/services", ""))
	require.Len(t, active, 1)
	assert.Equal(t, "Escova", active[0].Name)

	all := decode[[]models.Service](t, s.do(t, http.MethodGet, "/services?include_inactive=true", ""))
	assert.Len(t, all, 2)

	w = s.do(t, http.MethodPut, "/services/2", `{"price":45.5}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 45.5, decode[models.Service](t, w).Price)
}

func TestStatsAndReports(t *testing.T) {
	s := newTestServer(t)
	s.seedService(t, "Corte de Cabelo", 50)
	appt := decode[models.Appointment](t, s.do(t, http.MethodPost, "/appointments", mariaBooking))
	path := "/appointments/" + utils.Int64ToStr(appt.ID)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPut, path, `{"status":"confirmed"}`).Code)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPut, path, `{"status":"completed"}`).Code)

	w := s.do(t, http.MethodGet, "/stats?timeframe=week", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	stats := decode[models.StatsSummary](t, w)
	assert.Equal(t, 1, stats.Count)
	assert.Equal(t, 0, stats.PendingCount)
	assert.Equal(t, 50.0, stats.RevenueEstimate)
	assert.Equal(t, 1, stats.TotalClients)

	w = s.do(t, http.MethodGet, "/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode[models.StatsSummary](t, w).Count)

	w = s.do(t, http.MethodGet, "/stats?timeframe=year", "")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, []string{"query.timeframe"}, detailLocs(t, w))

	revenue := decode[[]models.RevenueReportItem](t, s.do(t, http.MethodGet, "/reports/revenue?months=2", ""))
	assert.Equal(t, []models.RevenueReportItem{{Month: "2025-02", Value: 0}, {Month: "2025-03", Value: 50}}, revenue)

	top := decode[[]models.ServiceReportItem](t, s.do(t, http.MethodGet, "/reports/services", ""))
	assert.Equal(t, []models.ServiceReportItem{{Name: "Corte de Cabelo", Count: 1}}, top)

	retention := decode[models.ClientRetentionReport](t, s.do(t, http.MethodGet, "/reports/clients", ""))
	assert.Equal(t, models.ClientRetentionReport{Recurring: 0, New: 100, Clients: 1}, retention)

	counts := decode[[]models.AppointmentReportItem](t, s.do(t, http.MethodGet, "/reports/appointments?months=2", ""))
	assert.Equal(t, []models.AppointmentReportItem{{Month: "2025-02", Count: 0}, {Month: "2025-03", Count: 1}}, counts)

	w = s.do(t, http.MethodGet, "/reports/summary", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	summary := decode[models.ReportSummary](t, w)
	assert.Equal(t, models.ReportTypeRevenue, summary.Type)
	assert.Equal(t, models.ReportPeriodMonth, summary.Period)
	assert.Equal(t, "2025-03-12", summary.To)

	w = s.do(t, http.MethodGet, "/reports/summary?report_type=appointments&time_frame=decade", "")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, []string{"query.time_frame"}, detailLocs(t, w))
}
