package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salon_backend/internal/models"
)

func TestSchedulerMetricsCounters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewSchedulerMetrics(registry)

	m.AppointmentBooked("success")
	m.AppointmentBooked("success")
	m.AppointmentBooked("invalid")
	m.AppointmentTransitioned(models.AppointmentStatusPending, models.AppointmentStatusConfirmed, "success")
	m.ClientResolved(true)
	m.ClientResolved(false)
	m.ClientResolved(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.bookings.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookings.WithLabelValues("invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("pending", "confirmed", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.clientsResolved.WithLabelValues("false")))
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	registry := prometheus.NewRegistry()
	m := NewHTTPMetrics(registry)

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/appointments/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/appointments/1", "/appointments/2", "/nope"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/appointments/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")))

	families, err := registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
