package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"salon_backend/internal/handlers"
	"salon_backend/internal/repositories"
	"salon_backend/internal/services"
)

// Repositories is the storage backend the services run on.
type Repositories struct {
	Clients      repositories.ClientRepository
	Services     repositories.ServiceRepository
	Appointments repositories.AppointmentRepository
}

// Dependencies carries everything Setup wires into handlers.
type Dependencies struct {
	Repos    Repositories
	Options  services.Options
	Events   handlers.EventDispatcher
	Registry *prometheus.Registry
}

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, deps Dependencies) {
	// Initialize Services
	clientService := services.NewClientService(deps.Repos.Clients, deps.Options)
	catalogService := services.NewCatalogService(deps.Repos.Services, deps.Options)
	appointmentService := services.NewAppointmentService(deps.Repos.Appointments, clientService, catalogService, deps.Options)
	queryService := services.NewQueryService(deps.Repos.Appointments, clientService, catalogService, deps.Options)
	reportService := services.NewReportService(deps.Repos.Appointments, catalogService, deps.Options)

	// Initialize Handlers
	appointmentHandler := handlers.NewAppointmentHandler(appointmentService, queryService, deps.Events)
	clientHandler := handlers.NewClientHandler(clientService)
	serviceHandler := handlers.NewServiceHandler(catalogService)
	reportHandler := handlers.NewReportHandler(queryService, reportService)

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if deps.Registry != nil {
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	root := engine.Group("")
	SetupAppointmentRoutes(root, appointmentHandler)
	SetupClientRoutes(root, clientHandler)
	SetupServiceRoutes(root, serviceHandler)
	SetupReportRoutes(root, reportHandler)
}
