package router

import (
	"github.com/gin-gonic/gin"

	"salon_backend/internal/handlers"
)

// SetupAppointmentRoutes sets up the booking and appointment lifecycle routes.
func SetupAppointmentRoutes(group *gin.RouterGroup, h *handlers.AppointmentHandler) {
	appointments := group.Group("/appointments")
	{
		appointments.POST("", h.CreateAppointment)
		appointments.GET("", h.GetAppointments)
		appointments.GET("/:id", h.GetAppointmentByID)
		appointments.PUT("/:id", h.UpdateAppointmentStatus)
	}
}

// SetupClientRoutes sets up the client directory routes.
func SetupClientRoutes(group *gin.RouterGroup, h *handlers.ClientHandler) {
	clients := group.Group("/clients")
	{
		clients.POST("", h.CreateClient)
		clients.GET("", h.GetClients)
		clients.GET("/:id", h.GetClientByID)
		clients.PUT("/:id", h.UpdateClient)
		clients.DELETE("/:id", h.DeleteClient)
	}
}

// SetupServiceRoutes sets up the service catalog routes.
func SetupServiceRoutes(group *gin.RouterGroup, h *handlers.ServiceHandler) {
	catalog := group.Group("/services")
	{
		catalog.POST("", h.CreateService)
		catalog.GET("", h.GetServices)
		catalog.GET("/:id", h.GetServiceByID)
		catalog.PUT("/:id", h.UpdateService)
		catalog.DELETE("/:id", h.DeleteService)
	}
}

// SetupReportRoutes sets up dashboard stats and reports.
func SetupReportRoutes(group *gin.RouterGroup, h *handlers.ReportHandler) {
	group.GET("/stats", h.GetStats)

	reports := group.Group("/reports")
	{
		reports.GET("/revenue", h.GetRevenueReport)
		reports.GET("/appointments", h.GetAppointmentsReport)
		reports.GET("/services", h.GetServicesReport)
		reports.GET("/clients", h.GetClientsReport)
		reports.GET("/summary", h.GetReportSummary)
	}
}
