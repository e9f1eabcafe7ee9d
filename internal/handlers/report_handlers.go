package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salon_backend/internal/models"
	"salon_backend/internal/services"
	"salon_backend/pkg/utils"
)

// ReportHandler serves the dashboard stats and the admin reports.
type ReportHandler struct {
	queryService  services.QueryService
	reportService services.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(qs services.QueryService, rs services.ReportService) *ReportHandler {
	return &ReportHandler{queryService: qs, reportService: rs}
}

// GetStats handles GET /stats?timeframe=day|week|month. The default is day.
func (h *ReportHandler) GetStats(c *gin.Context) {
	timeframe := models.Timeframe(c.DefaultQuery("timeframe", string(models.TimeframeDay)))

	summary, err := h.queryService.Summarize(c.Request.Context(), timeframe)
	if err != nil {
		respondServiceError(c, err, "GetStats: Error from queryService.Summarize")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetRevenueReport handles GET /reports/revenue?months=N.
func (h *ReportHandler) GetRevenueReport(c *gin.Context) {
	months := utils.AtoiDefault(c.Query("months"), services.DefaultReportMonths)

	items, err := h.reportService.RevenueByMonth(c.Request.Context(), months)
	if err != nil {
		respondServiceError(c, err, "GetRevenueReport: Error from reportService.RevenueByMonth")
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetAppointmentsReport handles GET /reports/appointments?months=N.
func (h *ReportHandler) GetAppointmentsReport(c *gin.Context) {
	months := utils.AtoiDefault(c.Query("months"), services.DefaultReportMonths)

	items, err := h.reportService.AppointmentsByMonth(c.Request.Context(), months)
	if err != nil {
		respondServiceError(c, err, "GetAppointmentsReport: Error from reportService.AppointmentsByMonth")
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetServicesReport handles GET /reports/services?limit=N.
func (h *ReportHandler) GetServicesReport(c *gin.Context) {
	limit := utils.AtoiDefault(c.Query("limit"), services.DefaultTopServices)

	items, err := h.reportService.TopServices(c.Request.Context(), limit)
	if err != nil {
		respondServiceError(c, err, "GetServicesReport: Error from reportService.TopServices")
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetClientsReport handles GET /reports/clients.
func (h *ReportHandler) GetClientsReport(c *gin.Context) {
	report, err := h.reportService.ClientRetention(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "GetClientsReport: Error from reportService.ClientRetention")
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetReportSummary handles GET /reports/summary?report_type=revenue|appointments&time_frame=week|month|quarter|year.
func (h *ReportHandler) GetReportSummary(c *gin.Context) {
	reportType := models.ReportType(c.Query("report_type"))
	period := models.ReportPeriod(c.Query("time_frame"))

	summary, err := h.reportService.Summary(c.Request.Context(), reportType, period)
	if err != nil {
		respondServiceError(c, err, "GetReportSummary: Error from reportService.Summary")
		return
	}
	c.JSON(http.StatusOK, summary)
}
