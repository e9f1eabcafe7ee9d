package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salon_backend/internal/models"
	"salon_backend/internal/services"
	"salon_backend/pkg/utils"
)

// AppointmentHandler serves booking, listing and status changes.
type AppointmentHandler struct {
	appointmentService services.AppointmentService
	queryService       services.QueryService
	events             EventDispatcher
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(as services.AppointmentService, qs services.QueryService, events EventDispatcher) *AppointmentHandler {
	return &AppointmentHandler{appointmentService: as, queryService: qs, events: events}
}

// CreateAppointment handles POST /appointments.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req services.BookAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	appt, err := h.appointmentService.Book(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "CreateAppointment: Error from appointmentService.Book")
		return
	}
	h.events.Booked(appt)
	c.JSON(http.StatusCreated, appt)
}

// GetAppointments handles GET /appointments with status, date, search and paging filters.
func (h *AppointmentHandler) GetAppointments(c *gin.Context) {
	filters, err := h.queryService.ParseFilters(c.Query("status"), c.Query("date"), c.Query("search"))
	if err != nil {
		respondServiceError(c, err, "GetAppointments: invalid filters")
		return
	}

	page, limit := pageParams(c)
	result, err := h.queryService.Paginate(c.Request.Context(), filters, page, limit)
	if err != nil {
		respondServiceError(c, err, "GetAppointments: Error from queryService.Paginate")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetAppointmentByID handles GET /appointments/:id.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	appt, err := h.appointmentService.GetAppointmentByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "GetAppointmentByID: Error from appointmentService.GetAppointmentByID")
		return
	}
	c.JSON(http.StatusOK, appt)
}

// UpdateAppointmentStatus handles PUT /appointments/:id with a {"status": ...} body.
func (h *AppointmentHandler) UpdateAppointmentStatus(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req services.UpdateAppointmentStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	status, err := models.ParseAppointmentStatus(req.Status)
	if err != nil {
		utils.RespondValidation(c, []utils.FieldError{{
			Loc: []string{"body", "status"},
			Msg: "status must be one of: pending, confirmed, completed, canceled",
		}})
		return
	}

	appt, from, err := h.appointmentService.Transition(c.Request.Context(), id, status)
	if err != nil {
		respondServiceError(c, err, "UpdateAppointmentStatus: Error from appointmentService.Transition")
		return
	}
	h.events.StatusChanged(appt, from)
	c.JSON(http.StatusOK, appt)
}
