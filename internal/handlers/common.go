package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"salon_backend/internal/models"
	"salon_backend/internal/services"
	"salon_backend/pkg/utils"
)

// EventDispatcher fans appointment changes out to the notifier without blocking the response.
type EventDispatcher interface {
	Booked(appt *models.Appointment)
	StatusChanged(appt *models.Appointment, from models.AppointmentStatus)
}

// parseIDParam reads a positive :id path parameter, responding 422 on failure.
func parseIDParam(c *gin.Context) (int64, bool) {
	id, err := utils.StrToPositiveInt64(c.Param("id"))
	if err != nil {
		utils.RespondValidation(c, []utils.FieldError{{Loc: []string{"path", "id"}, Msg: "id must be a positive integer"}})
		return 0, false
	}
	return id, true
}

// bindJSON decodes the body into req, responding 422 with field details on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.RespondValidation(c, utils.BindErrorFields(err))
		return false
	}
	return true
}

// pageParams reads ?page= and ?limit=. Malformed values fall back to the defaults.
func pageParams(c *gin.Context) (int, int) {
	return utils.AtoiDefault(c.Query("page"), 1), utils.AtoiDefault(c.Query("limit"), utils.DefaultPageSize)
}

// respondServiceError maps the service error kinds onto HTTP responses.
func respondServiceError(c *gin.Context, err error, op string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.RespondValidation(c, verr.Fields)
	case errors.Is(err, services.ErrNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Resource not found.", err.Error()))
	case errors.Is(err, services.ErrInvalidTransition):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeInvalidTransition, "Status transition not allowed.", err.Error()))
	case errors.Is(err, services.ErrConflict):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Resource already exists.", err.Error()))
	default:
		utils.LogError(err, op, map[string]interface{}{"request_id": c.GetString(utils.RequestIDKey)})
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Internal server error.", ""))
	}
}
