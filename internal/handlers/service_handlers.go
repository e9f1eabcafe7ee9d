package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"salon_backend/internal/services"
)

// ServiceHandler serves the service catalog.
type ServiceHandler struct {
	catalogService services.CatalogService
}

// NewServiceHandler creates a new ServiceHandler.
func NewServiceHandler(cs services.CatalogService) *ServiceHandler {
	return &ServiceHandler{catalogService: cs}
}

func (h *ServiceHandler) CreateService(c *gin.Context) {
	var req services.CreateServiceRequest
	if !bindJSON(c, &req) {
		return
	}

	svc, err := h.catalogService.CreateService(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "CreateService: Error from catalogService.CreateService")
		return
	}
	c.JSON(http.StatusCreated, svc)
}

// GetServices lists active services; ?include_inactive=true adds soft-deleted ones.
func (h *ServiceHandler) GetServices(c *gin.Context) {
	includeInactive, _ := strconv.ParseBool(c.Query("include_inactive"))

	list, err := h.catalogService.ListServices(c.Request.Context(), includeInactive)
	if err != nil {
		respondServiceError(c, err, "GetServices: Error from catalogService.ListServices")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ServiceHandler) GetServiceByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	svc, err := h.catalogService.GetServiceByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "GetServiceByID: Error from catalogService.GetServiceByID")
		return
	}
	c.JSON(http.StatusOK, svc)
}

func (h *ServiceHandler) UpdateService(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req services.UpdateServiceRequest
	if !bindJSON(c, &req) {
		return
	}

	svc, err := h.catalogService.UpdateService(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "UpdateService: Error from catalogService.UpdateService")
		return
	}
	c.JSON(http.StatusOK, svc)
}

// DeleteService soft-deletes a service.
func (h *ServiceHandler) DeleteService(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.catalogService.DeleteService(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "DeleteService: Error from catalogService.DeleteService")
		return
	}
	c.Status(http.StatusNoContent)
}
