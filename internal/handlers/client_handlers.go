package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salon_backend/internal/services"
)

// ClientHandler holds the client service.
type ClientHandler struct {
	clientService services.ClientService
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(cs services.ClientService) *ClientHandler {
	return &ClientHandler{clientService: cs}
}

// CreateClient handles the creation of a new client.
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req services.CreateClientRequest
	if !bindJSON(c, &req) {
		return
	}

	client, err := h.clientService.CreateClient(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "CreateClient: Error from clientService.CreateClient")
		return
	}
	c.JSON(http.StatusCreated, client)
}

// GetClients handles searching clients with pagination. ?search= matches name, phone or email.
func (h *ClientHandler) GetClients(c *gin.Context) {
	page, limit := pageParams(c)
	result, err := h.clientService.Search(c.Request.Context(), c.Query("search"), page, limit)
	if err != nil {
		respondServiceError(c, err, "GetClients: Error from clientService.Search")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetClientByID handles fetching a single client by ID. Archived clients are still returned.
func (h *ClientHandler) GetClientByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	client, err := h.clientService.GetClientByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "GetClientByID: Error from clientService.GetClientByID")
		return
	}
	c.JSON(http.StatusOK, client)
}

// UpdateClient handles updating a client.
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req services.UpdateClientRequest
	if !bindJSON(c, &req) {
		return
	}

	client, err := h.clientService.UpdateClient(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "UpdateClient: Error from clientService.UpdateClient")
		return
	}
	c.JSON(http.StatusOK, client)
}

// DeleteClient archives a client. Appointments keep their link.
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.clientService.ArchiveClient(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "DeleteClient: Error from clientService.ArchiveClient")
		return
	}
	c.Status(http.StatusNoContent)
}
