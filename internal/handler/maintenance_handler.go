package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Verti90/commun-api/internal/models"
	"github.com/Verti90/commun-api/internal/service"
	appErrors "github.com/Verti90/commun-api/pkg/errors"
	"github.com/Verti90/commun-api/pkg/response"
)

type maintenanceService interface {
	List(ctx context.Context, claims *models.JWTClaims) ([]models.MaintenanceRequest, error)
	Create(ctx context.Context, residentID string, req service.CreateMaintenanceRequest) (*models.MaintenanceRequest, error)
	UpdateStatus(ctx context.Context, id string, status models.MaintenanceStatus) (*models.MaintenanceRequest, error)
	Delete(ctx context.Context, claims *models.JWTClaims, id string) error
}

// MaintenanceHandler exposes maintenance ticket endpoints.
type MaintenanceHandler struct {
	service maintenanceService
}

// NewMaintenanceHandler builds a new handler.
func NewMaintenanceHandler(service maintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{service: service}
}

// List godoc
// @Summary List maintenance tickets
// @Tags Maintenance
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /maintenance [get]
func (h *MaintenanceHandler) List(c *gin.Context) {
	requests, err := h.service.List(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// Create godoc
// @Summary File a maintenance ticket
// @Tags Maintenance
// @Accept json
// @Produce json
// @Param payload body service.CreateMaintenanceRequest true "Ticket payload"
// @Success 201 {object} response.Envelope
// @Router /maintenance [post]
func (h *MaintenanceHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	var req service.CreateMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid maintenance payload"))
		return
	}
	ticket, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, ticket)
}

type updateTicketStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus godoc
// @Summary Change a ticket's lifecycle status
// @Tags Maintenance
// @Accept json
// @Produce json
// @Param id path string true "Ticket ID"
// @Param payload body updateTicketStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /maintenance/{id}/status [patch]
func (h *MaintenanceHandler) UpdateStatus(c *gin.Context) {
	var req updateTicketStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}
	ticket, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), models.MaintenanceStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ticket, nil)
}

// Delete godoc
// @Summary Delete a maintenance ticket
// @Tags Maintenance
// @Param id path string true "Ticket ID"
// @Success 204
// @Router /maintenance/{id} [delete]
func (h *MaintenanceHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), claimsFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
