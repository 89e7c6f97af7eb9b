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

type transportationService interface {
	List(ctx context.Context, claims *models.JWTClaims) ([]models.TransportationRequest, error)
	Create(ctx context.Context, residentID string, req service.CreateTransportationRequest) (*models.TransportationRequest, error)
	UpdateStatus(ctx context.Context, claims *models.JWTClaims, id string, status models.TransportationStatus) (*models.TransportationRequest, error)
	Delete(ctx context.Context, claims *models.JWTClaims, id string) error
}

// TransportationHandler exposes ride booking endpoints.
type TransportationHandler struct {
	service transportationService
}

// NewTransportationHandler builds a new handler.
func NewTransportationHandler(service transportationService) *TransportationHandler {
	return &TransportationHandler{service: service}
}

// List godoc
// @Summary List ride requests
// @Tags Transportation
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /transportation [get]
func (h *TransportationHandler) List(c *gin.Context) {
	requests, err := h.service.List(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// Create godoc
// @Summary Book a ride
// @Tags Transportation
// @Accept json
// @Produce json
// @Param payload body service.CreateTransportationRequest true "Ride payload"
// @Success 201 {object} response.Envelope
// @Router /transportation [post]
func (h *TransportationHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	var req service.CreateTransportationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid transportation payload"))
		return
	}
	ride, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, ride)
}

type updateRideStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus godoc
// @Summary Change a ride's lifecycle status
// @Tags Transportation
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body updateRideStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /transportation/{id}/status [patch]
func (h *TransportationHandler) UpdateStatus(c *gin.Context) {
	var req updateRideStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}
	ride, err := h.service.UpdateStatus(c.Request.Context(), claimsFromContext(c), c.Param("id"), models.TransportationStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ride, nil)
}

// Delete godoc
// @Summary Delete a ride request
// @Tags Transportation
// @Param id path string true "Request ID"
// @Success 204
// @Router /transportation/{id} [delete]
func (h *TransportationHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), claimsFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
