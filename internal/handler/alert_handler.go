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

type alertService interface {
	ListAlerts(ctx context.Context) ([]models.Alert, error)
	CreateAlert(ctx context.Context, req service.CreateAlertRequest) (*models.Alert, error)
	DeleteAlert(ctx context.Context, id string) error
	ListReminders(ctx context.Context, claims *models.JWTClaims, residentID string) ([]models.WellnessReminder, error)
	CreateReminder(ctx context.Context, req service.CreateReminderRequest) (*models.WellnessReminder, error)
	CompleteReminder(ctx context.Context, claims *models.JWTClaims, id string) error
	DeleteReminder(ctx context.Context, id string) error
}

// AlertHandler exposes community alert and wellness reminder endpoints.
type AlertHandler struct {
	service alertService
}

// NewAlertHandler builds a new handler.
func NewAlertHandler(service alertService) *AlertHandler {
	return &AlertHandler{service: service}
}

// ListAlerts godoc
// @Summary List community alerts
// @Tags Alerts
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /alerts [get]
func (h *AlertHandler) ListAlerts(c *gin.Context) {
	alerts, err := h.service.ListAlerts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, alerts, nil)
}

// CreateAlert godoc
// @Summary Publish a community alert
// @Tags Alerts
// @Accept json
// @Produce json
// @Param payload body service.CreateAlertRequest true "Alert payload"
// @Success 201 {object} response.Envelope
// @Router /alerts [post]
func (h *AlertHandler) CreateAlert(c *gin.Context) {
	var req service.CreateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid alert payload"))
		return
	}
	alert, err := h.service.CreateAlert(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, alert)
}

// DeleteAlert godoc
// @Summary Delete a community alert
// @Tags Alerts
// @Param id path string true "Alert ID"
// @Success 204
// @Router /alerts/{id} [delete]
func (h *AlertHandler) DeleteAlert(c *gin.Context) {
	if err := h.service.DeleteAlert(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListReminders godoc
// @Summary List wellness reminders
// @Tags Wellness
// @Produce json
// @Param resident_id query string false "Resident filter (staff only)"
// @Success 200 {object} response.Envelope
// @Router /wellness [get]
func (h *AlertHandler) ListReminders(c *gin.Context) {
	reminders, err := h.service.ListReminders(c.Request.Context(), claimsFromContext(c), c.Query("resident_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reminders, nil)
}

// CreateReminder godoc
// @Summary Schedule a wellness reminder
// @Tags Wellness
// @Accept json
// @Produce json
// @Param payload body service.CreateReminderRequest true "Reminder payload"
// @Success 201 {object} response.Envelope
// @Router /wellness [post]
func (h *AlertHandler) CreateReminder(c *gin.Context) {
	var req service.CreateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reminder payload"))
		return
	}
	reminder, err := h.service.CreateReminder(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, reminder)
}

// CompleteReminder godoc
// @Summary Mark a wellness reminder done
// @Tags Wellness
// @Produce json
// @Param id path string true "Reminder ID"
// @Success 200 {object} response.Envelope
// @Router /wellness/{id}/complete [post]
func (h *AlertHandler) CompleteReminder(c *gin.Context) {
	if err := h.service.CompleteReminder(c.Request.Context(), claimsFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "completed"}, nil)
}

// DeleteReminder godoc
// @Summary Delete a wellness reminder
// @Tags Wellness
// @Param id path string true "Reminder ID"
// @Success 204
// @Router /wellness/{id} [delete]
func (h *AlertHandler) DeleteReminder(c *gin.Context) {
	if err := h.service.DeleteReminder(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
