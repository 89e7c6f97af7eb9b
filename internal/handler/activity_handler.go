package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Verti90/commun-api/internal/dto"
	"github.com/Verti90/commun-api/internal/models"
	"github.com/Verti90/commun-api/internal/service"
	appErrors "github.com/Verti90/commun-api/pkg/errors"
	"github.com/Verti90/commun-api/pkg/response"
)

type activityService interface {
	ListOccurrences(ctx context.Context, now time.Time, startDate, endDate string) ([]dto.OccurrenceView, error)
	Get(ctx context.Context, id string) (*models.Activity, error)
	Create(ctx context.Context, req service.CreateActivityRequest) (*models.Activity, error)
	Update(ctx context.Context, id string, req service.UpdateActivityRequest) (*models.Activity, error)
	Delete(ctx context.Context, id string) error
	Signup(ctx context.Context, activityID, residentID, occurrenceDate string) error
	Unregister(ctx context.Context, activityID, residentID, occurrenceDate string) error
}

// ActivityHandler exposes activity scheduling and roster endpoints.
type ActivityHandler struct {
	service activityService
}

// NewActivityHandler builds a new handler.
func NewActivityHandler(service activityService) *ActivityHandler {
	return &ActivityHandler{service: service}
}

// List godoc
// @Summary List expanded activity occurrences inside a window
// @Tags Activities
// @Produce json
// @Param start_date query string false "Window start (YYYY-MM-DD, defaults to now)"
// @Param end_date query string false "Window end (YYYY-MM-DD, defaults to 30 days out)"
// @Success 200 {object} response.Envelope
// @Router /activities [get]
func (h *ActivityHandler) List(c *gin.Context) {
	views, err := h.service.ListOccurrences(c.Request.Context(), time.Now(), c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, nil)
}

// Get godoc
// @Summary Get an activity definition
// @Tags Activities
// @Produce json
// @Param id path string true "Activity ID"
// @Success 200 {object} response.Envelope
// @Router /activities/{id} [get]
func (h *ActivityHandler) Get(c *gin.Context) {
	activity, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, activity, nil)
}

// Create godoc
// @Summary Define a new activity
// @Tags Activities
// @Accept json
// @Produce json
// @Param payload body service.CreateActivityRequest true "Activity payload"
// @Success 201 {object} response.Envelope
// @Router /activities [post]
func (h *ActivityHandler) Create(c *gin.Context) {
	var req service.CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid activity payload"))
		return
	}
	activity, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, activity)
}

// Update godoc
// @Summary Update an activity definition
// @Tags Activities
// @Accept json
// @Produce json
// @Param id path string true "Activity ID"
// @Param payload body service.UpdateActivityRequest true "Activity payload"
// @Success 200 {object} response.Envelope
// @Router /activities/{id} [put]
func (h *ActivityHandler) Update(c *gin.Context) {
	var req service.UpdateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid activity payload"))
		return
	}
	activity, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, activity, nil)
}

// Delete godoc
// @Summary Delete an activity definition
// @Tags Activities
// @Param id path string true "Activity ID"
// @Success 204
// @Router /activities/{id} [delete]
func (h *ActivityHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Signup godoc
// @Summary Sign the caller up for one occurrence
// @Tags Activities
// @Accept json
// @Produce json
// @Param id path string true "Activity ID"
// @Param payload body dto.SignupRequest true "Occurrence reference"
// @Success 200 {object} response.Envelope
// @Router /activities/{id}/signup [post]
func (h *ActivityHandler) Signup(c *gin.Context) {
	claims := claimsFromContext(c)
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid signup payload"))
		return
	}
	if err := h.service.Signup(c.Request.Context(), c.Param("id"), claims.UserID, req.OccurrenceDate); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.SignupResponse{Status: "signed up"}, nil)
}

// Unregister godoc
// @Summary Remove the caller from one occurrence
// @Tags Activities
// @Accept json
// @Produce json
// @Param id path string true "Activity ID"
// @Param payload body dto.SignupRequest true "Occurrence reference"
// @Success 200 {object} response.Envelope
// @Router /activities/{id}/unregister [post]
func (h *ActivityHandler) Unregister(c *gin.Context) {
	claims := claimsFromContext(c)
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid unregister payload"))
		return
	}
	if err := h.service.Unregister(c.Request.Context(), c.Param("id"), claims.UserID, req.OccurrenceDate); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.SignupResponse{Status: "unregistered"}, nil)
}
