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

type feedService interface {
	List(ctx context.Context) ([]models.Feed, error)
	Create(ctx context.Context, createdBy string, req service.CreateFeedRequest) (*models.Feed, error)
	Delete(ctx context.Context, id string) error
}

// FeedHandler exposes staff announcement endpoints.
type FeedHandler struct {
	service feedService
}

// NewFeedHandler builds a new handler.
func NewFeedHandler(service feedService) *FeedHandler {
	return &FeedHandler{service: service}
}

// List godoc
// @Summary List announcements
// @Tags Feed
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /feed [get]
func (h *FeedHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Create godoc
// @Summary Post an announcement
// @Tags Feed
// @Accept json
// @Produce json
// @Param payload body service.CreateFeedRequest true "Announcement payload"
// @Success 201 {object} response.Envelope
// @Router /feed [post]
func (h *FeedHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	var req service.CreateFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid feed payload"))
		return
	}
	item, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Delete godoc
// @Summary Delete an announcement
// @Tags Feed
// @Param id path string true "Feed item ID"
// @Success 204
// @Router /feed/{id} [delete]
func (h *FeedHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
