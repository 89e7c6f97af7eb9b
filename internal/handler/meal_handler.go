package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Verti90/commun-api/internal/models"
	"github.com/Verti90/commun-api/internal/service"
	appErrors "github.com/Verti90/commun-api/pkg/errors"
	"github.com/Verti90/commun-api/pkg/response"
)

type mealService interface {
	Create(ctx context.Context, residentID string, now time.Time, req service.CreateMealSelectionRequest) (*models.MealSelection, error)
	Upcoming(ctx context.Context, claims *models.JWTClaims, now time.Time) ([]models.MealSelection, error)
	Cancel(ctx context.Context, claims *models.JWTClaims, id string) error
}

type menuService interface {
	List(ctx context.Context, claims *models.JWTClaims, now time.Time, date string) ([]models.DailyMenu, error)
	Upsert(ctx context.Context, createdBy string, req service.UpsertMenuRequest) (*models.DailyMenu, error)
	Remove(ctx context.Context, id string, itemIndex *int) (bool, error)
}

// MealHandler exposes meal selection and daily menu endpoints.
type MealHandler struct {
	meals mealService
	menus menuService
}

// NewMealHandler builds a new handler.
func NewMealHandler(meals mealService, menus menuService) *MealHandler {
	return &MealHandler{meals: meals, menus: menus}
}

// CreateSelection godoc
// @Summary Submit a meal selection
// @Tags Meals
// @Accept json
// @Produce json
// @Param payload body service.CreateMealSelectionRequest true "Selection payload"
// @Success 201 {object} response.Envelope
// @Router /meals [post]
func (h *MealHandler) CreateSelection(c *gin.Context) {
	claims := claimsFromContext(c)
	var req service.CreateMealSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid meal selection payload"))
		return
	}
	selection, err := h.meals.Create(c.Request.Context(), claims.UserID, time.Now(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, selection)
}

// Upcoming godoc
// @Summary List upcoming meal selections
// @Tags Meals
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /meals/upcoming [get]
func (h *MealHandler) Upcoming(c *gin.Context) {
	selections, err := h.meals.Upcoming(c.Request.Context(), claimsFromContext(c), time.Now())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, selections, nil)
}

// CancelSelection godoc
// @Summary Cancel a meal selection
// @Tags Meals
// @Produce json
// @Param id path string true "Selection ID"
// @Success 200 {object} response.Envelope
// @Router /meals/{id} [delete]
func (h *MealHandler) CancelSelection(c *gin.Context) {
	if err := h.meals.Cancel(c.Request.Context(), claimsFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "Selection canceled"}, nil)
}

// ListMenus godoc
// @Summary List daily menus
// @Tags Meals
// @Produce json
// @Param date query string false "Filter to one date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /menus [get]
func (h *MealHandler) ListMenus(c *gin.Context) {
	menus, err := h.menus.List(c.Request.Context(), claimsFromContext(c), time.Now(), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, menus, nil)
}

// UpsertMenu godoc
// @Summary Publish or extend a daily menu
// @Tags Meals
// @Accept json
// @Produce json
// @Param payload body service.UpsertMenuRequest true "Menu payload"
// @Success 201 {object} response.Envelope
// @Router /menus [post]
func (h *MealHandler) UpsertMenu(c *gin.Context) {
	claims := claimsFromContext(c)
	var req service.UpsertMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "Missing required fields."))
		return
	}
	menu, err := h.menus.Upsert(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, menu)
}

// RemoveMenu godoc
// @Summary Delete a menu or remove one item from it
// @Tags Meals
// @Accept json
// @Produce json
// @Param id path string true "Menu ID"
// @Param payload body service.RemoveMenuItemRequest false "Optional item index"
// @Success 200 {object} response.Envelope
// @Router /menus/{id} [delete]
func (h *MealHandler) RemoveMenu(c *gin.Context) {
	var req service.RemoveMenuItemRequest
	_ = c.ShouldBindJSON(&req)

	deleted, err := h.menus.Remove(c.Request.Context(), c.Param("id"), req.ItemIndex)
	if err != nil {
		response.Error(c, err)
		return
	}
	status := "Item removed"
	if deleted {
		status = "Menu deleted"
	}
	response.JSON(c, http.StatusOK, gin.H{"status": status}, nil)
}
