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

type billingService interface {
	List(ctx context.Context, claims *models.JWTClaims, residentID string) ([]models.BillingStatement, error)
	Create(ctx context.Context, req service.CreateStatementRequest) (*models.BillingStatement, error)
	MarkPaid(ctx context.Context, id string) error
}

// BillingHandler exposes billing statement endpoints.
type BillingHandler struct {
	service billingService
}

// NewBillingHandler builds a new handler.
func NewBillingHandler(service billingService) *BillingHandler {
	return &BillingHandler{service: service}
}

// List godoc
// @Summary List billing statements
// @Tags Billing
// @Produce json
// @Param resident_id query string false "Resident filter (staff only)"
// @Success 200 {object} response.Envelope
// @Router /billing [get]
func (h *BillingHandler) List(c *gin.Context) {
	statements, err := h.service.List(c.Request.Context(), claimsFromContext(c), c.Query("resident_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, statements, nil)
}

// Create godoc
// @Summary Issue a billing statement
// @Tags Billing
// @Accept json
// @Produce json
// @Param payload body service.CreateStatementRequest true "Statement payload"
// @Success 201 {object} response.Envelope
// @Router /billing [post]
func (h *BillingHandler) Create(c *gin.Context) {
	var req service.CreateStatementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid billing payload"))
		return
	}
	statement, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, statement)
}

// MarkPaid godoc
// @Summary Mark a statement paid
// @Tags Billing
// @Produce json
// @Param id path string true "Statement ID"
// @Success 200 {object} response.Envelope
// @Router /billing/{id}/paid [post]
func (h *BillingHandler) MarkPaid(c *gin.Context) {
	if err := h.service.MarkPaid(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "paid"}, nil)
}
