package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Verti90/commun-api/internal/dto"
	"github.com/Verti90/commun-api/internal/service"
	"github.com/Verti90/commun-api/pkg/response"
)

type reportService interface {
	ActivityReport(ctx context.Context, date string) ([]dto.ActivityReportEntry, error)
	MealReport(ctx context.Context, date string) ([]dto.MealReportEntry, error)
	ExportActivityReport(ctx context.Context, date string, format service.ReportFormat) (*service.ReportExport, error)
	ExportMealReport(ctx context.Context, date string, format service.ReportFormat) (*service.ReportExport, error)
	OpenExport(token string) (*service.ReportExport, error)
}

// ReportHandler exposes staff daily report endpoints.
type ReportHandler struct {
	service reportService
}

// NewReportHandler builds a new handler.
func NewReportHandler(service reportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// ActivityReport godoc
// @Summary Daily activity roster report
// @Tags Reports
// @Produce json
// @Param date query string true "Report date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /reports/activities [get]
func (h *ReportHandler) ActivityReport(c *gin.Context) {
	entries, err := h.service.ActivityReport(c.Request.Context(), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// MealReport godoc
// @Summary Daily kitchen report
// @Tags Reports
// @Produce json
// @Param date query string true "Report date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /reports/meals [get]
func (h *ReportHandler) MealReport(c *gin.Context) {
	entries, err := h.service.MealReport(c.Request.Context(), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// ExportActivityReport godoc
// @Summary Export the activity report as CSV or PDF
// @Tags Reports
// @Produce text/csv,application/pdf
// @Param date query string true "Report date (YYYY-MM-DD)"
// @Param format query string false "csv or pdf (defaults to csv)"
// @Success 200
// @Router /reports/activities/export [get]
func (h *ReportHandler) ExportActivityReport(c *gin.Context) {
	result, err := h.service.ExportActivityReport(c.Request.Context(), c.Query("date"), service.ReportFormat(c.Query("format")))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.sendExport(c, result)
}

// ExportMealReport godoc
// @Summary Export the kitchen report as CSV or PDF
// @Tags Reports
// @Produce text/csv,application/pdf
// @Param date query string true "Report date (YYYY-MM-DD)"
// @Param format query string false "csv or pdf (defaults to csv)"
// @Success 200
// @Router /reports/meals/export [get]
func (h *ReportHandler) ExportMealReport(c *gin.Context) {
	result, err := h.service.ExportMealReport(c.Request.Context(), c.Query("date"), service.ReportFormat(c.Query("format")))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.sendExport(c, result)
}

// DownloadExport godoc
// @Summary Download an archived export via a signed token
// @Tags Reports
// @Produce text/csv,application/pdf
// @Param token query string true "Signed download token"
// @Success 200
// @Router /reports/exports [get]
func (h *ReportHandler) DownloadExport(c *gin.Context) {
	result, err := h.service.OpenExport(c.Query("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.sendExport(c, result)
}

func (h *ReportHandler) sendExport(c *gin.Context, result *service.ReportExport) {
	if result.DownloadToken != "" {
		c.Header("X-Download-Token", result.DownloadToken)
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}
