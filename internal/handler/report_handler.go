package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/equivalence-api/internal/models"
	"github.com/noah-isme/equivalence-api/internal/service"
	"github.com/noah-isme/equivalence-api/pkg/response"
)

type reportService interface {
	List(ctx context.Context) (*models.ReportList, error)
	Get(ctx context.Context, id string) (*models.ReportDetail, error)
	Delete(ctx context.Context, id string) (*models.DeleteReportResponse, error)
	Export(ctx context.Context, id, format string) (*service.ExportFile, error)
}

// ReportHandler exposes stored reports.
type ReportHandler struct {
	service reportService
}

// NewReportHandler constructs the handler.
func NewReportHandler(svc reportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// List godoc
// @Summary List reports
// @Description Lists every report, newest first, without full content
// @Tags Reports
// @Produce json
// @Success 200 {object} models.ReportList
// @Failure 500 {object} response.ErrorBody
// @Router /api/reports [get]
func (h *ReportHandler) List(c *gin.Context) {
	res, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// Get godoc
// @Summary Get report
// @Description Returns a report with its analysis parsed into subjects
// @Tags Reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} models.ReportDetail
// @Failure 404 {object} response.ErrorBody
// @Router /api/reports/{id} [get]
func (h *ReportHandler) Get(c *gin.Context) {
	res, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// Delete godoc
// @Summary Delete report
// @Tags Reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} models.DeleteReportResponse
// @Failure 404 {object} response.ErrorBody
// @Router /api/reports/{id} [delete]
func (h *ReportHandler) Delete(c *gin.Context) {
	res, err := h.service.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// Export godoc
// @Summary Export report
// @Description Downloads the parsed report as CSV or PDF
// @Tags Reports
// @Produce text/csv,application/pdf
// @Param id path string true "Report ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /api/reports/{id}/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	file, err := h.service.Export(c.Request.Context(), c.Param("id"), c.DefaultQuery("format", service.FormatCSV))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}
