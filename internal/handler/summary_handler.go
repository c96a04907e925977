package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-adp-api/internal/models"
	"github.com/noah-isme/exam-adp-api/internal/passcalc"
	appErrors "github.com/noah-isme/exam-adp-api/pkg/errors"
	"github.com/noah-isme/exam-adp-api/pkg/response"
)

type summaryService interface {
	Calculate(ctx context.Context, studentID string) (*passcalc.Result, error)
	GetSummary(ctx context.Context, studentID string) (*models.StudentSummary, error)
	RecalculateAll(ctx context.Context) (int, error)
	ClassSummary(ctx context.Context) (*models.ClassSummary, error)
	ExportClassCSV(ctx context.Context) ([]byte, string, error)
	ExportClassPDF(ctx context.Context) ([]byte, string, error)
}

// SummaryHandler exposes final score summary endpoints.
type SummaryHandler struct {
	service summaryService
}

// NewSummaryHandler builds a new handler.
func NewSummaryHandler(service summaryService) *SummaryHandler {
	return &SummaryHandler{service: service}
}

// Calculate godoc
// @Summary Calculate and persist a student's final score
// @Tags Summaries
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /summaries/students/{id}/calculate [post]
func (h *SummaryHandler) Calculate(c *gin.Context) {
	result, err := h.service.Calculate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Get godoc
// @Summary Get a student's stored summary
// @Tags Summaries
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /summaries/students/{id} [get]
func (h *SummaryHandler) Get(c *gin.Context) {
	summary, err := h.service.GetSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// RecalculateAll godoc
// @Summary Enqueue recalculation for every active student
// @Tags Summaries
// @Produce json
// @Security BearerAuth
// @Success 202 {object} response.Envelope
// @Router /summaries/recalculate [post]
func (h *SummaryHandler) RecalculateAll(c *gin.Context) {
	count, err := h.service.RecalculateAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{"enqueued": count}, nil)
}

// Class godoc
// @Summary Class overview with ranks and distribution
// @Tags Summaries
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /summaries/class [get]
func (h *SummaryHandler) Class(c *gin.Context) {
	summary, err := h.service.ClassSummary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Export godoc
// @Summary Export the class overview as CSV or PDF
// @Tags Summaries
// @Produce octet-stream
// @Security BearerAuth
// @Param format query string false "Export format: csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /summaries/class/export [get]
func (h *SummaryHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	var (
		data        []byte
		filename    string
		contentType string
		err         error
	)
	switch format {
	case "csv":
		data, filename, err = h.service.ExportClassCSV(c.Request.Context())
		contentType = "text/csv"
	case "pdf":
		data, filename, err = h.service.ExportClassPDF(c.Request.Context())
		contentType = "application/pdf"
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, data)
}
