package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-adp-api/internal/models"
	"github.com/noah-isme/exam-adp-api/internal/service"
	appErrors "github.com/noah-isme/exam-adp-api/pkg/errors"
	"github.com/noah-isme/exam-adp-api/pkg/response"
)

type examService interface {
	List(ctx context.Context, filter models.ExamFilter) ([]models.Exam, error)
	Get(ctx context.Context, id string) (*models.Exam, error)
	RecordAttempt(ctx context.Context, examID string, req service.AttemptRequest) (*models.ExamAttempt, error)
	RecordAttempts(ctx context.Context, examID string, req service.BulkAttemptRequest) (int, error)
}

// ExamHandler exposes exam and attempt endpoints.
type ExamHandler struct {
	service examService
}

// NewExamHandler builds a new handler.
func NewExamHandler(service examService) *ExamHandler {
	return &ExamHandler{service: service}
}

// List godoc
// @Summary List exams
// @Tags Exams
// @Produce json
// @Security BearerAuth
// @Param active query bool false "Filter by active flag"
// @Param search query string false "Search by title"
// @Success 200 {object} response.Envelope
// @Router /exams [get]
func (h *ExamHandler) List(c *gin.Context) {
	filter := models.ExamFilter{Search: c.Query("search")}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "active must be a boolean"))
			return
		}
		filter.Active = &active
	}
	exams, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exams, nil)
}

// Get godoc
// @Summary Get exam by ID
// @Tags Exams
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Router /exams/{id} [get]
func (h *ExamHandler) Get(c *gin.Context) {
	exam, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exam, nil)
}

// RecordAttempt godoc
// @Summary Record one student's scores for an exam
// @Tags Exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exam ID"
// @Param payload body service.AttemptRequest true "Attempt payload"
// @Success 200 {object} response.Envelope
// @Router /exams/{id}/attempts [put]
func (h *ExamHandler) RecordAttempt(c *gin.Context) {
	var req service.AttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attempt payload"))
		return
	}
	attempt, err := h.service.RecordAttempt(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, attempt, nil)
}

// RecordAttempts godoc
// @Summary Record a batch of attempt scores for an exam
// @Tags Exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exam ID"
// @Param payload body service.BulkAttemptRequest true "Bulk attempt payload"
// @Success 200 {object} response.Envelope
// @Router /exams/{id}/attempts/bulk [put]
func (h *ExamHandler) RecordAttempts(c *gin.Context) {
	var req service.BulkAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid bulk attempt payload"))
		return
	}
	count, err := h.service.RecordAttempts(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"recorded": count}, nil)
}
