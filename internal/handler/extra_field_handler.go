package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-adp-api/internal/models"
	"github.com/noah-isme/exam-adp-api/internal/service"
	appErrors "github.com/noah-isme/exam-adp-api/pkg/errors"
	"github.com/noah-isme/exam-adp-api/pkg/response"
)

type extraFieldService interface {
	List(ctx context.Context) ([]models.ExtraField, error)
	Get(ctx context.Context, id string) (*models.ExtraField, error)
	Create(ctx context.Context, req service.ExtraFieldRequest) (*models.ExtraField, error)
	Update(ctx context.Context, id string, req service.ExtraFieldRequest) (*models.ExtraField, error)
	Delete(ctx context.Context, id string) error
}

// ExtraFieldHandler exposes extra field configuration endpoints.
type ExtraFieldHandler struct {
	service extraFieldService
}

// NewExtraFieldHandler builds a new handler.
func NewExtraFieldHandler(service extraFieldService) *ExtraFieldHandler {
	return &ExtraFieldHandler{service: service}
}

// List godoc
// @Summary List extra scoring fields
// @Tags ExtraFields
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /extra-fields [get]
func (h *ExtraFieldHandler) List(c *gin.Context) {
	fields, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fields, nil)
}

// Get godoc
// @Summary Get extra field by ID
// @Tags ExtraFields
// @Produce json
// @Security BearerAuth
// @Param id path string true "Extra field ID"
// @Success 200 {object} response.Envelope
// @Router /extra-fields/{id} [get]
func (h *ExtraFieldHandler) Get(c *gin.Context) {
	field, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, field, nil)
}

// Create godoc
// @Summary Create an extra scoring field
// @Tags ExtraFields
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.ExtraFieldRequest true "Extra field payload"
// @Success 201 {object} response.Envelope
// @Router /extra-fields [post]
func (h *ExtraFieldHandler) Create(c *gin.Context) {
	var req service.ExtraFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid extra field payload"))
		return
	}
	field, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, field)
}

// Update godoc
// @Summary Update an extra scoring field
// @Tags ExtraFields
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Extra field ID"
// @Param payload body service.ExtraFieldRequest true "Extra field payload"
// @Success 200 {object} response.Envelope
// @Router /extra-fields/{id} [put]
func (h *ExtraFieldHandler) Update(c *gin.Context) {
	var req service.ExtraFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid extra field payload"))
		return
	}
	field, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, field, nil)
}

// Delete godoc
// @Summary Delete an extra scoring field
// @Tags ExtraFields
// @Security BearerAuth
// @Param id path string true "Extra field ID"
// @Success 204
// @Router /extra-fields/{id} [delete]
func (h *ExtraFieldHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
