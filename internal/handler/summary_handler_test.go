package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-adp-api/internal/models"
	"github.com/noah-isme/exam-adp-api/internal/passcalc"
	appErrors "github.com/noah-isme/exam-adp-api/pkg/errors"
)

type summaryServiceMock struct {
	result     *passcalc.Result
	calcErr    error
	summary    *models.StudentSummary
	class      *models.ClassSummary
	enqueued   int
	csvPayload []byte
}

func (m *summaryServiceMock) Calculate(ctx context.Context, studentID string) (*passcalc.Result, error) {
	if m.calcErr != nil {
		return nil, m.calcErr
	}
	return m.result, nil
}

func (m *summaryServiceMock) GetSummary(ctx context.Context, studentID string) (*models.StudentSummary, error) {
	if m.summary == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "summary not calculated yet")
	}
	return m.summary, nil
}

func (m *summaryServiceMock) RecalculateAll(ctx context.Context) (int, error) {
	return m.enqueued, nil
}

func (m *summaryServiceMock) ClassSummary(ctx context.Context) (*models.ClassSummary, error) {
	return m.class, nil
}

func (m *summaryServiceMock) ExportClassCSV(ctx context.Context) ([]byte, string, error) {
	return m.csvPayload, "class-summary.csv", nil
}

func (m *summaryServiceMock) ExportClassPDF(ctx context.Context) ([]byte, string, error) {
	return []byte("%PDF"), "class-summary.pdf", nil
}

func TestSummaryHandlerCalculate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	score := 85.0
	passed := true
	handler := NewSummaryHandler(&summaryServiceMock{result: &passcalc.Result{
		Success:    true,
		StudentID:  "s1",
		FinalScore: &score,
		Passed:     &passed,
	}})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/summaries/students/s1/calculate", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "s1"}}

	handler.Calculate(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data passcalc.Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.Success)
	require.NotNil(t, envelope.Data.FinalScore)
	assert.Equal(t, 85.0, *envelope.Data.FinalScore)
}

func TestSummaryHandlerCalculateInvalidInput(t *testing.T) {
	gin.SetMode(gin.TestMode)
	calcErr := appErrors.WithDetails(appErrors.ErrCalculation, []passcalc.FieldError{{Field: "settings.pass_calc_mode", Message: "unsupported"}})
	handler := NewSummaryHandler(&summaryServiceMock{calcErr: calcErr})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/summaries/students/s1/calculate", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "s1"}}

	handler.Calculate(c)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "pass_calc_mode")
}

func TestSummaryHandlerGetNotCalculated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSummaryHandler(&summaryServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/summaries/students/s1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "s1"}}

	handler.Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSummaryHandlerRecalculateAll(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSummaryHandler(&summaryServiceMock{enqueued: 12})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/summaries/recalculate", nil)
	c.Request = req

	handler.RecalculateAll(c)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), `"enqueued":12`)
}

func TestSummaryHandlerExportUnknownFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSummaryHandler(&summaryServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/summaries/class/export?format=xlsx", nil)
	c.Request = req

	handler.Export(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSummaryHandlerExportCSV(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSummaryHandler(&summaryServiceMock{csvPayload: []byte("Rank,Code\n1,S001\n")})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/summaries/class/export?format=csv", nil)
	c.Request = req

	handler.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "class-summary.csv")
}
