package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-adp-api/internal/models"
	appErrors "github.com/noah-isme/exam-adp-api/pkg/errors"
)

type mockExtraFieldRepo struct {
	fields map[string]*models.ExtraField
	keys   map[string]string
}

func (m *mockExtraFieldRepo) List(ctx context.Context) ([]models.ExtraField, error) {
	result := make([]models.ExtraField, 0, len(m.fields))
	for _, f := range m.fields {
		result = append(result, *f)
	}
	return result, nil
}

func (m *mockExtraFieldRepo) FindByID(ctx context.Context, id string) (*models.ExtraField, error) {
	if f, ok := m.fields[id]; ok {
		return f, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockExtraFieldRepo) ExistsByKey(ctx context.Context, key, excludeID string) (bool, error) {
	id, ok := m.keys[key]
	if !ok {
		return false, nil
	}
	return id != excludeID, nil
}

func (m *mockExtraFieldRepo) Create(ctx context.Context, field *models.ExtraField) error {
	if m.fields == nil {
		m.fields = make(map[string]*models.ExtraField)
		m.keys = make(map[string]string)
	}
	field.ID = "field-" + field.Key
	m.fields[field.ID] = field
	m.keys[field.Key] = field.ID
	return nil
}

func (m *mockExtraFieldRepo) Update(ctx context.Context, field *models.ExtraField) error {
	m.fields[field.ID] = field
	return nil
}

func (m *mockExtraFieldRepo) Delete(ctx context.Context, id string) error {
	delete(m.fields, id)
	return nil
}

func newExtraFieldService(repo *mockExtraFieldRepo) *ExtraFieldService {
	return NewExtraFieldService(repo, nil, validator.New(), zap.NewNop())
}

func TestExtraFieldServiceCreate(t *testing.T) {
	repo := &mockExtraFieldRepo{}
	svc := newExtraFieldService(repo)

	max := 40.0
	field, err := svc.Create(context.Background(), ExtraFieldRequest{
		Key:           "attendance",
		Label:         "Attendance",
		Type:          "number",
		IncludeInPass: true,
		PassWeight:    2,
		MaxPoints:     &max,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ExtraFieldNumber, field.Type)
	assert.NotEmpty(t, field.ID)
}

func TestExtraFieldServiceCreateRejectsBadKey(t *testing.T) {
	svc := newExtraFieldService(&mockExtraFieldRepo{})

	_, err := svc.Create(context.Background(), ExtraFieldRequest{
		Key:   "Bad Key",
		Label: "Bad",
		Type:  "number",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExtraFieldServiceCreateRejectsUnknownType(t *testing.T) {
	svc := newExtraFieldService(&mockExtraFieldRepo{})

	_, err := svc.Create(context.Background(), ExtraFieldRequest{
		Key:   "metric",
		Label: "Metric",
		Type:  "date",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExtraFieldServiceCreateRejectsDuplicateKey(t *testing.T) {
	repo := &mockExtraFieldRepo{
		fields: map[string]*models.ExtraField{"field-attendance": {ID: "field-attendance", Key: "attendance"}},
		keys:   map[string]string{"attendance": "field-attendance"},
	}
	svc := newExtraFieldService(repo)

	_, err := svc.Create(context.Background(), ExtraFieldRequest{
		Key:   "attendance",
		Label: "Attendance",
		Type:  "number",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestExtraFieldServiceCreateRejectsBadBoolPoints(t *testing.T) {
	svc := newExtraFieldService(&mockExtraFieldRepo{})

	points := 120.0
	_, err := svc.Create(context.Background(), ExtraFieldRequest{
		Key:            "homework_done",
		Label:          "Homework Done",
		Type:           "boolean",
		BoolTruePoints: &points,
	})
	require.Error(t, err)
}

func TestExtraFieldServiceCreateRejectsBadTextMap(t *testing.T) {
	svc := newExtraFieldService(&mockExtraFieldRepo{})

	_, err := svc.Create(context.Background(), ExtraFieldRequest{
		Key:          "participation",
		Label:        "Participation",
		Type:         "text",
		TextScoreMap: map[string]float64{"great": 150},
	})
	require.Error(t, err)
}

func TestExtraFieldServiceUpdateKeepsSameKey(t *testing.T) {
	repo := &mockExtraFieldRepo{
		fields: map[string]*models.ExtraField{"field-attendance": {ID: "field-attendance", Key: "attendance", Label: "Attendance", Type: models.ExtraFieldNumber}},
		keys:   map[string]string{"attendance": "field-attendance"},
	}
	svc := newExtraFieldService(repo)

	field, err := svc.Update(context.Background(), "field-attendance", ExtraFieldRequest{
		Key:        "attendance",
		Label:      "Attendance Rate",
		Type:       "number",
		PassWeight: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, "Attendance Rate", field.Label)
	assert.Equal(t, 3.0, field.PassWeight)
}

func TestExtraFieldServiceDeleteUnknown(t *testing.T) {
	svc := newExtraFieldService(&mockExtraFieldRepo{})

	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
