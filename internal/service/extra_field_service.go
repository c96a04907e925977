package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-adp-api/internal/models"
	appErrors "github.com/noah-isme/exam-adp-api/pkg/errors"
)

type extraFieldRepository interface {
	List(ctx context.Context) ([]models.ExtraField, error)
	FindByID(ctx context.Context, id string) (*models.ExtraField, error)
	ExistsByKey(ctx context.Context, key, excludeID string) (bool, error)
	Create(ctx context.Context, field *models.ExtraField) error
	Update(ctx context.Context, field *models.ExtraField) error
	Delete(ctx context.Context, id string) error
}

var extraFieldKeyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ExtraFieldRequest captures the payload for creating or updating an extra
// scoring field.
type ExtraFieldRequest struct {
	Key             string             `json:"key" validate:"required,max=64"`
	Label           string             `json:"label" validate:"required,max=128"`
	Type            string             `json:"type" validate:"required"`
	IncludeInPass   bool               `json:"include_in_pass"`
	PassWeight      float64            `json:"pass_weight"`
	MaxPoints       *float64           `json:"max_points,omitempty"`
	BoolTruePoints  *float64           `json:"bool_true_points,omitempty"`
	BoolFalsePoints *float64           `json:"bool_false_points,omitempty"`
	TextScoreMap    map[string]float64 `json:"text_score_map,omitempty"`
	Position        int                `json:"position"`
}

// ExtraFieldService manages extra scoring field configuration.
type ExtraFieldService struct {
	repo      extraFieldRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExtraFieldService constructs an ExtraFieldService.
func NewExtraFieldService(repo extraFieldRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ExtraFieldService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExtraFieldService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns all configured extra fields in display order.
func (s *ExtraFieldService) List(ctx context.Context) ([]models.ExtraField, error) {
	fields, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list extra fields")
	}
	return fields, nil
}

// Get returns an extra field by ID.
func (s *ExtraFieldService) Get(ctx context.Context, id string) (*models.ExtraField, error) {
	field, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "extra field not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load extra field")
	}
	return field, nil
}

// Create inserts a new extra field configuration.
func (s *ExtraFieldService) Create(ctx context.Context, req ExtraFieldRequest) (*models.ExtraField, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid extra field payload")
	}
	if err := s.validateConfig(req); err != nil {
		return nil, err
	}
	exists, err := s.repo.ExistsByKey(ctx, req.Key, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check extra field key")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("extra field key %q already exists", req.Key))
	}

	field := s.toModel(req)
	if err := s.repo.Create(ctx, field); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create extra field")
	}
	s.invalidateSummaries(ctx)
	return field, nil
}

// Update modifies an existing extra field configuration.
func (s *ExtraFieldService) Update(ctx context.Context, id string, req ExtraFieldRequest) (*models.ExtraField, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid extra field payload")
	}
	if err := s.validateConfig(req); err != nil {
		return nil, err
	}
	field, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "extra field not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load extra field")
	}
	exists, err := s.repo.ExistsByKey(ctx, req.Key, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check extra field key")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("extra field key %q already exists", req.Key))
	}

	updated := s.toModel(req)
	updated.ID = field.ID
	updated.CreatedAt = field.CreatedAt
	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update extra field")
	}
	s.invalidateSummaries(ctx)
	return updated, nil
}

// Delete removes an extra field configuration. Stored raw scores keep the
// orphaned key; the engine ignores keys without a configured field.
func (s *ExtraFieldService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete extra field")
	}
	s.invalidateSummaries(ctx)
	return nil
}

func (s *ExtraFieldService) validateConfig(req ExtraFieldRequest) error {
	if !extraFieldKeyPattern.MatchString(req.Key) {
		return appErrors.Clone(appErrors.ErrValidation, "key must be a lowercase snake_case identifier")
	}
	fieldType := models.ExtraFieldType(req.Type)
	switch fieldType {
	case models.ExtraFieldNumber, models.ExtraFieldBoolean, models.ExtraFieldText:
	default:
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported field type %q", req.Type))
	}
	if req.PassWeight < 0 {
		return appErrors.Clone(appErrors.ErrValidation, "pass_weight must not be negative")
	}
	if req.MaxPoints != nil && *req.MaxPoints <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "max_points must be positive")
	}
	if req.BoolTruePoints != nil && (*req.BoolTruePoints < 0 || *req.BoolTruePoints > 100) {
		return appErrors.Clone(appErrors.ErrValidation, "bool_true_points must be between 0 and 100")
	}
	if req.BoolFalsePoints != nil && (*req.BoolFalsePoints < 0 || *req.BoolFalsePoints > 100) {
		return appErrors.Clone(appErrors.ErrValidation, "bool_false_points must be between 0 and 100")
	}
	for value, score := range req.TextScoreMap {
		if score < 0 || score > 100 {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("text_score_map.%s must be between 0 and 100", value))
		}
	}
	return nil
}

func (s *ExtraFieldService) toModel(req ExtraFieldRequest) *models.ExtraField {
	return &models.ExtraField{
		Key:             req.Key,
		Label:           req.Label,
		Type:            models.ExtraFieldType(req.Type),
		IncludeInPass:   req.IncludeInPass,
		PassWeight:      req.PassWeight,
		MaxPoints:       req.MaxPoints,
		BoolTruePoints:  req.BoolTruePoints,
		BoolFalsePoints: req.BoolFalsePoints,
		TextScoreMap:    models.ScoreMap(req.TextScoreMap),
		Position:        req.Position,
	}
}

func (s *ExtraFieldService) invalidateSummaries(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, summaryCachePattern); err != nil {
		s.logger.Warn("failed to invalidate summary cache", zap.Error(err))
	}
}
