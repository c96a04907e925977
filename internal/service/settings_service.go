package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-adp-api/internal/models"
	"github.com/noah-isme/exam-adp-api/internal/passcalc"
	appErrors "github.com/noah-isme/exam-adp-api/pkg/errors"
)

// The settings table holds a single row keyed by this ID.
const settingsRowID = "calculation-settings"

type settingsRepository interface {
	Get(ctx context.Context) (*models.CalculationSettings, error)
	Update(ctx context.Context, settings *models.CalculationSettings) error
}

// UpdateSettingsRequest captures the payload for replacing calculation
// settings.
type UpdateSettingsRequest struct {
	PassCalcMode         string  `json:"pass_calc_mode" validate:"required"`
	ExamScoreSource      string  `json:"exam_score_source" validate:"required"`
	OverallPassThreshold float64 `json:"overall_pass_threshold"`
	ExamWeight           float64 `json:"exam_weight"`
	FailOnAnyExam        bool    `json:"fail_on_any_exam"`
}

// SettingsService manages the singleton calculation settings.
type SettingsService struct {
	repo      settingsRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSettingsService constructs a SettingsService.
func NewSettingsService(repo settingsRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *SettingsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// Get returns the current calculation settings. A missing row yields the
// defaults so a fresh deployment works without seeding.
func (s *SettingsService) Get(ctx context.Context) (*models.CalculationSettings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return defaultSettings(), nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load calculation settings")
	}
	return settings, nil
}

// Update replaces the calculation settings and invalidates cached summaries.
func (s *SettingsService) Update(ctx context.Context, req UpdateSettingsRequest) (*models.CalculationSettings, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid settings payload")
	}
	if err := validateSettingsRequest(req); err != nil {
		return nil, err
	}

	settings := &models.CalculationSettings{
		ID:                   settingsRowID,
		PassCalcMode:         req.PassCalcMode,
		ExamScoreSource:      req.ExamScoreSource,
		OverallPassThreshold: req.OverallPassThreshold,
		ExamWeight:           req.ExamWeight,
		FailOnAnyExam:        req.FailOnAnyExam,
	}
	if err := s.repo.Update(ctx, settings); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update calculation settings")
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, summaryCachePattern); err != nil {
			s.logger.Warn("failed to invalidate summary cache", zap.Error(err))
		}
	}
	return settings, nil
}

func validateSettingsRequest(req UpdateSettingsRequest) error {
	switch passcalc.PassCalcMode(req.PassCalcMode) {
	case passcalc.ModeBest, passcalc.ModeAvg:
	default:
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported pass_calc_mode %q", req.PassCalcMode))
	}
	switch passcalc.ScoreSource(req.ExamScoreSource) {
	case passcalc.SourceFinal, passcalc.SourceRaw:
	default:
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported exam_score_source %q", req.ExamScoreSource))
	}
	if math.IsNaN(req.OverallPassThreshold) || req.OverallPassThreshold < 0 || req.OverallPassThreshold > 100 {
		return appErrors.Clone(appErrors.ErrValidation, "overall_pass_threshold must be between 0 and 100")
	}
	if math.IsNaN(req.ExamWeight) || req.ExamWeight < 0 {
		return appErrors.Clone(appErrors.ErrValidation, "exam_weight must not be negative")
	}
	return nil
}

func defaultSettings() *models.CalculationSettings {
	return &models.CalculationSettings{
		ID:                   settingsRowID,
		PassCalcMode:         string(passcalc.ModeBest),
		ExamScoreSource:      string(passcalc.SourceFinal),
		OverallPassThreshold: 60,
		ExamWeight:           1,
		FailOnAnyExam:        false,
	}
}
