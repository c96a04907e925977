package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-adp-api/internal/models"
)

// SettingsRepository manages the singleton calculation settings row.
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository constructs a SettingsRepository.
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the current calculation settings.
func (r *SettingsRepository) Get(ctx context.Context) (*models.CalculationSettings, error) {
	const query = `SELECT id, pass_calc_mode, exam_score_source, overall_pass_threshold, exam_weight, fail_on_any_exam, updated_at
        FROM calculation_settings LIMIT 1`
	var settings models.CalculationSettings
	if err := r.db.GetContext(ctx, &settings, query); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Update replaces the calculation settings. The row is keyed by a fixed ID so
// the table never grows past one row.
func (r *SettingsRepository) Update(ctx context.Context, settings *models.CalculationSettings) error {
	settings.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO calculation_settings (id, pass_calc_mode, exam_score_source, overall_pass_threshold, exam_weight, fail_on_any_exam, updated_at)
        VALUES (:id, :pass_calc_mode, :exam_score_source, :overall_pass_threshold, :exam_weight, :fail_on_any_exam, :updated_at)
        ON CONFLICT (id)
        DO UPDATE SET pass_calc_mode = EXCLUDED.pass_calc_mode, exam_score_source = EXCLUDED.exam_score_source,
        overall_pass_threshold = EXCLUDED.overall_pass_threshold, exam_weight = EXCLUDED.exam_weight,
        fail_on_any_exam = EXCLUDED.fail_on_any_exam, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, settings); err != nil {
		return fmt.Errorf("update calculation settings: %w", err)
	}
	return nil
}
