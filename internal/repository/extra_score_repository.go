package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-adp-api/internal/models"
)

// ExtraScoreRepository manages per-student raw extra score values.
type ExtraScoreRepository struct {
	db *sqlx.DB
}

// NewExtraScoreRepository constructs an ExtraScoreRepository.
func NewExtraScoreRepository(db *sqlx.DB) *ExtraScoreRepository {
	return &ExtraScoreRepository{db: db}
}

// Get fetches the raw score blob for a student.
func (r *ExtraScoreRepository) Get(ctx context.Context, studentID string) (*models.ExtraScoreSet, error) {
	const query = `SELECT student_id, scores, updated_at FROM extra_scores WHERE student_id = $1`
	var set models.ExtraScoreSet
	if err := r.db.GetContext(ctx, &set, query, studentID); err != nil {
		return nil, err
	}
	return &set, nil
}

// Upsert stores a student's raw extra score values, replacing any existing
// blob.
func (r *ExtraScoreRepository) Upsert(ctx context.Context, set *models.ExtraScoreSet) error {
	set.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO extra_scores (student_id, scores, updated_at)
        VALUES (:student_id, :scores, :updated_at)
        ON CONFLICT (student_id)
        DO UPDATE SET scores = EXCLUDED.scores, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, set); err != nil {
		return fmt.Errorf("upsert extra scores: %w", err)
	}
	return nil
}
