package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-adp-api/internal/models"
)

// SummaryRepository manages persisted final score summaries.
type SummaryRepository struct {
	db *sqlx.DB
}

// NewSummaryRepository constructs a SummaryRepository.
func NewSummaryRepository(db *sqlx.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// Upsert stores a calculation outcome for a student, replacing any previous
// summary.
func (r *SummaryRepository) Upsert(ctx context.Context, summary *models.StudentSummary) error {
	if summary.ID == "" {
		summary.ID = uuid.NewString()
	}
	if summary.CalculatedAt.IsZero() {
		summary.CalculatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO student_summaries (id, student_id, final_score, passed, exam_score, extra_score, result, calculated_at)
        VALUES (:id, :student_id, :final_score, :passed, :exam_score, :extra_score, :result, :calculated_at)
        ON CONFLICT (student_id)
        DO UPDATE SET final_score = EXCLUDED.final_score, passed = EXCLUDED.passed, exam_score = EXCLUDED.exam_score,
        extra_score = EXCLUDED.extra_score, result = EXCLUDED.result, calculated_at = EXCLUDED.calculated_at`
	if _, err := r.db.NamedExecContext(ctx, query, summary); err != nil {
		return fmt.Errorf("upsert summary: %w", err)
	}
	return nil
}

// FindByStudent fetches the stored summary for a student.
func (r *SummaryRepository) FindByStudent(ctx context.Context, studentID string) (*models.StudentSummary, error) {
	const query = `SELECT id, student_id, final_score, passed, exam_score, extra_score, result, calculated_at
        FROM student_summaries WHERE student_id = $1`
	var summary models.StudentSummary
	if err := r.db.GetContext(ctx, &summary, query, studentID); err != nil {
		return nil, err
	}
	return &summary, nil
}

// ClassRows returns one row per active student with their latest summary,
// ranked by final score. Students without a summary sort last with nil rank.
func (r *SummaryRepository) ClassRows(ctx context.Context) ([]models.ClassSummaryRow, error) {
	const query = `SELECT s.id AS student_id, s.code AS student_code, s.full_name AS student_name,
        sm.final_score, sm.passed,
        CASE WHEN sm.final_score IS NOT NULL
             THEN RANK() OVER (ORDER BY sm.final_score DESC NULLS LAST)
        END AS rank
        FROM students s
        LEFT JOIN student_summaries sm ON sm.student_id = s.id
        WHERE s.active = true
        ORDER BY sm.final_score DESC NULLS LAST, s.full_name`
	var rows []models.ClassSummaryRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("class summary rows: %w", err)
	}
	return rows, nil
}

// Distribution aggregates final score metrics across active students with a
// stored summary.
func (r *SummaryRepository) Distribution(ctx context.Context) (*models.SummaryDistribution, error) {
	const query = `SELECT MIN(sm.final_score) AS min, MAX(sm.final_score) AS max, AVG(sm.final_score) AS average,
        COUNT(*) FILTER (WHERE sm.passed = true) AS passed_count,
        COUNT(*) FILTER (WHERE sm.passed = false) AS failed_count,
        COUNT(sm.id) AS total
        FROM students s
        JOIN student_summaries sm ON sm.student_id = s.id
        WHERE s.active = true`
	var dist models.SummaryDistribution
	if err := r.db.GetContext(ctx, &dist, query); err != nil {
		return nil, fmt.Errorf("summary distribution: %w", err)
	}
	return &dist, nil
}

// DeleteByStudent removes a student's summary, used when a student is
// deactivated.
func (r *SummaryRepository) DeleteByStudent(ctx context.Context, studentID string) error {
	const query = `DELETE FROM student_summaries WHERE student_id = $1`
	if _, err := r.db.ExecContext(ctx, query, studentID); err != nil {
		return fmt.Errorf("delete summary: %w", err)
	}
	return nil
}
