package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-adp-api/internal/models"
)

// ExamRepository manages persistence for exams and attempt scores.
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository constructs an ExamRepository.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

// List returns exams matching the provided filters.
func (r *ExamRepository) List(ctx context.Context, filter models.ExamFilter) ([]models.Exam, error) {
	base := "SELECT id, title, include_in_pass, pass_threshold, active, created_at, updated_at FROM exams"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(title) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY created_at", base, strings.Join(conditions, " AND "))
	var exams []models.Exam
	if err := r.db.SelectContext(ctx, &exams, query, args...); err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	return exams, nil
}

// FindByID fetches an exam by ID.
func (r *ExamRepository) FindByID(ctx context.Context, id string) (*models.Exam, error) {
	const query = `SELECT id, title, include_in_pass, pass_threshold, active, created_at, updated_at FROM exams WHERE id = $1`
	var exam models.Exam
	if err := r.db.GetContext(ctx, &exam, query, id); err != nil {
		return nil, err
	}
	return &exam, nil
}

// UpsertAttempt inserts or updates a student's scores for one exam.
func (r *ExamRepository) UpsertAttempt(ctx context.Context, attempt *models.ExamAttempt) error {
	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = now
	}
	attempt.UpdatedAt = now
	const query = `INSERT INTO exam_attempts (id, student_id, exam_id, score_percentage, final_score_percentage, submitted_at, created_at, updated_at)
        VALUES (:id, :student_id, :exam_id, :score_percentage, :final_score_percentage, :submitted_at, :created_at, :updated_at)
        ON CONFLICT (student_id, exam_id)
        DO UPDATE SET score_percentage = EXCLUDED.score_percentage, final_score_percentage = EXCLUDED.final_score_percentage, submitted_at = EXCLUDED.submitted_at, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, attempt); err != nil {
		return fmt.Errorf("upsert attempt: %w", err)
	}
	return nil
}

// BulkUpsertAttempts atomically upserts a batch of attempt scores.
func (r *ExamRepository) BulkUpsertAttempts(ctx context.Context, attempts []models.ExamAttempt) error {
	if len(attempts) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	const query = `INSERT INTO exam_attempts (id, student_id, exam_id, score_percentage, final_score_percentage, submitted_at, created_at, updated_at)
        VALUES (:id, :student_id, :exam_id, :score_percentage, :final_score_percentage, :submitted_at, :created_at, :updated_at)
        ON CONFLICT (student_id, exam_id)
        DO UPDATE SET score_percentage = EXCLUDED.score_percentage, final_score_percentage = EXCLUDED.final_score_percentage, submitted_at = EXCLUDED.submitted_at, updated_at = EXCLUDED.updated_at`
	now := time.Now().UTC()
	for i := range attempts {
		if attempts[i].ID == "" {
			attempts[i].ID = uuid.NewString()
		}
		if attempts[i].CreatedAt.IsZero() {
			attempts[i].CreatedAt = now
		}
		attempts[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, attempts[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("bulk upsert attempt: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit attempts: %w", err)
	}
	return nil
}

// FetchScoreRows returns a student's attempts joined with each exam's pass
// configuration, ordered for stable engine input.
func (r *ExamRepository) FetchScoreRows(ctx context.Context, studentID string) ([]models.AttemptScoreRow, error) {
	const query = `SELECT a.student_id, a.exam_id, e.title AS exam_title, a.score_percentage, a.final_score_percentage,
        e.include_in_pass, e.pass_threshold
        FROM exam_attempts a
        JOIN exams e ON e.id = a.exam_id
        WHERE a.student_id = $1 AND e.active = true
        ORDER BY e.created_at`
	var rows []models.AttemptScoreRow
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, fmt.Errorf("fetch score rows: %w", err)
	}
	return rows, nil
}
