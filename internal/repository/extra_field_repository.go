package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-adp-api/internal/models"
)

// ExtraFieldRepository manages persistence for extra scoring field
// configuration.
type ExtraFieldRepository struct {
	db *sqlx.DB
}

// NewExtraFieldRepository constructs an ExtraFieldRepository.
func NewExtraFieldRepository(db *sqlx.DB) *ExtraFieldRepository {
	return &ExtraFieldRepository{db: db}
}

const extraFieldColumns = `id, key, label, type, include_in_pass, pass_weight, max_points, bool_true_points, bool_false_points, text_score_map, position, created_at, updated_at`

// List returns all configured extra fields in display order.
func (r *ExtraFieldRepository) List(ctx context.Context) ([]models.ExtraField, error) {
	query := fmt.Sprintf(`SELECT %s FROM extra_fields ORDER BY position, created_at`, extraFieldColumns)
	var fields []models.ExtraField
	if err := r.db.SelectContext(ctx, &fields, query); err != nil {
		return nil, fmt.Errorf("list extra fields: %w", err)
	}
	return fields, nil
}

// FindByID fetches an extra field by ID.
func (r *ExtraFieldRepository) FindByID(ctx context.Context, id string) (*models.ExtraField, error) {
	query := fmt.Sprintf(`SELECT %s FROM extra_fields WHERE id = $1`, extraFieldColumns)
	var field models.ExtraField
	if err := r.db.GetContext(ctx, &field, query, id); err != nil {
		return nil, err
	}
	return &field, nil
}

// ExistsByKey checks key uniqueness optionally excluding an ID.
func (r *ExtraFieldRepository) ExistsByKey(ctx context.Context, key, excludeID string) (bool, error) {
	query := "SELECT 1 FROM extra_fields WHERE key = $1"
	args := []interface{}{key}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check extra field key: %w", err)
	}
	return true, nil
}

// Create inserts a new extra field.
func (r *ExtraFieldRepository) Create(ctx context.Context, field *models.ExtraField) error {
	if field.ID == "" {
		field.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if field.CreatedAt.IsZero() {
		field.CreatedAt = now
	}
	field.UpdatedAt = now
	const query = `INSERT INTO extra_fields (id, key, label, type, include_in_pass, pass_weight, max_points, bool_true_points, bool_false_points, text_score_map, position, created_at, updated_at)
        VALUES (:id, :key, :label, :type, :include_in_pass, :pass_weight, :max_points, :bool_true_points, :bool_false_points, :text_score_map, :position, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, field); err != nil {
		return fmt.Errorf("create extra field: %w", err)
	}
	return nil
}

// Update modifies an existing extra field.
func (r *ExtraFieldRepository) Update(ctx context.Context, field *models.ExtraField) error {
	field.UpdatedAt = time.Now().UTC()
	const query = `UPDATE extra_fields SET key = :key, label = :label, type = :type, include_in_pass = :include_in_pass,
        pass_weight = :pass_weight, max_points = :max_points, bool_true_points = :bool_true_points,
        bool_false_points = :bool_false_points, text_score_map = :text_score_map, position = :position, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, field); err != nil {
		return fmt.Errorf("update extra field: %w", err)
	}
	return nil
}

// Delete removes an extra field configuration.
func (r *ExtraFieldRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM extra_fields WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete extra field: %w", err)
	}
	return nil
}
