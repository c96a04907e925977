package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-adp-api/internal/models"
)

func TestExtraFieldRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewExtraFieldRepository(db)
	rows := sqlmock.NewRows([]string{"id", "key", "label", "type", "include_in_pass", "pass_weight", "max_points", "bool_true_points", "bool_false_points", "text_score_map", "position", "created_at", "updated_at"}).
		AddRow("field-1", "attendance", "Attendance", "number", true, 1.0, 40.0, nil, nil, nil, 0, time.Now(), time.Now()).
		AddRow("field-2", "homework_done", "Homework Done", "boolean", true, 2.0, nil, 100.0, 0.0, nil, 1, time.Now(), time.Now())
	mock.ExpectQuery("SELECT id, key, label").
		WillReturnRows(rows)

	fields, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.Equal(t, "attendance", fields[0].Key)
	assert.Equal(t, models.ExtraFieldBoolean, fields[1].Type)
	require.NotNil(t, fields[1].BoolTruePoints)
	assert.Equal(t, 100.0, *fields[1].BoolTruePoints)
}

func TestExtraFieldRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewExtraFieldRepository(db)
	mock.ExpectExec("INSERT INTO extra_fields").
		WillReturnResult(sqlmock.NewResult(1, 1))

	field := &models.ExtraField{
		Key:           "attendance",
		Label:         "Attendance",
		Type:          models.ExtraFieldNumber,
		IncludeInPass: true,
		PassWeight:    1,
	}
	require.NoError(t, repo.Create(context.Background(), field))
	assert.NotEmpty(t, field.ID)
	assert.False(t, field.UpdatedAt.IsZero())
}

func TestExtraFieldRepositoryExistsByKey(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewExtraFieldRepository(db)
	rows := sqlmock.NewRows([]string{"?column?"}).AddRow(1)
	mock.ExpectQuery("SELECT 1 FROM extra_fields").
		WithArgs("attendance").
		WillReturnRows(rows)

	exists, err := repo.ExistsByKey(context.Background(), "attendance", "")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestExtraFieldRepositoryExistsByKeyNoRows(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewExtraFieldRepository(db)
	rows := sqlmock.NewRows([]string{"?column?"})
	mock.ExpectQuery("SELECT 1 FROM extra_fields").
		WithArgs("missing", "field-1").
		WillReturnRows(rows)

	exists, err := repo.ExistsByKey(context.Background(), "missing", "field-1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestExtraFieldRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewExtraFieldRepository(db)
	mock.ExpectExec("DELETE FROM extra_fields").
		WithArgs("field-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "field-1"))
}
