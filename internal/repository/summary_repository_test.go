package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-adp-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestSummaryRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSummaryRepository(db)
	mock.ExpectExec("INSERT INTO student_summaries").
		WithArgs(sqlmock.AnyArg(), "student-1", 82.5, true, 80.0, 90.0, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	summary := &models.StudentSummary{
		StudentID:  "student-1",
		FinalScore: fptr(82.5),
		Passed:     bptr(true),
		ExamScore:  fptr(80),
		ExtraScore: fptr(90),
		Result:     json.RawMessage(`{"ok":true}`),
	}
	require.NoError(t, repo.Upsert(context.Background(), summary))
	assert.NotEmpty(t, summary.ID)
	assert.False(t, summary.CalculatedAt.IsZero())
}

func TestSummaryRepositoryFindByStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSummaryRepository(db)
	rows := sqlmock.NewRows([]string{"id", "student_id", "final_score", "passed", "exam_score", "extra_score", "result", "calculated_at"}).
		AddRow("sum-1", "student-1", 82.5, true, 80.0, 90.0, []byte(`{}`), time.Now())
	mock.ExpectQuery("SELECT id, student_id, final_score").
		WithArgs("student-1").
		WillReturnRows(rows)

	summary, err := repo.FindByStudent(context.Background(), "student-1")
	require.NoError(t, err)
	require.NotNil(t, summary.FinalScore)
	assert.Equal(t, 82.5, *summary.FinalScore)
	require.NotNil(t, summary.Passed)
	assert.True(t, *summary.Passed)
}

func TestSummaryRepositoryClassRows(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSummaryRepository(db)
	rows := sqlmock.NewRows([]string{"student_id", "student_code", "student_name", "final_score", "passed", "rank"}).
		AddRow("student-1", "S001", "Alice", 91.0, true, 1).
		AddRow("student-2", "S002", "Bob", nil, nil, nil)
	mock.ExpectQuery("SELECT s.id AS student_id").
		WillReturnRows(rows)

	result, err := repo.ClassRows(context.Background())
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "S001", result[0].StudentCode)
	require.NotNil(t, result[0].Rank)
	assert.Equal(t, 1, *result[0].Rank)
	assert.Nil(t, result[1].FinalScore)
	assert.Nil(t, result[1].Rank)
}

func TestSummaryRepositoryDistribution(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSummaryRepository(db)
	rows := sqlmock.NewRows([]string{"min", "max", "average", "passed_count", "failed_count", "total"}).
		AddRow(40.0, 95.0, 71.2, 18, 4, 22)
	mock.ExpectQuery("SELECT MIN").
		WillReturnRows(rows)

	dist, err := repo.Distribution(context.Background())
	require.NoError(t, err)
	require.NotNil(t, dist.Average)
	assert.Equal(t, 71.2, *dist.Average)
	assert.Equal(t, 18, dist.PassedCount)
	assert.Equal(t, 22, dist.Total)
}

func fptr(v float64) *float64 { return &v }
func bptr(v bool) *bool       { return &v }
