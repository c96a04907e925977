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

type mockExamRepo struct {
	exams    map[string]*models.Exam
	attempts []models.ExamAttempt
}

func (m *mockExamRepo) List(ctx context.Context, filter models.ExamFilter) ([]models.Exam, error) {
	result := make([]models.Exam, 0, len(m.exams))
	for _, e := range m.exams {
		result = append(result, *e)
	}
	return result, nil
}

func (m *mockExamRepo) FindByID(ctx context.Context, id string) (*models.Exam, error) {
	if e, ok := m.exams[id]; ok {
		return e, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockExamRepo) UpsertAttempt(ctx context.Context, attempt *models.ExamAttempt) error {
	m.attempts = append(m.attempts, *attempt)
	return nil
}

func (m *mockExamRepo) BulkUpsertAttempts(ctx context.Context, attempts []models.ExamAttempt) error {
	m.attempts = append(m.attempts, attempts...)
	return nil
}

type mockStudentReader struct {
	students map[string]*models.Student
}

func (m *mockStudentReader) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func newExamService(repo *mockExamRepo, students *mockStudentReader) *ExamService {
	return NewExamService(repo, students, validator.New(), zap.NewNop())
}

func TestExamServiceRecordAttempt(t *testing.T) {
	repo := &mockExamRepo{exams: map[string]*models.Exam{"e1": {ID: "e1", Title: "Midterm", IncludeInPass: true, Active: true}}}
	students := &mockStudentReader{students: map[string]*models.Student{"s1": {ID: "s1", Code: "S001"}}}
	svc := newExamService(repo, students)

	score := 87.5
	attempt, err := svc.RecordAttempt(context.Background(), "e1", AttemptRequest{
		StudentID:            "s1",
		ScorePercentage:      &score,
		FinalScorePercentage: &score,
	})
	require.NoError(t, err)
	assert.Equal(t, "e1", attempt.ExamID)
	require.Len(t, repo.attempts, 1)
	assert.Equal(t, "s1", repo.attempts[0].StudentID)
}

func TestExamServiceRecordAttemptUnknownExam(t *testing.T) {
	svc := newExamService(&mockExamRepo{}, &mockStudentReader{})

	_, err := svc.RecordAttempt(context.Background(), "missing", AttemptRequest{StudentID: "s1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestExamServiceRecordAttemptRejectsOutOfRangeScore(t *testing.T) {
	repo := &mockExamRepo{exams: map[string]*models.Exam{"e1": {ID: "e1", Title: "Midterm"}}}
	students := &mockStudentReader{students: map[string]*models.Student{"s1": {ID: "s1"}}}
	svc := newExamService(repo, students)

	score := 105.0
	_, err := svc.RecordAttempt(context.Background(), "e1", AttemptRequest{StudentID: "s1", ScorePercentage: &score})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.attempts)
}

func TestExamServiceRecordAttemptsBatch(t *testing.T) {
	repo := &mockExamRepo{exams: map[string]*models.Exam{"e1": {ID: "e1", Title: "Final"}}}
	svc := newExamService(repo, &mockStudentReader{})

	a := 70.0
	b := 45.0
	count, err := svc.RecordAttempts(context.Background(), "e1", BulkAttemptRequest{
		Attempts: []AttemptRequest{
			{StudentID: "s1", FinalScorePercentage: &a},
			{StudentID: "s2", FinalScorePercentage: &b},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Len(t, repo.attempts, 2)
}

func TestExamServiceRecordAttemptsRejectsWholeBatchOnBadRow(t *testing.T) {
	repo := &mockExamRepo{exams: map[string]*models.Exam{"e1": {ID: "e1", Title: "Final"}}}
	svc := newExamService(repo, &mockStudentReader{})

	good := 70.0
	bad := -5.0
	_, err := svc.RecordAttempts(context.Background(), "e1", BulkAttemptRequest{
		Attempts: []AttemptRequest{
			{StudentID: "s1", FinalScorePercentage: &good},
			{StudentID: "s2", FinalScorePercentage: &bad},
		},
	})
	require.Error(t, err)
	assert.Empty(t, repo.attempts)
}
