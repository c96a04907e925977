package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-adp-api/internal/models"
	appErrors "github.com/noah-isme/exam-adp-api/pkg/errors"
)

type examRepository interface {
	List(ctx context.Context, filter models.ExamFilter) ([]models.Exam, error)
	FindByID(ctx context.Context, id string) (*models.Exam, error)
	UpsertAttempt(ctx context.Context, attempt *models.ExamAttempt) error
	BulkUpsertAttempts(ctx context.Context, attempts []models.ExamAttempt) error
}

type examStudentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// AttemptRequest records one student's scores for an exam.
type AttemptRequest struct {
	StudentID            string     `json:"student_id" validate:"required"`
	ScorePercentage      *float64   `json:"score_percentage"`
	FinalScorePercentage *float64   `json:"final_score_percentage"`
	SubmittedAt          *time.Time `json:"submitted_at,omitempty"`
}

// BulkAttemptRequest records scores for many students on one exam in a single
// transaction.
type BulkAttemptRequest struct {
	Attempts []AttemptRequest `json:"attempts" validate:"required,min=1,dive"`
}

// ExamService manages exams and attempt score entry.
type ExamService struct {
	repo      examRepository
	students  examStudentReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExamService constructs an ExamService.
func NewExamService(repo examRepository, students examStudentReader, validate *validator.Validate, logger *zap.Logger) *ExamService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExamService{repo: repo, students: students, validator: validate, logger: logger}
}

// List returns exams matching the filter.
func (s *ExamService) List(ctx context.Context, filter models.ExamFilter) ([]models.Exam, error) {
	exams, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list exams")
	}
	return exams, nil
}

// Get returns an exam by ID.
func (s *ExamService) Get(ctx context.Context, id string) (*models.Exam, error) {
	exam, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}
	return exam, nil
}

// RecordAttempt upserts one student's scores for the given exam.
func (s *ExamService) RecordAttempt(ctx context.Context, examID string, req AttemptRequest) (*models.ExamAttempt, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attempt payload")
	}
	if err := validateAttemptScores(req); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, examID); err != nil {
		return nil, err
	}
	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	attempt := &models.ExamAttempt{
		StudentID:            req.StudentID,
		ExamID:               examID,
		ScorePercentage:      req.ScorePercentage,
		FinalScorePercentage: req.FinalScorePercentage,
		SubmittedAt:          req.SubmittedAt,
	}
	if err := s.repo.UpsertAttempt(ctx, attempt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attempt")
	}
	return attempt, nil
}

// RecordAttempts upserts a batch of attempt scores atomically. Validation
// failures reject the whole batch before anything is written.
func (s *ExamService) RecordAttempts(ctx context.Context, examID string, req BulkAttemptRequest) (int, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk attempt payload")
	}
	for i, attempt := range req.Attempts {
		if err := validateAttemptScores(attempt); err != nil {
			return 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("attempts[%d]: %s", i, appErrors.FromError(err).Message))
		}
	}
	if _, err := s.Get(ctx, examID); err != nil {
		return 0, err
	}

	attempts := make([]models.ExamAttempt, len(req.Attempts))
	for i, a := range req.Attempts {
		attempts[i] = models.ExamAttempt{
			StudentID:            a.StudentID,
			ExamID:               examID,
			ScorePercentage:      a.ScorePercentage,
			FinalScorePercentage: a.FinalScorePercentage,
			SubmittedAt:          a.SubmittedAt,
		}
	}
	if err := s.repo.BulkUpsertAttempts(ctx, attempts); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attempts")
	}
	return len(attempts), nil
}

func validateAttemptScores(req AttemptRequest) error {
	if req.ScorePercentage != nil && (math.IsNaN(*req.ScorePercentage) || *req.ScorePercentage < 0 || *req.ScorePercentage > 100) {
		return appErrors.Clone(appErrors.ErrValidation, "score_percentage must be between 0 and 100")
	}
	if req.FinalScorePercentage != nil && (math.IsNaN(*req.FinalScorePercentage) || *req.FinalScorePercentage < 0 || *req.FinalScorePercentage > 100) {
		return appErrors.Clone(appErrors.ErrValidation, "final_score_percentage must be between 0 and 100")
	}
	return nil
}
