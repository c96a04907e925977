package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-adp-api/internal/models"
	appErrors "github.com/noah-isme/exam-adp-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type extraScoreRepository interface {
	Get(ctx context.Context, studentID string) (*models.ExtraScoreSet, error)
	Upsert(ctx context.Context, set *models.ExtraScoreSet) error
}

// StudentService manages student records and their raw extra scores.
type StudentService struct {
	repo        studentRepository
	extraScores extraScoreRepository
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(repo studentRepository, extraScores extraScoreRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, extraScores: extraScores, validator: validate, logger: logger}
}

// List returns students matching the filter with pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return students, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a student by ID.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// GetExtraScores returns the student's raw extra score values. A student
// without stored values gets an empty set rather than an error.
func (s *StudentService) GetExtraScores(ctx context.Context, studentID string) (*models.ExtraScoreSet, error) {
	if _, err := s.Get(ctx, studentID); err != nil {
		return nil, err
	}
	set, err := s.extraScores.Get(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.ExtraScoreSet{StudentID: studentID, Scores: models.RawScores{}}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load extra scores")
	}
	return set, nil
}

// PutExtraScores replaces the student's raw extra score values.
func (s *StudentService) PutExtraScores(ctx context.Context, studentID string, scores models.RawScores) (*models.ExtraScoreSet, error) {
	if _, err := s.Get(ctx, studentID); err != nil {
		return nil, err
	}
	if scores == nil {
		scores = models.RawScores{}
	}
	set := &models.ExtraScoreSet{StudentID: studentID, Scores: scores}
	if err := s.extraScores.Upsert(ctx, set); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store extra scores")
	}
	return set, nil
}
