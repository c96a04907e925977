package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-adp-api/internal/models"
	"github.com/noah-isme/exam-adp-api/internal/passcalc"
	appErrors "github.com/noah-isme/exam-adp-api/pkg/errors"
	"github.com/noah-isme/exam-adp-api/pkg/export"
	"github.com/noah-isme/exam-adp-api/pkg/jobs"
)

const (
	summaryCachePattern = "summaries:*"
	classSummaryKey     = "summaries:class"

	// JobRecalculateStudent identifies the background recalculation job type.
	JobRecalculateStudent = "recalculate_student"
)

type summaryStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ListActiveIDs(ctx context.Context) ([]string, error)
}

type attemptScoreReader interface {
	FetchScoreRows(ctx context.Context, studentID string) ([]models.AttemptScoreRow, error)
}

type summaryExtraFieldReader interface {
	List(ctx context.Context) ([]models.ExtraField, error)
}

type summaryExtraScoreReader interface {
	Get(ctx context.Context, studentID string) (*models.ExtraScoreSet, error)
}

type summarySettingsReader interface {
	Get(ctx context.Context) (*models.CalculationSettings, error)
}

type summaryStore interface {
	Upsert(ctx context.Context, summary *models.StudentSummary) error
	FindByStudent(ctx context.Context, studentID string) (*models.StudentSummary, error)
	ClassRows(ctx context.Context) ([]models.ClassSummaryRow, error)
	Distribution(ctx context.Context) (*models.SummaryDistribution, error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// SummaryService orchestrates final score calculation: it assembles engine
// input from storage, runs the engine, persists the outcome and serves the
// cached class overview.
type SummaryService struct {
	students    summaryStudentRepository
	attempts    attemptScoreReader
	extraFields summaryExtraFieldReader
	extraScores summaryExtraScoreReader
	settings    summarySettingsReader
	store       summaryStore
	cache       *CacheService
	metrics     *MetricsService
	queue       jobEnqueuer
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	logger      *zap.Logger
}

// SummaryServiceDeps bundles the collaborators for NewSummaryService.
type SummaryServiceDeps struct {
	Students    summaryStudentRepository
	Attempts    attemptScoreReader
	ExtraFields summaryExtraFieldReader
	ExtraScores summaryExtraScoreReader
	Settings    summarySettingsReader
	Store       summaryStore
	Cache       *CacheService
	Metrics     *MetricsService
	Queue       jobEnqueuer
	Logger      *zap.Logger
}

// NewSummaryService constructs a SummaryService.
func NewSummaryService(deps SummaryServiceDeps) *SummaryService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SummaryService{
		students:    deps.Students,
		attempts:    deps.Attempts,
		extraFields: deps.ExtraFields,
		extraScores: deps.ExtraScores,
		settings:    deps.Settings,
		store:       deps.Store,
		cache:       deps.Cache,
		metrics:     deps.Metrics,
		queue:       deps.Queue,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		logger:      logger,
	}
}

// SetQueue attaches the background queue after construction. The queue handler
// needs the service, so wiring is two-phase.
func (s *SummaryService) SetQueue(queue jobEnqueuer) {
	s.queue = queue
}

// Calculate runs the engine for one student, persists the summary and returns
// the full engine result.
func (s *SummaryService) Calculate(ctx context.Context, studentID string) (*passcalc.Result, error) {
	input, err := s.buildInput(ctx, studentID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result := passcalc.Calculate(*input)
	s.observeCalculation(result, time.Since(start))

	if !result.Success {
		return nil, appErrors.WithDetails(appErrors.ErrCalculation, result.Errors)
	}

	if err := s.persist(ctx, result); err != nil {
		return nil, err
	}
	s.invalidateClassCache(ctx)
	return &result, nil
}

// GetSummary returns the stored summary for a student.
func (s *SummaryService) GetSummary(ctx context.Context, studentID string) (*models.StudentSummary, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	summary, err := s.store.FindByStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "summary not calculated yet")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load summary")
	}
	return summary, nil
}

// RecalculateAll enqueues a recalculation job for every active student and
// returns the number of enqueued jobs.
func (s *SummaryService) RecalculateAll(ctx context.Context) (int, error) {
	if s.queue == nil {
		return 0, appErrors.Clone(appErrors.ErrPreconditionFailed, "recalculation queue not available")
	}
	ids, err := s.students.ListActiveIDs(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	enqueued := 0
	for _, id := range ids {
		job := jobs.Job{
			ID:      uuid.NewString(),
			Type:    JobRecalculateStudent,
			Payload: id,
		}
		if err := s.queue.Enqueue(job); err != nil {
			s.logger.Warn("failed to enqueue recalculation", zap.String("student_id", id), zap.Error(err))
			continue
		}
		enqueued++
	}
	return enqueued, nil
}

// HandleRecalculateJob processes one queued recalculation. Engine validation
// failures are logged and dropped rather than retried; the input will not get
// better on its own.
func (s *SummaryService) HandleRecalculateJob(ctx context.Context, job jobs.Job) error {
	studentID, ok := job.Payload.(string)
	if !ok || studentID == "" {
		s.logger.Error("recalculation job carries invalid payload", zap.String("job_id", job.ID))
		return nil
	}
	_, err := s.Calculate(ctx, studentID)
	if err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) && appErr.Code == appErrors.ErrCalculation.Code {
			s.logger.Warn("recalculation skipped invalid input", zap.String("student_id", studentID), zap.Any("details", appErr.Details))
			return nil
		}
		return fmt.Errorf("recalculate student %s: %w", studentID, err)
	}
	return nil
}

// ClassSummary returns ranked rows with distribution metrics, served from
// cache when possible.
func (s *SummaryService) ClassSummary(ctx context.Context) (*models.ClassSummary, error) {
	if s.cache != nil {
		var cached models.ClassSummary
		if hit, _ := s.cache.Get(ctx, classSummaryKey, &cached); hit {
			return &cached, nil
		}
	}

	rows, err := s.store.ClassRows(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class summary")
	}
	dist, err := s.store.Distribution(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load score distribution")
	}

	summary := &models.ClassSummary{
		Students:     rows,
		Distribution: dist,
		GeneratedAt:  time.Now().UTC(),
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, classSummaryKey, summary, 0); err != nil {
			s.logger.Warn("failed to cache class summary", zap.Error(err))
		}
	}
	return summary, nil
}

// ExportClassCSV renders the class overview as CSV bytes.
func (s *SummaryService) ExportClassCSV(ctx context.Context) ([]byte, string, error) {
	summary, err := s.ClassSummary(ctx)
	if err != nil {
		return nil, "", err
	}
	data, err := s.csv.Render(classDataset(summary))
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
	}
	filename := fmt.Sprintf("class-summary-%s.csv", time.Now().UTC().Format("20060102"))
	return data, filename, nil
}

// ExportClassPDF renders the class overview as PDF bytes.
func (s *SummaryService) ExportClassPDF(ctx context.Context) ([]byte, string, error) {
	summary, err := s.ClassSummary(ctx)
	if err != nil {
		return nil, "", err
	}
	data, err := s.pdf.Render(classDataset(summary), "Class Final Scores")
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
	}
	filename := fmt.Sprintf("class-summary-%s.pdf", time.Now().UTC().Format("20060102"))
	return data, filename, nil
}

func (s *SummaryService) buildInput(ctx context.Context, studentID string) (*passcalc.Input, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	rows, err := s.attempts.FetchScoreRows(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam attempts")
	}
	fields, err := s.extraFields.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load extra fields")
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	rawScores := map[string]any{}
	set, err := s.extraScores.Get(ctx, studentID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load extra scores")
	}
	if set != nil {
		rawScores = set.Scores
	}

	attempts := make([]passcalc.Attempt, len(rows))
	for i, row := range rows {
		attempts[i] = passcalc.Attempt{
			ExamID:               row.ExamID,
			ExamTitle:            row.ExamTitle,
			ScorePercentage:      row.ScorePercentage,
			FinalScorePercentage: row.FinalScorePercentage,
			IncludeInPass:        row.IncludeInPass,
			PassThreshold:        row.PassThreshold,
		}
	}

	engineFields := make([]passcalc.ExtraField, len(fields))
	for i, f := range fields {
		engineFields[i] = passcalc.ExtraField{
			Key:             f.Key,
			Label:           f.Label,
			Type:            passcalc.FieldType(f.Type),
			IncludeInPass:   f.IncludeInPass,
			PassWeight:      f.PassWeight,
			MaxPoints:       f.MaxPoints,
			BoolTruePoints:  f.BoolTruePoints,
			BoolFalsePoints: f.BoolFalsePoints,
			TextScoreMap:    f.TextScoreMap,
		}
	}

	return &passcalc.Input{
		StudentID:    student.ID,
		StudentCode:  student.Code,
		StudentName:  student.FullName,
		ExamAttempts: attempts,
		ExtraScores:  rawScores,
		ExtraFields:  engineFields,
		Settings: passcalc.Settings{
			PassCalcMode:         passcalc.PassCalcMode(settings.PassCalcMode),
			ExamScoreSource:      passcalc.ScoreSource(settings.ExamScoreSource),
			OverallPassThreshold: settings.OverallPassThreshold,
			ExamWeight:           settings.ExamWeight,
			FailOnAnyExam:        settings.FailOnAnyExam,
		},
	}, nil
}

func (s *SummaryService) persist(ctx context.Context, result passcalc.Result) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode calculation result")
	}
	summary := &models.StudentSummary{
		StudentID:  result.StudentID,
		FinalScore: result.FinalScore,
		Passed:     result.Passed,
		ExamScore:  result.ExamComponent.Score,
		ExtraScore: result.ExtraComponent.Score,
		Result:     payload,
	}
	if err := s.store.Upsert(ctx, summary); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist summary")
	}
	return nil
}

func (s *SummaryService) observeCalculation(result passcalc.Result, duration time.Duration) {
	if s.metrics == nil {
		return
	}
	outcome := "invalid"
	if result.Success {
		outcome = "fail"
		if result.Passed != nil && *result.Passed {
			outcome = "pass"
		}
	}
	s.metrics.ObserveCalculation(outcome, duration)
}

func (s *SummaryService) invalidateClassCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, summaryCachePattern); err != nil {
		s.logger.Warn("failed to invalidate summary cache", zap.Error(err))
	}
}

func classDataset(summary *models.ClassSummary) export.Dataset {
	rows := make([]map[string]string, len(summary.Students))
	for i, row := range summary.Students {
		record := map[string]string{
			"Code":   row.StudentCode,
			"Name":   row.StudentName,
			"Score":  "",
			"Rank":   "",
			"Status": "",
		}
		if row.FinalScore != nil {
			record["Score"] = strconv.FormatFloat(*row.FinalScore, 'f', 2, 64)
		}
		if row.Rank != nil {
			record["Rank"] = strconv.Itoa(*row.Rank)
		}
		if row.Passed != nil {
			if *row.Passed {
				record["Status"] = "PASSED"
			} else {
				record["Status"] = "FAILED"
			}
		}
		rows[i] = record
	}
	return export.Dataset{
		Headers: []string{"Rank", "Code", "Name", "Score", "Status"},
		Rows:    rows,
	}
}
