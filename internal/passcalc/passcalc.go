// Package passcalc implements the final score calculation engine. It combines
// per-exam attempt scores with weighted extra scoring fields (attendance,
// homework, custom metrics) into a single pass/fail determination.
//
// The package is deliberately pure: no storage, no I/O, no shared state.
// Every call to Calculate is independent, which keeps the engine safe for
// concurrent use across students and makes it exhaustively testable.
package passcalc

import "fmt"

// PassCalcMode selects how included exam attempt scores are aggregated.
type PassCalcMode string

const (
	// ModeBest takes the maximum score among included attempts.
	ModeBest PassCalcMode = "best"
	// ModeAvg takes the arithmetic mean of included attempts.
	ModeAvg PassCalcMode = "avg"
)

// ScoreSource selects which score column is read from each attempt.
type ScoreSource string

const (
	// SourceFinal reads the adjusted final score percentage.
	SourceFinal ScoreSource = "final"
	// SourceRaw reads the raw score percentage.
	SourceRaw ScoreSource = "raw"
)

// FieldType enumerates supported extra field kinds.
type FieldType string

const (
	FieldNumber  FieldType = "number"
	FieldBoolean FieldType = "boolean"
	FieldText    FieldType = "text"
)

// Settings controls aggregation behaviour for a calculation run.
type Settings struct {
	PassCalcMode         PassCalcMode `json:"pass_calc_mode"`
	ExamScoreSource      ScoreSource  `json:"exam_score_source"`
	OverallPassThreshold float64      `json:"overall_pass_threshold"`
	ExamWeight           float64      `json:"exam_weight"`
	FailOnAnyExam        bool         `json:"fail_on_any_exam"`
}

// Attempt is one student's try at one exam, already joined with the exam's
// inclusion flag and optional per-exam pass threshold.
type Attempt struct {
	ExamID               string   `json:"exam_id"`
	ExamTitle            string   `json:"exam_title"`
	ScorePercentage      *float64 `json:"score_percentage"`
	FinalScorePercentage *float64 `json:"final_score_percentage"`
	IncludeInPass        bool     `json:"include_in_pass"`
	PassThreshold        *float64 `json:"pass_threshold,omitempty"`
}

// ExtraField describes how one key of the extra scores blob is interpreted.
type ExtraField struct {
	Key             string             `json:"key"`
	Label           string             `json:"label"`
	Type            FieldType          `json:"type"`
	IncludeInPass   bool               `json:"include_in_pass"`
	PassWeight      float64            `json:"pass_weight"`
	MaxPoints       *float64           `json:"max_points,omitempty"`
	BoolTruePoints  *float64           `json:"bool_true_points,omitempty"`
	BoolFalsePoints *float64           `json:"bool_false_points,omitempty"`
	TextScoreMap    map[string]float64 `json:"text_score_map,omitempty"`
}

// Input is the full request to the engine. ExtraScores carries raw
// JSON-decoded values (number, bool, string or nil); keys need not cover all
// configured fields.
type Input struct {
	StudentID    string         `json:"student_id"`
	StudentCode  string         `json:"student_code"`
	StudentName  string         `json:"student_name"`
	ExamAttempts []Attempt      `json:"exam_attempts"`
	ExtraScores  map[string]any `json:"extra_scores"`
	ExtraFields  []ExtraField   `json:"extra_fields"`
	Settings     Settings       `json:"settings"`
}

// FieldError describes a single validation violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ExamDetail reports one attempt's contribution for transparency. Excluded
// and unscored attempts are still listed.
type ExamDetail struct {
	ExamID    string   `json:"exam_id"`
	ExamTitle string   `json:"exam_title"`
	Included  bool     `json:"included"`
	Score     *float64 `json:"score"`
	Threshold float64  `json:"threshold"`
	Passed    *bool    `json:"passed"`
}

// ExamComponent summarises exam performance as one normalized percentage.
type ExamComponent struct {
	Score         *float64     `json:"score"`
	Mode          PassCalcMode `json:"mode"`
	ExamsIncluded int          `json:"exams_included"`
	ExamsTotal    int          `json:"exams_total"`
	ExamsPassed   int          `json:"exams_passed"`
	Details       []ExamDetail `json:"details"`
}

// ExtraDetail reports one included extra field's contribution.
type ExtraDetail struct {
	FieldKey             string  `json:"field_key"`
	RawValue             any     `json:"raw_value"`
	NormalizedScore      float64 `json:"normalized_score"`
	Weight               float64 `json:"weight"`
	WeightedContribution float64 `json:"weighted_contribution"`
}

// ExtraComponent summarises the weighted extra fields as one percentage.
type ExtraComponent struct {
	Score       *float64      `json:"score"`
	TotalWeight float64       `json:"total_weight"`
	Details     []ExtraDetail `json:"details"`
}

// Result is the engine output. When Success is false only Errors is
// meaningful; callers must check Success before reading score fields.
type Result struct {
	Success        bool           `json:"success"`
	Errors         []FieldError   `json:"errors,omitempty"`
	StudentID      string         `json:"student_id"`
	StudentCode    string         `json:"student_code"`
	StudentName    string         `json:"student_name"`
	ExamComponent  ExamComponent  `json:"exam_component"`
	ExtraComponent ExtraComponent `json:"extra_component"`
	FinalScore     *float64       `json:"final_score"`
	Passed         *bool          `json:"passed"`
}

// Calculate runs validation, both component calculators and the final
// aggregation. It never panics and never emits NaN; malformed input yields a
// Result with Success=false.
func Calculate(input Input) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Result{
				Success: false,
				Errors:  []FieldError{{Field: "input", Message: fmt.Sprintf("calculation aborted: %v", r)}},
			}
		}
	}()

	if errs := validate(input); len(errs) > 0 {
		return Result{Success: false, Errors: errs, StudentID: input.StudentID, StudentCode: input.StudentCode, StudentName: input.StudentName}
	}

	exam := calcExamComponent(input.ExamAttempts, input.Settings)
	extra := calcExtraComponent(input.ExtraFields, input.ExtraScores)
	final, passed := combine(exam, extra, input.Settings)

	return Result{
		Success:        true,
		StudentID:      input.StudentID,
		StudentCode:    input.StudentCode,
		StudentName:    input.StudentName,
		ExamComponent:  exam,
		ExtraComponent: extra,
		FinalScore:     final,
		Passed:         passed,
	}
}

// combine blends the two component scores. A component without data is
// treated as absent, not as zero: with only one score present the final score
// is that score. With both present the exam component carries ExamWeight
// against an implicit extra weight of 1.
func combine(exam ExamComponent, extra ExtraComponent, settings Settings) (*float64, *bool) {
	var final float64
	switch {
	case exam.Score == nil && extra.Score == nil:
		return nil, nil
	case exam.Score == nil:
		final = *extra.Score
	case extra.Score == nil:
		final = *exam.Score
	default:
		final = (*exam.Score*settings.ExamWeight + *extra.Score) / (settings.ExamWeight + 1)
	}
	final = round2(final)

	passed := final >= settings.OverallPassThreshold
	if settings.FailOnAnyExam && anyIncludedFailed(exam) {
		passed = false
	}
	return &final, &passed
}

func anyIncludedFailed(exam ExamComponent) bool {
	for _, d := range exam.Details {
		if d.Included && d.Passed != nil && !*d.Passed {
			return true
		}
	}
	return false
}
