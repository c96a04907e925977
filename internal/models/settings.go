package models

import "time"

// CalculationSettings is the singleton row controlling final score
// aggregation behaviour.
type CalculationSettings struct {
	ID                   string    `db:"id" json:"id"`
	PassCalcMode         string    `db:"pass_calc_mode" json:"pass_calc_mode"`
	ExamScoreSource      string    `db:"exam_score_source" json:"exam_score_source"`
	OverallPassThreshold float64   `db:"overall_pass_threshold" json:"overall_pass_threshold"`
	ExamWeight           float64   `db:"exam_weight" json:"exam_weight"`
	FailOnAnyExam        bool      `db:"fail_on_any_exam" json:"fail_on_any_exam"`
	UpdatedAt            time.Time `db:"updated_at" json:"updated_at"`
}
