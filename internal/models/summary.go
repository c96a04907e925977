package models

import (
	"encoding/json"
	"time"
)

// StudentSummary stores the persisted outcome of a final score calculation.
// Result carries the full engine output (component details included) as JSONB
// for transparency in the admin UI.
type StudentSummary struct {
	ID           string          `db:"id" json:"id"`
	StudentID    string          `db:"student_id" json:"student_id"`
	FinalScore   *float64        `db:"final_score" json:"final_score"`
	Passed       *bool           `db:"passed" json:"passed"`
	ExamScore    *float64        `db:"exam_score" json:"exam_score"`
	ExtraScore   *float64        `db:"extra_score" json:"extra_score"`
	Result       json.RawMessage `db:"result" json:"result,omitempty"`
	CalculatedAt time.Time       `db:"calculated_at" json:"calculated_at"`
}

// ClassSummaryRow represents one student's line in the class overview.
type ClassSummaryRow struct {
	StudentID   string   `db:"student_id" json:"student_id"`
	StudentCode string   `db:"student_code" json:"student_code"`
	StudentName string   `db:"student_name" json:"student_name"`
	FinalScore  *float64 `db:"final_score" json:"final_score,omitempty"`
	Passed      *bool    `db:"passed" json:"passed,omitempty"`
	Rank        *int     `db:"rank" json:"rank,omitempty"`
}

// SummaryDistribution aggregates final score metrics across students.
type SummaryDistribution struct {
	Min         *float64 `db:"min" json:"min,omitempty"`
	Max         *float64 `db:"max" json:"max,omitempty"`
	Average     *float64 `db:"average" json:"average,omitempty"`
	PassedCount int      `db:"passed_count" json:"passed_count"`
	FailedCount int      `db:"failed_count" json:"failed_count"`
	Total       int      `db:"total" json:"total"`
}

// ClassSummary bundles ranked rows with distribution metrics.
type ClassSummary struct {
	Students     []ClassSummaryRow    `json:"students"`
	Distribution *SummaryDistribution `json:"distribution,omitempty"`
	GeneratedAt  time.Time            `json:"generated_at"`
}
