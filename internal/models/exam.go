package models

import "time"

// Exam represents one administered exam and its pass-calculation settings.
type Exam struct {
	ID            string    `db:"id" json:"id"`
	Title         string    `db:"title" json:"title"`
	IncludeInPass bool      `db:"include_in_pass" json:"include_in_pass"`
	PassThreshold *float64  `db:"pass_threshold" json:"pass_threshold,omitempty"`
	Active        bool      `db:"active" json:"active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// ExamFilter captures filtering criteria for listing exams.
type ExamFilter struct {
	Active *bool
	Search string
}

// ExamAttempt stores a student's recorded scores for one exam.
type ExamAttempt struct {
	ID                   string     `db:"id" json:"id"`
	StudentID            string     `db:"student_id" json:"student_id"`
	ExamID               string     `db:"exam_id" json:"exam_id"`
	ScorePercentage      *float64   `db:"score_percentage" json:"score_percentage"`
	FinalScorePercentage *float64   `db:"final_score_percentage" json:"final_score_percentage"`
	SubmittedAt          *time.Time `db:"submitted_at" json:"submitted_at,omitempty"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at" json:"updated_at"`
}

// AttemptScoreRow is an attempt joined with its exam's pass configuration,
// shaped for the calculation engine.
type AttemptScoreRow struct {
	StudentID            string   `db:"student_id" json:"student_id"`
	ExamID               string   `db:"exam_id" json:"exam_id"`
	ExamTitle            string   `db:"exam_title" json:"exam_title"`
	ScorePercentage      *float64 `db:"score_percentage" json:"score_percentage"`
	FinalScorePercentage *float64 `db:"final_score_percentage" json:"final_score_percentage"`
	IncludeInPass        bool     `db:"include_in_pass" json:"include_in_pass"`
	PassThreshold        *float64 `db:"pass_threshold" json:"pass_threshold,omitempty"`
}
