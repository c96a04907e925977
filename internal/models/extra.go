package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ExtraFieldType enumerates the supported extra field kinds.
type ExtraFieldType string

const (
	ExtraFieldNumber  ExtraFieldType = "number"
	ExtraFieldBoolean ExtraFieldType = "boolean"
	ExtraFieldText    ExtraFieldType = "text"
)

// ScoreMap is a JSONB mapping of text values to numeric scores.
type ScoreMap map[string]float64

// Value implements driver.Valuer for JSONB storage.
func (m ScoreMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for JSONB retrieval.
func (m *ScoreMap) Scan(src any) error {
	return scanJSON(src, m)
}

// RawScores is the per-student extra score blob: field key to raw value
// (number, boolean, string or nil).
type RawScores map[string]any

// Value implements driver.Valuer for JSONB storage.
func (s RawScores) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner for JSONB retrieval.
func (s *RawScores) Scan(src any) error {
	return scanJSON(src, s)
}

func scanJSON(src, dest any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	}
	return fmt.Errorf("unsupported jsonb source type %T", src)
}

// ExtraField configures one non-exam scoring input (attendance, homework,
// custom metric) contributing to the overall pass determination.
type ExtraField struct {
	ID              string         `db:"id" json:"id"`
	Key             string         `db:"key" json:"key"`
	Label           string         `db:"label" json:"label"`
	Type            ExtraFieldType `db:"type" json:"type"`
	IncludeInPass   bool           `db:"include_in_pass" json:"include_in_pass"`
	PassWeight      float64        `db:"pass_weight" json:"pass_weight"`
	MaxPoints       *float64       `db:"max_points" json:"max_points,omitempty"`
	BoolTruePoints  *float64       `db:"bool_true_points" json:"bool_true_points,omitempty"`
	BoolFalsePoints *float64       `db:"bool_false_points" json:"bool_false_points,omitempty"`
	TextScoreMap    ScoreMap       `db:"text_score_map" json:"text_score_map,omitempty"`
	Position        int            `db:"position" json:"position"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// ExtraScoreSet stores a student's raw extra score values.
type ExtraScoreSet struct {
	StudentID string    `db:"student_id" json:"student_id"`
	Scores    RawScores `db:"scores" json:"scores"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
