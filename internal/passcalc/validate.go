package passcalc

import (
	"fmt"
	"strings"
)

// validate checks structural and semantic validity of the calculation input.
// All violations are collected; computation never proceeds on a non-empty
// return.
func validate(input Input) []FieldError {
	var errs []FieldError
	add := func(field, message string) {
		errs = append(errs, FieldError{Field: field, Message: message})
	}

	if strings.TrimSpace(input.StudentID) == "" {
		add("student_id", "must not be blank")
	}
	if strings.TrimSpace(input.StudentCode) == "" {
		add("student_code", "must not be blank")
	}
	if strings.TrimSpace(input.StudentName) == "" {
		add("student_name", "must not be blank")
	}

	errs = append(errs, validateSettings(input.Settings)...)

	for i, attempt := range input.ExamAttempts {
		prefix := fmt.Sprintf("exam_attempts[%d]", i)
		if strings.TrimSpace(attempt.ExamID) == "" {
			add(prefix+".exam_id", "must not be blank")
		}
		if strings.TrimSpace(attempt.ExamTitle) == "" {
			add(prefix+".exam_title", "must not be blank")
		}
		if attempt.ScorePercentage != nil && isNaN(*attempt.ScorePercentage) {
			add(prefix+".score_percentage", "must not be NaN")
		}
		if attempt.FinalScorePercentage != nil && isNaN(*attempt.FinalScorePercentage) {
			add(prefix+".final_score_percentage", "must not be NaN")
		}
	}

	seen := make(map[string]struct{}, len(input.ExtraFields))
	for i, field := range input.ExtraFields {
		prefix := fmt.Sprintf("extra_fields[%d]", i)
		key := strings.TrimSpace(field.Key)
		if key == "" {
			add(prefix+".key", "must not be blank")
		} else if _, dup := seen[key]; dup {
			add(prefix+".key", fmt.Sprintf("duplicate key %q", key))
		} else {
			seen[key] = struct{}{}
		}
		errs = append(errs, validateFieldConfig(prefix, field)...)
	}

	errs = append(errs, validateRawScores(input.ExtraFields, input.ExtraScores)...)

	return errs
}

func validateSettings(s Settings) []FieldError {
	var errs []FieldError
	switch s.PassCalcMode {
	case ModeBest, ModeAvg:
	default:
		errs = append(errs, FieldError{Field: "settings.pass_calc_mode", Message: fmt.Sprintf("unknown mode %q", s.PassCalcMode)})
	}
	switch s.ExamScoreSource {
	case SourceFinal, SourceRaw:
	default:
		errs = append(errs, FieldError{Field: "settings.exam_score_source", Message: fmt.Sprintf("unknown source %q", s.ExamScoreSource)})
	}
	if isNaN(s.OverallPassThreshold) || s.OverallPassThreshold < 0 || s.OverallPassThreshold > 100 {
		errs = append(errs, FieldError{Field: "settings.overall_pass_threshold", Message: "must be within [0,100]"})
	}
	if isNaN(s.ExamWeight) || s.ExamWeight < 0 {
		errs = append(errs, FieldError{Field: "settings.exam_weight", Message: "must be >= 0"})
	}
	return errs
}

func validateFieldConfig(prefix string, field ExtraField) []FieldError {
	var errs []FieldError
	add := func(name, message string) {
		errs = append(errs, FieldError{Field: prefix + "." + name, Message: message})
	}

	switch field.Type {
	case FieldNumber, FieldBoolean, FieldText:
	default:
		add("type", fmt.Sprintf("unknown type %q", field.Type))
	}
	if isNaN(field.PassWeight) || field.PassWeight < 0 {
		add("pass_weight", "must be >= 0")
	}
	if field.Type == FieldNumber && field.MaxPoints != nil && (isNaN(*field.MaxPoints) || *field.MaxPoints <= 0) {
		add("max_points", "must be > 0")
	}
	if field.BoolTruePoints != nil && (isNaN(*field.BoolTruePoints) || *field.BoolTruePoints < 0 || *field.BoolTruePoints > 100) {
		add("bool_true_points", "must be within [0,100]")
	}
	if field.BoolFalsePoints != nil && (isNaN(*field.BoolFalsePoints) || *field.BoolFalsePoints < 0 || *field.BoolFalsePoints > 100) {
		add("bool_false_points", "must be within [0,100]")
	}
	for key, score := range field.TextScoreMap {
		if isNaN(score) || score < 0 || score > 100 {
			add("text_score_map."+key, "must be within [0,100]")
		}
	}
	return errs
}

// validateRawScores rejects wrong-typed raw values for configured fields. A
// missing key or explicit nil passes through (it normalizes to zero later);
// a value of the wrong kind is a misconfiguration worth surfacing.
func validateRawScores(fields []ExtraField, scores map[string]any) []FieldError {
	if len(scores) == 0 {
		return nil
	}
	var errs []FieldError
	for _, field := range fields {
		raw, ok := scores[field.Key]
		if !ok || raw == nil {
			continue
		}
		switch field.Type {
		case FieldNumber:
			if v, numeric := toNumber(raw); !numeric {
				errs = append(errs, FieldError{Field: "extra_scores." + field.Key, Message: "expected a number"})
			} else if isNaN(v) {
				errs = append(errs, FieldError{Field: "extra_scores." + field.Key, Message: "must not be NaN"})
			}
		case FieldBoolean:
			if _, isBool := raw.(bool); !isBool {
				errs = append(errs, FieldError{Field: "extra_scores." + field.Key, Message: "expected a boolean"})
			}
		case FieldText:
			if _, isString := raw.(string); !isString {
				errs = append(errs, FieldError{Field: "extra_scores." + field.Key, Message: "expected a string"})
			}
		}
	}
	return errs
}
