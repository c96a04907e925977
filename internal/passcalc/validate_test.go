package passcalc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errorFields(result Result) []string {
	fields := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		fields = append(fields, e.Field)
	}
	return fields
}

func TestValidateBlankIdentity(t *testing.T) {
	input := testInput(testSettings())
	input.StudentID = "  "
	input.StudentName = ""

	result := Calculate(input)
	require.False(t, result.Success)
	fields := errorFields(result)
	assert.Contains(t, fields, "student_id")
	assert.Contains(t, fields, "student_name")
	assert.NotContains(t, fields, "student_code")
	assert.Nil(t, result.FinalScore)
}

func TestValidateSettingsEnums(t *testing.T) {
	settings := testSettings()
	settings.PassCalcMode = "median"
	settings.ExamScoreSource = "curved"
	input := testInput(settings)

	result := Calculate(input)
	require.False(t, result.Success)
	fields := errorFields(result)
	assert.Contains(t, fields, "settings.pass_calc_mode")
	assert.Contains(t, fields, "settings.exam_score_source")
}

func TestValidateSettingsRanges(t *testing.T) {
	settings := testSettings()
	settings.OverallPassThreshold = 140
	settings.ExamWeight = -1
	input := testInput(settings)

	result := Calculate(input)
	require.False(t, result.Success)
	fields := errorFields(result)
	assert.Contains(t, fields, "settings.overall_pass_threshold")
	assert.Contains(t, fields, "settings.exam_weight")
}

func TestValidateNaNThreshold(t *testing.T) {
	settings := testSettings()
	settings.OverallPassThreshold = math.NaN()
	result := Calculate(testInput(settings))
	require.False(t, result.Success)
	assert.Contains(t, errorFields(result), "settings.overall_pass_threshold")
}

func TestValidateAttempts(t *testing.T) {
	input := testInput(testSettings())
	nan := math.NaN()
	input.ExamAttempts = []Attempt{
		{ExamID: "", ExamTitle: "Exam", IncludeInPass: true},
		{ExamID: "e2", ExamTitle: " ", ScorePercentage: &nan, IncludeInPass: true},
	}

	result := Calculate(input)
	require.False(t, result.Success)
	fields := errorFields(result)
	assert.Contains(t, fields, "exam_attempts[0].exam_id")
	assert.Contains(t, fields, "exam_attempts[1].exam_title")
	assert.Contains(t, fields, "exam_attempts[1].score_percentage")
}

func TestValidateExtraFieldConfig(t *testing.T) {
	input := testInput(testSettings())
	input.ExtraFields = []ExtraField{
		{Key: "hw", Type: FieldNumber, PassWeight: 1, MaxPoints: fptr(0)},
		{Key: "hw", Type: "fraction", PassWeight: -2},
		{Key: "effort", Type: FieldText, PassWeight: 1, TextScoreMap: map[string]float64{"great": 150}},
	}

	result := Calculate(input)
	require.False(t, result.Success)
	fields := errorFields(result)
	assert.Contains(t, fields, "extra_fields[0].max_points")
	assert.Contains(t, fields, "extra_fields[1].key")
	assert.Contains(t, fields, "extra_fields[1].type")
	assert.Contains(t, fields, "extra_fields[1].pass_weight")
	assert.Contains(t, fields, "extra_fields[2].text_score_map.great")
}

func TestValidateRawValueTypes(t *testing.T) {
	input := testInput(testSettings())
	input.ExtraFields = []ExtraField{
		{Key: "hw", Type: FieldNumber, IncludeInPass: true, PassWeight: 1},
		{Key: "present", Type: FieldBoolean, IncludeInPass: true, PassWeight: 1},
		{Key: "effort", Type: FieldText, IncludeInPass: true, PassWeight: 1},
	}
	input.ExtraScores = map[string]any{"hw": "ninety", "present": 1.0, "effort": true}

	result := Calculate(input)
	require.False(t, result.Success)
	fields := errorFields(result)
	assert.Contains(t, fields, "extra_scores.hw")
	assert.Contains(t, fields, "extra_scores.present")
	assert.Contains(t, fields, "extra_scores.effort")
}

func TestValidateMissingAndNilRawValuesPass(t *testing.T) {
	input := testInput(testSettings())
	input.ExamAttempts = []Attempt{attempt("e1", 80)}
	input.ExtraFields = []ExtraField{
		{Key: "hw", Type: FieldNumber, IncludeInPass: true, PassWeight: 1},
		{Key: "present", Type: FieldBoolean, IncludeInPass: true, PassWeight: 1},
	}
	input.ExtraScores = map[string]any{"present": nil}

	result := Calculate(input)
	require.True(t, result.Success)
	require.NotNil(t, result.ExtraComponent.Score)
	assert.Equal(t, 0.0, *result.ExtraComponent.Score)
}

func TestValidateCollectsAllViolations(t *testing.T) {
	settings := testSettings()
	settings.PassCalcMode = "nope"
	input := testInput(settings)
	input.StudentCode = ""

	result := Calculate(input)
	require.False(t, result.Success)
	assert.GreaterOrEqual(t, len(result.Errors), 2)
}
