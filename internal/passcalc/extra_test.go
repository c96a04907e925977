package passcalc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numberField(key string, weight float64, maxPoints *float64) ExtraField {
	return ExtraField{Key: key, Label: key, Type: FieldNumber, IncludeInPass: true, PassWeight: weight, MaxPoints: maxPoints}
}

func TestNumberNormalizationWithMaxPoints(t *testing.T) {
	field := numberField("hw", 1, fptr(50))

	assert.Equal(t, 100.0, normalizeExtra(field, 50.0))
	assert.Equal(t, 50.0, normalizeExtra(field, 25.0))
	// Values beyond the configured maximum clamp instead of overflowing.
	assert.Equal(t, 100.0, normalizeExtra(field, 80.0))
	assert.Equal(t, 0.0, normalizeExtra(field, -10.0))
}

func TestNumberNormalizationWithoutMaxPoints(t *testing.T) {
	field := numberField("hw", 1, nil)

	assert.Equal(t, 42.0, normalizeExtra(field, 42.0))
	assert.Equal(t, 100.0, normalizeExtra(field, 250.0))
	assert.Equal(t, 0.0, normalizeExtra(field, -3.0))
	assert.Equal(t, 0.0, normalizeExtra(field, nil))
}

func TestBooleanDefaults(t *testing.T) {
	field := ExtraField{Key: "attendance", Type: FieldBoolean, IncludeInPass: true, PassWeight: 1}

	assert.Equal(t, 100.0, normalizeExtra(field, true))
	assert.Equal(t, 0.0, normalizeExtra(field, false))
	assert.Equal(t, 0.0, normalizeExtra(field, nil))
}

func TestBooleanConfiguredPoints(t *testing.T) {
	field := ExtraField{Key: "attendance", Type: FieldBoolean, IncludeInPass: true, PassWeight: 1, BoolTruePoints: fptr(80), BoolFalsePoints: fptr(20)}

	assert.Equal(t, 80.0, normalizeExtra(field, true))
	assert.Equal(t, 20.0, normalizeExtra(field, false))
}

func TestTextMapping(t *testing.T) {
	field := ExtraField{Key: "effort", Type: FieldText, IncludeInPass: true, PassWeight: 1, TextScoreMap: map[string]float64{"good": 90, "ok": 60}}

	assert.Equal(t, 90.0, normalizeExtra(field, "good"))
	assert.Equal(t, 60.0, normalizeExtra(field, "ok"))
	assert.Equal(t, 0.0, normalizeExtra(field, "unmapped"))
	assert.Equal(t, 0.0, normalizeExtra(field, nil))
}

func TestWeightedAverageCorrectness(t *testing.T) {
	fields := []ExtraField{
		numberField("a", 3, nil),
		numberField("b", 1, nil),
	}
	scores := map[string]any{"a": 80.0, "b": 40.0}

	comp := calcExtraComponent(fields, scores)
	require.NotNil(t, comp.Score)
	// (80*3 + 40*1) / 4
	assert.Equal(t, 70.0, *comp.Score)
	assert.Equal(t, 4.0, comp.TotalWeight)
	require.Len(t, comp.Details, 2)
	assert.Equal(t, 240.0, comp.Details[0].WeightedContribution)
}

func TestZeroTotalWeightYieldsNilScore(t *testing.T) {
	fields := []ExtraField{numberField("a", 0, nil)}
	comp := calcExtraComponent(fields, map[string]any{"a": 90.0})
	assert.Nil(t, comp.Score)
	assert.Equal(t, 0.0, comp.TotalWeight)
	assert.Len(t, comp.Details, 1)
}

func TestExcludedFieldSkippedEntirely(t *testing.T) {
	excluded := numberField("hidden", 5, nil)
	excluded.IncludeInPass = false
	fields := []ExtraField{numberField("a", 1, nil), excluded}

	comp := calcExtraComponent(fields, map[string]any{"a": 60.0, "hidden": 100.0})
	require.NotNil(t, comp.Score)
	assert.Equal(t, 60.0, *comp.Score)
	assert.Equal(t, 1.0, comp.TotalWeight)
	assert.Len(t, comp.Details, 1)
}

func TestMissingValueContributesZeroWeightStays(t *testing.T) {
	fields := []ExtraField{numberField("a", 1, nil), numberField("b", 1, nil)}
	comp := calcExtraComponent(fields, map[string]any{"a": 100.0})
	require.NotNil(t, comp.Score)
	assert.Equal(t, 50.0, *comp.Score)
}

func TestNormalizedScoresAlwaysInRange(t *testing.T) {
	field := numberField("hw", 1, fptr(10))
	for _, raw := range []float64{-1000, -1, 0, 5, 10, 11, 99999} {
		normalized := normalizeExtra(field, raw)
		assert.GreaterOrEqual(t, normalized, 0.0)
		assert.LessOrEqual(t, normalized, 100.0)
	}
}
