package passcalc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 {
	return &v
}

func testSettings() Settings {
	return Settings{
		PassCalcMode:         ModeBest,
		ExamScoreSource:      SourceFinal,
		OverallPassThreshold: 60,
		ExamWeight:           1,
	}
}

func testInput(settings Settings) Input {
	return Input{
		StudentID:   "stu-1",
		StudentCode: "S001",
		StudentName: "Student One",
		Settings:    settings,
	}
}

func attempt(id string, final float64) Attempt {
	return Attempt{ExamID: id, ExamTitle: "Exam " + id, FinalScorePercentage: fptr(final), IncludeInPass: true}
}

func TestCalculateBestMode(t *testing.T) {
	input := testInput(testSettings())
	input.ExamAttempts = []Attempt{attempt("e1", 60), attempt("e2", 85)}

	result := Calculate(input)
	require.True(t, result.Success)
	require.NotNil(t, result.ExamComponent.Score)
	assert.Equal(t, 85.0, *result.ExamComponent.Score)
	assert.Equal(t, 2, result.ExamComponent.ExamsIncluded)
	assert.Equal(t, 2, result.ExamComponent.ExamsTotal)
	assert.Equal(t, 2, result.ExamComponent.ExamsPassed)
}

func TestCalculateAvgMode(t *testing.T) {
	settings := testSettings()
	settings.PassCalcMode = ModeAvg
	input := testInput(settings)
	input.ExamAttempts = []Attempt{attempt("e1", 60), attempt("e2", 85)}

	result := Calculate(input)
	require.True(t, result.Success)
	require.NotNil(t, result.ExamComponent.Score)
	assert.Equal(t, 72.5, *result.ExamComponent.Score)
}

func TestCalculateZeroExams(t *testing.T) {
	for _, mode := range []PassCalcMode{ModeBest, ModeAvg} {
		settings := testSettings()
		settings.PassCalcMode = mode
		result := Calculate(testInput(settings))
		require.True(t, result.Success)
		assert.Nil(t, result.ExamComponent.Score)
		assert.Equal(t, 0, result.ExamComponent.ExamsIncluded)
		assert.Equal(t, 0, result.ExamComponent.ExamsTotal)
		assert.Nil(t, result.FinalScore)
		assert.Nil(t, result.Passed)
	}
}

func TestCalculateZeroExamsWithExtras(t *testing.T) {
	input := testInput(testSettings())
	input.ExtraFields = []ExtraField{{Key: "homework", Label: "Homework", Type: FieldNumber, IncludeInPass: true, PassWeight: 1, MaxPoints: fptr(100)}}
	input.ExtraScores = map[string]any{"homework": 90.0}

	result := Calculate(input)
	require.True(t, result.Success)
	assert.Nil(t, result.ExamComponent.Score)
	require.NotNil(t, result.FinalScore)
	assert.Equal(t, 90.0, *result.FinalScore)
	require.NotNil(t, result.Passed)
	assert.True(t, *result.Passed)
}

func TestExcludedAttemptNeverContributes(t *testing.T) {
	input := testInput(testSettings())
	excluded := attempt("e2", 99)
	excluded.IncludeInPass = false
	input.ExamAttempts = []Attempt{attempt("e1", 70), excluded}

	result := Calculate(input)
	require.True(t, result.Success)
	require.NotNil(t, result.ExamComponent.Score)
	assert.Equal(t, 70.0, *result.ExamComponent.Score)
	assert.Equal(t, 1, result.ExamComponent.ExamsIncluded)
	assert.Equal(t, 2, result.ExamComponent.ExamsTotal)

	// Varying the excluded score must not move the component.
	input.ExamAttempts[1].FinalScorePercentage = fptr(5)
	again := Calculate(input)
	assert.Equal(t, *result.ExamComponent.Score, *again.ExamComponent.Score)

	// But it stays visible in the details.
	require.Len(t, result.ExamComponent.Details, 2)
	assert.False(t, result.ExamComponent.Details[1].Included)
}

func TestUnscoredAttemptCountedInTotalOnly(t *testing.T) {
	input := testInput(testSettings())
	unscored := Attempt{ExamID: "e2", ExamTitle: "Exam e2", IncludeInPass: true}
	input.ExamAttempts = []Attempt{attempt("e1", 80), unscored}

	result := Calculate(input)
	require.True(t, result.Success)
	assert.Equal(t, 1, result.ExamComponent.ExamsIncluded)
	assert.Equal(t, 2, result.ExamComponent.ExamsTotal)
	require.Len(t, result.ExamComponent.Details, 2)
	assert.Nil(t, result.ExamComponent.Details[1].Passed)
}

func TestExamScoreSourceRaw(t *testing.T) {
	settings := testSettings()
	settings.ExamScoreSource = SourceRaw
	input := testInput(settings)
	input.ExamAttempts = []Attempt{{ExamID: "e1", ExamTitle: "Exam e1", ScorePercentage: fptr(55), FinalScorePercentage: fptr(95), IncludeInPass: true}}

	result := Calculate(input)
	require.True(t, result.Success)
	require.NotNil(t, result.ExamComponent.Score)
	assert.Equal(t, 55.0, *result.ExamComponent.Score)
}

func TestPerExamThresholdDrivesExamsPassed(t *testing.T) {
	input := testInput(testSettings())
	strict := attempt("e1", 70)
	strict.PassThreshold = fptr(75)
	input.ExamAttempts = []Attempt{strict, attempt("e2", 70)}

	result := Calculate(input)
	require.True(t, result.Success)
	assert.Equal(t, 1, result.ExamComponent.ExamsPassed)
	require.NotNil(t, result.ExamComponent.Details[0].Passed)
	assert.False(t, *result.ExamComponent.Details[0].Passed)
}

func TestWeightedCombination(t *testing.T) {
	settings := testSettings()
	settings.ExamWeight = 2
	input := testInput(settings)
	input.ExamAttempts = []Attempt{attempt("e1", 80)}
	input.ExtraFields = []ExtraField{{Key: "attendance", Type: FieldNumber, IncludeInPass: true, PassWeight: 1}}
	input.ExtraScores = map[string]any{"attendance": 50.0}

	result := Calculate(input)
	require.True(t, result.Success)
	require.NotNil(t, result.FinalScore)
	// (80*2 + 50*1) / 3
	assert.Equal(t, 70.0, *result.FinalScore)
}

func TestZeroExamWeightFallsBackToExtra(t *testing.T) {
	settings := testSettings()
	settings.ExamWeight = 0
	input := testInput(settings)
	input.ExamAttempts = []Attempt{attempt("e1", 20)}
	input.ExtraFields = []ExtraField{{Key: "homework", Type: FieldNumber, IncludeInPass: true, PassWeight: 2}}
	input.ExtraScores = map[string]any{"homework": 88.0}

	result := Calculate(input)
	require.True(t, result.Success)
	require.NotNil(t, result.FinalScore)
	assert.Equal(t, *result.ExtraComponent.Score, *result.FinalScore)
}

func TestOnlyExamComponentPresent(t *testing.T) {
	input := testInput(testSettings())
	input.ExamAttempts = []Attempt{attempt("e1", 77.5)}

	result := Calculate(input)
	require.True(t, result.Success)
	require.NotNil(t, result.FinalScore)
	assert.Equal(t, 77.5, *result.FinalScore)
	assert.Nil(t, result.ExtraComponent.Score)
}

func TestPassBoundaryInclusive(t *testing.T) {
	settings := testSettings()
	settings.OverallPassThreshold = 70
	input := testInput(settings)
	input.ExamAttempts = []Attempt{attempt("e1", 70)}

	result := Calculate(input)
	require.True(t, result.Success)
	require.NotNil(t, result.Passed)
	assert.True(t, *result.Passed)
}

func TestFailOnAnyExamOverridesAggregate(t *testing.T) {
	settings := testSettings()
	settings.FailOnAnyExam = true
	input := testInput(settings)
	failing := attempt("e2", 40)
	input.ExamAttempts = []Attempt{attempt("e1", 95), failing}

	result := Calculate(input)
	require.True(t, result.Success)
	require.NotNil(t, result.FinalScore)
	assert.GreaterOrEqual(t, *result.FinalScore, settings.OverallPassThreshold)
	require.NotNil(t, result.Passed)
	assert.False(t, *result.Passed)
}

func TestFailOnAnyExamIgnoresExcludedAttempts(t *testing.T) {
	settings := testSettings()
	settings.FailOnAnyExam = true
	input := testInput(settings)
	excluded := attempt("e2", 10)
	excluded.IncludeInPass = false
	input.ExamAttempts = []Attempt{attempt("e1", 95), excluded}

	result := Calculate(input)
	require.True(t, result.Success)
	require.NotNil(t, result.Passed)
	assert.True(t, *result.Passed)
}

func TestFinalScoreRounded(t *testing.T) {
	settings := testSettings()
	settings.PassCalcMode = ModeAvg
	input := testInput(settings)
	input.ExamAttempts = []Attempt{attempt("e1", 70), attempt("e2", 70), attempt("e3", 71)}

	result := Calculate(input)
	require.True(t, result.Success)
	require.NotNil(t, result.FinalScore)
	assert.Equal(t, 70.33, *result.FinalScore)
}
