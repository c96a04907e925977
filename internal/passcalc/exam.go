package passcalc

// selectedScore picks the score column an attempt contributes under the
// configured source. Nil means the attempt has no recorded score.
func (a Attempt) selectedScore(source ScoreSource) *float64 {
	if source == SourceRaw {
		return a.ScorePercentage
	}
	return a.FinalScorePercentage
}

// effectiveThreshold is the per-exam override when present, otherwise the
// overall pass threshold.
func (a Attempt) effectiveThreshold(settings Settings) float64 {
	if a.PassThreshold != nil {
		return *a.PassThreshold
	}
	return settings.OverallPassThreshold
}

// calcExamComponent reduces the attempt list to one normalized percentage.
// Attempts excluded via IncludeInPass or lacking a recorded score carry zero
// weight but are still reported in the details for transparency.
func calcExamComponent(attempts []Attempt, settings Settings) ExamComponent {
	comp := ExamComponent{
		Mode:       settings.PassCalcMode,
		ExamsTotal: len(attempts),
		Details:    make([]ExamDetail, 0, len(attempts)),
	}

	var sum, best float64
	for _, attempt := range attempts {
		score := attempt.selectedScore(settings.ExamScoreSource)
		threshold := attempt.effectiveThreshold(settings)

		detail := ExamDetail{
			ExamID:    attempt.ExamID,
			ExamTitle: attempt.ExamTitle,
			Included:  attempt.IncludeInPass && score != nil,
			Score:     score,
			Threshold: threshold,
		}
		if score != nil {
			passed := *score >= threshold
			detail.Passed = &passed
		}

		if detail.Included {
			comp.ExamsIncluded++
			sum += *score
			if comp.ExamsIncluded == 1 || *score > best {
				best = *score
			}
			if detail.Passed != nil && *detail.Passed {
				comp.ExamsPassed++
			}
		}
		comp.Details = append(comp.Details, detail)
	}

	// Empty included set stays nil: zero exams is "no data", not a zero score.
	if comp.ExamsIncluded > 0 {
		var score float64
		if settings.PassCalcMode == ModeBest {
			score = round2(best)
		} else {
			score = round2(sum / float64(comp.ExamsIncluded))
		}
		comp.Score = &score
	}
	return comp
}
