package passcalc

// calcExtraComponent reduces the configured extra fields to one weighted
// percentage. Fields excluded via IncludeInPass are skipped entirely: no
// detail row, no weight.
func calcExtraComponent(fields []ExtraField, scores map[string]any) ExtraComponent {
	comp := ExtraComponent{Details: make([]ExtraDetail, 0, len(fields))}

	var weightedSum float64
	for _, field := range fields {
		if !field.IncludeInPass {
			continue
		}
		raw := scores[field.Key]
		normalized := normalizeExtra(field, raw)
		contribution := normalized * field.PassWeight

		comp.TotalWeight += field.PassWeight
		weightedSum += contribution
		comp.Details = append(comp.Details, ExtraDetail{
			FieldKey:             field.Key,
			RawValue:             raw,
			NormalizedScore:      normalized,
			Weight:               field.PassWeight,
			WeightedContribution: contribution,
		})
	}

	if comp.TotalWeight > 0 {
		score := round2(weightedSum / comp.TotalWeight)
		comp.Score = &score
	}
	return comp
}

// normalizeExtra maps one raw value onto the common 0-100 scale. Missing,
// nil and unmapped values contribute zero. The result is clamped to [0,100]
// and rounded to two decimals before weighting.
func normalizeExtra(field ExtraField, raw any) float64 {
	if raw == nil {
		return 0
	}
	switch field.Type {
	case FieldNumber:
		value, ok := toNumber(raw)
		if !ok {
			return 0
		}
		if field.MaxPoints != nil {
			return round2(clamp(value / *field.MaxPoints * 100))
		}
		return round2(clamp(value))
	case FieldBoolean:
		value, ok := raw.(bool)
		if !ok {
			return 0
		}
		if value {
			return round2(clamp(pointsOrDefault(field.BoolTruePoints, 100)))
		}
		return round2(clamp(pointsOrDefault(field.BoolFalsePoints, 0)))
	case FieldText:
		value, ok := raw.(string)
		if !ok {
			return 0
		}
		if score, mapped := field.TextScoreMap[value]; mapped {
			return round2(clamp(score))
		}
		return 0
	}
	return 0
}

func pointsOrDefault(points *float64, fallback float64) float64 {
	if points != nil {
		return *points
	}
	return fallback
}
