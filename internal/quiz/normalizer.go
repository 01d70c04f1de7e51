package quiz

// NeutralScore is assigned to a dimension that received no answers. The
// scale midpoint is used rather than zero: an unscored dimension carries no
// evidence either way, and a zero would drag matching toward low-signature
// archetypes.
const NeutralScore = 50.0

// Normalize converts raw Likert answers into per-dimension scores on a
// 0..100 scale. Pure function of its input.
func Normalize(answers map[string]Answer) ScoreVector {
	return NormalizeScale(answers, nil, LikertScale)
}

// NormalizeScale converts raw answers on an arbitrary bounded scale.
// Reverse-coded answers are flipped to (min+max)-v before averaging. Each
// dimension score is the arithmetic mean of its answers rescaled linearly
// from [min, max] to [0, 100]. Dimensions listed in dims that received no
// answers get NeutralScore instead of failing.
func NormalizeScale(answers map[string]Answer, dims []string, s Scale) ScoreVector {
	totals := make(map[string]float64, len(answers))
	counts := make(map[string]int, len(answers))

	for _, a := range answers {
		v := float64(a.Value)
		if a.Reverse {
			v = float64(s.Min+s.Max) - v
		}
		totals[a.Dimension] += v
		counts[a.Dimension]++
	}

	span := float64(s.Max - s.Min)
	if span <= 0 {
		span = 1
	}

	scores := make(ScoreVector, len(totals))
	for dim, total := range totals {
		mean := total / float64(counts[dim])
		scores[dim] = clamp((mean-float64(s.Min))/span*100, 0, 100)
	}

	for _, dim := range dims {
		if _, ok := scores[dim]; !ok {
			scores[dim] = NeutralScore
		}
	}

	return scores
}
