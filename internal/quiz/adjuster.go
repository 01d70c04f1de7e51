package quiz

import "math"

// BlendWeights controls the questionnaire/scenario mix. The two weights are
// expected to sum to 1.0; anything else is renormalized before use.
type BlendWeights struct {
	Question float64 `json:"question"`
	Scenario float64 `json:"scenario"`
}

// DefaultBlend is the standard 75/25 questionnaire/scenario mix.
var DefaultBlend = BlendWeights{Question: 0.75, Scenario: 0.25}

func (w BlendWeights) normalized() BlendWeights {
	sum := w.Question + w.Scenario
	if sum <= 0 || math.IsNaN(sum) {
		return DefaultBlend
	}
	return BlendWeights{Question: w.Question / sum, Scenario: w.Scenario / sum}
}

// BuildScenarioVector accumulates the per-dimension deltas of each chosen
// option. choices maps scenario ID to the picked option ID; unknown
// scenario or option IDs are ignored. The result is on the scenarios'
// native delta scale, not 0..100.
func BuildScenarioVector(choices map[string]string, scenarios []Scenario) ScoreVector {
	raw := make(ScoreVector)
	for _, sc := range scenarios {
		optID, ok := choices[sc.ID]
		if !ok {
			continue
		}
		for _, opt := range sc.Options {
			if opt.ID != optID {
				continue
			}
			for dim, delta := range opt.Effects {
				raw[dim] += delta
			}
			break
		}
	}
	return raw
}

// Adjust blends scenario-derived raw deltas into the base vector. The raw
// deltas are first rescaled to 0..100 by the largest absolute delta, with
// the divisor floored at 1 so a degenerate scale never divides by zero.
// Dimensions absent from scenarioRaw contribute zero scenario influence.
// A scenario vector with no signal (empty, or all zeros) leaves the base
// untouched apart from clamping.
func Adjust(base, scenarioRaw ScoreVector, w BlendWeights) ScoreVector {
	maxMag := 0.0
	for _, delta := range scenarioRaw {
		if m := math.Abs(delta); m > maxMag {
			maxMag = m
		}
	}
	if maxMag == 0 {
		return base.Clamped()
	}
	if maxMag < 1 {
		maxMag = 1
	}

	w = w.normalized()
	out := make(ScoreVector, len(base))
	for dim, b := range base {
		scenarioNorm := scenarioRaw[dim] / maxMag * 100
		out[dim] = clamp(b*w.Question+scenarioNorm*w.Scenario, 0, 100)
	}
	return out
}
