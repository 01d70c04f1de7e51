package quiz

import (
	"math/rand"
	"sort"
)

// Default Monte Carlo tuning. Noise is a fraction of the full 0..100 scale,
// not of the current value, so low and high scorers are perturbed equally.
const (
	DefaultRuns  = 5000
	DefaultNoise = 0.07
)

// ShadowResult names the second-most-probable archetype under perturbation.
type ShadowResult struct {
	Name        string  `json:"name"`
	Probability float64 `json:"probability"`
}

// StabilityReport summarizes a Monte Carlo perturbation run. Distribution
// percentages sum to 100 across all tallied names; trials that fail to
// match any archetype are tallied under the Undefined Innovator sentinel so
// the denominator always stays at Runs.
type StabilityReport struct {
	Distribution map[string]float64 `json:"distribution"`
	Primary      string             `json:"primary"`
	Stability    float64            `json:"stability"`
	Shadow       ShadowResult       `json:"shadow"`
	Runs         int                `json:"runs"`
}

// Simulator estimates how stable an archetype assignment is under Gaussian
// perturbation of the score vector. Each trial is independent; the
// simulator itself is not safe for concurrent use because of its rng.
type Simulator struct {
	Runs   int
	Noise  float64
	Strict bool
	rng    *rand.Rand
}

// NewSimulator builds a simulator with the given tuning. runs is kept
// verbatim: zero runs is a valid degenerate request that yields the
// fallback report. noise <= 0 falls back to the default. The seed makes
// runs reproducible; callers wanting fresh noise per evaluation pass a
// time-derived seed.
func NewSimulator(runs int, noise float64, seed int64) *Simulator {
	if runs < 0 {
		runs = 0
	}
	if noise <= 0 {
		noise = DefaultNoise
	}
	return &Simulator{
		Runs:  runs,
		Noise: noise,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// Simulate perturbs scores Runs times with Gaussian noise (mean 0, stddev
// Noise*100), clamps each trial vector to [0, 100], re-matches it, and
// converts the win tallies to percentages. Signature validation runs once
// up front: perturbation never changes the dimension set, so validity is
// identical across trials.
func (s *Simulator) Simulate(scores ScoreVector, set *ArchetypeSet) StabilityReport {
	base := scores.Clamped()
	valid := []Archetype(nil)
	if set.Len() > 0 && len(base) > 0 {
		valid = validSignatures(base, set, s.Strict)
	}

	if s.Runs <= 0 || len(valid) == 0 {
		return s.fallbackReport(base, set, valid)
	}

	// Map iteration order is randomized, so noise draws are assigned to
	// dimensions in sorted order to keep seeded runs reproducible.
	dims := make([]string, 0, len(base))
	for dim := range base {
		dims = append(dims, dim)
	}
	sort.Strings(dims)

	stddev := s.Noise * 100
	tally := make(map[string]int, len(valid))
	perturbed := make(ScoreVector, len(base))

	for i := 0; i < s.Runs; i++ {
		for _, dim := range dims {
			perturbed[dim] = clamp(base[dim]+s.rng.NormFloat64()*stddev, 0, 100)
		}
		if idx, _ := nearestIndex(perturbed, valid); idx >= 0 {
			tally[valid[idx].Name]++
		} else {
			tally[UndefinedArchetype]++
		}
	}

	return s.report(tally, valid)
}

// DistributionSample matches uniformly random profiles over dims against
// the set and reports how often each archetype wins. Used to sanity-check
// that no archetype dominates the profile space.
func (s *Simulator) DistributionSample(dims []string, set *ArchetypeSet) StabilityReport {
	if len(dims) == 0 || set.Len() == 0 {
		return s.fallbackReport(nil, set, nil)
	}
	probe := make(ScoreVector, len(dims))
	for _, dim := range dims {
		probe[dim] = NeutralScore
	}
	valid := validSignatures(probe, set, s.Strict)
	if s.Runs <= 0 || len(valid) == 0 {
		return s.fallbackReport(probe, set, valid)
	}

	tally := make(map[string]int, len(valid))
	for i := 0; i < s.Runs; i++ {
		for _, dim := range dims {
			probe[dim] = s.rng.Float64() * 100
		}
		if idx, _ := nearestIndex(probe, valid); idx >= 0 {
			tally[valid[idx].Name]++
		} else {
			tally[UndefinedArchetype]++
		}
	}

	return s.report(tally, valid)
}

// report converts win tallies to percentages and picks primary and shadow.
// Names are visited in validated-set order with the sentinel last, and the
// sort is stable, so percentage ties break the same way matching does.
func (s *Simulator) report(tally map[string]int, valid []Archetype) StabilityReport {
	ordered := make([]string, 0, len(valid)+1)
	for _, a := range valid {
		ordered = append(ordered, a.Name)
	}
	if tally[UndefinedArchetype] > 0 {
		ordered = append(ordered, UndefinedArchetype)
	}

	dist := make(map[string]float64, len(ordered))
	total := 0
	for _, n := range tally {
		total += n
	}
	if total <= 0 {
		total = 1
	}
	for _, name := range ordered {
		dist[name] = float64(tally[name]) / float64(total) * 100
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return tally[ordered[i]] > tally[ordered[j]]
	})

	rep := StabilityReport{
		Distribution: dist,
		Primary:      ordered[0],
		Stability:    dist[ordered[0]],
		Shadow:       ShadowResult{Name: NoShadow},
		Runs:         total,
	}
	if len(ordered) > 1 {
		rep.Shadow = ShadowResult{Name: ordered[1], Probability: dist[ordered[1]]}
	}
	return rep
}

// fallbackReport covers the degenerate cases: zero runs requested or no
// valid signature to match against. It returns the deterministic match
// outcome with an empty distribution instead of raising.
func (s *Simulator) fallbackReport(scores ScoreVector, set *ArchetypeSet, valid []Archetype) StabilityReport {
	primary := UndefinedArchetype
	if len(valid) > 0 {
		if idx, _ := nearestIndex(scores, valid); idx >= 0 {
			primary = valid[idx].Name
		}
	} else if set.Len() > 0 && len(scores) > 0 {
		primary = Match(scores, set, s.Strict).Name
	}
	return StabilityReport{
		Distribution: map[string]float64{},
		Primary:      primary,
		Stability:    0,
		Shadow:       ShadowResult{Name: NoShadow},
		Runs:         0,
	}
}
