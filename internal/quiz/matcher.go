package quiz

import (
	"log/slog"
	"math"
	"sort"
)

// UndefinedArchetype names the sentinel returned when no signature survives
// validation. NoShadow names the sentinel shadow when fewer than two
// signatures are valid.
const (
	UndefinedArchetype = "Undefined Innovator"
	NoShadow           = "None"
)

// MatchResult is the archetype judged closest to a score vector, plus its
// descriptive payload. Matched is false for the sentinel result.
type MatchResult struct {
	Name      string    `json:"name"`
	Distance  float64   `json:"distance"`
	Matched   bool      `json:"matched"`
	Archetype Archetype `json:"archetype"`
}

// Candidate is one archetype with its distance to the scored profile.
type Candidate struct {
	Name     string  `json:"name"`
	Distance float64 `json:"distance"`
}

// undefinedResult carries a generic payload so callers always have
// something presentable, mirroring the configured archetype shape.
func undefinedResult() MatchResult {
	return MatchResult{
		Name:    UndefinedArchetype,
		Matched: false,
		Archetype: Archetype{
			Name:        UndefinedArchetype,
			Description: "Your profile does not match any predefined archetype. You may represent a new, emerging innovator identity.",
			Strengths: []string{
				"Highly unconventional thinking",
				"Does not fit traditional innovator molds",
			},
			Risks: []string{
				"Your unique profile needs more data to classify properly",
			},
		},
	}
}

func noShadowResult() MatchResult {
	return MatchResult{Name: NoShadow, Matched: false, Archetype: Archetype{Name: NoShadow}}
}

// validSignatures filters the set down to archetypes whose signatures can
// be compared against scores. Invalid entries are skipped with a warning,
// never treated as fatal. In strict mode a signature must cover every
// scored dimension; otherwise the comparison later runs over the shared
// dimensions only, which lets partially specified signatures participate.
func validSignatures(scores ScoreVector, set *ArchetypeSet, strict bool) []Archetype {
	valid := make([]Archetype, 0, set.Len())
	for _, a := range set.All() {
		if len(a.Signature) == 0 {
			slog.Warn("archetype signature missing or empty, skipping", "archetype", a.Name)
			continue
		}
		shared := 0
		missing := ""
		for dim := range scores {
			if _, ok := a.Signature[dim]; ok {
				shared++
			} else {
				missing = dim
			}
		}
		if strict && missing != "" {
			slog.Warn("archetype signature missing scored dimension, skipping",
				"archetype", a.Name, "dimension", missing)
			continue
		}
		if shared == 0 {
			slog.Warn("archetype signature shares no dimensions with scores, skipping",
				"archetype", a.Name)
			continue
		}
		valid = append(valid, a)
	}
	return valid
}

// distance computes the Euclidean distance over the dimensions present in
// both vectors.
func distance(scores ScoreVector, signature ScoreVector) float64 {
	sum := 0.0
	for dim, s := range scores {
		t, ok := signature[dim]
		if !ok {
			continue
		}
		diff := s - t
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

// nearestIndex returns the index of the closest archetype among candidates.
// Ties keep the earliest index, so iteration order decides.
func nearestIndex(scores ScoreVector, candidates []Archetype) (int, float64) {
	best := -1
	lowest := math.Inf(1)
	for i, a := range candidates {
		if d := distance(scores, a.Signature); d < lowest {
			lowest = d
			best = i
		}
	}
	return best, lowest
}

// Rank returns every valid archetype ordered by ascending distance to
// scores. Exact distance ties preserve set insertion order.
func Rank(scores ScoreVector, set *ArchetypeSet, strict bool) []Candidate {
	if len(scores) == 0 || set.Len() == 0 {
		return nil
	}
	valid := validSignatures(scores, set, strict)
	ranked := make([]Candidate, len(valid))
	for i, a := range valid {
		ranked[i] = Candidate{Name: a.Name, Distance: distance(scores, a.Signature)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Distance < ranked[j].Distance
	})
	return ranked
}

// Match returns the nearest archetype. When no signature is valid the
// sentinel Undefined Innovator result is returned rather than an error.
func Match(scores ScoreVector, set *ArchetypeSet, strict bool) MatchResult {
	primary, _ := MatchWithShadow(scores, set, strict)
	return primary
}

// MatchWithShadow ranks all valid archetypes in one pass and returns the
// nearest as primary and the runner-up as shadow. With fewer than two valid
// signatures the shadow is the None sentinel.
func MatchWithShadow(scores ScoreVector, set *ArchetypeSet, strict bool) (primary, shadow MatchResult) {
	ranked := Rank(scores, set, strict)
	if len(ranked) == 0 {
		return undefinedResult(), noShadowResult()
	}
	primary = resultFor(set, ranked[0])
	if len(ranked) < 2 {
		return primary, noShadowResult()
	}
	return primary, resultFor(set, ranked[1])
}

func resultFor(set *ArchetypeSet, c Candidate) MatchResult {
	a, _ := set.Get(c.Name)
	return MatchResult{Name: c.Name, Distance: c.Distance, Matched: true, Archetype: a}
}
