package quiz

// Scale describes the raw answer range of the questionnaire.
type Scale struct {
	Min int
	Max int
}

// LikertScale is the standard 1..5 agreement scale.
var LikertScale = Scale{Min: 1, Max: 5}

// Answer is a single questionnaire response. Answers are consumed once by
// Normalize and not retained afterwards.
type Answer struct {
	Value     int    `json:"value"`
	Dimension string `json:"dimension"`
	Reverse   bool   `json:"reverse"`
}

// ScoreVector maps a dimension name to a 0..100 score.
type ScoreVector map[string]float64

// Clone returns an independent copy of the vector.
func (v ScoreVector) Clone() ScoreVector {
	out := make(ScoreVector, len(v))
	for dim, s := range v {
		out[dim] = s
	}
	return out
}

// Clamped returns a copy with every score clamped to [0, 100].
func (v ScoreVector) Clamped() ScoreVector {
	out := make(ScoreVector, len(v))
	for dim, s := range v {
		out[dim] = clamp(s, 0, 100)
	}
	return out
}

// Question is one questionnaire item. Prompt and labels are presentation
// data passed through to clients untouched.
type Question struct {
	ID        string `json:"id" yaml:"id"`
	Prompt    string `json:"prompt" yaml:"prompt"`
	Dimension string `json:"dimension" yaml:"dimension"`
	Reverse   bool   `json:"reverse,omitempty" yaml:"reverse,omitempty"`
	LowLabel  string `json:"low_label,omitempty" yaml:"low_label,omitempty"`
	HighLabel string `json:"high_label,omitempty" yaml:"high_label,omitempty"`
}

// ScenarioOption is one choice within a scenario, carrying per-dimension
// deltas applied when the option is picked.
type ScenarioOption struct {
	ID      string             `json:"id" yaml:"id"`
	Label   string             `json:"label" yaml:"label"`
	Effects map[string]float64 `json:"effects" yaml:"effects"`
}

// Scenario is a situational multiple-choice item.
type Scenario struct {
	ID          string           `json:"id" yaml:"id"`
	Title       string           `json:"title" yaml:"title"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty"`
	Options     []ScenarioOption `json:"options" yaml:"options"`
}

// Archetype is a named reference profile. Signature is the comparison point
// for matching; the remaining fields are opaque descriptive payload.
type Archetype struct {
	Name            string      `json:"name" yaml:"name"`
	Signature       ScoreVector `json:"signature" yaml:"signature"`
	Description     string      `json:"description,omitempty" yaml:"description,omitempty"`
	Strengths       []string    `json:"strengths,omitempty" yaml:"strengths,omitempty"`
	Risks           []string    `json:"risks,omitempty" yaml:"risks,omitempty"`
	Pathways        []string    `json:"pathways,omitempty" yaml:"pathways,omitempty"`
	BusinessModels  []string    `json:"business_models,omitempty" yaml:"business_models,omitempty"`
	FundingStrategy []string    `json:"funding_strategy,omitempty" yaml:"funding_strategy,omitempty"`
}

// ArchetypeSet holds archetypes in a fixed order. Matching ties and
// simulation tallies break by this order, so results stay reproducible
// across calls for identical input.
type ArchetypeSet struct {
	order []Archetype
	index map[string]int
}

// NewArchetypeSet builds a set preserving the given order. Duplicate names
// keep the first occurrence.
func NewArchetypeSet(archetypes []Archetype) *ArchetypeSet {
	set := &ArchetypeSet{
		order: make([]Archetype, 0, len(archetypes)),
		index: make(map[string]int, len(archetypes)),
	}
	for _, a := range archetypes {
		if _, dup := set.index[a.Name]; dup {
			continue
		}
		set.index[a.Name] = len(set.order)
		set.order = append(set.order, a)
	}
	return set
}

// Len returns the number of archetypes in the set.
func (s *ArchetypeSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// All returns the archetypes in insertion order. Callers must not mutate
// the returned slice.
func (s *ArchetypeSet) All() []Archetype {
	if s == nil {
		return nil
	}
	return s.order
}

// Get looks up an archetype by name.
func (s *ArchetypeSet) Get(name string) (Archetype, bool) {
	if s == nil {
		return Archetype{}, false
	}
	i, ok := s.index[name]
	if !ok {
		return Archetype{}, false
	}
	return s.order[i], true
}

// Names returns the archetype names in insertion order.
func (s *ArchetypeSet) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.order))
	for i, a := range s.order {
		names[i] = a.Name
	}
	return names
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
