package quiz

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoAnswers is returned when an evaluation is requested with an empty
// answer map. This is the one hard failure the engine surfaces; malformed
// configuration is absorbed into fallback values instead.
var ErrNoAnswers = errors.New("no answers supplied")

// Options tunes an Engine. Zero values fall back to the defaults.
type Options struct {
	Blend  BlendWeights
	Runs   int
	Noise  float64
	Strict bool
	// Seed fixes the simulation seed for reproducible output. Zero means a
	// fresh time-derived seed per evaluation.
	Seed int64
}

// EvaluateInput is one submitted assessment.
type EvaluateInput struct {
	Answers map[string]Answer
	// Choices maps scenario ID to the picked option ID. Optional.
	Choices map[string]string
	// Simulate requests a Monte Carlo stability report.
	Simulate bool
	// Runs and Noise override the engine defaults when positive.
	Runs  int
	Noise float64
}

// Evaluation is the outcome of one assessment.
type Evaluation struct {
	Scores    ScoreVector      `json:"scores"`
	Primary   MatchResult      `json:"primary"`
	Shadow    MatchResult      `json:"shadow"`
	Stability *StabilityReport `json:"stability,omitempty"`
}

// Engine runs the full scoring pipeline against loaded quiz content. The
// content is read-only after construction, so one Engine may serve
// concurrent evaluations without locking.
type Engine struct {
	questions  []Question
	scenarios  []Scenario
	archetypes *ArchetypeSet
	dimensions []string
	opts       Options
}

// NewEngine builds an engine over the given content.
func NewEngine(questions []Question, scenarios []Scenario, archetypes *ArchetypeSet, opts Options) *Engine {
	if opts.Blend.Question == 0 && opts.Blend.Scenario == 0 {
		opts.Blend = DefaultBlend
	}
	if opts.Runs <= 0 {
		opts.Runs = DefaultRuns
	}
	if opts.Noise <= 0 {
		opts.Noise = DefaultNoise
	}
	return &Engine{
		questions:  questions,
		scenarios:  scenarios,
		archetypes: archetypes,
		dimensions: collectDimensions(questions),
		opts:       opts,
	}
}

// collectDimensions returns the unique dimensions in question order.
func collectDimensions(questions []Question) []string {
	seen := make(map[string]bool, len(questions))
	dims := make([]string, 0, len(questions))
	for _, q := range questions {
		if q.Dimension == "" || seen[q.Dimension] {
			continue
		}
		seen[q.Dimension] = true
		dims = append(dims, q.Dimension)
	}
	return dims
}

// Questions returns the loaded questionnaire.
func (e *Engine) Questions() []Question { return e.questions }

// Scenarios returns the loaded scenario items.
func (e *Engine) Scenarios() []Scenario { return e.scenarios }

// Archetypes returns the loaded archetype set.
func (e *Engine) Archetypes() *ArchetypeSet { return e.archetypes }

// Dimensions returns the profile dimensions in question order.
func (e *Engine) Dimensions() []string { return e.dimensions }

// Evaluate runs normalize -> adjust -> match, plus the stability simulation
// when requested. Everything is computed fresh from the input; the engine
// holds no per-evaluation state.
func (e *Engine) Evaluate(in EvaluateInput) (*Evaluation, error) {
	if len(in.Answers) == 0 {
		return nil, ErrNoAnswers
	}
	for id, a := range in.Answers {
		if a.Value < LikertScale.Min || a.Value > LikertScale.Max {
			return nil, fmt.Errorf("answer %q: value %d outside %d..%d",
				id, a.Value, LikertScale.Min, LikertScale.Max)
		}
		if a.Dimension == "" {
			return nil, fmt.Errorf("answer %q: missing dimension", id)
		}
	}

	scores := NormalizeScale(in.Answers, e.dimensions, LikertScale)
	if len(in.Choices) > 0 {
		scenarioRaw := BuildScenarioVector(in.Choices, e.scenarios)
		scores = Adjust(scores, scenarioRaw, e.opts.Blend)
	} else {
		scores = scores.Clamped()
	}

	primary, shadow := MatchWithShadow(scores, e.archetypes, e.opts.Strict)
	ev := &Evaluation{Scores: scores, Primary: primary, Shadow: shadow}

	if in.Simulate {
		runs := e.opts.Runs
		if in.Runs > 0 && in.Runs < runs {
			runs = in.Runs
		}
		noise := e.opts.Noise
		if in.Noise > 0 && in.Noise <= 0.5 {
			noise = in.Noise
		}
		sim := NewSimulator(runs, noise, e.seed())
		sim.Strict = e.opts.Strict
		rep := sim.Simulate(scores, e.archetypes)
		ev.Stability = &rep
	}

	return ev, nil
}

func (e *Engine) seed() int64 {
	if e.opts.Seed != 0 {
		return e.opts.Seed
	}
	return time.Now().UnixNano()
}
