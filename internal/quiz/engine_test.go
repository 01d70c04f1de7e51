package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testQuestions() []Question {
	return []Question{
		{ID: "q1", Prompt: "I see opportunities where others see noise.", Dimension: "thinking"},
		{ID: "q2", Prompt: "I struggle to finish what I start.", Dimension: "execution", Reverse: true},
	}
}

func testScenarios() []Scenario {
	return []Scenario{
		{
			ID:    "s1",
			Title: "A competitor ships your idea first",
			Options: []ScenarioOption{
				{ID: "pivot", Effects: map[string]float64{"thinking": 2}},
				{ID: "outexecute", Effects: map[string]float64{"execution": 2}},
			},
		},
	}
}

func newTestEngine(opts Options) *Engine {
	return NewEngine(testQuestions(), testScenarios(), testArchetypes(), opts)
}

func TestEngineEvaluateEndToEnd(t *testing.T) {
	engine := newTestEngine(Options{})

	ev, err := engine.Evaluate(EvaluateInput{
		Answers: map[string]Answer{
			"q1": {Value: 5, Dimension: "thinking"},
			"q2": {Value: 1, Dimension: "execution", Reverse: true},
		},
	})
	require.NoError(t, err)

	// 5 -> 100; reversed 1 scores as 5 -> 100.
	assert.Equal(t, 100.0, ev.Scores["thinking"])
	assert.Equal(t, 100.0, ev.Scores["execution"])

	// (100,100) is equidistant from both signatures; set order decides.
	assert.Equal(t, "Visionary", ev.Primary.Name)
	assert.Equal(t, "Operator", ev.Shadow.Name)
	assert.Nil(t, ev.Stability, "no simulation requested")
}

func TestEngineEvaluateRejectsBadInput(t *testing.T) {
	engine := newTestEngine(Options{})

	tests := []struct {
		name    string
		answers map[string]Answer
	}{
		{name: "empty answers", answers: nil},
		{name: "value below scale", answers: map[string]Answer{"q1": {Value: 0, Dimension: "thinking"}}},
		{name: "value above scale", answers: map[string]Answer{"q1": {Value: 6, Dimension: "thinking"}}},
		{name: "missing dimension", answers: map[string]Answer{"q1": {Value: 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Evaluate(EvaluateInput{Answers: tt.answers})
			assert.Error(t, err)
		})
	}

	_, err := engine.Evaluate(EvaluateInput{})
	assert.ErrorIs(t, err, ErrNoAnswers)
}

func TestEngineFillsUnansweredDimensions(t *testing.T) {
	engine := newTestEngine(Options{})

	ev, err := engine.Evaluate(EvaluateInput{
		Answers: map[string]Answer{
			"q1": {Value: 5, Dimension: "thinking"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 100.0, ev.Scores["thinking"])
	assert.Equal(t, NeutralScore, ev.Scores["execution"],
		"configured but unanswered dimension gets the neutral default")
}

func TestEngineScenarioChoicesShiftScores(t *testing.T) {
	engine := newTestEngine(Options{})
	answers := map[string]Answer{
		"q1": {Value: 3, Dimension: "thinking"},
		"q2": {Value: 3, Dimension: "execution"},
	}

	base, err := engine.Evaluate(EvaluateInput{Answers: answers})
	require.NoError(t, err)
	adjusted, err := engine.Evaluate(EvaluateInput{
		Answers: answers,
		Choices: map[string]string{"s1": "outexecute"},
	})
	require.NoError(t, err)

	assert.Equal(t, 50.0, base.Scores["execution"])
	// 50*0.75 + 100*0.25 = 62.5 for the boosted dimension,
	// 50*0.75 + 0 = 37.5 for the untouched one.
	assert.InDelta(t, 62.5, adjusted.Scores["execution"], 1e-9)
	assert.InDelta(t, 37.5, adjusted.Scores["thinking"], 1e-9)
}

func TestEngineSimulateRequest(t *testing.T) {
	engine := newTestEngine(Options{Runs: 1500, Seed: 42})

	ev, err := engine.Evaluate(EvaluateInput{
		Answers: map[string]Answer{
			"q1": {Value: 5, Dimension: "thinking"},
			"q2": {Value: 4, Dimension: "execution", Reverse: true},
		},
		Simulate: true,
	})
	require.NoError(t, err)
	require.NotNil(t, ev.Stability)

	assert.Equal(t, 1500, ev.Stability.Runs)
	total := 0.0
	for _, pct := range ev.Stability.Distribution {
		total += pct
	}
	assert.InDelta(t, 100.0, total, 1e-9)
	assert.Equal(t, ev.Stability.Primary, ev.Primary.Name,
		"a clear profile keeps its deterministic primary under perturbation")
}

func TestEngineSimulateDeterministicWithFixedSeed(t *testing.T) {
	in := EvaluateInput{
		Answers: map[string]Answer{
			"q1": {Value: 4, Dimension: "thinking"},
			"q2": {Value: 2, Dimension: "execution", Reverse: true},
		},
		Simulate: true,
	}

	engine := newTestEngine(Options{Runs: 800, Seed: 7})
	first, err := engine.Evaluate(in)
	require.NoError(t, err)
	second, err := engine.Evaluate(in)
	require.NoError(t, err)

	assert.Equal(t, first.Stability, second.Stability)
}

func TestEngineBoundsClientOverrides(t *testing.T) {
	engine := newTestEngine(Options{Runs: 1000, Seed: 3})

	ev, err := engine.Evaluate(EvaluateInput{
		Answers:  map[string]Answer{"q1": {Value: 5, Dimension: "thinking"}},
		Simulate: true,
		Runs:     50000, // above the engine limit, ignored
	})
	require.NoError(t, err)
	assert.Equal(t, 1000, ev.Stability.Runs)

	ev, err = engine.Evaluate(EvaluateInput{
		Answers:  map[string]Answer{"q1": {Value: 5, Dimension: "thinking"}},
		Simulate: true,
		Runs:     200, // below the limit, honored
	})
	require.NoError(t, err)
	assert.Equal(t, 200, ev.Stability.Runs)
}

func TestEngineDimensions(t *testing.T) {
	engine := newTestEngine(Options{})
	assert.Equal(t, []string{"thinking", "execution"}, engine.Dimensions())
}
