package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulateProbabilitiesSumTo100(t *testing.T) {
	sim := NewSimulator(2000, DefaultNoise, 42)
	rep := sim.Simulate(ScoreVector{"thinking": 70, "execution": 55}, testArchetypes())

	total := 0.0
	for _, pct := range rep.Distribution {
		assert.GreaterOrEqual(t, pct, 0.0)
		assert.LessOrEqual(t, pct, 100.0)
		total += pct
	}
	assert.InDelta(t, 100.0, total, 1e-9)
	assert.Equal(t, 2000, rep.Runs)
}

func TestSimulateDeterministicWithSeed(t *testing.T) {
	scores := ScoreVector{"thinking": 62, "execution": 58}

	first := NewSimulator(1000, 0.05, 7).Simulate(scores, testArchetypes())
	second := NewSimulator(1000, 0.05, 7).Simulate(scores, testArchetypes())

	assert.Equal(t, first, second)
}

func TestSimulateStablePrimaryOnStrongProfile(t *testing.T) {
	// A profile sitting exactly on a signature far from the alternative
	// should survive nearly every perturbation.
	set := testArchetypes()
	sim := NewSimulator(2000, 0.035, 99)
	rep := sim.Simulate(ScoreVector{"thinking": 90, "execution": 40}, set)

	assert.Equal(t, "Visionary", rep.Primary)
	assert.Greater(t, rep.Stability, 95.0)
	assert.Equal(t, "Operator", rep.Shadow.Name)
	assert.InDelta(t, 100.0, rep.Stability+rep.Shadow.Probability, 1e-9,
		"two archetypes split the whole distribution")
}

func TestSimulateBorderlineProfileSplits(t *testing.T) {
	// Equidistant from both signatures: neither side should dominate.
	sim := NewSimulator(4000, DefaultNoise, 5)
	rep := sim.Simulate(ScoreVector{"thinking": 65, "execution": 65}, testArchetypes())

	assert.Greater(t, rep.Stability, 40.0)
	assert.Less(t, rep.Stability, 60.0)
	assert.NotEqual(t, NoShadow, rep.Shadow.Name)
	assert.Greater(t, rep.Shadow.Probability, 40.0)
}

func TestSimulateClampsBeforeMatching(t *testing.T) {
	// An out-of-range input vector is clamped to the scale before any
	// trial runs; the report is identical to the clamped equivalent.
	set := testArchetypes()

	overshoot := NewSimulator(500, 0.05, 3).Simulate(ScoreVector{"thinking": 105, "execution": 40}, set)
	clamped := NewSimulator(500, 0.05, 3).Simulate(ScoreVector{"thinking": 100, "execution": 40}, set)

	assert.Equal(t, clamped, overshoot)
}

func TestSimulateFallbacks(t *testing.T) {
	scores := ScoreVector{"thinking": 95, "execution": 30}

	t.Run("zero runs returns deterministic match with empty distribution", func(t *testing.T) {
		rep := NewSimulator(0, DefaultNoise, 1).Simulate(scores, testArchetypes())

		assert.Equal(t, "Visionary", rep.Primary)
		assert.Zero(t, rep.Stability)
		assert.Empty(t, rep.Distribution)
		assert.Equal(t, NoShadow, rep.Shadow.Name)
		assert.Zero(t, rep.Runs)
	})

	t.Run("no valid signatures returns sentinel", func(t *testing.T) {
		set := NewArchetypeSet([]Archetype{{Name: "Broken"}})
		rep := NewSimulator(100, DefaultNoise, 1).Simulate(scores, set)

		assert.Equal(t, UndefinedArchetype, rep.Primary)
		assert.Zero(t, rep.Stability)
		assert.Empty(t, rep.Distribution)
	})

	t.Run("empty score vector returns sentinel", func(t *testing.T) {
		rep := NewSimulator(100, DefaultNoise, 1).Simulate(ScoreVector{}, testArchetypes())
		assert.Equal(t, UndefinedArchetype, rep.Primary)
	})
}

func TestDistributionSample(t *testing.T) {
	sim := NewSimulator(2000, DefaultNoise, 11)
	rep := sim.DistributionSample([]string{"thinking", "execution"}, testArchetypes())

	require.Len(t, rep.Distribution, 2)
	total := 0.0
	for name, pct := range rep.Distribution {
		assert.Contains(t, []string{"Visionary", "Operator"}, name)
		total += pct
	}
	assert.InDelta(t, 100.0, total, 1e-9)

	// The two signatures mirror each other, so random profiles should
	// split roughly evenly.
	assert.InDelta(t, 50.0, rep.Distribution["Visionary"], 10.0)
}

func TestDistributionSampleVariesAcrossSeeds(t *testing.T) {
	dims := []string{"thinking", "execution"}
	set := testArchetypes()

	first := NewSimulator(500, DefaultNoise, 1).DistributionSample(dims, set)
	second := NewSimulator(500, DefaultNoise, 2).DistributionSample(dims, set)

	// Distinct seeds draw distinct profiles, so repeated sampling with
	// fresh seeds does not freeze on one distribution.
	assert.NotEqual(t, first.Distribution, second.Distribution)

	repeat := NewSimulator(500, DefaultNoise, 1).DistributionSample(dims, set)
	assert.Equal(t, first.Distribution, repeat.Distribution)
}

func TestDistributionSampleDegenerate(t *testing.T) {
	sim := NewSimulator(100, DefaultNoise, 1)

	rep := sim.DistributionSample(nil, testArchetypes())
	assert.Equal(t, UndefinedArchetype, rep.Primary)

	rep = sim.DistributionSample([]string{"thinking"}, NewArchetypeSet(nil))
	assert.Equal(t, UndefinedArchetype, rep.Primary)
}
