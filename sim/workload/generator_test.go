package workload

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/spinblock/sim"
)

func TestRandom_SortedDistinctInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		seq, err := Random(rng, 10, 100)
		require.NoError(t, err)
		require.LessOrEqual(t, len(seq), 11)
		require.GreaterOrEqual(t, len(seq), 2)
		for j, v := range seq[1:] {
			require.True(t, v >= 1 && v <= 100, "value %d out of range", v)
			require.Greater(t, v, seq[j], "not strictly increasing: %v", seq)
		}
	}
}

func TestRandom_StartsAtOrigin(t *testing.T) {
	// GIVEN random lists like the built-in comparison uses
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 100; i++ {
		seq, err := Random(rng, 10, 100)
		require.NoError(t, err)

		// THEN the node starts idle at tick 0, so the wait until the first
		// drawn access is the first idle interval
		require.Equal(t, int64(0), seq[0])
		require.Len(t, seq.Gaps(), len(seq)-1)
		assert.Equal(t, seq[1], seq.Gaps()[0])
	}
}

func TestRandom_SmallRange_Deduplicates(t *testing.T) {
	// GIVEN more draws than possible values
	seq, err := Random(rand.New(rand.NewSource(1)), 50, 3)

	// THEN every value appears once, after the origin
	require.NoError(t, err)
	assert.Equal(t, sim.AccessSequence{0, 1, 2, 3}, seq)
}

func TestRandom_SameSeed_SameSequence(t *testing.T) {
	a, err := Random(rand.New(rand.NewSource(9)), 10, 100)
	require.NoError(t, err)
	b, err := Random(rand.New(rand.NewSource(9)), 10, 100)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRandom_InvalidArgs(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	_, err := Random(rng, -1, 10)
	assert.Error(t, err)
	_, err = Random(rng, 3, 0)
	assert.Error(t, err)

	seq, err := Random(rng, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, sim.AccessSequence{0}, seq)
}

func TestAdversarial_GapsOnePastThreshold(t *testing.T) {
	tests := []struct {
		threshold float64
		wantGap   int64
	}{
		{2, 3},
		{3, 4},
		{1.7, 2},
		{2.5, 3},
		{0, 1},
	}
	for _, tt := range tests {
		seq, err := Adversarial(tt.threshold, 4)
		require.NoError(t, err)
		require.Len(t, seq, 5)
		assert.Equal(t, int64(0), seq[0])
		for _, g := range seq.Gaps() {
			assert.Equal(t, tt.wantGap, g, "threshold %g", tt.threshold)
		}
	}
	_, err := Adversarial(-1, 4)
	assert.Error(t, err)
}

func TestAdversarial_ForcesDeterministicRatioTwo(t *testing.T) {
	// GIVEN h=1, R=3 and the adversarial list for D*
	model := sim.CostModel{HoldCost: 1, RecoverCost: 3}
	seq, err := Adversarial(model.BreakEven(), 20)
	require.NoError(t, err)
	p, err := sim.NewPolicy(sim.PolicyDeterministic, model, nil)
	require.NoError(t, err)

	// WHEN evaluated
	res, err := sim.Evaluate(p, seq, model)

	// THEN the deterministic policy hits Karlin's bound exactly
	require.NoError(t, err)
	assert.InDelta(t, 2.0, res.Ratio, 1e-12)
}

func TestAdversarial_FractionalBreakEven_RatioAtMostTwo(t *testing.T) {
	// GIVEN h=2, R=3 so D* = 1.5 and the policy discards at tick 1
	model := sim.CostModel{HoldCost: 2, RecoverCost: 3}
	seq, err := Adversarial(model.BreakEven(), 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), seq.Gaps()[0])

	p, err := sim.NewPolicy(sim.PolicyDeterministic, model, nil)
	require.NoError(t, err)
	res, err := sim.Evaluate(p, seq, model)

	// THEN each gap costs one held tick plus recovery: (2 + 3) / 3
	require.NoError(t, err)
	assert.InDelta(t, 5.0/3.0, res.Ratio, 1e-12)
	assert.LessOrEqual(t, res.Ratio, 2.0)
}

func TestPeriodic(t *testing.T) {
	seq, err := Periodic(5, 3)
	require.NoError(t, err)
	assert.Equal(t, sim.AccessSequence{0, 5, 10}, seq)

	_, err = Periodic(0, 3)
	assert.Error(t, err)
	_, err = Periodic(1, -1)
	assert.Error(t, err)
}

func TestGenerateSequences_AllSources(t *testing.T) {
	// GIVEN a spec with explicit, random and adversarial sources
	spec := &ExperimentSpec{
		Seed:        42,
		Trials:      1,
		CostModel:   sim.CostModel{HoldCost: 1, RecoverCost: 3},
		Sequences:   [][]int64{{0, 5}, {1, 2, 9}},
		Random:      &RandomSpec{Count: 3, Length: 10, MaxTime: 100},
		Adversarial: &AdversarialSpec{Gaps: 5},
	}

	// WHEN generated twice
	seqs, err := GenerateSequences(spec)
	require.NoError(t, err)
	again, err := GenerateSequences(spec)
	require.NoError(t, err)

	// THEN explicit lists come first, then random, then adversarial
	require.Len(t, seqs, 6)
	assert.Equal(t, sim.AccessSequence{0, 5}, seqs[0])
	assert.Equal(t, sim.AccessSequence{1, 2, 9}, seqs[1])
	assert.Equal(t, sim.AccessSequence{0, 4, 8, 12, 16, 20}, seqs[5])
	// AND generation is deterministic for the seed
	assert.Equal(t, seqs, again)

	// AND the explicit lists are copies
	seqs[0][0] = 99
	assert.Equal(t, int64(0), spec.Sequences[0][0])
}

func TestGenerateSequences_CompressTarget(t *testing.T) {
	spec := &ExperimentSpec{
		Trials:      1,
		CostModel:   sim.CostModel{HoldCost: 1, CompressCost: 1.2, CompressRecoverCost: 0.5, RecoverCost: 3},
		Adversarial: &AdversarialSpec{Gaps: 2, Target: TargetCompress},
	}
	seqs, err := GenerateSequences(spec)
	require.NoError(t, err)
	require.Len(t, seqs, 1)
	// compress break-even 1.7 -> acts on tick 1 -> gap 2
	assert.Equal(t, sim.AccessSequence{0, 2, 4}, seqs[0])
}

func TestGenerateSequences_InvalidSpec(t *testing.T) {
	_, err := GenerateSequences(&ExperimentSpec{Trials: 1, CostModel: sim.CostModel{HoldCost: 1, RecoverCost: 3}})
	assert.ErrorContains(t, err, "invalid experiment spec")
}
