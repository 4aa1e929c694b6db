// Package workload builds the access sequences that policies are evaluated
// against: uniformly random lists, adversarial lists aimed at a policy's
// threshold, and explicit lists read from an experiment spec.
package workload

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/spinblock/sim"
)

// Random draws n access times uniformly from [1, maxTime], then sorts and
// de-duplicates them. Like every generator here the node starts idle at tick
// 0, so the sequence begins with 0 and the wait until the first drawn access
// is an idle interval. The result holds at most n+1 accesses.
func Random(rng *rand.Rand, n int, maxTime int64) (sim.AccessSequence, error) {
	if n < 0 {
		return nil, fmt.Errorf("access count must be non-negative, got %d", n)
	}
	if maxTime < 1 {
		return nil, fmt.Errorf("max time must be >= 1, got %d", maxTime)
	}
	seq := make(sim.AccessSequence, n+1)
	for i := 1; i < len(seq); i++ {
		seq[i] = rng.Int63n(maxTime) + 1
	}
	sort.Slice(seq, func(i, j int) bool { return seq[i] < seq[j] })
	return dedup(seq), nil
}

// dedup removes adjacent duplicates from a sorted sequence in place.
func dedup(seq sim.AccessSequence) sim.AccessSequence {
	if len(seq) == 0 {
		return seq
	}
	out := seq[:1]
	for _, v := range seq[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

// AdversarialGap returns the idle gap that maximizes a deterministic policy's
// ratio for the given threshold: one tick past the tick it acts on, so the
// policy pays the full holding cost and then the recovery.
func AdversarialGap(threshold float64) int64 {
	return sim.WholeTicks(threshold) + 1
}

// Adversarial returns gaps+1 accesses starting at 0, spaced AdversarialGap(threshold) apart.
func Adversarial(threshold float64, gaps int) (sim.AccessSequence, error) {
	if threshold < 0 {
		return nil, fmt.Errorf("threshold must be non-negative, got %g", threshold)
	}
	return Periodic(AdversarialGap(threshold), gaps+1)
}

// Periodic returns n accesses starting at 0, spaced gap ticks apart.
func Periodic(gap int64, n int) (sim.AccessSequence, error) {
	if gap < 1 {
		return nil, fmt.Errorf("gap must be >= 1, got %d", gap)
	}
	if n < 0 {
		return nil, fmt.Errorf("access count must be non-negative, got %d", n)
	}
	seq := make(sim.AccessSequence, n)
	for i := range seq {
		seq[i] = int64(i) * gap
	}
	return seq, nil
}

// GenerateSequences builds every access sequence an ExperimentSpec describes,
// in order: explicit sequences, random sequences, then the adversarial one.
// Deterministic given the same spec.
func GenerateSequences(spec *ExperimentSpec) ([]sim.AccessSequence, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid experiment spec: %w", err)
	}

	var seqs []sim.AccessSequence
	for _, s := range spec.Sequences {
		seqs = append(seqs, append(sim.AccessSequence(nil), s...))
	}

	if r := spec.Random; r != nil {
		rng := sim.NewPartitionedRNG(sim.NewSimulationKey(spec.Seed))
		workloadRNG := rng.ForSubsystem(sim.SubsystemWorkload)
		for i := 0; i < r.Count; i++ {
			seq, err := Random(workloadRNG, r.Length, r.MaxTime)
			if err != nil {
				return nil, fmt.Errorf("random sequence %d: %w", i, err)
			}
			seqs = append(seqs, seq)
		}
	}

	if a := spec.Adversarial; a != nil {
		threshold := spec.CostModel.BreakEven()
		if a.Target == TargetCompress {
			threshold = spec.CostModel.CompressBreakEven()
		}
		seq, err := Adversarial(threshold, a.Gaps)
		if err != nil {
			return nil, fmt.Errorf("adversarial sequence: %w", err)
		}
		seqs = append(seqs, seq)
	}

	logrus.Debugf("generated %d access sequences (explicit=%d)", len(seqs), len(spec.Sequences))
	return seqs, nil
}
