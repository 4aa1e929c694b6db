package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible experiment.
// Two experiments with the same SimulationKey and identical configuration
// MUST produce bit-for-bit identical results, regardless of how many trials
// run in parallel.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === Subsystem Constants ===

const (
	// SubsystemWorkload is the RNG subsystem for access-sequence generation.
	// Uses master seed directly so --seed alone reproduces the built-in lists.
	SubsystemWorkload = "workload"
)

// SubsystemTrial returns the subsystem name for one Monte-Carlo trial of a
// policy against sequence seq.
func SubsystemTrial(kind PolicyKind, seq, trial int) string {
	return fmt.Sprintf("trial_%s_%d_%d", kind, seq, trial)
}

// DeriveSeed returns the seed of the named subsystem:
//   - SubsystemWorkload: the master seed
//   - everything else: masterSeed XOR fnv1a64(name)
//
// Pure, so parallel trials can derive their seeds without sharing state.
func (k SimulationKey) DeriveSeed(name string) int64 {
	if name == SubsystemWorkload {
		return int64(k)
	}
	return int64(k) ^ fnv1a64(name)
}

// === PartitionedRNG ===

// PartitionedRNG caches one deterministically-seeded *rand.Rand per subsystem.
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
// Parallel trials use SimulationKey.DeriveSeed and own their *rand.Rand.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(p.key.DeriveSeed(name)))
	p.subsystems[name] = rng
	return rng
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
