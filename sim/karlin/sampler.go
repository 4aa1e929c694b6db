package karlin

import (
	"fmt"
)

// DefaultMaxIterations bounds the accept/reject loop of Sample.
const DefaultMaxIterations = 10_000

// MaxCost is the largest support Sample, DiscreteWeights and GoodnessOfFit
// accept. It keeps cost+1 from overflowing and bounds per-integer tables.
const MaxCost = 1_000_000

// Source is the subset of *rand.Rand consumed by Sampler.
// *rand.Rand satisfies it; tests substitute scripted sources.
type Source interface {
	// Int63n returns a uniform integer in [0, n).
	Int63n(n int64) int64
	// Float64 returns a uniform float in [0.0, 1.0).
	Float64() float64
}

// SamplingExhaustedError reports that no candidate was accepted within the
// iteration budget. It signals a broken envelope or a degenerate density,
// never a transient condition.
type SamplingExhaustedError struct {
	Cost       int64
	Iterations int
}

func (e *SamplingExhaustedError) Error() string {
	return fmt.Sprintf("karlin: no sample accepted for cost %d after %d iterations", e.Cost, e.Iterations)
}

// Sampler draws integer discard thresholds from the Karlin distribution by
// rejection sampling.
//
// Thread-safety: NOT thread-safe. The underlying Source is mutated on every draw;
// give each goroutine its own Sampler.
type Sampler struct {
	src      Source
	maxIters int
}

// SamplerOption configures a Sampler.
type SamplerOption func(*Sampler)

// WithMaxIterations overrides DefaultMaxIterations. Values < 1 are ignored.
func WithMaxIterations(n int) SamplerOption {
	return func(s *Sampler) {
		if n >= 1 {
			s.maxIters = n
		}
	}
}

// NewSampler creates a Sampler drawing entropy from src.
// Panics if src is nil.
func NewSampler(src Source, opts ...SamplerOption) *Sampler {
	if src == nil {
		panic("karlin.NewSampler: src must not be nil")
	}
	s := &Sampler{src: src, maxIters: DefaultMaxIterations}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sample returns a threshold in [0, cost].
//
// Candidates x are drawn uniformly from the integers in [0, cost] and heights y
// uniformly from [0, Envelope(cost)); x is accepted when y <= PDF(x, cost).
// A cost of zero has a single outcome and returns 0 without consuming entropy.
// Costs above MaxCost are an error.
func (s *Sampler) Sample(cost int64) (int64, error) {
	if cost < 0 {
		return 0, fmt.Errorf("karlin: cost must be non-negative, got %d", cost)
	}
	if cost > MaxCost {
		return 0, fmt.Errorf("karlin: cost %d exceeds the maximum of %d", cost, MaxCost)
	}
	if cost == 0 {
		return 0, nil
	}
	r := float64(cost)
	maxValue := Envelope(r)
	for i := 0; i < s.maxIters; i++ {
		x := s.src.Int63n(cost + 1)
		y := maxValue * s.src.Float64()
		if y <= PDF(float64(x), r) {
			return x, nil
		}
	}
	return 0, &SamplingExhaustedError{Cost: cost, Iterations: s.maxIters}
}

// SampleShifted returns offset + Sample(cost): a threshold drawn from the
// density translated onto [offset, offset+cost]. The translated density keeps
// its shape, so the same envelope stays valid.
func (s *Sampler) SampleShifted(offset, cost int64) (int64, error) {
	if offset < 0 {
		return 0, fmt.Errorf("karlin: offset must be non-negative, got %d", offset)
	}
	x, err := s.Sample(cost)
	if err != nil {
		return 0, err
	}
	return offset + x, nil
}
