// Package karlin implements Karlin's optimal randomized threshold distribution
// for the spin-block problem and a rejection sampler drawing from it.
//
// For a break-even ratio r = recover_cost / hold_cost the density is
//
//	p(x) = e^(x/r) / ((e-1) r),  0 <= x <= r
//
// which is monotone non-decreasing on its support. A policy that discards
// after a threshold drawn from p is e/(e-1)-competitive.
//
// Every function in this file is pure and safe for concurrent use.
package karlin

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// CompetitiveRatio is the expected competitive ratio of the randomized
// threshold policy, e/(e-1).
const CompetitiveRatio = math.E / (math.E - 1)

// PDF returns the density of the discard threshold at x for break-even ratio r.
// Zero outside [0, r] and for non-positive r.
func PDF(x, r float64) float64 {
	if r <= 0 || x < 0 || x > r || math.IsNaN(x) {
		return 0
	}
	return math.Exp(x/r) / ((math.E - 1) * r)
}

// CDF returns P(threshold <= x) for break-even ratio r.
func CDF(x, r float64) float64 {
	switch {
	case r <= 0 || math.IsNaN(x):
		return 0
	case x <= 0:
		return 0
	case x >= r:
		return 1
	}
	return math.Expm1(x/r) / (math.E - 1)
}

// Envelope returns the maximum of PDF over [0, r]. The density is increasing,
// so this is PDF(r, r).
func Envelope(r float64) float64 {
	return PDF(r, r)
}

// Mean returns the expected threshold, r/(e-1).
func Mean(r float64) float64 {
	if r <= 0 {
		return 0
	}
	return r / (math.E - 1)
}

// Moments numerically integrates the density over its support and returns the
// total probability mass and the mean. Used to cross-check the closed forms.
func Moments(r float64) (mass, mean float64) {
	if r <= 0 {
		return 0, 0
	}
	const points = 64
	mass = quad.Fixed(func(x float64) float64 { return PDF(x, r) }, 0, r, points, nil, 0)
	mean = quad.Fixed(func(x float64) float64 { return x * PDF(x, r) }, 0, r, points, nil, 0)
	return mass, mean
}

// DiscreteWeights returns the probability of each integer threshold in
// [0, cost] under the sampler, i.e. PDF(k, cost) normalized over the integers.
// Returns nil for a cost outside [0, MaxCost].
func DiscreteWeights(cost int64) []float64 {
	if cost < 0 || cost > MaxCost {
		return nil
	}
	if cost == 0 {
		return []float64{1}
	}
	weights := make([]float64, cost+1)
	total := 0.0
	for k := range weights {
		weights[k] = PDF(float64(k), float64(cost))
		total += weights[k]
	}
	for k := range weights {
		weights[k] /= total
	}
	return weights
}

// GoodnessOfFit compares integer samples drawn for cost against
// DiscreteWeights(cost) and returns Pearson's chi-squared statistic and its
// p-value. Samples outside [0, cost] are an error.
func GoodnessOfFit(samples []int64, cost int64) (chi2, pValue float64, err error) {
	if cost < 1 || cost > MaxCost {
		return 0, 0, fmt.Errorf("goodness of fit needs cost in [1, %d], got %d", MaxCost, cost)
	}
	if len(samples) == 0 {
		return 0, 0, fmt.Errorf("goodness of fit needs at least one sample")
	}
	observed := make([]float64, cost+1)
	for i, s := range samples {
		if s < 0 || s > cost {
			return 0, 0, fmt.Errorf("sample %d = %d outside [0, %d]", i, s, cost)
		}
		observed[s]++
	}
	expected := DiscreteWeights(cost)
	n := float64(len(samples))
	for k := range expected {
		expected[k] *= n
	}
	chi2 = stat.ChiSquare(observed, expected)
	dist := distuv.ChiSquared{K: float64(cost)}
	return chi2, dist.Survival(chi2), nil
}
