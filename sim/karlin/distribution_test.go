package karlin

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDF_UnitCost_MatchesClosedForm(t *testing.T) {
	// PDF(1, 1) = e/(e-1)
	assert.Equal(t, "1.58", fmt.Sprintf("%.2f", PDF(1, 1)))
}

func TestPDF_IntegratesToOne(t *testing.T) {
	for _, r := range []float64{1.5, 2, 3, 7, 10, 64, 1000} {
		t.Run(fmt.Sprintf("r=%g", r), func(t *testing.T) {
			// Midpoint rule, independent of the quadrature used by Moments.
			const n = 20000
			dx := r / n
			sum := 0.0
			for i := 0; i < n; i++ {
				sum += PDF((float64(i)+0.5)*dx, r) * dx
			}
			assert.InDelta(t, 1.0, sum, 1e-3)

			mass, _ := Moments(r)
			assert.InDelta(t, 1.0, mass, 1e-3)
		})
	}
}

func TestPDF_ZeroOutsideSupport(t *testing.T) {
	tests := []struct {
		name string
		x, r float64
	}{
		{"negative x", -0.1, 3},
		{"beyond r", 3.0001, 3},
		{"zero r", 0, 0},
		{"negative r", 1, -2},
		{"NaN x", math.NaN(), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, 0.0, PDF(tt.x, tt.r))
		})
	}
}

func TestPDF_NonNegativeAndMonotone(t *testing.T) {
	// The sampler's envelope relies on the maximum sitting at the upper bound.
	for _, r := range []float64{1, 3, 17.5} {
		prev := 0.0
		for i := 0; i <= 1000; i++ {
			x := r * float64(i) / 1000
			p := PDF(x, r)
			require.GreaterOrEqual(t, p, 0.0)
			require.GreaterOrEqual(t, p, prev, "pdf decreased at x=%g r=%g", x, r)
			prev = p
		}
		assert.Equal(t, PDF(r, r), Envelope(r))
	}
}

func TestCDF_Boundaries(t *testing.T) {
	for _, r := range []float64{1, 2, 3, 10, 250} {
		assert.InDelta(t, 0.0, CDF(0, r), 1e-12, "r=%g", r)
		assert.InDelta(t, 1.0, CDF(r, r), 1e-12, "r=%g", r)
		assert.Equal(t, 0.0, CDF(-1, r))
		assert.Equal(t, 1.0, CDF(r+1, r))
	}
}

func TestCDF_DerivativeIsPDF(t *testing.T) {
	const h = 1e-6
	for _, r := range []float64{2, 3, 9} {
		for _, frac := range []float64{0.1, 0.25, 0.5, 0.75, 0.9} {
			x := frac * r
			deriv := (CDF(x+h, r) - CDF(x-h, r)) / (2 * h)
			assert.InDelta(t, PDF(x, r), deriv, 1e-5, "x=%g r=%g", x, r)
		}
	}
}

func TestCDF_NonDecreasing(t *testing.T) {
	r := 5.0
	prev := -1.0
	for x := -1.0; x <= 6; x += 0.01 {
		c := CDF(x, r)
		require.GreaterOrEqual(t, c, prev)
		prev = c
	}
}

func TestMean_MatchesNumericIntegral(t *testing.T) {
	for _, r := range []float64{1, 3, 42} {
		_, mean := Moments(r)
		assert.InDelta(t, Mean(r), mean, 1e-6*r)
	}
	assert.Equal(t, 0.0, Mean(0))
}

func TestDiscreteWeights_SumToOne(t *testing.T) {
	w := DiscreteWeights(3)
	require.Len(t, w, 4)
	sum := 0.0
	for _, p := range w {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
	assert.Less(t, w[0], w[3])

	assert.Equal(t, []float64{1}, DiscreteWeights(0))
	assert.Nil(t, DiscreteWeights(-1))
	assert.Nil(t, DiscreteWeights(MaxCost+1))
}

func TestGoodnessOfFit_RejectsBadInput(t *testing.T) {
	_, _, err := GoodnessOfFit(nil, 3)
	assert.Error(t, err)
	_, _, err = GoodnessOfFit([]int64{1}, 0)
	assert.Error(t, err)
	_, _, err = GoodnessOfFit([]int64{1, 4}, 3)
	assert.Error(t, err)
	_, _, err = GoodnessOfFit([]int64{1}, MaxCost+1)
	assert.Error(t, err)
}

func TestGoodnessOfFit_ExactProportions_ZeroStatistic(t *testing.T) {
	// GIVEN samples whose histogram matches the cost-1 weights 1/(1+e), e/(1+e)
	w := DiscreteWeights(1)
	n := 100000
	samples := make([]int64, 0, n)
	zeros := int(math.Round(w[0] * float64(n)))
	for i := 0; i < n; i++ {
		if i < zeros {
			samples = append(samples, 0)
		} else {
			samples = append(samples, 1)
		}
	}

	// WHEN the fit is computed
	chi2, p, err := GoodnessOfFit(samples, 1)

	// THEN the statistic is tiny and the fit is accepted
	require.NoError(t, err)
	assert.Less(t, chi2, 0.01)
	assert.Greater(t, p, 0.9)
}
