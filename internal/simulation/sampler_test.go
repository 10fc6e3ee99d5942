package simulation

import (
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/angel5000/internal/models"
)

func TestPercentileLinearInterpolation(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		p      float64
		want   float64
	}{
		{name: "median even", values: []float64{4, 1, 3, 2}, p: 50, want: 2.5},
		{name: "median odd", values: []float64{3, 1, 2}, p: 50, want: 2},
		{name: "minimum", values: []float64{5, 1, 9}, p: 0, want: 1},
		{name: "maximum", values: []float64{5, 1, 9}, p: 100, want: 9},
		{name: "99th of ten", values: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, p: 99, want: 9.91},
		{name: "single", values: []float64{7}, p: 99.9, want: 7},
		{name: "empty", values: nil, p: 50, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Percentile(tt.values, tt.p), 1e-9)
		})
	}
}

func TestPercentileDoesNotReorderInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Percentile(values, 50)
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestComputeThresholdsOrdering(t *testing.T) {
	universe, err := GenerateUniverse(rand.NewPCG(11, 12), 10_000, DefaultUniverseModel())
	require.NoError(t, err)

	th := ComputeThresholds(universe)
	assert.LessOrEqual(t, th.Top1Pct, th.Top01Pct)
	assert.Equal(t, Percentile(universe, 99), th.Top1Pct)
	assert.Equal(t, Percentile(universe, 99.9), th.Top01Pct)
}

func TestCalculateIRR(t *testing.T) {
	for _, years := range []float64{0.5, 1, 3, 10, 25} {
		assert.Equal(t, -1.0, CalculateIRR(0, years), "zero multiple, years=%v", years)
		assert.Equal(t, 0.0, CalculateIRR(1, years), "unit multiple, years=%v", years)
	}
	assert.InDelta(t, math.Pow(2, 0.1)-1, CalculateIRR(2, 10), 1e-15)
}

func TestCalculateIRRSingleYearIsMultipleMinusOne(t *testing.T) {
	for _, m := range []float64{0, 0.15, 0.9, 1, 1.7, 3.25, 42, 500} {
		assert.Equal(t, m-1, CalculateIRR(m, 1))
	}
}

func TestCalculateIRRMonotonic(t *testing.T) {
	for _, years := range []float64{1, 5, 10} {
		prev := CalculateIRR(0, years)
		for m := 0.05; m <= 50; m += 0.05 {
			irr := CalculateIRR(m, years)
			assert.Greater(t, irr, prev, "multiple=%v years=%v", m, years)
			prev = irr
		}
	}
}

func TestSampleIndicesDistinct(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for _, size := range []int{0, 1, 20, 200, 999, 1_000} {
		indices, err := SampleIndices(rng, 1_000, size)
		require.NoError(t, err)
		require.Len(t, indices, size)

		seen := make(map[int]struct{}, size)
		for _, idx := range indices {
			require.GreaterOrEqual(t, idx, 0)
			require.Less(t, idx, 1_000)
			_, dup := seen[idx]
			require.False(t, dup, "duplicate index %d", idx)
			seen[idx] = struct{}{}
		}
		assert.True(t, slices.IsSorted(indices))
	}
}

func TestSampleIndicesFullPopulation(t *testing.T) {
	indices, err := SampleIndices(rand.New(rand.NewPCG(3, 4)), 50, 50)
	require.NoError(t, err)

	want := make([]int, 50)
	for i := range want {
		want[i] = i
	}
	assert.Equal(t, want, indices)
}

func TestSampleIndicesTooLarge(t *testing.T) {
	_, err := SampleIndices(rand.New(rand.NewPCG(1, 1)), 10, 11)
	require.ErrorIs(t, err, models.ErrInvalidParameter)

	_, err = SampleIndices(rand.New(rand.NewPCG(1, 1)), 0, 0)
	require.ErrorIs(t, err, models.ErrInvalidParameter)
}

func TestIndexSamplerRestoresPermutation(t *testing.T) {
	s := newIndexSampler(100)
	rng := rand.New(rand.NewPCG(5, 5))
	for i := 0; i < 10; i++ {
		_, err := s.sample(rng, 37)
		require.NoError(t, err)
	}
	for i, v := range s.perm {
		require.Equal(t, i, v)
	}
}

func TestSampleIndicesUniformCoverage(t *testing.T) {
	const population, size, draws = 10, 3, 20_000
	rng := rand.New(rand.NewPCG(8, 8))
	counts := make([]int, population)
	for i := 0; i < draws; i++ {
		indices, err := SampleIndices(rng, population, size)
		require.NoError(t, err)
		for _, idx := range indices {
			counts[idx]++
		}
	}
	expected := float64(draws*size) / population
	for idx, c := range counts {
		assert.InDelta(t, expected, float64(c), expected*0.05, "index %d", idx)
	}
}

func TestEvaluatePortfolio(t *testing.T) {
	universe := []float64{0, 0.1, 1, 2, 10, 100}
	th := Thresholds{Top1Pct: 10, Top01Pct: 100}

	rec := EvaluatePortfolio(universe, []int{0, 3, 4, 5}, th, 1, 7)

	assert.Equal(t, 4, rec.PortfolioSize)
	assert.Equal(t, 7, rec.SimulationIndex)
	assert.InDelta(t, 28.0, rec.PortfolioMultiple, 1e-12)
	assert.InDelta(t, 27.0, rec.PortfolioIRR, 1e-12)
	assert.Equal(t, 2, rec.Top1PctCaptured)
	assert.Equal(t, 1, rec.Top01PctCaptured)
}

func TestEvaluatePortfolioAllLosses(t *testing.T) {
	universe := []float64{0, 0, 0}
	rec := EvaluatePortfolio(universe, []int{0, 1, 2}, Thresholds{Top1Pct: 1, Top01Pct: 2}, 10, 0)

	assert.Equal(t, 0.0, rec.PortfolioMultiple)
	assert.Equal(t, -1.0, rec.PortfolioIRR)
	assert.Zero(t, rec.Top1PctCaptured)
}
