package simulation

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/yourusername/angel5000/internal/models"
)

// Tail percentiles of a universe.
const (
	Top1PctPercentile  = 99.0
	Top01PctPercentile = 99.9
)

// Thresholds are the tail cut-offs of one universe.
type Thresholds struct {
	Top1Pct  float64
	Top01Pct float64
}

// ComputeThresholds returns the 99th and 99.9th percentiles of universe.
func ComputeThresholds(universe []float64) Thresholds {
	sorted := slices.Clone(universe)
	slices.Sort(sorted)
	return Thresholds{
		Top1Pct:  percentileSorted(sorted, Top1PctPercentile),
		Top01Pct: percentileSorted(sorted, Top01PctPercentile),
	}
}

// Percentile returns the p-th percentile (0..100) of values using linear
// interpolation between closest ranks. Returns 0 for an empty slice.
func Percentile(values []float64, p float64) float64 {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return percentileSorted(sorted, p)
}

func percentileSorted(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	p = max(0, min(100, p))

	h := p / 100 * float64(len(sorted)-1)
	lo := math.Floor(h)
	i := int(lo)
	if i >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// CalculateIRR returns the annualized return implied by a terminal multiple
// held for years periods. A multiple of 0 yields exactly -1.
func CalculateIRR(multiple, years float64) float64 {
	return math.Pow(multiple, 1/years) - 1
}

// indexSampler draws uniform samples without replacement from [0, n).
// The backing permutation is restored after every draw so it can be reused
// across portfolio sizes within a run.
type indexSampler struct {
	perm  []int
	swaps []int
}

func newIndexSampler(population int) *indexSampler {
	perm := make([]int, population)
	for i := range perm {
		perm[i] = i
	}
	return &indexSampler{perm: perm, swaps: make([]int, 0, population)}
}

func (s *indexSampler) sample(rng *rand.Rand, size int) ([]int, error) {
	n := len(s.perm)
	if size < 0 || size > n {
		return nil, fmt.Errorf("%w: sample size %d outside population of %d", models.ErrInvalidParameter, size, n)
	}

	out := make([]int, size)
	swaps := s.swaps[:size]
	for i := 0; i < size; i++ {
		j := i + rng.IntN(n-i)
		s.perm[i], s.perm[j] = s.perm[j], s.perm[i]
		swaps[i] = j
		out[i] = s.perm[i]
	}
	for i := size - 1; i >= 0; i-- {
		j := swaps[i]
		s.perm[i], s.perm[j] = s.perm[j], s.perm[i]
	}

	// Ascending order fixes the summation order of the portfolio mean.
	slices.Sort(out)
	return out, nil
}

// SampleIndices draws size distinct indices uniformly from [0, population),
// returned in ascending order.
func SampleIndices(rng *rand.Rand, population, size int) ([]int, error) {
	if population <= 0 {
		return nil, fmt.Errorf("%w: population must be positive, got %d", models.ErrInvalidParameter, population)
	}
	return newIndexSampler(population).sample(rng, size)
}

// EvaluatePortfolio derives the result record of one sampled portfolio.
func EvaluatePortfolio(universe []float64, indices []int, thresholds Thresholds, years float64, simulationIndex int) models.SimulationResult {
	values := make([]float64, len(indices))
	top1, top01 := 0, 0
	for i, idx := range indices {
		m := universe[idx]
		values[i] = m
		if m >= thresholds.Top1Pct {
			top1++
		}
		if m >= thresholds.Top01Pct {
			top01++
		}
	}

	multiple := stat.Mean(values, nil)
	return models.SimulationResult{
		PortfolioSize:     len(indices),
		SimulationIndex:   simulationIndex,
		PortfolioMultiple: multiple,
		PortfolioIRR:      CalculateIRR(multiple, years),
		Top1PctCaptured:   top1,
		Top01PctCaptured:  top01,
	}
}
