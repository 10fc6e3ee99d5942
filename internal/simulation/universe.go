package simulation

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/yourusername/angel5000/internal/models"
)

// GenerateUniverse draws n startup outcome multiples from the mixture model:
//
//  1. n Pareto(alpha) draws with unit scale, multiplied by ParetoScale;
//  2. each index independently flagged as a failure with FailureProbability and
//     overwritten by a Uniform[0, FailureMaxMultiple) draw;
//  3. every value clipped to [MinMultiple, MaxMultiple].
//
// The failure overwrite ignores the power-law draw it replaces, so a flagged
// index never keeps a large multiple. All randomness comes from src.
func GenerateUniverse(src rand.Source, n int, model UniverseModel) ([]float64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: universe size must be positive, got %d", models.ErrInvalidParameter, n)
	}
	if model.Alpha <= 0 {
		return nil, fmt.Errorf("%w: alpha must be positive, got %v", models.ErrInvalidParameter, model.Alpha)
	}
	if src == nil {
		return nil, fmt.Errorf("%w: random source is required", models.ErrInvalidParameter)
	}

	pareto := distuv.Pareto{Xm: 1, Alpha: model.Alpha, Src: src}
	multiples := make([]float64, n)
	for i := range multiples {
		multiples[i] = pareto.Rand() * model.ParetoScale
	}

	rng := rand.New(src)
	failed := make([]bool, n)
	for i := range failed {
		failed[i] = rng.Float64() < model.FailureProbability
	}

	loss := distuv.Uniform{Min: 0, Max: model.FailureMaxMultiple, Src: src}
	for i, isFailure := range failed {
		if isFailure {
			multiples[i] = loss.Rand()
		}
	}

	for i, m := range multiples {
		multiples[i] = clip(m, model.MinMultiple, model.MaxMultiple)
	}

	return multiples, nil
}

func clip(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
