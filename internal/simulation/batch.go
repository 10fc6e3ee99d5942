package simulation

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/angel5000/internal/logger"
	"github.com/yourusername/angel5000/internal/models"
)

// SourceFactory returns the random source for one simulation run. Sources for
// distinct runs must be statistically independent.
type SourceFactory func(seed int64, run int) rand.Source

// DefaultSourceFactory seeds a PCG source per run from the batch seed and the
// run index, so a run's draws do not depend on scheduling.
func DefaultSourceFactory(seed int64, run int) rand.Source {
	base := uint64(seed)
	return rand.NewPCG(splitmix64(base), splitmix64(base^(uint64(run)+1)*0x9e3779b97f4a7c15))
}

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// BatchResult maps each portfolio size to its records ordered by simulation index.
// It is never mutated after construction; accessors return copies.
type BatchResult struct {
	params    Params
	seed      int64
	completed int
	bySize    map[int][]models.SimulationResult
}

// NewBatchResult groups records by portfolio size and orders them by
// simulation index. Sizes missing from params.PortfolioSizes are appended in
// ascending order.
func NewBatchResult(params Params, records []models.SimulationResult) *BatchResult {
	params = params.clone()
	bySize := make(map[int][]models.SimulationResult, len(params.PortfolioSizes))
	runs := make(map[int]struct{})
	for _, rec := range records {
		bySize[rec.PortfolioSize] = append(bySize[rec.PortfolioSize], rec)
		runs[rec.SimulationIndex] = struct{}{}
	}

	var extra []int
	for size, recs := range bySize {
		slices.SortStableFunc(recs, func(a, b models.SimulationResult) int {
			return a.SimulationIndex - b.SimulationIndex
		})
		if !slices.Contains(params.PortfolioSizes, size) {
			extra = append(extra, size)
		}
	}
	slices.Sort(extra)
	params.PortfolioSizes = append(params.PortfolioSizes, extra...)

	return &BatchResult{params: params, seed: params.Seed, completed: len(runs), bySize: bySize}
}

// Params returns the configuration that produced the batch.
func (b *BatchResult) Params() Params { return b.params.clone() }

// Seed returns the effective seed of the batch.
func (b *BatchResult) Seed() int64 { return b.seed }

// Completed returns the number of simulation runs in the batch.
func (b *BatchResult) Completed() int { return b.completed }

// PortfolioSizes returns the sizes in configuration order.
func (b *BatchResult) PortfolioSizes() []int { return slices.Clone(b.params.PortfolioSizes) }

// Results returns the records of one portfolio size ordered by simulation index.
func (b *BatchResult) Results(size int) []models.SimulationResult {
	return slices.Clone(b.bySize[size])
}

// Records returns every record, grouped by portfolio size in configuration order.
func (b *BatchResult) Records() []models.SimulationResult {
	out := make([]models.SimulationResult, 0, b.Len())
	for _, size := range b.params.PortfolioSizes {
		out = append(out, b.bySize[size]...)
	}
	return out
}

// Len returns the total number of records.
func (b *BatchResult) Len() int {
	n := 0
	for _, recs := range b.bySize {
		n += len(recs)
	}
	return n
}

// Runner executes simulation batches.
type Runner struct {
	params    Params
	log       *logger.SimulationLogger
	newSource SourceFactory
}

// NewRunner validates params and creates a runner. A nil logger discards output.
func NewRunner(params Params, log *logrus.Logger) (*Runner, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Discard()
	}
	params = params.clone()
	if params.Seed == 0 {
		params.Seed = time.Now().UnixNano()
	}
	return &Runner{
		params:    params,
		log:       logger.NewSimulationLogger(log),
		newSource: DefaultSourceFactory,
	}, nil
}

// WithSourceFactory replaces the per-run source factory.
func (r *Runner) WithSourceFactory(f SourceFactory) *Runner {
	if f != nil {
		r.newSource = f
	}
	return r
}

// Params returns the effective parameters, including the resolved seed.
func (r *Runner) Params() Params { return r.params.clone() }

// RunBatch validates params and runs a full batch with default settings.
func RunBatch(ctx context.Context, params Params) (*BatchResult, error) {
	runner, err := NewRunner(params, nil)
	if err != nil {
		return nil, err
	}
	return runner.Run(ctx)
}

// Run executes every simulation run. If ctx is cancelled between runs, the
// completed runs are returned together with the context error.
func (r *Runner) Run(ctx context.Context) (*BatchResult, error) {
	p := r.params
	start := time.Now()
	workers := max(1, p.Workers)
	r.log.LogBatchStart(p.Runs, p.UniverseSize, p.PortfolioSizes, p.Years, p.Alpha, p.Seed, workers)

	perRun := make([][]models.SimulationResult, p.Runs)
	var runErr error
	if workers == 1 {
		runErr = r.runSequential(ctx, perRun)
	} else {
		runErr = r.runParallel(ctx, perRun, workers)
	}

	batch := r.fold(perRun)
	if runErr != nil {
		r.log.LogBatchInterrupted(batch.completed, p.Runs, runErr)
		return batch, runErr
	}

	r.log.LogBatchComplete(batch.completed, batch.Len(), time.Since(start))
	return batch, nil
}

func (r *Runner) runSequential(ctx context.Context, perRun [][]models.SimulationResult) error {
	sampler := newIndexSampler(r.params.UniverseSize)
	for run := range perRun {
		if err := ctx.Err(); err != nil {
			return err
		}
		results, err := r.runOnce(run, sampler)
		if err != nil {
			return err
		}
		perRun[run] = results
		r.reportProgress(run + 1)
	}
	return nil
}

func (r *Runner) runParallel(ctx context.Context, perRun [][]models.SimulationResult, workers int) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var completed atomic.Int64
	for run := range perRun {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results, err := r.runOnce(run, newIndexSampler(r.params.UniverseSize))
			if err != nil {
				return err
			}
			perRun[run] = results
			r.reportProgress(int(completed.Add(1)))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// runOnce generates one universe and evaluates every configured portfolio size.
func (r *Runner) runOnce(run int, sampler *indexSampler) ([]models.SimulationResult, error) {
	p := r.params
	rng := rand.New(r.newSource(p.Seed, run))

	universe, err := GenerateUniverse(rng, p.UniverseSize, p.Model())
	if err != nil {
		return nil, fmt.Errorf("run %d: %w", run, err)
	}
	thresholds := ComputeThresholds(universe)

	results := make([]models.SimulationResult, 0, len(p.PortfolioSizes))
	for _, size := range p.PortfolioSizes {
		indices, err := sampler.sample(rng, size)
		if err != nil {
			return nil, fmt.Errorf("run %d: %w", run, err)
		}
		results = append(results, EvaluatePortfolio(universe, indices, thresholds, p.Years, run))
	}
	return results, nil
}

func (r *Runner) reportProgress(completed int) {
	interval := r.params.ProgressInterval
	if interval > 0 && completed%interval == 0 {
		r.log.LogProgress(completed, r.params.Runs)
	}
}

// fold builds the immutable per-size mapping from completed runs in index order.
func (r *Runner) fold(perRun [][]models.SimulationResult) *BatchResult {
	bySize := make(map[int][]models.SimulationResult, len(r.params.PortfolioSizes))
	completed := 0
	for _, results := range perRun {
		if results == nil {
			continue
		}
		completed++
		for _, rec := range results {
			bySize[rec.PortfolioSize] = append(bySize[rec.PortfolioSize], rec)
		}
	}
	return &BatchResult{params: r.params.clone(), seed: r.params.Seed, completed: completed, bySize: bySize}
}
