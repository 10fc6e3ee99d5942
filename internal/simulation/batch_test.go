package simulation

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/yourusername/angel5000/internal/models"
)

func smallParams() Params {
	p := DefaultParams()
	p.UniverseSize = 2_000
	p.Runs = 20
	p.PortfolioSizes = []int{20, 200, 1_000}
	p.ProgressInterval = 5
	return p
}

func TestRunBatchShape(t *testing.T) {
	p := smallParams()

	batch, err := RunBatch(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, p.Runs, batch.Completed())
	assert.Equal(t, p.PortfolioSizes, batch.PortfolioSizes())
	assert.Equal(t, p.Runs*len(p.PortfolioSizes), batch.Len())
	assert.Equal(t, int64(DefaultSeed), batch.Seed())

	for _, size := range p.PortfolioSizes {
		records := batch.Results(size)
		require.Len(t, records, p.Runs)
		for i, rec := range records {
			assert.Equal(t, i, rec.SimulationIndex)
			assert.Equal(t, size, rec.PortfolioSize)
			assert.GreaterOrEqual(t, rec.Top1PctCaptured, rec.Top01PctCaptured)
			assert.LessOrEqual(t, rec.Top1PctCaptured, size)
			assert.GreaterOrEqual(t, rec.Top01PctCaptured, 0)
			assert.GreaterOrEqual(t, rec.PortfolioMultiple, p.MinMultiple)
			assert.LessOrEqual(t, rec.PortfolioMultiple, p.MaxMultiple)
			assert.InDelta(t, CalculateIRR(rec.PortfolioMultiple, p.Years), rec.PortfolioIRR, 1e-15)
		}
	}
}

func TestRunBatchDeterministic(t *testing.T) {
	p := smallParams()

	first, err := RunBatch(context.Background(), p)
	require.NoError(t, err)
	second, err := RunBatch(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, first.Records(), second.Records())
}

func TestRunBatchSeedChangesResults(t *testing.T) {
	p := smallParams()
	first, err := RunBatch(context.Background(), p)
	require.NoError(t, err)

	p.Seed = 7
	second, err := RunBatch(context.Background(), p)
	require.NoError(t, err)

	assert.NotEqual(t, first.Records(), second.Records())
}

func TestRunBatchParallelMatchesSequential(t *testing.T) {
	p := smallParams()
	sequential, err := RunBatch(context.Background(), p)
	require.NoError(t, err)

	for _, workers := range []int{2, 4, 16} {
		p.Workers = workers
		parallel, err := RunBatch(context.Background(), p)
		require.NoError(t, err)
		assert.Equal(t, sequential.Records(), parallel.Records(), "workers=%d", workers)
	}
}

func TestRunBatchWholeUniversePortfolio(t *testing.T) {
	p := DefaultParams()
	p.UniverseSize = 1_000
	p.Runs = 5
	p.PortfolioSizes = []int{1_000}

	batch, err := RunBatch(context.Background(), p)
	require.NoError(t, err)

	records := batch.Results(1_000)
	require.Len(t, records, p.Runs)
	for _, rec := range records {
		universe, err := GenerateUniverse(rand.New(DefaultSourceFactory(p.Seed, rec.SimulationIndex)), p.UniverseSize, p.Model())
		require.NoError(t, err)

		assert.Equal(t, stat.Mean(universe, nil), rec.PortfolioMultiple)
		// 1% of 1,000 sits at or above the interpolated 99th percentile.
		assert.Equal(t, 10, rec.Top1PctCaptured)
	}
}

func TestRunBatchSingleYear(t *testing.T) {
	p := smallParams()
	p.Years = 1

	batch, err := RunBatch(context.Background(), p)
	require.NoError(t, err)
	for _, rec := range batch.Records() {
		assert.Equal(t, rec.PortfolioMultiple-1, rec.PortfolioIRR)
	}
}

func TestNewRunnerRejectsInvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{name: "portfolio larger than universe", mutate: func(p *Params) { p.PortfolioSizes = []int{20, 2_001} }},
		{name: "zero runs", mutate: func(p *Params) { p.Runs = 0 }},
		{name: "zero universe", mutate: func(p *Params) { p.UniverseSize = 0 }},
		{name: "no portfolio sizes", mutate: func(p *Params) { p.PortfolioSizes = nil }},
		{name: "duplicate portfolio sizes", mutate: func(p *Params) { p.PortfolioSizes = []int{20, 20} }},
		{name: "zero portfolio size", mutate: func(p *Params) { p.PortfolioSizes = []int{0} }},
		{name: "zero years", mutate: func(p *Params) { p.Years = 0 }},
		{name: "zero alpha", mutate: func(p *Params) { p.Alpha = 0 }},
		{name: "failure probability above one", mutate: func(p *Params) { p.FailureProbability = 1.5 }},
		{name: "max below min", mutate: func(p *Params) { p.MinMultiple = 10; p.MaxMultiple = 5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := smallParams()
			tt.mutate(&p)

			runner, err := NewRunner(p, nil)
			require.ErrorIs(t, err, models.ErrInvalidParameter)
			assert.Nil(t, runner)

			batch, err := RunBatch(context.Background(), p)
			require.ErrorIs(t, err, models.ErrInvalidParameter)
			assert.Nil(t, batch)
		})
	}
}

func TestNewRunnerResolvesZeroSeed(t *testing.T) {
	p := smallParams()
	p.Seed = 0

	runner, err := NewRunner(p, nil)
	require.NoError(t, err)
	assert.NotZero(t, runner.Params().Seed)
}

func TestRunnerDoesNotAliasParams(t *testing.T) {
	p := smallParams()
	runner, err := NewRunner(p, nil)
	require.NoError(t, err)

	p.PortfolioSizes[0] = 1_500
	assert.Equal(t, 20, runner.Params().PortfolioSizes[0])
}

func TestRunCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner, err := NewRunner(smallParams(), nil)
	require.NoError(t, err)

	batch, err := runner.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, batch)
	assert.Zero(t, batch.Completed())
	assert.Zero(t, batch.Len())
}

func TestRunCancelledBetweenRunsKeepsCompleted(t *testing.T) {
	p := smallParams()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner, err := NewRunner(p, nil)
	require.NoError(t, err)
	runner.WithSourceFactory(func(seed int64, run int) rand.Source {
		if run == 2 {
			cancel()
		}
		return DefaultSourceFactory(seed, run)
	})

	batch, err := runner.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, batch.Completed())

	full, err := RunBatch(context.Background(), p)
	require.NoError(t, err)
	for _, size := range p.PortfolioSizes {
		assert.Equal(t, full.Results(size)[:3], batch.Results(size))
	}
}

func TestRunParallelCancelledKeepsCompleted(t *testing.T) {
	p := smallParams()
	p.UniverseSize = 500
	p.Runs = 200
	p.PortfolioSizes = []int{20, 200}
	p.Workers = 4

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner, err := NewRunner(p, nil)
	require.NoError(t, err)
	runner.WithSourceFactory(func(seed int64, run int) rand.Source {
		if run == 10 {
			cancel()
		}
		return DefaultSourceFactory(seed, run)
	})

	batch, err := runner.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, batch)
	assert.Positive(t, batch.Completed())
	assert.Less(t, batch.Completed(), p.Runs)

	full, err := RunBatch(context.Background(), p)
	require.NoError(t, err)
	for _, size := range p.PortfolioSizes {
		got := batch.Results(size)
		require.Len(t, got, batch.Completed())
		for i, rec := range got {
			if i > 0 {
				assert.Greater(t, rec.SimulationIndex, got[i-1].SimulationIndex)
			}
			assert.Equal(t, full.Results(size)[rec.SimulationIndex], rec)
		}
	}
}

func TestWithSourceFactory(t *testing.T) {
	p := smallParams()

	runner, err := NewRunner(p, nil)
	require.NoError(t, err)
	calls := 0
	runner.WithSourceFactory(func(seed int64, run int) rand.Source {
		calls++
		return rand.NewPCG(uint64(run), 1)
	})

	custom, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, p.Runs, calls)

	standard, err := RunBatch(context.Background(), p)
	require.NoError(t, err)
	assert.NotEqual(t, standard.Records(), custom.Records())
}

func TestNewBatchResultGroupsAndOrders(t *testing.T) {
	p := smallParams()
	p.PortfolioSizes = []int{200, 20}
	records := []models.SimulationResult{
		{PortfolioSize: 20, SimulationIndex: 1},
		{PortfolioSize: 200, SimulationIndex: 1},
		{PortfolioSize: 20, SimulationIndex: 0},
		{PortfolioSize: 50, SimulationIndex: 0},
		{PortfolioSize: 200, SimulationIndex: 0},
	}

	batch := NewBatchResult(p, records)

	assert.Equal(t, []int{200, 20, 50}, batch.PortfolioSizes())
	assert.Equal(t, 2, batch.Completed())
	assert.Equal(t, 5, batch.Len())

	small := batch.Results(20)
	require.Len(t, small, 2)
	assert.Equal(t, 0, small[0].SimulationIndex)
	assert.Equal(t, 1, small[1].SimulationIndex)

	all := batch.Records()
	require.Len(t, all, 5)
	assert.Equal(t, 200, all[0].PortfolioSize)
	assert.Equal(t, 50, all[4].PortfolioSize)
}

func TestBatchResultAccessorsReturnCopies(t *testing.T) {
	batch, err := RunBatch(context.Background(), smallParams())
	require.NoError(t, err)

	records := batch.Results(20)
	records[0].PortfolioMultiple = -42
	assert.NotEqual(t, -42.0, batch.Results(20)[0].PortfolioMultiple)

	sizes := batch.PortfolioSizes()
	sizes[0] = 99
	assert.Equal(t, 20, batch.PortfolioSizes()[0])
}

func TestFromConfigDefaults(t *testing.T) {
	p := DefaultParams()
	require.NoError(t, p.Validate())
	assert.Equal(t, []int{20, 200, 1_000, 5_000}, p.PortfolioSizes)

	_, err := FromConfig(nil)
	require.ErrorIs(t, err, models.ErrInvalidParameter)
}
