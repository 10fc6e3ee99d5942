// Package service runs simulation batches and persists their results.
package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/angel5000/internal/config"
	"github.com/yourusername/angel5000/internal/logger"
	"github.com/yourusername/angel5000/internal/metrics"
	"github.com/yourusername/angel5000/internal/models"
	"github.com/yourusername/angel5000/internal/report"
	"github.com/yourusername/angel5000/internal/repository"
	"github.com/yourusername/angel5000/internal/simulation"
)

// Persistence defaults
const (
	DefaultInsertBatchSize = 1_000
	DefaultProgressEvery   = 5_000
)

// SimulationService executes batches and stores them in an optional repository
type SimulationService struct {
	repo          repository.SimulationRepository
	logger        *logrus.Logger
	audit         *logger.AuditLogger
	batchSize     int
	progressEvery int
}

// Outcome is the result of Execute. PersistErr is set, and Persisted false,
// when the records could not be stored; the batch itself is still valid.
type Outcome struct {
	Batch        *simulation.BatchResult
	Summary      report.Summary
	RunID        uuid.UUID
	Persisted    bool
	RecordsSaved int64
	PersistErr   error
	Duration     time.Duration
}

// NewSimulationService creates a new simulation service. repo may be nil, in
// which case every batch reports ErrPersistenceUnavailable.
func NewSimulationService(repo repository.SimulationRepository, log *logrus.Logger, batchSize int) *SimulationService {
	if log == nil {
		log = logger.Discard()
	}
	if batchSize <= 0 {
		batchSize = DefaultInsertBatchSize
	}
	return &SimulationService{
		repo:          repo,
		logger:        log,
		audit:         logger.NewAuditLogger(log),
		batchSize:     batchSize,
		progressEvery: DefaultProgressEvery,
	}
}

// Execute runs a batch, publishes its metrics and persists it. Invalid params
// and cancellation are returned as errors; persistence failures are not.
func (s *SimulationService) Execute(ctx context.Context, params simulation.Params) (*Outcome, error) {
	runner, err := simulation.NewRunner(params, s.logger)
	if err != nil {
		metrics.RecordBatch(metrics.StatusFailure)
		return nil, err
	}

	start := time.Now()
	batch, runErr := runner.Run(ctx)
	duration := time.Since(start)

	metrics.RecordBatchDuration(duration.Seconds())
	if batch != nil {
		metrics.RecordRuns(batch.Completed())
	}
	if runErr != nil {
		metrics.RecordBatch(metrics.StatusInterrupted)
		out := &Outcome{Batch: batch, Duration: duration}
		if batch != nil {
			out.Summary = report.Summarize(batch)
		}
		return out, runErr
	}

	out := &Outcome{
		Batch:    batch,
		Summary:  report.Summarize(batch),
		Duration: duration,
	}
	for _, size := range out.Summary.Sizes {
		metrics.UpdateSizeSummary(size.PortfolioSize, size.MedianIRR, size.ProbZeroTop01)
	}

	runID, saved, err := s.Persist(ctx, batch)
	out.RecordsSaved = saved
	if err != nil {
		out.PersistErr = err
		metrics.RecordPersistenceFailure()
		s.audit.LogPersistenceSkipped(err.Error(), batch.Len())
	} else {
		out.RunID = runID
		out.Persisted = true
		out.Summary.RunID = runID.String()
	}

	metrics.RecordBatch(metrics.StatusSuccess)
	return out, nil
}

// Persist writes every record, per portfolio size in simulation index order,
// in chunks of the configured batch size. The run row is created together
// with the first chunk. All errors wrap models.ErrPersistenceUnavailable.
func (s *SimulationService) Persist(ctx context.Context, batch *simulation.BatchResult) (uuid.UUID, int64, error) {
	if s.repo == nil {
		return uuid.Nil, 0, fmt.Errorf("%w: no results store configured", models.ErrPersistenceUnavailable)
	}

	params := batch.Params()
	run := &models.SimulationRun{
		ID:             uuid.New(),
		NSimulations:   batch.Completed(),
		NUniverse:      params.UniverseSize,
		Years:          params.Years,
		Alpha:          params.Alpha,
		PortfolioSizes: batch.PortfolioSizes(),
		Seed:           batch.Seed(),
		CreatedAt:      time.Now().UTC(),
	}
	var chunks [][]models.SimulationResult
	for _, size := range batch.PortfolioSizes() {
		chunks = slices.AppendSeq(chunks, slices.Chunk(batch.Results(size), s.batchSize))
	}
	var first []models.SimulationResult
	if len(chunks) > 0 {
		first, chunks = chunks[0], chunks[1:]
	}

	saved, err := s.repo.CreateRun(ctx, run, first)
	if err != nil {
		return uuid.Nil, 0, fmt.Errorf("%w: %v", models.ErrPersistenceUnavailable, err)
	}
	s.audit.LogRunCreated(run.ID.String(), run.NSimulations, run.NUniverse, run.Years, run.Alpha)
	metrics.RecordRecordsPersisted(saved)

	total := batch.Len()
	s.logProgress(run.ID, 0, saved, total)
	for _, chunk := range chunks {
		n, err := s.repo.InsertResults(ctx, run.ID, chunk)
		metrics.RecordRecordsPersisted(n)
		if err != nil {
			saved += n
			return run.ID, saved, fmt.Errorf("%w: saved %d of %d records: %v", models.ErrPersistenceUnavailable, saved, total, err)
		}
		s.logProgress(run.ID, saved, saved+n, total)
		saved += n
	}

	return run.ID, saved, nil
}

// logProgress writes an audit entry each time saved crosses a multiple of
// progressEvery, and once all records are stored.
func (s *SimulationService) logProgress(runID uuid.UUID, before, after int64, total int) {
	every := int64(s.progressEvery)
	if after/every > before/every || after == int64(total) {
		s.audit.LogRecordsSaved(runID.String(), int(after), total)
	}
}

// LoadRun rebuilds a stored batch and its summary.
func (s *SimulationService) LoadRun(ctx context.Context, runID uuid.UUID) (*simulation.BatchResult, report.Summary, error) {
	if s.repo == nil {
		return nil, report.Summary{}, fmt.Errorf("%w: no results store configured", models.ErrPersistenceUnavailable)
	}

	run, err := s.repo.GetRun(ctx, runID)
	if err != nil {
		return nil, report.Summary{}, fmt.Errorf("failed to get simulation run %s: %w", runID, err)
	}
	records, err := s.repo.GetResults(ctx, runID, 0)
	if err != nil {
		return nil, report.Summary{}, fmt.Errorf("failed to get simulation results for %s: %w", runID, err)
	}

	batch := simulation.NewBatchResult(ParamsFromRun(run), records)
	summary := report.Summarize(batch)
	summary.RunID = run.ID.String()
	return batch, summary, nil
}

// RecentRuns lists stored runs, most recent first.
func (s *SimulationService) RecentRuns(ctx context.Context, limit int) ([]*models.SimulationRun, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("%w: no results store configured", models.ErrPersistenceUnavailable)
	}
	return s.repo.ListRuns(ctx, limit)
}

// Export writes the configured local report files for an outcome.
func (s *SimulationService) Export(out *Outcome, cfg config.OutputConfig) ([]string, error) {
	if out == nil || out.Batch == nil {
		return nil, fmt.Errorf("no batch to export")
	}
	written, err := report.ExportAll(cfg.Dir, out.Summary, out.Batch.Records(), cfg.JSONEnabled, cfg.CSVEnabled)
	if err != nil {
		return written, fmt.Errorf("failed to export results: %w", err)
	}
	for _, path := range written {
		s.logger.WithField("path", path).Info("Wrote simulation output")
	}
	return written, nil
}

// ParamsFromRun maps stored run metadata back onto simulation parameters.
// Fields the store does not keep use their reference values.
func ParamsFromRun(run *models.SimulationRun) simulation.Params {
	p := simulation.DefaultParams()
	p.Runs = run.NSimulations
	p.UniverseSize = run.NUniverse
	p.Years = run.Years
	p.Alpha = run.Alpha
	p.PortfolioSizes = slices.Clone(run.PortfolioSizes)
	p.Seed = run.Seed
	return p
}
