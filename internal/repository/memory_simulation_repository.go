package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/yourusername/angel5000/internal/models"
)

// MemorySimulationRepository is an in-memory SimulationRepository.
type MemorySimulationRepository struct {
	mu      sync.RWMutex
	runs    map[uuid.UUID]*models.SimulationRun
	results map[uuid.UUID][]models.SimulationResult
}

// NewMemorySimulationRepository creates an empty in-memory repository.
func NewMemorySimulationRepository() *MemorySimulationRepository {
	return &MemorySimulationRepository{
		runs:    make(map[uuid.UUID]*models.SimulationRun),
		results: make(map[uuid.UUID][]models.SimulationResult),
	}
}

// CreateRun stores a copy of run and its first records under one lock.
func (m *MemorySimulationRepository) CreateRun(_ context.Context, run *models.SimulationRun, results []models.SimulationResult) (int64, error) {
	if run == nil || run.ID == uuid.Nil {
		return 0, fmt.Errorf("simulation run with an id is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.runs[run.ID]; exists {
		return 0, fmt.Errorf("simulation run %s already exists", run.ID)
	}
	runCopy := *run
	runCopy.PortfolioSizes = slices.Clone(run.PortfolioSizes)
	m.runs[run.ID] = &runCopy
	if len(results) > 0 {
		m.results[run.ID] = slices.Clone(results)
	}
	return int64(len(results)), nil
}

// InsertResults appends records to an existing run.
func (m *MemorySimulationRepository) InsertResults(_ context.Context, runID uuid.UUID, results []models.SimulationResult) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.runs[runID]; !exists {
		return 0, fmt.Errorf("simulation run %s: %w", runID, models.ErrNotFound)
	}
	m.results[runID] = append(m.results[runID], results...)
	return int64(len(results)), nil
}

// GetRun returns a copy of the run, or ErrNotFound.
func (m *MemorySimulationRepository) GetRun(_ context.Context, id uuid.UUID) (*models.SimulationRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	run, exists := m.runs[id]
	if !exists {
		return nil, models.ErrNotFound
	}
	runCopy := *run
	runCopy.PortfolioSizes = slices.Clone(run.PortfolioSizes)
	return &runCopy, nil
}

// ListRuns returns up to limit runs, most recent first. A limit <= 0 returns every run.
func (m *MemorySimulationRepository) ListRuns(_ context.Context, limit int) ([]*models.SimulationRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	runs := make([]*models.SimulationRun, 0, len(m.runs))
	for _, run := range m.runs {
		runCopy := *run
		runCopy.PortfolioSizes = slices.Clone(run.PortfolioSizes)
		runs = append(runs, &runCopy)
	}
	slices.SortFunc(runs, func(a, b *models.SimulationRun) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// GetResults returns records ordered by portfolio size then simulation index.
// A portfolioSize of 0 returns every size.
func (m *MemorySimulationRepository) GetResults(_ context.Context, runID uuid.UUID, portfolioSize int) ([]models.SimulationResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.SimulationResult
	for _, rec := range m.results[runID] {
		if portfolioSize == 0 || rec.PortfolioSize == portfolioSize {
			out = append(out, rec)
		}
	}
	slices.SortFunc(out, func(a, b models.SimulationResult) int {
		if a.PortfolioSize != b.PortfolioSize {
			return a.PortfolioSize - b.PortfolioSize
		}
		return a.SimulationIndex - b.SimulationIndex
	})
	return out, nil
}
