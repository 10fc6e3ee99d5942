package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/yourusername/angel5000/internal/models"
)

// SimulationRepository defines the interface for simulation run storage
type SimulationRepository interface {
	// CreateRun stores the run row together with its first records in one
	// transaction, so a stored run never exists without results.
	CreateRun(ctx context.Context, run *models.SimulationRun, results []models.SimulationResult) (int64, error)
	InsertResults(ctx context.Context, runID uuid.UUID, results []models.SimulationResult) (int64, error)
	GetRun(ctx context.Context, id uuid.UUID) (*models.SimulationRun, error)
	// ListRuns returns runs newest first. A limit <= 0 returns every run.
	ListRuns(ctx context.Context, limit int) ([]*models.SimulationRun, error)
	GetResults(ctx context.Context, runID uuid.UUID, portfolioSize int) ([]models.SimulationResult, error)
}
