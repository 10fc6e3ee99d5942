package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/angel5000/internal/database"
	"github.com/yourusername/angel5000/internal/models"
)

var resultColumns = []string{
	"simulation_run_id",
	"portfolio_size",
	"simulation_index",
	"portfolio_multiple",
	"portfolio_irr",
	"top_1pct_captured",
	"top_01pct_captured",
}

// PostgresSimulationRepository implements SimulationRepository for PostgreSQL
type PostgresSimulationRepository struct {
	db *database.DB
}

// NewPostgresSimulationRepository creates a new simulation repository
func NewPostgresSimulationRepository(db *database.DB) SimulationRepository {
	return &PostgresSimulationRepository{db: db}
}

// copier is satisfied by both *pgxpool.Pool and pgx.Tx
type copier interface {
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// CreateRun inserts the run metadata row and its first records in one transaction
func (r *PostgresSimulationRepository) CreateRun(ctx context.Context, run *models.SimulationRun, results []models.SimulationResult) (int64, error) {
	query := `
		INSERT INTO simulation_runs (id, n_simulations, n_universe, years, alpha, portfolio_sizes, seed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	var count int64
	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			run.ID, run.NSimulations, run.NUniverse, run.Years, run.Alpha,
			run.PortfolioSizes, run.Seed, run.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create simulation run: %w", err)
		}

		count, err = copyResults(ctx, tx, run.ID, results)
		return err
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// InsertResults bulk inserts result records with COPY
func (r *PostgresSimulationRepository) InsertResults(ctx context.Context, runID uuid.UUID, results []models.SimulationResult) (int64, error) {
	return copyResults(ctx, r.db.GetPool(), runID, results)
}

func copyResults(ctx context.Context, dst copier, runID uuid.UUID, results []models.SimulationResult) (int64, error) {
	if len(results) == 0 {
		return 0, nil
	}

	rows := pgx.CopyFromSlice(len(results), func(i int) ([]any, error) {
		rec := results[i]
		return []any{
			runID, rec.PortfolioSize, rec.SimulationIndex,
			rec.PortfolioMultiple, rec.PortfolioIRR,
			rec.Top1PctCaptured, rec.Top01PctCaptured,
		}, nil
	})

	count, err := dst.CopyFrom(ctx, pgx.Identifier{"simulation_results"}, resultColumns, rows)
	if err != nil {
		return count, fmt.Errorf("failed to copy simulation results: %w", err)
	}
	if count != int64(len(results)) {
		return count, fmt.Errorf("inserted %d rows, expected %d", count, len(results))
	}
	return count, nil
}

// GetRun retrieves run metadata by ID
func (r *PostgresSimulationRepository) GetRun(ctx context.Context, id uuid.UUID) (*models.SimulationRun, error) {
	query := `
		SELECT id, n_simulations, n_universe, years, alpha, portfolio_sizes, seed, created_at
		FROM simulation_runs WHERE id = $1
	`

	run := &models.SimulationRun{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&run.ID, &run.NSimulations, &run.NUniverse, &run.Years, &run.Alpha,
		&run.PortfolioSizes, &run.Seed, &run.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query simulation run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first. A limit <= 0 returns every run.
func (r *PostgresSimulationRepository) ListRuns(ctx context.Context, limit int) ([]*models.SimulationRun, error) {
	query := `
		SELECT id, n_simulations, n_universe, years, alpha, portfolio_sizes, seed, created_at
		FROM simulation_runs ORDER BY created_at DESC
	`
	var args []any
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := r.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query simulation runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.SimulationRun
	for rows.Next() {
		run := &models.SimulationRun{}
		if err := rows.Scan(
			&run.ID, &run.NSimulations, &run.NUniverse, &run.Years, &run.Alpha,
			&run.PortfolioSizes, &run.Seed, &run.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan simulation run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetResults retrieves the records of a run. A portfolioSize of 0 returns every size.
func (r *PostgresSimulationRepository) GetResults(ctx context.Context, runID uuid.UUID, portfolioSize int) ([]models.SimulationResult, error) {
	query := `
		SELECT portfolio_size, simulation_index, portfolio_multiple, portfolio_irr,
			top_1pct_captured, top_01pct_captured
		FROM simulation_results
		WHERE simulation_run_id = $1 AND ($2 = 0 OR portfolio_size = $2)
		ORDER BY portfolio_size ASC, simulation_index ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, runID, portfolioSize)
	if err != nil {
		return nil, fmt.Errorf("failed to query simulation results: %w", err)
	}
	defer rows.Close()

	var results []models.SimulationResult
	for rows.Next() {
		var rec models.SimulationResult
		if err := rows.Scan(
			&rec.PortfolioSize, &rec.SimulationIndex, &rec.PortfolioMultiple, &rec.PortfolioIRR,
			&rec.Top1PctCaptured, &rec.Top01PctCaptured,
		); err != nil {
			return nil, fmt.Errorf("failed to scan simulation result: %w", err)
		}
		results = append(results, rec)
	}
	return results, rows.Err()
}
