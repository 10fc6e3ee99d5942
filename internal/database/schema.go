package database

import (
	"context"
	"fmt"

	"github.com/yourusername/angel5000/internal/config"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS simulation_runs (
		id              UUID PRIMARY KEY,
		n_simulations   INTEGER NOT NULL,
		n_universe      INTEGER NOT NULL,
		years           DOUBLE PRECISION NOT NULL,
		alpha           DOUBLE PRECISION NOT NULL,
		portfolio_sizes INTEGER[] NOT NULL DEFAULT '{}',
		seed            BIGINT NOT NULL DEFAULT 0,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS simulation_results (
		simulation_run_id  UUID NOT NULL REFERENCES simulation_runs(id) ON DELETE CASCADE,
		portfolio_size     INTEGER NOT NULL,
		simulation_index   INTEGER NOT NULL,
		portfolio_multiple DOUBLE PRECISION NOT NULL,
		portfolio_irr      DOUBLE PRECISION NOT NULL,
		top_1pct_captured  INTEGER NOT NULL,
		top_01pct_captured INTEGER NOT NULL,
		PRIMARY KEY (simulation_run_id, portfolio_size, simulation_index)
	)`,
}

// Initialize connects to the database and creates the results schema
func Initialize(ctx context.Context, cfg *config.DatabaseConfig) (*DB, error) {
	db, err := NewDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the simulation tables when they are missing
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
