package models

import (
	"time"

	"github.com/google/uuid"
)

// SimulationRun is the run-level metadata stored alongside a batch of results
type SimulationRun struct {
	ID             uuid.UUID `db:"id" json:"id"`
	NSimulations   int       `db:"n_simulations" json:"n_simulations"`
	NUniverse      int       `db:"n_universe" json:"n_universe"`
	Years          float64   `db:"years" json:"years"`
	Alpha          float64   `db:"alpha" json:"alpha"`
	PortfolioSizes []int     `db:"portfolio_sizes" json:"portfolio_sizes"`
	Seed           int64     `db:"seed" json:"seed"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// SimulationResult is one (portfolio size, simulation run) outcome.
// Values are never mutated after the batch runner produces them.
type SimulationResult struct {
	PortfolioSize     int     `db:"portfolio_size" json:"portfolio_size"`
	SimulationIndex   int     `db:"simulation_index" json:"simulation_index"`
	PortfolioMultiple float64 `db:"portfolio_multiple" json:"portfolio_multiple"`
	PortfolioIRR      float64 `db:"portfolio_irr" json:"portfolio_irr"`
	Top1PctCaptured   int     `db:"top_1pct_captured" json:"top_1pct_captured"`
	Top01PctCaptured  int     `db:"top_01pct_captured" json:"top_01pct_captured"`
}
