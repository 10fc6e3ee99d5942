package repository

import (
	"fmt"

	"github.com/yourusername/angel5000/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Simulation SimulationRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Simulation: NewPostgresSimulationRepository(db),
	}, nil
}

// NewMemoryRepositories returns repositories that keep everything in process memory
func NewMemoryRepositories() *Repositories {
	return &Repositories{
		Simulation: NewMemorySimulationRepository(),
	}
}
