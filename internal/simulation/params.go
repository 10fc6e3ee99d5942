// Package simulation implements the Angel5000 Monte Carlo model: synthetic
// startup universes, portfolio sampling and per-run result aggregation.
package simulation

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yourusername/angel5000/internal/config"
	"github.com/yourusername/angel5000/internal/models"
)

// Reference values of the model.
const (
	DefaultUniverseSize       = 50_000
	DefaultRuns               = 10_000
	DefaultYears              = 10
	DefaultAlpha              = 1.16
	DefaultFailureProbability = 0.60
	DefaultFailureMaxMultiple = 0.3
	DefaultParetoScale        = 0.5
	DefaultMinMultiple        = 0.0
	DefaultMaxMultiple        = 500
	DefaultSeed               = 42
	DefaultProgressInterval   = 1_000
)

// DefaultPortfolioSizes are the portfolio sizes compared by default.
var DefaultPortfolioSizes = []int{20, 200, 1_000, 5_000}

var validate = validator.New()

// Params is the immutable configuration of one batch.
type Params struct {
	UniverseSize       int     `validate:"gt=0"`
	Runs               int     `validate:"gt=0"`
	PortfolioSizes     []int   `validate:"required,min=1,unique,dive,gt=0"`
	Years              float64 `validate:"gt=0"`
	Alpha              float64 `validate:"gt=0"`
	FailureProbability float64 `validate:"gte=0,lte=1"`
	FailureMaxMultiple float64 `validate:"gte=0"`
	ParetoScale        float64 `validate:"gt=0"`
	MinMultiple        float64 `validate:"gte=0"`
	MaxMultiple        float64 `validate:"gtfield=MinMultiple"`
	// Seed 0 selects a clock-derived seed; the effective seed is reported on the result.
	Seed             int64
	Workers          int `validate:"gte=0"`
	ProgressInterval int `validate:"gte=0"`
}

// UniverseModel holds the mixture distribution parameters of a universe.
type UniverseModel struct {
	Alpha              float64
	ParetoScale        float64
	FailureProbability float64
	FailureMaxMultiple float64
	MinMultiple        float64
	MaxMultiple        float64
}

// DefaultParams returns the reference configuration.
func DefaultParams() Params {
	return Params{
		UniverseSize:       DefaultUniverseSize,
		Runs:               DefaultRuns,
		PortfolioSizes:     slices.Clone(DefaultPortfolioSizes),
		Years:              DefaultYears,
		Alpha:              DefaultAlpha,
		FailureProbability: DefaultFailureProbability,
		FailureMaxMultiple: DefaultFailureMaxMultiple,
		ParetoScale:        DefaultParetoScale,
		MinMultiple:        DefaultMinMultiple,
		MaxMultiple:        DefaultMaxMultiple,
		Seed:               DefaultSeed,
		Workers:            1,
		ProgressInterval:   DefaultProgressInterval,
	}
}

// DefaultUniverseModel returns the reference mixture distribution.
func DefaultUniverseModel() UniverseModel {
	return DefaultParams().Model()
}

// FromConfig converts app config to simulation parameters
func FromConfig(cfg *config.SimulationConfig) (Params, error) {
	if cfg == nil {
		return Params{}, fmt.Errorf("%w: simulation config is required", models.ErrInvalidParameter)
	}

	p := Params{
		UniverseSize:       cfg.UniverseSize,
		Runs:               cfg.Runs,
		PortfolioSizes:     slices.Clone(cfg.PortfolioSizes),
		Years:              cfg.Years,
		Alpha:              cfg.Alpha,
		FailureProbability: cfg.FailureProbability,
		FailureMaxMultiple: cfg.FailureMaxMultiple,
		ParetoScale:        cfg.ParetoScale,
		MinMultiple:        cfg.MinMultiple,
		MaxMultiple:        cfg.MaxMultiple,
		Seed:               cfg.Seed,
		Workers:            cfg.Workers,
		ProgressInterval:   cfg.ProgressInterval,
	}

	return p, p.Validate()
}

// Model returns the universe distribution described by p.
func (p Params) Model() UniverseModel {
	return UniverseModel{
		Alpha:              p.Alpha,
		ParetoScale:        p.ParetoScale,
		FailureProbability: p.FailureProbability,
		FailureMaxMultiple: p.FailureMaxMultiple,
		MinMultiple:        p.MinMultiple,
		MaxMultiple:        p.MaxMultiple,
	}
}

// Validate checks every parameter. All failures wrap models.ErrInvalidParameter.
func (p Params) Validate() error {
	if err := validate.Struct(p); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			fields := make([]string, 0, len(validationErrors))
			for _, fe := range validationErrors {
				fields = append(fields, fmt.Sprintf("%s (%s=%s, got %v)", fe.Field(), fe.Tag(), fe.Param(), fe.Value()))
			}
			return fmt.Errorf("%w: %s", models.ErrInvalidParameter, strings.Join(fields, "; "))
		}
		return fmt.Errorf("%w: %v", models.ErrInvalidParameter, err)
	}

	for _, size := range p.PortfolioSizes {
		if size > p.UniverseSize {
			return fmt.Errorf("%w: portfolio size %d exceeds universe size %d", models.ErrInvalidParameter, size, p.UniverseSize)
		}
	}

	return nil
}

// clone returns a copy that shares no slices with p.
func (p Params) clone() Params {
	p.PortfolioSizes = slices.Clone(p.PortfolioSizes)
	return p
}
