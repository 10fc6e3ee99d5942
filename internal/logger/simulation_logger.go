// Package logger provides simulation-specific logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// SimulationLogger provides dedicated logging for Monte Carlo batches.
type SimulationLogger struct {
	*logrus.Entry
}

// NewSimulationLogger creates a new simulation logger.
func NewSimulationLogger(baseLogger *logrus.Logger) *SimulationLogger {
	return &SimulationLogger{
		Entry: baseLogger.WithField("component", "simulation"),
	}
}

// LogBatchStart logs the parameters of a batch about to run.
func (sl *SimulationLogger) LogBatchStart(runs, universeSize int, portfolioSizes []int, years, alpha float64, seed int64, workers int) {
	sl.WithFields(logrus.Fields{
		"runs":            runs,
		"universe_size":   universeSize,
		"portfolio_sizes": portfolioSizes,
		"years":           years,
		"alpha":           alpha,
		"seed":            seed,
		"workers":         workers,
	}).Info("Simulation batch starting")
}

// LogProgress logs the number of completed runs.
func (sl *SimulationLogger) LogProgress(completed, total int) {
	sl.WithFields(logrus.Fields{
		"completed": completed,
		"total":     total,
	}).Info("Simulation progress")
}

// LogBatchComplete logs batch completion.
func (sl *SimulationLogger) LogBatchComplete(completed, records int, duration time.Duration) {
	sl.WithFields(logrus.Fields{
		"completed":   completed,
		"records":     records,
		"duration_ms": duration.Milliseconds(),
	}).Info("Simulation batch completed")
}

// LogBatchInterrupted logs a batch stopped before all runs finished.
func (sl *SimulationLogger) LogBatchInterrupted(completed, total int, err error) {
	sl.WithFields(logrus.Fields{
		"completed": completed,
		"total":     total,
	}).WithError(err).Warn("Simulation batch interrupted")
}
