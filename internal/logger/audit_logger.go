// Package logger provides audit logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging for stored results.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogRunCreated logs creation of a simulation run record.
func (al *AuditLogger) LogRunCreated(runID string, runs, universeSize int, years, alpha float64) {
	al.WithFields(logrus.Fields{
		"event_type":    "run_created",
		"run_id":        runID,
		"n_simulations": runs,
		"n_universe":    universeSize,
		"years":         years,
		"alpha":         alpha,
	}).Info("Simulation run recorded")
}

// LogRecordsSaved logs persistence progress.
func (al *AuditLogger) LogRecordsSaved(runID string, saved, total int) {
	al.WithFields(logrus.Fields{
		"event_type": "records_saved",
		"run_id":     runID,
		"saved":      saved,
		"total":      total,
	}).Info("Simulation results saved")
}

// LogPersistenceSkipped logs a batch that stayed in memory only.
func (al *AuditLogger) LogPersistenceSkipped(reason string, records int) {
	al.WithFields(logrus.Fields{
		"event_type": "persistence_skipped",
		"reason":     reason,
		"records":    records,
	}).Warn("Simulation results not persisted")
}
