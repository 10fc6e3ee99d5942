package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerInvalidLevelDefaultsToInfo(t *testing.T) {
	log := NewLogger("chatty")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestNewLoggerLevel(t *testing.T) {
	log := NewLogger("debug")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
}

func TestSimulationLoggerBatchStart(t *testing.T) {
	log, buf := setupTestLogger()
	simLogger := NewSimulationLogger(log)

	simLogger.LogBatchStart(10_000, 50_000, []int{20, 5000}, 10, 1.16, 42, 4)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "simulation", logEntry["component"])
	assert.Equal(t, float64(10_000), logEntry["runs"])
	assert.Equal(t, float64(42), logEntry["seed"])
}

func TestSimulationLoggerProgress(t *testing.T) {
	log, buf := setupTestLogger()
	NewSimulationLogger(log).LogProgress(1000, 10_000)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, float64(1000), logEntry["completed"])
	assert.Equal(t, float64(10_000), logEntry["total"])
}

func TestSimulationLoggerBatchComplete(t *testing.T) {
	log, buf := setupTestLogger()
	NewSimulationLogger(log).LogBatchComplete(5, 20, 1500*time.Millisecond)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, float64(1500), logEntry["duration_ms"])
}

func TestSimulationLoggerInterrupted(t *testing.T) {
	log, buf := setupTestLogger()
	NewSimulationLogger(log).LogBatchInterrupted(3, 10, errors.New("context canceled"))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "warning", logEntry["level"])
	assert.Equal(t, "context canceled", logEntry["error"])
}

func TestAuditLoggerRunCreated(t *testing.T) {
	log, buf := setupTestLogger()
	NewAuditLogger(log).LogRunCreated("run-1", 10, 1000, 10, 1.16)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "audit", logEntry["component"])
	assert.Equal(t, "run_created", logEntry["event_type"])
	assert.Equal(t, "run-1", logEntry["run_id"])
}

func TestAuditLoggerPersistenceSkipped(t *testing.T) {
	log, buf := setupTestLogger()
	NewAuditLogger(log).LogPersistenceSkipped("no store configured", 40)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "persistence_skipped", logEntry["event_type"])
	assert.Equal(t, float64(40), logEntry["records"])
}

func BenchmarkSimulationLoggerProgress(b *testing.B) {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	simLogger := NewSimulationLogger(log)

	for i := 0; i < b.N; i++ {
		simLogger.LogProgress(i, b.N)
	}
}
