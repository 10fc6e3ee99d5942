// Package metrics provides the Prometheus registry for simulation batches.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "angel5000"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	SimulationRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "simulation_runs_total",
		Help:      "Total number of completed simulation runs",
	})
	RecordsPersistedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "simulation_records_persisted_total",
		Help:      "Total number of simulation result records written to the store",
	})
	PersistenceFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "simulation_persistence_failures_total",
		Help:      "Total number of batches whose results could not be persisted",
	})
)

// Histogram metrics
var (
	BatchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "simulation_batch_duration_seconds",
		Help:      "Duration of simulation batches in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800, 3600},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(SimulationRunsTotal)
		registry.MustRegister(RecordsPersistedTotal)
		registry.MustRegister(PersistenceFailuresTotal)
		registry.MustRegister(BatchDuration)

		registry.MustRegister(BatchesTotal)
		registry.MustRegister(MedianIRR)
		registry.MustRegister(ZeroTop01Probability)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordRuns adds completed simulation runs.
func RecordRuns(n int) {
	SimulationRunsTotal.Add(float64(n))
}

// RecordRecordsPersisted adds persisted result records.
func RecordRecordsPersisted(n int64) {
	RecordsPersistedTotal.Add(float64(n))
}

// RecordPersistenceFailure records a batch that was not durably stored.
func RecordPersistenceFailure() {
	PersistenceFailuresTotal.Inc()
}

// RecordBatchDuration records batch duration.
func RecordBatchDuration(durationSeconds float64) {
	BatchDuration.Observe(durationSeconds)
}
