package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Batch status label values
const (
	StatusSuccess     = "success"
	StatusInterrupted = "interrupted"
	StatusFailure     = "failure"
)

// Simulation counter vectors
var (
	BatchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "simulation_batches_total",
		Help:      "Total number of simulation batches by status",
	}, []string{"status"})
)

// Simulation gauge vectors
var (
	MedianIRR = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "simulation_median_irr",
		Help:      "Median IRR of the latest batch by portfolio size",
	}, []string{"portfolio_size"})
	ZeroTop01Probability = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "simulation_zero_top01_probability",
		Help:      "Share of runs in the latest batch that captured no top 0.1% company",
	}, []string{"portfolio_size"})
)

// RecordBatch records a finished batch.
// status should be one of StatusSuccess, StatusInterrupted, StatusFailure.
func RecordBatch(status string) {
	BatchesTotal.WithLabelValues(status).Inc()
}

// UpdateSizeSummary publishes the headline statistics of one portfolio size.
func UpdateSizeSummary(portfolioSize int, medianIRR, zeroTop01 float64) {
	label := strconv.Itoa(portfolioSize)
	MedianIRR.WithLabelValues(label).Set(medianIRR)
	ZeroTop01Probability.WithLabelValues(label).Set(zeroTop01)
}
