// Package report turns per-size simulation records into summary statistics
// and writes them to the console, JSON and CSV.
package report

import (
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/yourusername/angel5000/internal/models"
	"github.com/yourusername/angel5000/internal/simulation"
)

// Band is a mean with its 5th to 95th percentile range.
type Band struct {
	Mean float64 `json:"mean"`
	P5   float64 `json:"p5"`
	P95  float64 `json:"p95"`
}

// SizeSummary holds the statistics of one portfolio size.
type SizeSummary struct {
	PortfolioSize int `json:"portfolio_size"`
	Simulations   int `json:"simulations"`

	Top1Pct  Band `json:"top_1pct_captured"`
	Top01Pct Band `json:"top_01pct_captured"`

	MedianIRR       float64 `json:"median_irr"`
	IRRP5           float64 `json:"irr_p5"`
	IRRP95          float64 `json:"irr_p95"`
	ProbNegativeIRR float64 `json:"prob_negative_irr"`
	IRRStdDev       float64 `json:"irr_std_dev"`

	MedianMultiple float64 `json:"median_multiple"`
	MultipleP5     float64 `json:"multiple_p5"`
	MultipleP95    float64 `json:"multiple_p95"`

	// ProbZeroTop01 is the share of runs that captured no top 0.1% company.
	ProbZeroTop01 float64 `json:"prob_zero_top_01pct"`
}

// ExecutiveSummary compares the smallest and largest portfolio sizes.
// A nil ratio means its denominator was zero.
type ExecutiveSummary struct {
	SmallestSize        int       `json:"smallest_size"`
	LargestSize         int       `json:"largest_size"`
	ZeroTop01Smallest   float64   `json:"zero_top_01pct_smallest"`
	ZeroTop01Largest    float64   `json:"zero_top_01pct_largest"`
	RiskReduction       *float64  `json:"risk_reduction"`
	IRRStdDevSmallest   float64   `json:"irr_std_dev_smallest"`
	IRRStdDevLargest    float64   `json:"irr_std_dev_largest"`
	VolatilityReduction *float64  `json:"volatility_reduction"`
	MedianIRRBySize     []SizeIRR `json:"median_irr_by_size"`
}

// SizeIRR pairs a portfolio size with its median IRR.
type SizeIRR struct {
	PortfolioSize int     `json:"portfolio_size"`
	MedianIRR     float64 `json:"median_irr"`
}

// Summary is the complete report of a batch.
type Summary struct {
	RunID        string            `json:"run_id,omitempty"`
	Seed         int64             `json:"seed"`
	Simulations  int               `json:"simulations"`
	UniverseSize int               `json:"universe_size"`
	Years        float64           `json:"years"`
	Alpha        float64           `json:"alpha"`
	Sizes        []SizeSummary     `json:"sizes"`
	Executive    *ExecutiveSummary `json:"executive,omitempty"`
}

// Summarize computes the statistics of every portfolio size in batch.
func Summarize(batch *simulation.BatchResult) Summary {
	params := batch.Params()
	summary := Summary{
		Seed:         batch.Seed(),
		Simulations:  batch.Completed(),
		UniverseSize: params.UniverseSize,
		Years:        params.Years,
		Alpha:        params.Alpha,
	}

	for _, size := range batch.PortfolioSizes() {
		records := batch.Results(size)
		if len(records) == 0 {
			continue
		}
		summary.Sizes = append(summary.Sizes, SummarizeSize(size, records))
	}
	summary.Executive = executive(summary.Sizes)

	return summary
}

// SummarizeSize computes the statistics of one portfolio size.
func SummarizeSize(size int, records []models.SimulationResult) SizeSummary {
	n := len(records)
	out := SizeSummary{PortfolioSize: size, Simulations: n}
	if n == 0 {
		return out
	}

	top1 := make([]float64, n)
	top01 := make([]float64, n)
	irrs := make([]float64, n)
	multiples := make([]float64, n)
	negative, zeroTop01 := 0, 0
	for i, rec := range records {
		top1[i] = float64(rec.Top1PctCaptured)
		top01[i] = float64(rec.Top01PctCaptured)
		irrs[i] = rec.PortfolioIRR
		multiples[i] = rec.PortfolioMultiple
		if rec.PortfolioIRR < 0 {
			negative++
		}
		if rec.Top01PctCaptured == 0 {
			zeroTop01++
		}
	}

	out.Top1Pct = band(top1)
	out.Top01Pct = band(top01)

	out.MedianIRR = simulation.Percentile(irrs, 50)
	out.IRRP5 = simulation.Percentile(irrs, 5)
	out.IRRP95 = simulation.Percentile(irrs, 95)
	out.ProbNegativeIRR = float64(negative) / float64(n)
	out.IRRStdDev = stat.PopStdDev(irrs, nil)

	out.MedianMultiple = simulation.Percentile(multiples, 50)
	out.MultipleP5 = simulation.Percentile(multiples, 5)
	out.MultipleP95 = simulation.Percentile(multiples, 95)

	out.ProbZeroTop01 = float64(zeroTop01) / float64(n)
	return out
}

func band(values []float64) Band {
	return Band{
		Mean: stat.Mean(values, nil),
		P5:   simulation.Percentile(values, 5),
		P95:  simulation.Percentile(values, 95),
	}
}

func executive(sizes []SizeSummary) *ExecutiveSummary {
	if len(sizes) == 0 {
		return nil
	}

	smallest := slices.MinFunc(sizes, func(a, b SizeSummary) int { return a.PortfolioSize - b.PortfolioSize })
	largest := slices.MaxFunc(sizes, func(a, b SizeSummary) int { return a.PortfolioSize - b.PortfolioSize })

	exec := &ExecutiveSummary{
		SmallestSize:        smallest.PortfolioSize,
		LargestSize:         largest.PortfolioSize,
		ZeroTop01Smallest:   smallest.ProbZeroTop01,
		ZeroTop01Largest:    largest.ProbZeroTop01,
		RiskReduction:       ratio(smallest.ProbZeroTop01, largest.ProbZeroTop01),
		IRRStdDevSmallest:   smallest.IRRStdDev,
		IRRStdDevLargest:    largest.IRRStdDev,
		VolatilityReduction: ratio(smallest.IRRStdDev, largest.IRRStdDev),
	}
	for _, s := range sizes {
		exec.MedianIRRBySize = append(exec.MedianIRRBySize, SizeIRR{PortfolioSize: s.PortfolioSize, MedianIRR: s.MedianIRR})
	}
	return exec
}

func ratio(num, den float64) *float64 {
	if den == 0 {
		return nil
	}
	r := num / den
	return &r
}
