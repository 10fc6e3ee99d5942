package report

import (
	"fmt"
	"strings"
)

const rule = "--------------------------------------------------------------------------------"

// GenerateConsoleReport formats the summary tables for terminal output
func GenerateConsoleReport(summary Summary) string {
	var b strings.Builder

	b.WriteString("Angel5000 Monte Carlo Report\n")
	b.WriteString("============================\n")
	if summary.RunID != "" {
		b.WriteString(fmt.Sprintf("Run ID: %s\n", summary.RunID))
	}
	b.WriteString(fmt.Sprintf("Simulations: %d  Universe: %d  Years: %g  Alpha: %g  Seed: %d\n",
		summary.Simulations, summary.UniverseSize, summary.Years, summary.Alpha, summary.Seed))

	b.WriteString("\n1. TAIL CAPTURE ANALYSIS\n")
	b.WriteString(rule + "\n")
	b.WriteString(fmt.Sprintf("%-20s %-30s %-30s\n", "Portfolio Size", "Top 1% Winners", "Top 0.1% Winners"))
	b.WriteString(fmt.Sprintf("%-20s %-30s %-30s\n", "", "Avg [5th-95th pct]", "Avg [5th-95th pct]"))
	b.WriteString(rule + "\n")
	for _, s := range summary.Sizes {
		b.WriteString(fmt.Sprintf("%-20d %-30s %-30s\n", s.PortfolioSize, formatBand(s.Top1Pct), formatBand(s.Top01Pct)))
	}

	b.WriteString("\n2. IRR SUMMARY\n")
	b.WriteString(rule + "\n")
	b.WriteString(fmt.Sprintf("%-20s %-15s %-15s %-15s %-15s\n", "Portfolio Size", "Median IRR", "5th Pct", "95th Pct", "P(IRR<0%)"))
	b.WriteString(rule + "\n")
	for _, s := range summary.Sizes {
		b.WriteString(fmt.Sprintf("%-20d %13.2f%% %13.2f%% %13.2f%% %13.2f%%\n",
			s.PortfolioSize, s.MedianIRR*100, s.IRRP5*100, s.IRRP95*100, s.ProbNegativeIRR*100))
	}

	b.WriteString("\n3. MULTIPLE SUMMARY\n")
	b.WriteString(rule + "\n")
	b.WriteString(fmt.Sprintf("%-20s %-20s %-30s\n", "Portfolio Size", "Median Multiple", "5th-95th Percentile"))
	b.WriteString(rule + "\n")
	for _, s := range summary.Sizes {
		b.WriteString(fmt.Sprintf("%-20d %18.3fx %8.3fx - %8.3fx\n", s.PortfolioSize, s.MedianMultiple, s.MultipleP5, s.MultipleP95))
	}

	b.WriteString("\n4. PROBABILITY OF ZERO TOP 0.1% WINNERS\n")
	b.WriteString(rule + "\n")
	for _, s := range summary.Sizes {
		b.WriteString(fmt.Sprintf("%-20d %13.2f%%\n", s.PortfolioSize, s.ProbZeroTop01*100))
	}

	if summary.Executive != nil {
		b.WriteString(GenerateExecutiveSummary(*summary.Executive))
	}
	return b.String()
}

// GenerateExecutiveSummary formats the smallest versus largest portfolio comparison
func GenerateExecutiveSummary(exec ExecutiveSummary) string {
	var b strings.Builder
	b.WriteString("\nEXECUTIVE SUMMARY\n")
	b.WriteString(rule + "\n")

	b.WriteString("1. TAIL CAPTURE:\n")
	b.WriteString(fmt.Sprintf("   %d-company portfolio misses all top 0.1%% winners in %.2f%% of cases\n",
		exec.LargestSize, exec.ZeroTop01Largest*100))
	b.WriteString(fmt.Sprintf("   %d-company portfolio misses all top 0.1%% winners in %.2f%% of cases\n",
		exec.SmallestSize, exec.ZeroTop01Smallest*100))
	b.WriteString(fmt.Sprintf("   Risk reduction: %s\n", formatRatio(exec.RiskReduction)))

	b.WriteString("2. RETURN STABILITY:\n")
	b.WriteString(fmt.Sprintf("   %d-company portfolio IRR std dev: %.2f%%\n", exec.SmallestSize, exec.IRRStdDevSmallest*100))
	b.WriteString(fmt.Sprintf("   %d-company portfolio IRR std dev: %.2f%%\n", exec.LargestSize, exec.IRRStdDevLargest*100))
	b.WriteString(fmt.Sprintf("   Volatility reduction: %s\n", formatRatio(exec.VolatilityReduction)))

	b.WriteString("3. MEDIAN IRR BY PORTFOLIO SIZE:\n")
	for _, s := range exec.MedianIRRBySize {
		b.WriteString(fmt.Sprintf("   %5d companies: %6.2f%% IRR\n", s.PortfolioSize, s.MedianIRR*100))
	}
	return b.String()
}

func formatBand(band Band) string {
	return fmt.Sprintf("%6.2f [%4.1f-%4.1f]", band.Mean, band.P5, band.P95)
}

func formatRatio(r *float64) string {
	if r == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1fx", *r)
}
