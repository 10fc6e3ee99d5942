package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/yourusername/angel5000/internal/models"
)

// Default file names inside the output directory.
const (
	SummaryFileName = "summary.json"
	ResultsFileName = "simulation_results.csv"
)

var csvHeader = []string{
	"portfolio_size",
	"simulation_index",
	"portfolio_multiple",
	"portfolio_irr",
	"top_1pct_captured",
	"top_01pct_captured",
}

// ExportToJSON writes the summary to a JSON file
func ExportToJSON(summary Summary, outputPath string) error {
	if outputPath == "" {
		return fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	return os.WriteFile(outputPath, data, 0o644)
}

// GenerateCSVExport writes the raw per-simulation records, one row each
func GenerateCSVExport(records []models.SimulationResult, outputPath string) error {
	if outputPath == "" {
		return fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, rec := range records {
		row := []string{
			strconv.Itoa(rec.PortfolioSize),
			strconv.Itoa(rec.SimulationIndex),
			strconv.FormatFloat(rec.PortfolioMultiple, 'g', -1, 64),
			strconv.FormatFloat(rec.PortfolioIRR, 'g', -1, 64),
			strconv.Itoa(rec.Top1PctCaptured),
			strconv.Itoa(rec.Top01PctCaptured),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return f.Close()
}

// ExportAll writes summary.json and simulation_results.csv under dir.
func ExportAll(dir string, summary Summary, records []models.SimulationResult, jsonEnabled, csvEnabled bool) ([]string, error) {
	var written []string
	if jsonEnabled {
		path := filepath.Join(dir, SummaryFileName)
		if err := ExportToJSON(summary, path); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	if csvEnabled {
		path := filepath.Join(dir, ResultsFileName)
		if err := GenerateCSVExport(records, path); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}
