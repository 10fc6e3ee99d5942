package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yourusername/angel5000/internal/models"
	"github.com/yourusername/angel5000/internal/report"
	"github.com/yourusername/angel5000/internal/simulation"
)

type runFlags struct {
	runs           int
	universeSize   int
	portfolioSizes []int
	years          float64
	seed           int64
	workers        int
	outputDir      string
	csv            bool
	quiet          bool
}

func newRunCmd() *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation batch and print the summary tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, flags)
		},
	}

	cmd.Flags().IntVar(&flags.runs, "runs", 0, "Number of simulation runs (overrides config)")
	cmd.Flags().IntVar(&flags.universeSize, "universe-size", 0, "Startups per generated universe (overrides config)")
	cmd.Flags().IntSliceVar(&flags.portfolioSizes, "portfolio-sizes", nil, "Portfolio sizes to compare (overrides config)")
	cmd.Flags().Float64Var(&flags.years, "years", 0, "Holding period in years (overrides config)")
	cmd.Flags().Int64Var(&flags.seed, "seed", 0, "Random seed, 0 for a clock-derived seed (overrides config)")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "Parallel workers (overrides config)")
	cmd.Flags().StringVar(&flags.outputDir, "output-dir", "", "Directory for summary.json and simulation_results.csv (overrides config)")
	cmd.Flags().BoolVar(&flags.csv, "csv", false, "Also export raw records to simulation_results.csv (overrides config)")
	cmd.Flags().BoolVarP(&flags.quiet, "quiet", "q", false, "Do not print the summary tables")

	return cmd
}

func applyRunFlags(cmd *cobra.Command, flags *runFlags) {
	sim := &cfg.Simulation
	if cmd.Flags().Changed("runs") {
		sim.Runs = flags.runs
	}
	if cmd.Flags().Changed("universe-size") {
		sim.UniverseSize = flags.universeSize
	}
	if cmd.Flags().Changed("portfolio-sizes") {
		sim.PortfolioSizes = flags.portfolioSizes
	}
	if cmd.Flags().Changed("years") {
		sim.Years = flags.years
	}
	if cmd.Flags().Changed("seed") {
		sim.Seed = flags.seed
	}
	if cmd.Flags().Changed("workers") {
		sim.Workers = flags.workers
	}
	if cmd.Flags().Changed("output-dir") {
		cfg.Output.Dir = flags.outputDir
	}
	if cmd.Flags().Changed("csv") {
		cfg.Output.CSVEnabled = flags.csv
	}
}

func runBatch(cmd *cobra.Command, flags *runFlags) error {
	applyRunFlags(cmd, flags)

	params, err := simulation.FromConfig(&cfg.Simulation)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := newSimulationService()
	out, err := svc.Execute(ctx, params)
	if err != nil {
		if out != nil && out.Batch != nil && out.Batch.Completed() > 0 && !flags.quiet {
			fmt.Fprintln(cmd.OutOrStdout(), report.GenerateConsoleReport(out.Summary))
		}
		return fmt.Errorf("simulation batch: %w", err)
	}

	switch {
	case out.Persisted:
		appLog.WithField("run_id", out.RunID).Info("Results persisted")
	case errors.Is(out.PersistErr, models.ErrPersistenceUnavailable):
		appLog.WithError(out.PersistErr).Warn("Results kept in memory only")
	}

	if cfg.Output.JSONEnabled || cfg.Output.CSVEnabled {
		if _, err := svc.Export(out, cfg.Output); err != nil {
			return err
		}
	}

	if !flags.quiet {
		fmt.Fprintln(cmd.OutOrStdout(), report.GenerateConsoleReport(out.Summary))
	}
	return nil
}
