package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yourusername/angel5000/internal/report"
)

func newReportCmd() *cobra.Command {
	var (
		runID string
		list  int
		out   string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the summary tables of a stored run",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newSimulationService()

			if list > 0 {
				runs, err := svc.RecentRuns(cmd.Context(), list)
				if err != nil {
					return err
				}
				for _, run := range runs {
					fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  runs=%d universe=%d sizes=%v seed=%d\n",
						run.ID, run.CreatedAt.Format("2006-01-02 15:04:05"), run.NSimulations, run.NUniverse, run.PortfolioSizes, run.Seed)
				}
				return nil
			}

			id, err := uuid.Parse(runID)
			if err != nil {
				return fmt.Errorf("invalid --run-id %q: %w", runID, err)
			}

			batch, summary, err := svc.LoadRun(cmd.Context(), id)
			if err != nil {
				return err
			}

			if out != "" {
				if _, err := report.ExportAll(out, summary, batch.Records(), true, true); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), report.GenerateConsoleReport(summary))
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run-id", "", "ID of the stored simulation run")
	cmd.Flags().IntVar(&list, "list", 0, "List the most recent N stored runs instead")
	cmd.Flags().StringVar(&out, "output-dir", "", "Also export summary.json and simulation_results.csv here")
	cmd.MarkFlagsOneRequired("run-id", "list")
	cmd.MarkFlagsMutuallyExclusive("run-id", "list")

	return cmd
}
