package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/angel5000/internal/health"
	"github.com/yourusername/angel5000/internal/metrics"
	"github.com/yourusername/angel5000/internal/scheduler"
	"github.com/yourusername/angel5000/internal/service"
	"github.com/yourusername/angel5000/internal/simulation"
)

func newScheduleCmd() *cobra.Command {
	var (
		cronExpr   string
		runOnStart bool
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run simulation batches on a cron schedule and serve health and metrics endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("cron") {
				cfg.Schedule.Cron = cronExpr
			}
			return runScheduler(cmd.Context(), runOnStart, timeout)
		},
	}

	cmd.Flags().StringVar(&cronExpr, "cron", "", "Cron expression or descriptor (overrides config)")
	cmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "Run one batch immediately after start")
	cmd.Flags().DurationVar(&timeout, "job-timeout", 12*time.Hour, "Maximum duration of one batch")

	return cmd
}

func runScheduler(parent context.Context, runOnStart bool, timeout time.Duration) error {
	params, err := simulation.FromConfig(&cfg.Simulation)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	healthCfg := health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Commit:      GitCommit,
		Port:        strconv.Itoa(cfg.Metrics.Port),
		Logger:      appLog,
	}
	if db != nil {
		healthCfg.DB = db
	}
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		healthCfg.Metrics = metrics.Handler()
		healthCfg.MetricsPath = cfg.Metrics.Path
	}
	if cfg.Metrics.Port == 0 {
		healthCfg.Port = ""
	}

	healthServer := health.NewServer(healthCfg)
	if err := healthServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start health server: %w", err)
	}

	svc := newSimulationService()
	sched := scheduler.NewScheduler(svc, appLog)
	sched.SetJobTimeout(timeout)

	onComplete := func(out *service.Outcome, err error) {
		status := health.BatchStatus{FinishedAt: time.Now().UTC()}
		if err != nil {
			status.Error = err.Error()
		}
		if out != nil && out.Batch != nil {
			status.Runs = out.Batch.Completed()
			status.Persisted = out.Persisted
			if out.Persisted {
				status.RunID = out.RunID.String()
			}
			if err == nil && (cfg.Output.JSONEnabled || cfg.Output.CSVEnabled) {
				if _, exportErr := svc.Export(out, cfg.Output); exportErr != nil {
					appLog.WithError(exportErr).Warn("Failed to export scheduled batch")
				}
			}
		}
		healthServer.SetLastBatch(status)
	}

	entryID, err := sched.ScheduleBatch(cfg.Schedule.Cron, params, onComplete)
	if err != nil {
		return err
	}
	if err := sched.Start(); err != nil {
		return err
	}
	healthServer.SetReady(true)

	appLog.WithFields(logrus.Fields{
		"cron":     cfg.Schedule.Cron,
		"next_run": sched.GetNextRun(),
	}).Info("Scheduler running")

	if runOnStart {
		go func() {
			if err := sched.RunNow(entryID); err != nil {
				appLog.WithError(err).Error("Failed to run initial batch")
			}
		}()
	}

	<-ctx.Done()
	appLog.Info("Shutdown signal received")
	healthServer.SetReady(false)

	if err := sched.Stop(); err != nil {
		appLog.WithError(err).Warn("Scheduler did not stop cleanly")
	}
	return nil
}
