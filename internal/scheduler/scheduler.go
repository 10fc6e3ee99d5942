// Package scheduler runs simulation batches on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/angel5000/internal/service"
	"github.com/yourusername/angel5000/internal/simulation"
)

// BatchExecutor runs one simulation batch
type BatchExecutor interface {
	Execute(ctx context.Context, params simulation.Params) (*service.Outcome, error)
}

// CompletionFunc receives the outcome of every scheduled batch
type CompletionFunc func(out *service.Outcome, err error)

// Scheduler manages scheduled simulation jobs
type Scheduler struct {
	cron            *cron.Cron
	executor        BatchExecutor
	logger          *logrus.Logger
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	jobTimeout      time.Duration
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler. Overlapping triggers of the same job
// are skipped while a batch is still running.
func NewScheduler(executor BatchExecutor, logger *logrus.Logger) *Scheduler {
	cronLogger := cron.PrintfLogger(logger.WithField("component", "scheduler"))
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		executor:        executor,
		logger:          logger,
		jobIDs:          make([]cron.EntryID, 0),
		jobTimeout:      12 * time.Hour,
		gracefulTimeout: 30 * time.Second,
	}
}

// SetJobTimeout bounds how long a single scheduled batch may run
func (s *Scheduler) SetJobTimeout(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d > 0 {
		s.jobTimeout = d
	}
}

// ScheduleBatch schedules a simulation batch with a standard cron expression
// or descriptor such as "@daily". onComplete may be nil.
func (s *Scheduler) ScheduleBatch(cronExpression string, params simulation.Params, onComplete CompletionFunc) (cron.EntryID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return 0, fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if err := params.Validate(); err != nil {
		return 0, err
	}

	entryID, err := s.cron.AddFunc(cronExpression, s.batchJob(params, onComplete))
	if err != nil {
		return 0, fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{
		"cron":     cronExpression,
		"entry_id": entryID,
		"runs":     params.Runs,
	}).Info("Scheduled simulation batch")

	return entryID, nil
}

func (s *Scheduler) batchJob(params simulation.Params, onComplete CompletionFunc) func() {
	return func() {
		s.mu.RLock()
		timeout := s.jobTimeout
		s.mu.RUnlock()

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		s.logger.WithField("runs", params.Runs).Info("Starting scheduled simulation batch")

		out, err := s.executor.Execute(ctx, params)
		entry := s.logger.WithField("component", "scheduler")
		switch {
		case err != nil:
			entry.WithError(err).Error("Scheduled simulation batch failed")
		case out.PersistErr != nil:
			entry.WithError(out.PersistErr).Warn("Scheduled simulation batch completed without persistence")
		default:
			entry.WithFields(logrus.Fields{
				"run_id":  out.RunID,
				"records": out.RecordsSaved,
			}).Info("Scheduled simulation batch completed")
		}

		if onComplete != nil {
			onComplete(out, err)
		}
	}
}

// RunNow executes the job of a scheduled entry synchronously
func (s *Scheduler) RunNow(id cron.EntryID) error {
	entry := s.cron.Entry(id)
	if !entry.Valid() {
		return fmt.Errorf("unknown job: %d", id)
	}
	entry.WrappedJob.Run()
	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop stops the scheduler and waits for running batches up to the graceful timeout
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	done := s.cron.Stop()
	s.isRunning = false
	timeout := s.gracefulTimeout
	s.mu.Unlock()

	select {
	case <-done.Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("scheduler stop timed out after %s", timeout)
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}

	return nextRun
}

// Entries returns information about scheduled entries
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			entries = append(entries, entry)
		}
	}

	return entries
}
