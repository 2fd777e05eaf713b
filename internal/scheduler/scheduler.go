package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"

	"toolshare-backend/internal/jobs"
	"toolshare-backend/internal/logger"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
}

// NewScheduler creates a new scheduler with the provided job runner.
// It fails if any configured cron spec does not parse.
func NewScheduler(jobRunner *jobs.JobRunner) (*Scheduler, error) {
	// Create cron with UTC timezone and seconds precision
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
	}

	if err := s.registerJobs(); err != nil {
		return nil, err
	}
	return s, nil
}

// registerJobs registers all scheduled jobs with the cron scheduler
func (s *Scheduler) registerJobs() error {
	cfg := s.jobs.Config().Scheduler

	entries := []struct {
		name string
		spec string
		fn   func()
	}{
		{"ActivateStartedRentals", cfg.ActivateStartedRentals, s.jobs.ActivateStartedRentals},
		{"ExpireStalePendingRequests", cfg.ExpireStalePendingRequests, s.jobs.ExpireStalePendingRequests},
		{"SendOverdueReminders", cfg.SendOverdueReminders, s.jobs.SendOverdueReminders},
	}
	for _, e := range entries {
		if _, err := s.cron.AddFunc(e.spec, e.fn); err != nil {
			logger.Error("Failed to register job", "job", e.name, "spec", e.spec, "error", err)
			return err
		}
	}

	logger.Info("All cron jobs registered successfully", "count", len(entries))
	return nil
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
	logger.Info("Cron scheduler started successfully")
}

// Stop gracefully stops the cron scheduler
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}

// IsRunning returns true if the scheduler is running
func (s *Scheduler) IsRunning() bool {
	return len(s.cron.Entries()) > 0
}
