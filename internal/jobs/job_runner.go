package jobs

import (
	"time"

	"toolshare-backend/internal/config"
	"toolshare-backend/internal/logger"
	"toolshare-backend/internal/repository"
	"toolshare-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	store    *repository.Store
	services *Services
	config   *config.Config
	clock    func() time.Time
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Booking   service.BookingService
	Messaging service.MessagingService
	Email     service.EmailService // optional
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(store *repository.Store, services *Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		store:    store,
		services: services,
		config:   cfg,
		clock:    time.Now,
	}
}

// Config returns the configuration the runner was built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAllNightlyJobs runs all nightly jobs (for manual execution)
func (jr *JobRunner) RunAllNightlyJobs() {
	jr.ActivateStartedRentals()
	jr.ExpireStalePendingRequests()
	jr.SendOverdueReminders()
}
