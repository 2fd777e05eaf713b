package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"toolshare-backend/internal/config"
	"toolshare-backend/internal/jobs"
	"toolshare-backend/internal/logger"
	"toolshare-backend/internal/repository/postgres"
	"toolshare-backend/internal/scheduler"
	"toolshare-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'activate-started-rentals', 'all-nightly')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Store.Type != config.StoreTypePostgres {
		log.Fatalf("The cronjob runner needs the postgres store, got %q", cfg.Store.Type)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting ToolShare Cronjob Runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Services
	messagingService := service.NewMessagingService(store.Chats)
	sinks := service.MultiSink{messagingService}

	jobServices := &jobs.Services{Messaging: messagingService}
	if cfg.SendGrid.Enabled {
		emailService := service.NewEmailService(store.Users, cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
		jobServices.Email = emailService
		sinks = append(sinks, emailService)
	}

	jobServices.Booking = service.NewBookingService(
		store.Listings,
		store.Rentals,
		store.Blackouts,
		store.Users,
		store.Tx,
		sinks,
		cfg.Booking.PlatformDepositCents,
	)

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(store, jobServices, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler, err := scheduler.NewScheduler(jobRunner)
	if err != nil {
		log.Fatalf("Failed to register jobs: %v", err)
	}

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "activate-started-rentals":
		jobRunner.ActivateStartedRentals()
	case "expire-stale-pending-requests":
		jobRunner.ExpireStalePendingRequests()
	case "send-overdue-reminders":
		jobRunner.SendOverdueReminders()
	case "all-nightly":
		jobRunner.RunAllNightlyJobs()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - activate-started-rentals\n")
		fmt.Printf("  - expire-stale-pending-requests\n")
		fmt.Printf("  - send-overdue-reminders\n")
		fmt.Printf("  - all-nightly\n")
		os.Exit(1)
	}
}
