package jobs

import (
	"context"

	"toolshare-backend/internal/logger"
)

// ActivateStartedRentals moves approved rentals whose start date has arrived to active
func (jr *JobRunner) ActivateStartedRentals() {
	jr.runWithRecovery("ActivateStartedRentals", func() {
		count, err := jr.services.Booking.ActivateStartedRentals(context.Background(), jr.clock())
		if err != nil {
			logger.Error("Failed to activate started rentals", "error", err)
			return
		}
		logger.Info("Activated started rentals", "count", count)
	})
}

// ExpireStalePendingRequests declines pending requests whose start date passed unanswered
func (jr *JobRunner) ExpireStalePendingRequests() {
	jr.runWithRecovery("ExpireStalePendingRequests", func() {
		count, err := jr.services.Booking.ExpireStalePendingRequests(context.Background(), jr.clock())
		if err != nil {
			logger.Error("Failed to expire stale pending requests", "error", err)
			return
		}
		logger.Info("Expired stale pending requests", "count", count)
	})
}
