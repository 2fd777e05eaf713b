package jobs

import (
	"context"
	"fmt"

	"toolshare-backend/internal/classify"
	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/logger"
	"toolshare-backend/internal/utils"
)

// SendOverdueReminders reminds renters of rentals the owner sees as overdue
// and that have not been marked returned yet.
func (jr *JobRunner) SendOverdueReminders() {
	jr.runWithRecovery("SendOverdueReminders", func() {
		count, err := jr.sendOverdueReminders(context.Background())
		if err != nil {
			logger.Error("Failed to send overdue reminders", "error", err)
			return
		}
		logger.Info("Sent overdue reminders", "count", count)
	})
}

func (jr *JobRunner) sendOverdueReminders(ctx context.Context) (int, error) {
	now := jr.clock()
	today := utils.DateOf(now)

	rentals, err := jr.store.Rentals.ListByStatus(ctx, domain.RentalStatusApproved, domain.RentalStatusActive)
	if err != nil {
		return 0, fmt.Errorf("list outstanding rentals: %w", err)
	}

	count := 0
	for _, entry := range classify.Dashboard(rentals, now, classify.ViewOwner) {
		if entry.Display != classify.StatusOverdue {
			continue
		}
		rt := entry.Rental
		daysOverdue := rt.EndDate.DaysUntil(today)

		if err := jr.services.Messaging.SendOverdueReminder(ctx, rt, daysOverdue); err != nil {
			logger.Error("Failed to send overdue reminder",
				"rental_id", rt.ID,
				"renter_id", rt.RenterID,
				"error", err)
			continue
		}
		jr.emailOverdueReminder(ctx, rt, daysOverdue)

		count++
		logger.Debug("Sent overdue reminder",
			"rental_id", rt.ID,
			"renter_id", rt.RenterID,
			"days_overdue", daysOverdue)
	}
	return count, nil
}

func (jr *JobRunner) emailOverdueReminder(ctx context.Context, rt domain.Rental, daysOverdue int) {
	if jr.services.Email == nil {
		return
	}
	renter, err := jr.store.Users.GetByID(ctx, rt.RenterID)
	if err != nil {
		logger.Error("Failed to look up renter for overdue email", "rental_id", rt.ID, "error", err)
		return
	}

	subject := "Reminder: Overdue Tool Return"
	body := fmt.Sprintf(`Dear %s,

This is a reminder that your rental (Rental ID: %d) was due on %s and is now %d day(s) overdue.

Please return the tool as soon as possible.

Thank you,
ToolShare Team`, renter.Name, rt.ID, rt.EndDate, daysOverdue)

	if err := jr.services.Email.SendEmail(ctx, renter.Email, renter.Name, subject, body); err != nil {
		logger.Error("Failed to send overdue reminder email",
			"rental_id", rt.ID,
			"renter_id", rt.RenterID,
			"email", renter.Email,
			"error", err)
	}
}
