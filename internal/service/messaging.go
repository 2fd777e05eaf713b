package service

import (
	"context"
	"fmt"
	"strconv"

	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/logger"
	"toolshare-backend/internal/repository"
)

type messagingService struct {
	chatRepo repository.ChatRepository
}

// NewMessagingService turns booking events into system messages in the chat
// thread shared by owner and renter for a listing.
func NewMessagingService(chatRepo repository.ChatRepository) MessagingService {
	return &messagingService{chatRepo: chatRepo}
}

func formatCents(c int32) string {
	sign := ""
	if c < 0 {
		sign, c = "-", -c
	}
	return fmt.Sprintf("%s$%d.%02d", sign, c/100, c%100)
}

func rentalAttributes(rt domain.Rental, event string) map[string]string {
	return map[string]string{
		"type":       event,
		"rental_id":  strconv.Itoa(int(rt.ID)),
		"listing_id": strconv.Itoa(int(rt.ListingID)),
	}
}

func (s *messagingService) Publish(ctx context.Context, event domain.Event) error {
	logger.EnterMethod("messagingService.Publish", "event", event.EventName(), "rentalID", event.AggregateID())

	var err error
	switch e := event.(type) {
	case domain.BookingRequested:
		err = s.onRequested(ctx, e)
	case domain.BookingApproved:
		err = s.notify(ctx, e.Rental, e.Rental.RenterID, event.EventName(),
			fmt.Sprintf("Your booking #%d for %s was approved. Total due: %s.", e.Rental.ID, e.Rental.Range(), formatCents(e.Rental.TotalPaidCents)))
	case domain.BookingDeclined:
		body := fmt.Sprintf("Your booking request #%d for %s was declined.", e.Rental.ID, e.Rental.Range())
		if e.Reason != "" {
			body += " Reason: " + e.Reason + "."
		}
		err = s.notify(ctx, e.Rental, e.Rental.RenterID, event.EventName(), body)
	case domain.BookingRescheduled:
		err = s.notify(ctx, e.Rental, e.Rental.OwnerID, event.EventName(),
			fmt.Sprintf("Booking #%d moved from %s..%s to %s.", e.Rental.ID, e.PrevStart, e.PrevEnd, e.Rental.Range()))
	case domain.BookingCancelled:
		err = s.notify(ctx, e.Rental, e.Rental.OwnerID, event.EventName(),
			fmt.Sprintf("Booking #%d for %s was cancelled by the renter.", e.Rental.ID, e.Rental.Range()))
	default:
		logger.Debug("No chat message for event", "event", event.EventName())
	}

	if err != nil {
		logger.ExitMethodWithError("messagingService.Publish", err, "event", event.EventName())
		return err
	}
	logger.ExitMethod("messagingService.Publish", "event", event.EventName())
	return nil
}

// onRequested writes one message to the owner and one to the renter.
func (s *messagingService) onRequested(ctx context.Context, e domain.BookingRequested) error {
	rt := e.Rental
	thread, err := s.chatRepo.GetOrCreateThread(ctx, rt.OwnerID, rt.RenterID, rt.ListingID)
	if err != nil {
		return fmt.Errorf("get chat thread: %w", err)
	}

	earnings := rt.RentalFeeCents
	msgs := []domain.ChatMessage{
		{
			ThreadID:    thread.ID,
			RecipientID: rt.OwnerID,
			Kind:        domain.MessageKindSystem,
			Body: fmt.Sprintf("%s requested %q for %s (%d days). Potential earnings: %s.",
				e.Renter.Name, e.Listing.Title, rt.Range(), rt.TotalDays, formatCents(earnings)),
			Attributes: rentalAttributes(rt, e.EventName()),
		},
		{
			ThreadID:    thread.ID,
			RecipientID: rt.RenterID,
			Kind:        domain.MessageKindSystem,
			Body: fmt.Sprintf("Your request for %q (%s) was sent to %s. Total due if approved: %s including a %s refundable deposit.",
				e.Listing.Title, rt.Range(), e.Owner.Name, formatCents(rt.TotalPaidCents), formatCents(rt.DepositCents)),
			Attributes: rentalAttributes(rt, e.EventName()),
		},
	}
	for i := range msgs {
		if err := s.chatRepo.CreateMessage(ctx, &msgs[i]); err != nil {
			return fmt.Errorf("create chat message: %w", err)
		}
	}
	return nil
}

func (s *messagingService) notify(ctx context.Context, rt domain.Rental, recipientID int32, event, body string) error {
	thread, err := s.chatRepo.GetOrCreateThread(ctx, rt.OwnerID, rt.RenterID, rt.ListingID)
	if err != nil {
		return fmt.Errorf("get chat thread: %w", err)
	}
	msg := &domain.ChatMessage{
		ThreadID:    thread.ID,
		RecipientID: recipientID,
		Kind:        domain.MessageKindSystem,
		Body:        body,
		Attributes:  rentalAttributes(rt, event),
	}
	if err := s.chatRepo.CreateMessage(ctx, msg); err != nil {
		return fmt.Errorf("create chat message: %w", err)
	}
	return nil
}

func (s *messagingService) SendOverdueReminder(ctx context.Context, rt domain.Rental, daysOverdue int) error {
	return s.notify(ctx, rt, rt.RenterID, "rental.overdue",
		fmt.Sprintf("Booking #%d was due back on %s and is %d day(s) overdue. Please return the item.", rt.ID, rt.EndDate, daysOverdue))
}
