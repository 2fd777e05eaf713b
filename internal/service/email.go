package service

import (
	"context"
	"fmt"

	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/logger"
	"toolshare-backend/internal/repository"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type emailService struct {
	userRepo  repository.UserRepository
	fromEmail string
	fromName  string
	send      func(msg *mail.SGMailV3) error
}

// NewEmailService sends booking notifications through SendGrid.
func NewEmailService(userRepo repository.UserRepository, apiKey, fromEmail, fromName string) EmailService {
	client := sendgrid.NewSendClient(apiKey)
	return &emailService{
		userRepo:  userRepo,
		fromEmail: fromEmail,
		fromName:  fromName,
		send: func(msg *mail.SGMailV3) error {
			response, err := client.Send(msg)
			if err != nil {
				return fmt.Errorf("failed to send email: %w", err)
			}
			if response.StatusCode >= 400 {
				return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
			}
			return nil
		},
	}
}

func (s *emailService) SendEmail(ctx context.Context, toEmail, toName, subject, body string) error {
	logger.ExternalServiceCall("sendgrid", "Send", "to", toEmail, "subject", subject)
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	err := s.send(mail.NewSingleEmail(from, subject, to, body, ""))
	logger.ExternalServiceResult("sendgrid", "Send", err, "to", toEmail)
	return err
}

func (s *emailService) Publish(ctx context.Context, event domain.Event) error {
	switch e := event.(type) {
	case domain.BookingRequested:
		return s.SendEmail(ctx, e.Owner.Email, e.Owner.Name,
			fmt.Sprintf("New booking request: %s", e.Listing.Title),
			fmt.Sprintf("Hello %s,\n\n%s wants to rent %q from %s to %s (%d days).\nPotential earnings: %s.\n\nOpen the app to approve or decline.",
				e.Owner.Name, e.Renter.Name, e.Listing.Title, e.Rental.StartDate, e.Rental.EndDate, e.Rental.TotalDays,
				formatCents(e.Rental.RentalFeeCents)))
	case domain.BookingApproved:
		return s.mailRenter(ctx, e.Rental, "Your booking was approved",
			fmt.Sprintf("Your booking #%d for %s was approved. Total due: %s.", e.Rental.ID, e.Rental.Range(), formatCents(e.Rental.TotalPaidCents)))
	case domain.BookingDeclined:
		body := fmt.Sprintf("Your booking request #%d for %s was declined.", e.Rental.ID, e.Rental.Range())
		if e.Reason != "" {
			body += "\nReason: " + e.Reason
		}
		return s.mailRenter(ctx, e.Rental, "Your booking request was declined", body)
	}
	return nil
}

func (s *emailService) mailRenter(ctx context.Context, rt domain.Rental, subject, body string) error {
	renter, err := s.userRepo.GetByID(ctx, rt.RenterID)
	if err != nil {
		return fmt.Errorf("look up renter: %w", err)
	}
	return s.SendEmail(ctx, renter.Email, renter.Name, subject, fmt.Sprintf("Hello %s,\n\n%s", renter.Name, body))
}
