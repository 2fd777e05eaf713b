package service

import (
	"context"
	"time"

	"toolshare-backend/internal/categorizer"
	"toolshare-backend/internal/classify"
	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/pricing"
	"toolshare-backend/internal/utils"
)

type RequestBookingInput struct {
	ListingID int32
	RenterID  int32
	StartDate utils.Date
	EndDate   utils.Date
}

type BookingService interface {
	RequestBooking(ctx context.Context, in RequestBookingInput, now time.Time) (*domain.Rental, error)
	ApproveBooking(ctx context.Context, rentalID, ownerID int32) (*domain.Rental, error)
	DeclineBooking(ctx context.Context, rentalID, ownerID int32, reason string) (*domain.Rental, error)
	Reschedule(ctx context.Context, rentalID, actorID int32, newStart, newEnd utils.Date, now time.Time) (*domain.Rental, error)
	Cancel(ctx context.Context, rentalID, actorID int32, now time.Time) error
	MarkReturned(ctx context.Context, rentalID, actorID int32, now time.Time) (*domain.Rental, error)
	ConfirmReturn(ctx context.Context, rentalID, ownerID int32) (*domain.Rental, error)

	GetRental(ctx context.Context, actorID, rentalID int32) (*domain.Rental, error)
	QuotePrice(ctx context.Context, listingID int32, start, end utils.Date) (*pricing.Quote, error)
	GetUnavailableDates(ctx context.Context, listingID int32, window utils.DateRange, now time.Time) ([]utils.Date, error)
	RenterDashboard(ctx context.Context, renterID int32, now time.Time) ([]classify.Entry, error)
	OwnerDashboard(ctx context.Context, ownerID int32, now time.Time) ([]classify.Entry, error)

	// Housekeeping used by scheduled jobs.
	ActivateStartedRentals(ctx context.Context, now time.Time) (int, error)
	ExpireStalePendingRequests(ctx context.Context, now time.Time) (int, error)
}

type AvailabilityService interface {
	AddBlackout(ctx context.Context, ownerID, listingID int32, start, end utils.Date, reason string) (*domain.BlackoutRange, error)
	RemoveBlackout(ctx context.Context, ownerID, blackoutID int32) error
	ListBlackouts(ctx context.Context, listingID int32) ([]domain.BlackoutRange, error)
}

// TierDraft is the listing form state the tier preview is computed from.
type TierDraft struct {
	Title      string
	CategoryID int32 // zero lets the categorizer pick
	ManualTier *int32
}

type TierPreview struct {
	CategoryID    int32                   `json:"category_id"`
	AutoSuggested bool                    `json:"auto_suggested"`
	Suggestion    *categorizer.Suggestion `json:"suggestion,omitempty"`
	SuggestedTier *int32                  `json:"suggested_tier,omitempty"`
	Resolution    pricing.Resolution      `json:"resolution"`
}

type ListingService interface {
	PreviewTier(ctx context.Context, draft TierDraft) (*TierPreview, error)
	UpdateListingTier(ctx context.Context, ownerID, listingID int32, draft TierDraft) (*domain.ListingView, error)
	GetListing(ctx context.Context, listingID int32) (*domain.ListingView, error)
}

// EventSink receives lifecycle events after the transition has committed.
type EventSink interface {
	Publish(ctx context.Context, event domain.Event) error
}

type MessagingService interface {
	EventSink
	SendOverdueReminder(ctx context.Context, rental domain.Rental, daysOverdue int) error
}

type EmailService interface {
	EventSink
	SendEmail(ctx context.Context, toEmail, toName, subject, body string) error
}
