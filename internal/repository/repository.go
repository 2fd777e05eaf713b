package repository

import (
	"context"
	"errors"

	"toolshare-backend/internal/domain"
)

// ErrConflict is returned when the store aborted a transaction because a
// concurrent one touched the same rows. The caller may retry.
var ErrConflict = errors.New("concurrent update conflict")

type UserRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.User, error)
}

type CategoryRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
}

type ListingRepository interface {
	// GetView returns the listing joined with its category in one read.
	GetView(ctx context.Context, id int32) (*domain.ListingView, error)
	ListByOwner(ctx context.Context, ownerID int32) ([]domain.Listing, error)
	UpdateRiskTier(ctx context.Context, listingID int32, categoryID int32, override, suggested *int32) error
}

type BlackoutRepository interface {
	Create(ctx context.Context, b *domain.BlackoutRange) error
	GetByID(ctx context.Context, id int32) (*domain.BlackoutRange, error)
	Delete(ctx context.Context, id int32) error
	ListByListing(ctx context.Context, listingID int32) ([]domain.BlackoutRange, error)
}

type RentalRepository interface {
	Create(ctx context.Context, rental *domain.Rental) error
	GetByID(ctx context.Context, id int32) (*domain.Rental, error)
	Update(ctx context.Context, rental *domain.Rental) error
	ListByRenter(ctx context.Context, renterID int32) ([]domain.Rental, error)
	ListByOwner(ctx context.Context, ownerID int32) ([]domain.Rental, error)
	// ListByListing returns the listing's rentals in any of statuses, or all
	// of them when statuses is empty.
	ListByListing(ctx context.Context, listingID int32, statuses ...domain.RentalStatus) ([]domain.Rental, error)
	ListByStatus(ctx context.Context, statuses ...domain.RentalStatus) ([]domain.Rental, error)
}

type ChatRepository interface {
	// GetOrCreateThread returns the single thread for the triple, creating it on first use.
	GetOrCreateThread(ctx context.Context, ownerID, renterID, listingID int32) (*domain.ChatThread, error)
	CreateMessage(ctx context.Context, msg *domain.ChatMessage) error
	ListMessages(ctx context.Context, threadID string) ([]domain.ChatMessage, error)
}

// BookingTx is the view of the store inside a listing-locked transaction.
type BookingTx interface {
	Rentals() RentalRepository
	Blackouts() BlackoutRepository
}

// TxRunner runs fn while holding the exclusive booking lock of one listing.
// All writes made through tx commit together or not at all. A missing
// listing yields a NotFoundError before fn runs.
type TxRunner interface {
	WithListingLock(ctx context.Context, listingID int32, fn func(ctx context.Context, tx BookingTx) error) error
}

// Store bundles the repositories one backend provides.
type Store struct {
	Users      UserRepository
	Categories CategoryRepository
	Listings   ListingRepository
	Blackouts  BlackoutRepository
	Rentals    RentalRepository
	Chats      ChatRepository
	Tx         TxRunner
}
