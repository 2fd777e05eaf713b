package service

import (
	"context"

	"toolshare-backend/internal/availability"
	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/logger"
	"toolshare-backend/internal/repository"
	"toolshare-backend/internal/utils"
)

type availabilityService struct {
	listingRepo  repository.ListingRepository
	blackoutRepo repository.BlackoutRepository
	txRunner     repository.TxRunner
}

func NewAvailabilityService(listingRepo repository.ListingRepository, blackoutRepo repository.BlackoutRepository, txRunner repository.TxRunner) AvailabilityService {
	return &availabilityService{listingRepo: listingRepo, blackoutRepo: blackoutRepo, txRunner: txRunner}
}

func (s *availabilityService) authorizeOwner(ctx context.Context, ownerID, listingID int32) error {
	view, err := s.listingRepo.GetView(ctx, listingID)
	if err != nil {
		return err
	}
	if view.Listing.OwnerID != ownerID {
		return &domain.AuthorizationError{ActorID: ownerID, Action: "manage blackouts of this listing"}
	}
	return nil
}

// AddBlackout blocks dates on a listing. Dates already held by a confirmed
// rental cannot be blacked out.
func (s *availabilityService) AddBlackout(ctx context.Context, ownerID, listingID int32, start, end utils.Date, reason string) (*domain.BlackoutRange, error) {
	logger.EnterMethod("availabilityService.AddBlackout", "listingID", listingID, "start", start, "end", end)

	rng, err := validateRange(start, end, utils.Date{})
	if err != nil {
		logger.ExitMethodWithError("availabilityService.AddBlackout", err)
		return nil, err
	}
	if err := s.authorizeOwner(ctx, ownerID, listingID); err != nil {
		logger.ExitMethodWithError("availabilityService.AddBlackout", err)
		return nil, err
	}

	b := &domain.BlackoutRange{ListingID: listingID, StartDate: rng.Start, EndDate: rng.End, Reason: reason}
	err = s.txRunner.WithListingLock(ctx, listingID, func(ctx context.Context, tx repository.BookingTx) error {
		confirmed, err := tx.Rentals().ListByListing(ctx, listingID, domain.OccupancyStatuses...)
		if err != nil {
			return err
		}
		if err := availability.New(listingID, nil, confirmed).Check(rng); err != nil {
			return err
		}
		return tx.Blackouts().Create(ctx, b)
	})
	if err != nil {
		logger.ExitMethodWithError("availabilityService.AddBlackout", err)
		return nil, err
	}
	logger.ExitMethod("availabilityService.AddBlackout", "blackoutID", b.ID)
	return b, nil
}

func (s *availabilityService) RemoveBlackout(ctx context.Context, ownerID, blackoutID int32) error {
	b, err := s.blackoutRepo.GetByID(ctx, blackoutID)
	if err != nil {
		return err
	}
	if err := s.authorizeOwner(ctx, ownerID, b.ListingID); err != nil {
		return err
	}
	return s.blackoutRepo.Delete(ctx, blackoutID)
}

func (s *availabilityService) ListBlackouts(ctx context.Context, listingID int32) ([]domain.BlackoutRange, error) {
	return s.blackoutRepo.ListByListing(ctx, listingID)
}
