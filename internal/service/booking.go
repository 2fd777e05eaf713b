package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"toolshare-backend/internal/availability"
	"toolshare-backend/internal/classify"
	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/logger"
	"toolshare-backend/internal/pricing"
	"toolshare-backend/internal/repository"
	"toolshare-backend/internal/utils"
)

// AutoDeclineReason is recorded on pending requests evicted by an approval.
const AutoDeclineReason = "conflicts with approved booking"

// ExpiredReason is recorded on pending requests whose start date passed unanswered.
const ExpiredReason = "request expired"

// DefaultAvailabilityWindow is used when GetUnavailableDates gets an empty window.
const DefaultAvailabilityWindow = 90

// MaxAvailabilityWindowDays bounds the inclusive window GetUnavailableDates
// expands day by day.
const MaxAvailabilityWindowDays = 366

type bookingService struct {
	listingRepo  repository.ListingRepository
	rentalRepo   repository.RentalRepository
	blackoutRepo repository.BlackoutRepository
	userRepo     repository.UserRepository
	txRunner     repository.TxRunner
	sink         EventSink

	platformDepositCents int32
	clock                func() time.Time
}

func NewBookingService(
	listingRepo repository.ListingRepository,
	rentalRepo repository.RentalRepository,
	blackoutRepo repository.BlackoutRepository,
	userRepo repository.UserRepository,
	txRunner repository.TxRunner,
	sink EventSink,
	platformDepositCents int32,
) BookingService {
	return &bookingService{
		listingRepo:          listingRepo,
		rentalRepo:           rentalRepo,
		blackoutRepo:         blackoutRepo,
		userRepo:             userRepo,
		txRunner:             txRunner,
		sink:                 sink,
		platformDepositCents: platformDepositCents,
		clock:                time.Now,
	}
}

func (s *bookingService) depositFor(l domain.Listing) int32 {
	if l.DepositCents != nil {
		return *l.DepositCents
	}
	return s.platformDepositCents
}

// validateRange checks start <= end and, when today is set, that the range
// does not begin in the past.
func validateRange(start, end utils.Date, today utils.Date) (utils.DateRange, error) {
	if start.IsZero() {
		return utils.DateRange{}, domain.NewValidationError("start_date", "is required")
	}
	if end.IsZero() {
		return utils.DateRange{}, domain.NewValidationError("end_date", "is required")
	}
	r, err := utils.NewDateRange(start, end)
	if err != nil {
		return utils.DateRange{}, domain.NewValidationError("end_date", "must not be before start date %s", start)
	}
	if !today.IsZero() && r.Start.Before(today) {
		return utils.DateRange{}, domain.NewValidationError("start_date", "%s is in the past", r.Start)
	}
	return r, nil
}

func (s *bookingService) loadActiveListing(ctx context.Context, listingID int32) (*domain.ListingView, error) {
	view, err := s.listingRepo.GetView(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if view.Listing.IsArchived() {
		return nil, &domain.NotFoundError{Entity: "listing", ID: listingID}
	}
	return view, nil
}

func (s *bookingService) quote(view *domain.ListingView, days int32) (pricing.Quote, error) {
	res := pricing.Resolve(pricing.InputsForListing(*view))
	return pricing.ComputePrice(view.Listing.DailyPriceCents, days, res, s.depositFor(view.Listing))
}

func (s *bookingService) RequestBooking(ctx context.Context, in RequestBookingInput, now time.Time) (*domain.Rental, error) {
	logger.EnterMethod("bookingService.RequestBooking", "listingID", in.ListingID, "renterID", in.RenterID,
		"start", in.StartDate, "end", in.EndDate)

	rng, err := validateRange(in.StartDate, in.EndDate, utils.DateOf(now))
	if err != nil {
		logger.ExitMethodWithError("bookingService.RequestBooking", err)
		return nil, err
	}

	view, err := s.loadActiveListing(ctx, in.ListingID)
	if err != nil {
		logger.ExitMethodWithError("bookingService.RequestBooking", err)
		return nil, err
	}
	listing := view.Listing
	if listing.OwnerID == in.RenterID {
		err := domain.NewValidationError("renter_id", "owners cannot book their own listing")
		logger.ExitMethodWithError("bookingService.RequestBooking", err)
		return nil, err
	}

	renter, err := s.userRepo.GetByID(ctx, in.RenterID)
	if err != nil {
		logger.ExitMethodWithError("bookingService.RequestBooking", err, "reason", "renter lookup failed")
		return nil, err
	}
	owner, err := s.userRepo.GetByID(ctx, listing.OwnerID)
	if err != nil {
		logger.ExitMethodWithError("bookingService.RequestBooking", err, "reason", "owner lookup failed")
		return nil, err
	}

	days := int32(rng.Days())
	q, err := s.quote(view, days)
	if err != nil {
		logger.ExitMethodWithError("bookingService.RequestBooking", err, "reason", "pricing failed")
		return nil, err
	}

	rental := &domain.Rental{
		ListingID:               listing.ID,
		RenterID:                in.RenterID,
		OwnerID:                 listing.OwnerID,
		StartDate:               rng.Start,
		EndDate:                 rng.End,
		TotalDays:               days,
		DailyPriceSnapshotCents: listing.DailyPriceCents,
		RiskTierSnapshot:        q.RiskTier,
		PeaceFundDailyCents:     q.PeaceFundDailyCents,
		RentalFeeCents:          q.SubtotalCents,
		PeaceFundFeeCents:       q.PeaceFundTotalCents,
		DepositCents:            q.DepositCents,
		TotalPaidCents:          q.TotalDueCents,
		Status:                  domain.RentalStatusPending,
	}

	if listing.BookingType == domain.BookingTypeInstant {
		// instant bookings must not land on confirmed dates, so check and insert under the listing lock
		err = s.txRunner.WithListingLock(ctx, listing.ID, func(ctx context.Context, tx repository.BookingTx) error {
			set, err := loadIntervalSet(ctx, tx.Blackouts(), tx.Rentals(), listing.ID)
			if err != nil {
				return err
			}
			if err := set.Check(rng); err != nil {
				return err
			}
			return tx.Rentals().Create(ctx, rental)
		})
	} else {
		// pending requests reserve nothing; only owner blackouts are enforced here
		err = s.createRequest(ctx, rental, rng)
	}
	if err != nil {
		logger.ExitMethodWithError("bookingService.RequestBooking", err)
		return nil, err
	}

	s.publish(ctx, domain.BookingRequested{
		Rental:  *rental,
		Listing: listing,
		Owner:   *owner,
		Renter:  *renter,
		At:      s.clock(),
	})

	logger.ExitMethod("bookingService.RequestBooking", "rentalID", rental.ID, "totalPaidCents", rental.TotalPaidCents)
	return rental, nil
}

func (s *bookingService) createRequest(ctx context.Context, rental *domain.Rental, rng utils.DateRange) error {
	blackouts, err := s.blackoutRepo.ListByListing(ctx, rental.ListingID)
	if err != nil {
		return err
	}
	if err := availability.New(rental.ListingID, blackouts, nil).Check(rng); err != nil {
		return err
	}
	return s.rentalRepo.Create(ctx, rental)
}

// loadIntervalSet builds the listing's blocked ranges from blackouts and
// confirmed rentals.
func loadIntervalSet(ctx context.Context, blackouts repository.BlackoutRepository, rentals repository.RentalRepository, listingID int32) (*availability.IntervalSet, error) {
	bs, err := blackouts.ListByListing(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("list blackouts: %w", err)
	}
	rs, err := rentals.ListByListing(ctx, listingID, domain.OccupancyStatuses...)
	if err != nil {
		return nil, fmt.Errorf("list confirmed rentals: %w", err)
	}
	return availability.New(listingID, bs, rs), nil
}

// declineConflictingPending declines every other pending rental of the
// listing that overlaps confirmed.
func declineConflictingPending(ctx context.Context, rentals repository.RentalRepository, confirmed *domain.Rental, at time.Time) ([]domain.Event, error) {
	pending, err := rentals.ListByListing(ctx, confirmed.ListingID, domain.RentalStatusPending)
	if err != nil {
		return nil, fmt.Errorf("list pending rentals: %w", err)
	}
	var events []domain.Event
	for i := range pending {
		p := pending[i]
		if p.ID == confirmed.ID || !p.Range().Overlaps(confirmed.Range()) {
			continue
		}
		p.Status = domain.RentalStatusDeclined
		p.DeclineReason = AutoDeclineReason
		if err := rentals.Update(ctx, &p); err != nil {
			return nil, fmt.Errorf("auto-decline rental %d: %w", p.ID, err)
		}
		events = append(events, domain.BookingDeclined{Rental: p, Reason: AutoDeclineReason, Auto: true, At: at})
	}
	return events, nil
}

// ApproveBooking confirms a pending rental. The occupancy re-check, the
// status write and the eviction of overlapping pending requests share one
// listing-locked transaction.
func (s *bookingService) ApproveBooking(ctx context.Context, rentalID, ownerID int32) (*domain.Rental, error) {
	logger.EnterMethod("bookingService.ApproveBooking", "rentalID", rentalID, "ownerID", ownerID)

	rt, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		logger.ExitMethodWithError("bookingService.ApproveBooking", err)
		return nil, err
	}
	if rt.OwnerID != ownerID {
		err := &domain.AuthorizationError{ActorID: ownerID, Action: "approve this rental"}
		logger.ExitMethodWithError("bookingService.ApproveBooking", err)
		return nil, err
	}

	var approved domain.Rental
	var events []domain.Event
	err = s.txRunner.WithListingLock(ctx, rt.ListingID, func(ctx context.Context, tx repository.BookingTx) error {
		current, err := tx.Rentals().GetByID(ctx, rentalID)
		if err != nil {
			return err
		}
		if current.Status != domain.RentalStatusPending {
			return &domain.InvalidTransitionError{RentalID: rentalID, From: current.Status, Action: "approve"}
		}

		set, err := loadIntervalSet(ctx, tx.Blackouts(), tx.Rentals(), current.ListingID)
		if err != nil {
			return err
		}
		if err := set.Without(current.ID).Check(current.Range()); err != nil {
			return err
		}

		current.Status = domain.RentalStatusApproved
		if err := tx.Rentals().Update(ctx, current); err != nil {
			return err
		}
		at := s.clock()
		declined, err := declineConflictingPending(ctx, tx.Rentals(), current, at)
		if err != nil {
			return err
		}

		approved = *current
		events = append([]domain.Event{domain.BookingApproved{Rental: *current, At: at}}, declined...)
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("bookingService.ApproveBooking", err, "rentalID", rentalID)
		return nil, err
	}

	s.publish(ctx, events...)
	logger.ExitMethod("bookingService.ApproveBooking", "rentalID", rentalID, "autoDeclined", len(events)-1)
	return &approved, nil
}

func (s *bookingService) DeclineBooking(ctx context.Context, rentalID, ownerID int32, reason string) (*domain.Rental, error) {
	logger.EnterMethod("bookingService.DeclineBooking", "rentalID", rentalID, "ownerID", ownerID)

	var declined domain.Rental
	err := s.transition(ctx, rentalID, func(rt *domain.Rental) error {
		if rt.OwnerID != ownerID {
			return &domain.AuthorizationError{ActorID: ownerID, Action: "decline this rental"}
		}
		if rt.Status != domain.RentalStatusPending {
			return &domain.InvalidTransitionError{RentalID: rentalID, From: rt.Status, Action: "decline"}
		}
		rt.Status = domain.RentalStatusDeclined
		rt.DeclineReason = reason
		return nil
	}, func(rt *domain.Rental) { declined = *rt })
	if err != nil {
		logger.ExitMethodWithError("bookingService.DeclineBooking", err)
		return nil, err
	}

	s.publish(ctx, domain.BookingDeclined{Rental: declined, Reason: reason, At: s.clock()})
	logger.ExitMethod("bookingService.DeclineBooking", "rentalID", rentalID)
	return &declined, nil
}

// transition loads the rental, applies mutate under the listing lock and
// persists it. done receives the stored rental after a successful write.
func (s *bookingService) transition(ctx context.Context, rentalID int32, mutate func(rt *domain.Rental) error, done func(rt *domain.Rental)) error {
	rt, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return err
	}
	return s.txRunner.WithListingLock(ctx, rt.ListingID, func(ctx context.Context, tx repository.BookingTx) error {
		current, err := tx.Rentals().GetByID(ctx, rentalID)
		if err != nil {
			return err
		}
		if err := mutate(current); err != nil {
			return err
		}
		if err := tx.Rentals().Update(ctx, current); err != nil {
			return err
		}
		done(current)
		return nil
	})
}

// checkRenterWindow enforces that only the renter changes a booking and only
// before an approved rental has started.
func checkRenterWindow(rt *domain.Rental, actorID int32, action string, today utils.Date) error {
	if rt.RenterID != actorID {
		return &domain.AuthorizationError{ActorID: actorID, Action: action + " this rental"}
	}
	switch rt.Status {
	case domain.RentalStatusPending:
		return nil
	case domain.RentalStatusApproved:
		if today.Before(rt.StartDate) {
			return nil
		}
	}
	return &domain.InvalidTransitionError{RentalID: rt.ID, From: classify.Effective(*rt, today), Action: action}
}

func (s *bookingService) Reschedule(ctx context.Context, rentalID, actorID int32, newStart, newEnd utils.Date, now time.Time) (*domain.Rental, error) {
	logger.EnterMethod("bookingService.Reschedule", "rentalID", rentalID, "actorID", actorID, "start", newStart, "end", newEnd)
	today := utils.DateOf(now)

	rng, err := validateRange(newStart, newEnd, today)
	if err != nil {
		logger.ExitMethodWithError("bookingService.Reschedule", err)
		return nil, err
	}

	rt, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		logger.ExitMethodWithError("bookingService.Reschedule", err)
		return nil, err
	}
	if err := checkRenterWindow(rt, actorID, "reschedule", today); err != nil {
		logger.ExitMethodWithError("bookingService.Reschedule", err)
		return nil, err
	}

	var updated domain.Rental
	var prev utils.DateRange
	var events []domain.Event
	err = s.txRunner.WithListingLock(ctx, rt.ListingID, func(ctx context.Context, tx repository.BookingTx) error {
		current, err := tx.Rentals().GetByID(ctx, rentalID)
		if err != nil {
			return err
		}
		if err := checkRenterWindow(current, actorID, "reschedule", today); err != nil {
			return err
		}

		set, err := loadIntervalSet(ctx, tx.Blackouts(), tx.Rentals(), current.ListingID)
		if err != nil {
			return err
		}
		if err := set.Without(current.ID).Check(rng); err != nil {
			return err
		}

		// the rate and tier captured at request time carry over
		days := int32(rng.Days())
		res := pricing.Resolution{EffectiveTier: current.RiskTierSnapshot, PeaceFundDailyCents: current.PeaceFundDailyCents}
		q, err := pricing.ComputePrice(current.DailyPriceSnapshotCents, days, res, current.DepositCents)
		if err != nil {
			return err
		}

		prev = current.Range()
		current.StartDate, current.EndDate = rng.Start, rng.End
		current.TotalDays = days
		current.RentalFeeCents = q.SubtotalCents
		current.PeaceFundFeeCents = q.PeaceFundTotalCents
		current.TotalPaidCents = q.TotalDueCents
		if err := tx.Rentals().Update(ctx, current); err != nil {
			return err
		}

		at := s.clock()
		events = []domain.Event{domain.BookingRescheduled{
			Rental:    *current,
			PrevStart: prev.Start.String(),
			PrevEnd:   prev.End.String(),
			At:        at,
		}}
		if current.Status.HoldsOccupancy() {
			declined, err := declineConflictingPending(ctx, tx.Rentals(), current, at)
			if err != nil {
				return err
			}
			events = append(events, declined...)
		}
		updated = *current
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("bookingService.Reschedule", err, "rentalID", rentalID)
		return nil, err
	}

	s.publish(ctx, events...)
	logger.ExitMethod("bookingService.Reschedule", "rentalID", rentalID, "from", prev, "to", rng)
	return &updated, nil
}

func (s *bookingService) Cancel(ctx context.Context, rentalID, actorID int32, now time.Time) error {
	logger.EnterMethod("bookingService.Cancel", "rentalID", rentalID, "actorID", actorID)
	today := utils.DateOf(now)

	var cancelled domain.Rental
	err := s.transition(ctx, rentalID, func(rt *domain.Rental) error {
		if err := checkRenterWindow(rt, actorID, "cancel", today); err != nil {
			return err
		}
		rt.Status = domain.RentalStatusCancelled
		return nil
	}, func(rt *domain.Rental) { cancelled = *rt })
	if err != nil {
		logger.ExitMethodWithError("bookingService.Cancel", err)
		return err
	}

	s.publish(ctx, domain.BookingCancelled{Rental: cancelled, At: s.clock()})
	logger.ExitMethod("bookingService.Cancel", "rentalID", rentalID)
	return nil
}

func (s *bookingService) MarkReturned(ctx context.Context, rentalID, actorID int32, now time.Time) (*domain.Rental, error) {
	logger.EnterMethod("bookingService.MarkReturned", "rentalID", rentalID, "actorID", actorID)
	today := utils.DateOf(now)

	var returned domain.Rental
	err := s.transition(ctx, rentalID, func(rt *domain.Rental) error {
		if rt.RenterID != actorID && rt.OwnerID != actorID {
			return &domain.AuthorizationError{ActorID: actorID, Action: "return this rental"}
		}
		if classify.Effective(*rt, today) != domain.RentalStatusActive {
			return &domain.InvalidTransitionError{RentalID: rentalID, From: rt.Status, Action: "mark returned"}
		}
		rt.Status = domain.RentalStatusReturned
		return nil
	}, func(rt *domain.Rental) { returned = *rt })
	if err != nil {
		logger.ExitMethodWithError("bookingService.MarkReturned", err)
		return nil, err
	}

	s.publish(ctx, domain.BookingReturned{Rental: returned, At: s.clock()})
	logger.ExitMethod("bookingService.MarkReturned", "rentalID", rentalID)
	return &returned, nil
}

func (s *bookingService) ConfirmReturn(ctx context.Context, rentalID, ownerID int32) (*domain.Rental, error) {
	logger.EnterMethod("bookingService.ConfirmReturn", "rentalID", rentalID, "ownerID", ownerID)

	var completed domain.Rental
	err := s.transition(ctx, rentalID, func(rt *domain.Rental) error {
		if rt.OwnerID != ownerID {
			return &domain.AuthorizationError{ActorID: ownerID, Action: "confirm the return of this rental"}
		}
		if rt.Status != domain.RentalStatusReturned {
			return &domain.InvalidTransitionError{RentalID: rentalID, From: rt.Status, Action: "confirm return"}
		}
		rt.Status = domain.RentalStatusCompleted
		return nil
	}, func(rt *domain.Rental) { completed = *rt })
	if err != nil {
		logger.ExitMethodWithError("bookingService.ConfirmReturn", err)
		return nil, err
	}

	s.publish(ctx, domain.BookingCompleted{Rental: completed, At: s.clock()})
	logger.ExitMethod("bookingService.ConfirmReturn", "rentalID", rentalID)
	return &completed, nil
}

func (s *bookingService) GetRental(ctx context.Context, actorID, rentalID int32) (*domain.Rental, error) {
	rt, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rt.RenterID != actorID && rt.OwnerID != actorID {
		return nil, &domain.AuthorizationError{ActorID: actorID, Action: "view this rental"}
	}
	return rt, nil
}

func (s *bookingService) QuotePrice(ctx context.Context, listingID int32, start, end utils.Date) (*pricing.Quote, error) {
	rng, err := validateRange(start, end, utils.Date{})
	if err != nil {
		return nil, err
	}
	view, err := s.loadActiveListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	q, err := s.quote(view, int32(rng.Days()))
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// GetUnavailableDates lists every blocked calendar day of the listing inside
// window, which defaults to the next DefaultAvailabilityWindow days.
func (s *bookingService) GetUnavailableDates(ctx context.Context, listingID int32, window utils.DateRange, now time.Time) ([]utils.Date, error) {
	if window.Start.IsZero() || window.End.IsZero() {
		today := utils.DateOf(now)
		window = utils.DateRange{Start: today, End: today.AddDays(DefaultAvailabilityWindow)}
	} else if window.End.Before(window.Start) {
		return nil, domain.NewValidationError("window", "end must not be before start")
	} else if window.Days() > MaxAvailabilityWindowDays {
		return nil, domain.NewValidationError("window", "must not span more than %d days", MaxAvailabilityWindowDays)
	}
	if _, err := s.loadActiveListing(ctx, listingID); err != nil {
		return nil, err
	}
	set, err := loadIntervalSet(ctx, s.blackoutRepo, s.rentalRepo, listingID)
	if err != nil {
		return nil, err
	}
	return set.UnavailableDates(window), nil
}

func (s *bookingService) RenterDashboard(ctx context.Context, renterID int32, now time.Time) ([]classify.Entry, error) {
	rentals, err := s.rentalRepo.ListByRenter(ctx, renterID)
	if err != nil {
		return nil, err
	}
	return classify.Dashboard(rentals, now, classify.ViewRenter), nil
}

func (s *bookingService) OwnerDashboard(ctx context.Context, ownerID int32, now time.Time) ([]classify.Entry, error) {
	rentals, err := s.rentalRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return classify.Dashboard(rentals, now, classify.ViewOwner), nil
}

// ActivateStartedRentals persists the approved -> active step for rentals
// whose start date has been reached.
func (s *bookingService) ActivateStartedRentals(ctx context.Context, now time.Time) (int, error) {
	today := utils.DateOf(now)
	approved, err := s.rentalRepo.ListByStatus(ctx, domain.RentalStatusApproved)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, rt := range approved {
		if today.Before(rt.StartDate) {
			continue
		}
		err := s.transition(ctx, rt.ID, func(cur *domain.Rental) error {
			if cur.Status != domain.RentalStatusApproved || today.Before(cur.StartDate) {
				return errSkip
			}
			cur.Status = domain.RentalStatusActive
			return nil
		}, func(*domain.Rental) {})
		if errors.Is(err, errSkip) {
			continue
		}
		if err != nil {
			logger.Error("Failed to activate rental", "rentalID", rt.ID, "error", err)
			continue
		}
		count++
	}
	return count, nil
}

// ExpireStalePendingRequests declines pending requests whose start date has
// already passed.
func (s *bookingService) ExpireStalePendingRequests(ctx context.Context, now time.Time) (int, error) {
	today := utils.DateOf(now)
	pending, err := s.rentalRepo.ListByStatus(ctx, domain.RentalStatusPending)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, rt := range pending {
		if !rt.StartDate.Before(today) {
			continue
		}
		var expired domain.Rental
		err := s.transition(ctx, rt.ID, func(cur *domain.Rental) error {
			if cur.Status != domain.RentalStatusPending {
				return errSkip
			}
			cur.Status = domain.RentalStatusDeclined
			cur.DeclineReason = ExpiredReason
			return nil
		}, func(cur *domain.Rental) { expired = *cur })
		if errors.Is(err, errSkip) {
			continue
		}
		if err != nil {
			logger.Error("Failed to expire pending rental", "rentalID", rt.ID, "error", err)
			continue
		}
		s.publish(ctx, domain.BookingDeclined{Rental: expired, Reason: ExpiredReason, Auto: true, At: s.clock()})
		count++
	}
	return count, nil
}

var errSkip = errors.New("skip")

// publish hands events to the sink. The transition has already committed, so
// failures are logged and never returned.
func (s *bookingService) publish(ctx context.Context, events ...domain.Event) {
	if s.sink == nil {
		return
	}
	for _, e := range events {
		if err := s.sink.Publish(ctx, e); err != nil {
			logger.Error("Failed to publish booking event", "event", e.EventName(), "rentalID", e.AggregateID(), "error", err)
		}
	}
}
