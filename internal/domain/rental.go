package domain

import (
	"time"

	"toolshare-backend/internal/utils"
)

type RentalStatus string

const (
	RentalStatusPending   RentalStatus = "pending"
	RentalStatusApproved  RentalStatus = "approved"
	RentalStatusActive    RentalStatus = "active"
	RentalStatusReturned  RentalStatus = "returned"
	RentalStatusCompleted RentalStatus = "completed"
	RentalStatusDeclined  RentalStatus = "declined"
	RentalStatusCancelled RentalStatus = "cancelled"
	RentalStatusArchived  RentalStatus = "archived"
)

// OccupancyStatuses are the statuses that hold a listing's dates.
var OccupancyStatuses = []RentalStatus{
	RentalStatusApproved,
	RentalStatusActive,
	RentalStatusReturned,
}

// HoldsOccupancy reports whether the status counts toward the non-overlap invariant.
func (s RentalStatus) HoldsOccupancy() bool {
	switch s {
	case RentalStatusApproved, RentalStatusActive, RentalStatusReturned:
		return true
	}
	return false
}

func (s RentalStatus) IsTerminal() bool {
	switch s {
	case RentalStatusCompleted, RentalStatusDeclined, RentalStatusCancelled, RentalStatusArchived:
		return true
	}
	return false
}

type Rental struct {
	ID        int32      `json:"id"`
	ListingID int32      `json:"listing_id"`
	RenterID  int32      `json:"renter_id"`
	OwnerID   int32      `json:"owner_id"`
	StartDate utils.Date `json:"start_date"`
	EndDate   utils.Date `json:"end_date"`
	TotalDays int32      `json:"total_days"`
	// Price snapshot fields, captured from the listing at request time.
	// Reschedules recompute totals from these, never from live listing prices.
	DailyPriceSnapshotCents int32        `json:"daily_price_snapshot_cents"`
	RiskTierSnapshot        int32        `json:"risk_tier_snapshot"`
	PeaceFundDailyCents     int32        `json:"peace_fund_daily_cents"`
	RentalFeeCents          int32        `json:"rental_fee_cents"`
	PeaceFundFeeCents       int32        `json:"peace_fund_fee_cents"`
	DepositCents            int32        `json:"deposit_cents"`
	TotalPaidCents          int32        `json:"total_paid_cents"`
	Status                  RentalStatus `json:"status"`
	DeclineReason           string       `json:"decline_reason,omitempty"`
	CreatedOn               time.Time    `json:"created_on"`
	UpdatedOn               time.Time    `json:"updated_on"`
}

func (r *Rental) Range() utils.DateRange {
	return utils.DateRange{Start: r.StartDate, End: r.EndDate}
}
