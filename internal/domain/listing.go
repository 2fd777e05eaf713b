package domain

import (
	"time"

	"toolshare-backend/internal/utils"
)

type BookingType string

const (
	BookingTypeInstant BookingType = "instant"
	BookingTypeRequest BookingType = "request"
)

type Listing struct {
	ID              int32       `json:"id"`
	OwnerID         int32       `json:"owner_id"`
	CategoryID      int32       `json:"category_id"`
	Title           string      `json:"title"`
	DailyPriceCents int32       `json:"daily_price_cents"`
	IsHighPowered   bool        `json:"is_high_powered"`
	AcceptsBarter   bool        `json:"accepts_barter"`
	BookingType     BookingType `json:"booking_type"`
	// RiskTierOverride is the owner's manual tier pick; SuggestedTier is the
	// tier of the auto-suggested category still attached to the listing.
	RiskTierOverride *int32     `json:"risk_tier_override,omitempty"`
	SuggestedTier    *int32     `json:"suggested_tier,omitempty"`
	DepositCents     *int32     `json:"deposit_cents,omitempty"` // overrides the platform deposit
	ArchivedAt       *time.Time `json:"archived_at,omitempty"`
	CreatedOn        time.Time  `json:"created_on"`
}

func (l *Listing) IsArchived() bool {
	return l.ArchivedAt != nil
}

// Category is static reference data shared by many listings.
type Category struct {
	ID                int32    `json:"id"`
	Name              string   `json:"name"`
	DefaultRiskTier   int32    `json:"default_risk_tier"`
	RiskDailyFeeCents int32    `json:"risk_daily_fee_cents"`
	DeductibleCents   int32    `json:"deductible_cents"`
	Keywords          []string `json:"keywords,omitempty"`
}

// ListingView is a listing joined with its category, returned by a single read.
type ListingView struct {
	Listing  Listing  `json:"listing"`
	Category Category `json:"category"`
}

type BlackoutRange struct {
	ID        int32      `json:"id"`
	ListingID int32      `json:"listing_id"`
	StartDate utils.Date `json:"start_date"`
	EndDate   utils.Date `json:"end_date"`
	Reason    string     `json:"reason,omitempty"`
	CreatedOn time.Time  `json:"created_on"`
}

func (b BlackoutRange) Range() utils.DateRange {
	return utils.DateRange{Start: b.StartDate, End: b.EndDate}
}
