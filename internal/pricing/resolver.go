// Package pricing resolves a listing's risk tier and prices a rental.
package pricing

import "toolshare-backend/internal/domain"

// Fixed tier tables, in cents.
var (
	peaceFundDailyCents = map[int32]int32{1: 150, 2: 400, 3: 900}
	deductibleCents     = map[int32]int32{1: 2500, 2: 7500, 3: 25000}
)

type TierSource string

const (
	TierSourceManual    TierSource = "manual"
	TierSourceSuggested TierSource = "suggested"
	TierSourceCategory  TierSource = "category"
)

type TierInputs struct {
	Category      domain.Category
	ManualTier    *int32
	SuggestedTier *int32
}

type Resolution struct {
	EffectiveTier       int32      `json:"effective_tier"`
	PeaceFundDailyCents int32      `json:"peace_fund_daily_cents"`
	DeductibleCents     int32      `json:"deductible_cents"`
	Source              TierSource `json:"source"`
}

// Resolve applies manual override, then the attached suggestion, then the
// category default. Tiers outside the table fall back to the category's raw
// fee and deductible.
func Resolve(in TierInputs) Resolution {
	res := Resolution{EffectiveTier: in.Category.DefaultRiskTier, Source: TierSourceCategory}
	switch {
	case in.ManualTier != nil:
		res.EffectiveTier, res.Source = *in.ManualTier, TierSourceManual
	case in.SuggestedTier != nil:
		res.EffectiveTier, res.Source = *in.SuggestedTier, TierSourceSuggested
	}

	fee, ok := peaceFundDailyCents[res.EffectiveTier]
	if !ok {
		fee = in.Category.RiskDailyFeeCents
	}
	deductible, ok := deductibleCents[res.EffectiveTier]
	if !ok {
		deductible = in.Category.DeductibleCents
	}
	res.PeaceFundDailyCents = fee
	res.DeductibleCents = deductible
	return res
}

// InputsForListing builds resolver inputs from a persisted listing.
func InputsForListing(v domain.ListingView) TierInputs {
	return TierInputs{
		Category:      v.Category,
		ManualTier:    v.Listing.RiskTierOverride,
		SuggestedTier: v.Listing.SuggestedTier,
	}
}
