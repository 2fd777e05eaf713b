package pricing

import (
	"math"

	"toolshare-backend/internal/domain"
)

type Quote struct {
	DailyPriceCents     int32 `json:"daily_price_cents"`
	TotalDays           int32 `json:"total_days"`
	RiskTier            int32 `json:"risk_tier"`
	PeaceFundDailyCents int32 `json:"peace_fund_daily_cents"`
	DeductibleCents     int32 `json:"deductible_cents"`
	SubtotalCents       int32 `json:"subtotal_cents"`
	PeaceFundTotalCents int32 `json:"peace_fund_total_cents"`
	FinalTotalCents     int32 `json:"final_total_cents"`
	DepositCents        int32 `json:"deposit_cents"`
	TotalDueCents       int32 `json:"total_due_cents"`
}

// ComputePrice prices totalDays at dailyPriceCents. A zero daily price is
// legal and still pays the full Peace Fund fee. The deposit is flat and
// never scaled by tier. Totals that do not fit the int32 cents columns are
// rejected rather than wrapped.
func ComputePrice(dailyPriceCents, totalDays int32, res Resolution, depositCents int32) (Quote, error) {
	if dailyPriceCents < 0 {
		return Quote{}, domain.NewValidationError("daily_price_cents", "must be non-negative, got %d", dailyPriceCents)
	}
	if totalDays < 1 {
		return Quote{}, domain.NewValidationError("total_days", "must be at least 1, got %d", totalDays)
	}
	if depositCents < 0 {
		return Quote{}, domain.NewValidationError("deposit_cents", "must be non-negative, got %d", depositCents)
	}

	subtotal := int64(dailyPriceCents) * int64(totalDays)
	peaceFund := int64(res.PeaceFundDailyCents) * int64(totalDays)
	final := subtotal + peaceFund
	due := final + int64(depositCents)
	if due > math.MaxInt32 {
		return Quote{}, domain.NewValidationError("total_days", "total of %d cents for %d days exceeds the maximum charge", due, totalDays)
	}

	return Quote{
		DailyPriceCents:     dailyPriceCents,
		TotalDays:           totalDays,
		RiskTier:            res.EffectiveTier,
		PeaceFundDailyCents: res.PeaceFundDailyCents,
		DeductibleCents:     res.DeductibleCents,
		SubtotalCents:       int32(subtotal),
		PeaceFundTotalCents: int32(peaceFund),
		FinalTotalCents:     int32(final),
		DepositCents:        depositCents,
		TotalDueCents:       int32(due),
	}, nil
}
