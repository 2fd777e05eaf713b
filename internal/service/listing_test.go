package service

import (
	"context"
	"testing"

	"toolshare-backend/internal/categorizer"
	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSuggester struct {
	mock.Mock
}

func (m *MockSuggester) SuggestCategory(ctx context.Context, title string) (*categorizer.Suggestion, error) {
	args := m.Called(ctx, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*categorizer.Suggestion), args.Error(1)
}

func newListingFixture(t *testing.T) (*fixture, *MockSuggester, ListingService) {
	f := newFixture(t)
	f.db.AddCategory(domain.Category{ID: 3, Name: "Heavy Equipment", DefaultRiskTier: 3, RiskDailyFeeCents: 900, DeductibleCents: 25000})
	suggester := new(MockSuggester)
	return f, suggester, NewListingService(f.store.Listings, f.store.Categories, suggester)
}

func int32Ptr(v int32) *int32 { return &v }

func TestListingService_PreviewTier(t *testing.T) {
	ctx := context.Background()

	t.Run("Adopts the suggested category", func(t *testing.T) {
		_, suggester, svc := newListingFixture(t)
		suggester.On("SuggestCategory", mock.Anything, "Mini excavator").
			Return(&categorizer.Suggestion{CategoryID: 3, Confidence: 0.9}, nil)

		p, err := svc.PreviewTier(ctx, TierDraft{Title: "Mini excavator"})
		require.NoError(t, err)
		assert.Equal(t, int32(3), p.CategoryID)
		assert.True(t, p.AutoSuggested)
		assert.Equal(t, int32(3), p.Resolution.EffectiveTier)
		assert.Equal(t, pricing.TierSourceSuggested, p.Resolution.Source)
		assert.Equal(t, int32(25000), p.Resolution.DeductibleCents)
		suggester.AssertExpectations(t)
	})

	t.Run("Manual pick keeps its category", func(t *testing.T) {
		_, suggester, svc := newListingFixture(t)
		suggester.On("SuggestCategory", mock.Anything, "Mini excavator").
			Return(&categorizer.Suggestion{CategoryID: 3, Confidence: 0.9}, nil)

		p, err := svc.PreviewTier(ctx, TierDraft{Title: "Mini excavator", CategoryID: 1})
		require.NoError(t, err)
		assert.Equal(t, int32(1), p.CategoryID)
		assert.False(t, p.AutoSuggested)
		assert.Nil(t, p.SuggestedTier)
		assert.Equal(t, pricing.TierSourceCategory, p.Resolution.Source)
		assert.Equal(t, int32(1), p.Resolution.EffectiveTier)
		assert.Equal(t, int32(150), p.Resolution.PeaceFundDailyCents)
	})

	t.Run("Manual tier wins", func(t *testing.T) {
		_, suggester, svc := newListingFixture(t)
		suggester.On("SuggestCategory", mock.Anything, mock.Anything).Return(nil, nil)

		p, err := svc.PreviewTier(ctx, TierDraft{Title: "Garden rake", CategoryID: 3, ManualTier: int32Ptr(1)})
		require.NoError(t, err)
		assert.Equal(t, int32(1), p.Resolution.EffectiveTier)
		assert.Equal(t, pricing.TierSourceManual, p.Resolution.Source)
		assert.Equal(t, int32(150), p.Resolution.PeaceFundDailyCents)
	})

	t.Run("Short titles skip the suggester", func(t *testing.T) {
		_, suggester, svc := newListingFixture(t)
		p, err := svc.PreviewTier(ctx, TierDraft{Title: "ax", CategoryID: 2})
		require.NoError(t, err)
		assert.Equal(t, pricing.TierSourceCategory, p.Resolution.Source)
		assert.Equal(t, int32(2), p.Resolution.EffectiveTier)
		suggester.AssertNotCalled(t, "SuggestCategory", mock.Anything, mock.Anything)
	})

	t.Run("Rejects invalid input", func(t *testing.T) {
		_, _, svc := newListingFixture(t)
		_, err := svc.PreviewTier(ctx, TierDraft{Title: "ax", ManualTier: int32Ptr(5)})
		assert.ErrorIs(t, err, domain.ErrValidation)

		_, err = svc.PreviewTier(ctx, TierDraft{Title: "ax", CategoryID: 99})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestListingService_UpdateListingTier(t *testing.T) {
	ctx := context.Background()
	f, suggester, svc := newListingFixture(t)
	suggester.On("SuggestCategory", mock.Anything, "Cordless drill").
		Return(&categorizer.Suggestion{CategoryID: 3, Confidence: 0.8}, nil)

	_, err := svc.UpdateListingTier(ctx, renterID, instantListingID, TierDraft{ManualTier: int32Ptr(1)})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	view, err := svc.UpdateListingTier(ctx, ownerID, instantListingID, TierDraft{CategoryID: 2, ManualTier: int32Ptr(1)})
	require.NoError(t, err)
	require.NotNil(t, view.Listing.RiskTierOverride)
	assert.Equal(t, int32(1), *view.Listing.RiskTierOverride)
	assert.Nil(t, view.Listing.SuggestedTier)

	// later bookings price at the manual tier
	bookings := NewBookingService(f.store.Listings, f.store.Rentals, f.store.Blackouts, f.store.Users, f.store.Tx, nil, 0)
	q, err := bookings.QuotePrice(ctx, instantListingID, d("2024-07-10"), d("2024-07-11"))
	require.NoError(t, err)
	assert.Equal(t, int32(1), q.RiskTier)
	assert.Equal(t, int32(300), q.PeaceFundTotalCents)
}

func TestListingService_UpdateListingTier_HandPickedCategory(t *testing.T) {
	ctx := context.Background()
	f, suggester, svc := newListingFixture(t)
	suggester.On("SuggestCategory", mock.Anything, "Mini excavator").
		Return(&categorizer.Suggestion{CategoryID: 3, Confidence: 0.9}, nil)

	view, err := svc.UpdateListingTier(ctx, ownerID, instantListingID, TierDraft{Title: "Mini excavator", CategoryID: 1})
	require.NoError(t, err)
	assert.Equal(t, int32(1), view.Listing.CategoryID)
	assert.Nil(t, view.Listing.SuggestedTier)
	assert.Nil(t, view.Listing.RiskTierOverride)

	bookings := NewBookingService(f.store.Listings, f.store.Rentals, f.store.Blackouts, f.store.Users, f.store.Tx, nil, 0)
	q, err := bookings.QuotePrice(ctx, instantListingID, d("2024-07-10"), d("2024-07-11"))
	require.NoError(t, err)
	assert.Equal(t, int32(1), q.RiskTier)
	assert.Equal(t, int32(300), q.PeaceFundTotalCents)
}

func TestAvailabilityService_Blackouts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewAvailabilityService(f.store.Listings, f.store.Blackouts, f.store.Tx)
	f.seedApproved(instantListingID, "2024-07-10", "2024-07-12")

	_, err := svc.AddBlackout(ctx, renterID, instantListingID, d("2024-07-20"), d("2024-07-21"), "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.AddBlackout(ctx, ownerID, instantListingID, d("2024-07-12"), d("2024-07-13"), "maintenance")
	assert.ErrorIs(t, err, domain.ErrOverlap)

	_, err = svc.AddBlackout(ctx, ownerID, instantListingID, d("2024-07-21"), d("2024-07-20"), "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	b, err := svc.AddBlackout(ctx, ownerID, instantListingID, d("2024-07-13"), d("2024-07-15"), "maintenance")
	require.NoError(t, err)
	assert.NotZero(t, b.ID)

	_, err = f.svc.RequestBooking(ctx, RequestBookingInput{ListingID: instantListingID, RenterID: renterID,
		StartDate: d("2024-07-15"), EndDate: d("2024-07-16")}, testNow)
	assert.ErrorIs(t, err, domain.ErrOverlap)

	assert.ErrorIs(t, svc.RemoveBlackout(ctx, renterID, b.ID), domain.ErrUnauthorized)
	require.NoError(t, svc.RemoveBlackout(ctx, ownerID, b.ID))

	list, err := svc.ListBlackouts(ctx, instantListingID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
