package service

import (
	"context"

	"toolshare-backend/internal/categorizer"
	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/logger"
	"toolshare-backend/internal/pricing"
	"toolshare-backend/internal/repository"
)

type listingService struct {
	listingRepo  repository.ListingRepository
	categoryRepo repository.CategoryRepository
	suggester    categorizer.Suggester
}

// NewListingService builds the listing service. suggester may be nil, in
// which case tiers resolve from the manual pick or the category default.
func NewListingService(listingRepo repository.ListingRepository, categoryRepo repository.CategoryRepository, suggester categorizer.Suggester) ListingService {
	return &listingService{listingRepo: listingRepo, categoryRepo: categoryRepo, suggester: suggester}
}

func (s *listingService) selection(ctx context.Context, draft TierDraft) (*pricing.Selection, error) {
	cats, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[int32]domain.Category, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
	}
	if draft.CategoryID != 0 {
		if _, ok := byID[draft.CategoryID]; !ok {
			return nil, &domain.NotFoundError{Entity: "category", ID: draft.CategoryID}
		}
	}
	if draft.ManualTier != nil && (*draft.ManualTier < 1 || *draft.ManualTier > 3) {
		return nil, domain.NewValidationError("risk_tier", "must be between 1 and 3")
	}

	sel := pricing.NewSelection(func(id int32) (domain.Category, bool) {
		c, ok := byID[id]
		return c, ok
	})
	if draft.CategoryID != 0 {
		sel.PickCategory(draft.CategoryID)
	}
	sel.OnTitleChange(ctx, draft.Title, s.suggester)
	if draft.ManualTier != nil {
		sel.SetManualTier(*draft.ManualTier)
	}
	return sel, nil
}

func (s *listingService) PreviewTier(ctx context.Context, draft TierDraft) (*TierPreview, error) {
	sel, err := s.selection(ctx, draft)
	if err != nil {
		return nil, err
	}
	return &TierPreview{
		CategoryID:    sel.CategoryID,
		AutoSuggested: sel.AutoSuggested,
		Suggestion:    sel.Suggestion,
		SuggestedTier: sel.SuggestedTier(),
		Resolution:    sel.Resolve(),
	}, nil
}

func (s *listingService) UpdateListingTier(ctx context.Context, ownerID, listingID int32, draft TierDraft) (*domain.ListingView, error) {
	logger.EnterMethod("listingService.UpdateListingTier", "listingID", listingID, "ownerID", ownerID)

	view, err := s.listingRepo.GetView(ctx, listingID)
	if err != nil {
		logger.ExitMethodWithError("listingService.UpdateListingTier", err)
		return nil, err
	}
	if view.Listing.OwnerID != ownerID {
		err := &domain.AuthorizationError{ActorID: ownerID, Action: "edit this listing"}
		logger.ExitMethodWithError("listingService.UpdateListingTier", err)
		return nil, err
	}
	if draft.Title == "" {
		draft.Title = view.Listing.Title
	}

	sel, err := s.selection(ctx, draft)
	if err != nil {
		logger.ExitMethodWithError("listingService.UpdateListingTier", err)
		return nil, err
	}
	categoryID := sel.CategoryID
	if categoryID == 0 {
		categoryID = view.Listing.CategoryID
	}

	if err := s.listingRepo.UpdateRiskTier(ctx, listingID, categoryID, sel.ManualTier, sel.SuggestedTier()); err != nil {
		logger.ExitMethodWithError("listingService.UpdateListingTier", err)
		return nil, err
	}
	logger.ExitMethod("listingService.UpdateListingTier", "listingID", listingID, "categoryID", categoryID)
	return s.listingRepo.GetView(ctx, listingID)
}

func (s *listingService) GetListing(ctx context.Context, listingID int32) (*domain.ListingView, error) {
	return s.listingRepo.GetView(ctx, listingID)
}
