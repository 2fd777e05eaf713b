package grpc

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"

	"toolshare-backend/internal/service"
	"toolshare-backend/internal/utils"
)

type ListingHandler struct {
	listingSvc      service.ListingService
	availabilitySvc service.AvailabilityService
}

func NewListingHandler(listingSvc service.ListingService, availabilitySvc service.AvailabilityService) *ListingHandler {
	return &ListingHandler{listingSvc: listingSvc, availabilitySvc: availabilitySvc}
}

type updateTierRequest struct {
	ListingID  int32  `json:"listing_id"`
	Title      string `json:"title"`
	CategoryID int32  `json:"category_id"`
	ManualTier *int32 `json:"manual_tier"`
}

type blackoutRequest struct {
	ListingID int32      `json:"listing_id"`
	StartDate utils.Date `json:"start_date"`
	EndDate   utils.Date `json:"end_date"`
	Reason    string     `json:"reason"`
}

type blackoutRef struct {
	BlackoutID int32 `json:"blackout_id"`
}

func (h *ListingHandler) UpdateListingTier(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req updateTierRequest
	userID, err := caller(ctx, in, &req)
	if err != nil {
		return nil, err
	}
	view, err := h.listingSvc.UpdateListingTier(ctx, userID, req.ListingID, service.TierDraft{
		Title:      req.Title,
		CategoryID: req.CategoryID,
		ManualTier: req.ManualTier,
	})
	if err != nil {
		return nil, toStatus("UpdateListingTier", err)
	}
	return encode(map[string]any{"listing": view})
}

func (h *ListingHandler) AddBlackout(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req blackoutRequest
	userID, err := caller(ctx, in, &req)
	if err != nil {
		return nil, err
	}
	b, err := h.availabilitySvc.AddBlackout(ctx, userID, req.ListingID, req.StartDate, req.EndDate, req.Reason)
	if err != nil {
		return nil, toStatus("AddBlackout", err)
	}
	return encode(map[string]any{"blackout": b})
}

func (h *ListingHandler) RemoveBlackout(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req blackoutRef
	userID, err := caller(ctx, in, &req)
	if err != nil {
		return nil, err
	}
	if err := h.availabilitySvc.RemoveBlackout(ctx, userID, req.BlackoutID); err != nil {
		return nil, toStatus("RemoveBlackout", err)
	}
	return encode(map[string]any{"success": true})
}
