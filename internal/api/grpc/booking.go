package grpc

import (
	"context"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/service"
	"toolshare-backend/internal/utils"
)

type BookingHandler struct {
	bookingSvc service.BookingService
	clock      func() time.Time
}

func NewBookingHandler(bookingSvc service.BookingService) *BookingHandler {
	return &BookingHandler{bookingSvc: bookingSvc, clock: time.Now}
}

type rentalRef struct {
	RentalID int32 `json:"rental_id"`
}

type dateRangeRequest struct {
	RentalID  int32      `json:"rental_id"`
	ListingID int32      `json:"listing_id"`
	StartDate utils.Date `json:"start_date"`
	EndDate   utils.Date `json:"end_date"`
}

type declineRequest struct {
	RentalID int32  `json:"rental_id"`
	Reason   string `json:"reason"`
}

func rentalResponse(rt *domain.Rental) (*structpb.Struct, error) {
	return encode(map[string]any{"rental": rt})
}

// caller decodes the request and resolves the authenticated user.
func caller(ctx context.Context, in *structpb.Struct, req any) (int32, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return 0, err
	}
	if err := decode(in, req); err != nil {
		return 0, err
	}
	return userID, nil
}

func (h *BookingHandler) Ping(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return encode(map[string]any{"status": "ok", "time": h.clock().UTC()})
}

func (h *BookingHandler) RequestBooking(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req dateRangeRequest
	userID, err := caller(ctx, in, &req)
	if err != nil {
		return nil, err
	}
	rt, err := h.bookingSvc.RequestBooking(ctx, service.RequestBookingInput{
		ListingID: req.ListingID,
		RenterID:  userID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}, h.clock())
	if err != nil {
		return nil, toStatus("RequestBooking", err)
	}
	return rentalResponse(rt)
}

func (h *BookingHandler) ApproveBooking(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req rentalRef
	userID, err := caller(ctx, in, &req)
	if err != nil {
		return nil, err
	}
	rt, err := h.bookingSvc.ApproveBooking(ctx, req.RentalID, userID)
	if err != nil {
		return nil, toStatus("ApproveBooking", err)
	}
	return rentalResponse(rt)
}

func (h *BookingHandler) DeclineBooking(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req declineRequest
	userID, err := caller(ctx, in, &req)
	if err != nil {
		return nil, err
	}
	rt, err := h.bookingSvc.DeclineBooking(ctx, req.RentalID, userID, req.Reason)
	if err != nil {
		return nil, toStatus("DeclineBooking", err)
	}
	return rentalResponse(rt)
}

func (h *BookingHandler) RescheduleBooking(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req dateRangeRequest
	userID, err := caller(ctx, in, &req)
	if err != nil {
		return nil, err
	}
	rt, err := h.bookingSvc.Reschedule(ctx, req.RentalID, userID, req.StartDate, req.EndDate, h.clock())
	if err != nil {
		return nil, toStatus("RescheduleBooking", err)
	}
	return rentalResponse(rt)
}

func (h *BookingHandler) CancelBooking(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req rentalRef
	userID, err := caller(ctx, in, &req)
	if err != nil {
		return nil, err
	}
	if err := h.bookingSvc.Cancel(ctx, req.RentalID, userID, h.clock()); err != nil {
		return nil, toStatus("CancelBooking", err)
	}
	return encode(map[string]any{"success": true})
}

func (h *BookingHandler) MarkReturned(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req rentalRef
	userID, err := caller(ctx, in, &req)
	if err != nil {
		return nil, err
	}
	rt, err := h.bookingSvc.MarkReturned(ctx, req.RentalID, userID, h.clock())
	if err != nil {
		return nil, toStatus("MarkReturned", err)
	}
	return rentalResponse(rt)
}

func (h *BookingHandler) ConfirmReturn(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req rentalRef
	userID, err := caller(ctx, in, &req)
	if err != nil {
		return nil, err
	}
	rt, err := h.bookingSvc.ConfirmReturn(ctx, req.RentalID, userID)
	if err != nil {
		return nil, toStatus("ConfirmReturn", err)
	}
	return rentalResponse(rt)
}

func (h *BookingHandler) GetRental(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req rentalRef
	userID, err := caller(ctx, in, &req)
	if err != nil {
		return nil, err
	}
	rt, err := h.bookingSvc.GetRental(ctx, userID, req.RentalID)
	if err != nil {
		return nil, toStatus("GetRental", err)
	}
	return rentalResponse(rt)
}
