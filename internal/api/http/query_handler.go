package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/security"
	"toolshare-backend/internal/service"
	"toolshare-backend/internal/utils"
)

// QueryHandler serves the read side used by calendars, checkout and dashboards.
type QueryHandler struct {
	bookingSvc      service.BookingService
	listingSvc      service.ListingService
	availabilitySvc service.AvailabilityService
	windowDays      int
	clock           func() time.Time
}

func NewQueryHandler(bookingSvc service.BookingService, listingSvc service.ListingService, availabilitySvc service.AvailabilityService, windowDays int) *QueryHandler {
	if windowDays <= 0 {
		windowDays = service.DefaultAvailabilityWindow
	}
	return &QueryHandler{
		bookingSvc:      bookingSvc,
		listingSvc:      listingSvc,
		availabilitySvc: availabilitySvc,
		windowDays:      windowDays,
		clock:           time.Now,
	}
}

func pathListingID(r *http.Request) (int32, error) {
	raw := mux.Vars(r)["listing_id"]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("listing_id", "invalid listing id %q", raw)
	}
	return int32(id), nil
}

// queryDate parses an optional yyyy-mm-dd query parameter.
func queryDate(r *http.Request, name string) (utils.Date, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return utils.Date{}, nil
	}
	d, err := utils.ParseDate(raw)
	if err != nil {
		return utils.Date{}, domain.NewValidationError(name, "%v", err)
	}
	return d, nil
}

func (h *QueryHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// UnavailableDates returns every blocked day in [from, to]; without a range it
// covers the configured number of days from today.
func (h *QueryHandler) UnavailableDates(w http.ResponseWriter, r *http.Request) {
	listingID, err := pathListingID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	from, err := queryDate(r, "from")
	if err != nil {
		writeError(w, r, err)
		return
	}
	to, err := queryDate(r, "to")
	if err != nil {
		writeError(w, r, err)
		return
	}

	now := h.clock()
	if from.IsZero() {
		from = utils.DateOf(now)
	}
	if to.IsZero() {
		to = from.AddDays(h.windowDays)
	}
	dates, err := h.bookingSvc.GetUnavailableDates(r.Context(), listingID, utils.DateRange{Start: from, End: to}, now)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if dates == nil {
		dates = []utils.Date{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"listing_id": listingID, "from": from, "to": to, "dates": dates})
}

func (h *QueryHandler) Quote(w http.ResponseWriter, r *http.Request) {
	listingID, err := pathListingID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	start, err := queryDate(r, "start")
	if err != nil {
		writeError(w, r, err)
		return
	}
	end, err := queryDate(r, "end")
	if err != nil {
		writeError(w, r, err)
		return
	}
	q, err := h.bookingSvc.QuotePrice(r.Context(), listingID, start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *QueryHandler) Blackouts(w http.ResponseWriter, r *http.Request) {
	listingID, err := pathListingID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := h.availabilitySvc.ListBlackouts(r.Context(), listingID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []domain.BlackoutRange{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"blackouts": list})
}

type tierPreviewRequest struct {
	Title      string `json:"title"`
	CategoryID int32  `json:"category_id"`
	ManualTier *int32 `json:"manual_tier"`
}

// TierPreview runs category suggestion and tier resolution for a listing draft.
func (h *QueryHandler) TierPreview(w http.ResponseWriter, r *http.Request) {
	var req tierPreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, domain.NewValidationError("body", "malformed JSON: %v", err))
		return
	}
	preview, err := h.listingSvc.PreviewTier(r.Context(), service.TierDraft{
		Title:      req.Title,
		CategoryID: req.CategoryID,
		ManualTier: req.ManualTier,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

func (h *QueryHandler) RenterDashboard(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	entries, err := h.bookingSvc.RenterDashboard(r.Context(), userID, h.clock())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rentals": entries})
}

func (h *QueryHandler) OwnerDashboard(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	entries, err := h.bookingSvc.OwnerDashboard(r.Context(), userID, h.clock())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"lendings": entries})
}

// RegisterQueryRoutes registers the query endpoints behind the auth middleware.
func RegisterQueryRoutes(router *mux.Router, h *QueryHandler, tm security.TokenManager) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(AuthMiddleware(tm))
	api.HandleFunc("/health", h.Health).Methods("GET")
	api.HandleFunc("/listings/{listing_id}/unavailable-dates", h.UnavailableDates).Methods("GET")
	api.HandleFunc("/listings/{listing_id}/quote", h.Quote).Methods("GET")
	api.HandleFunc("/listings/{listing_id}/blackouts", h.Blackouts).Methods("GET")
	api.HandleFunc("/tier-preview", h.TierPreview).Methods("POST")
	api.HandleFunc("/me/rentals", h.RenterDashboard).Methods("GET")
	api.HandleFunc("/me/lendings", h.OwnerDashboard).Methods("GET")
}
