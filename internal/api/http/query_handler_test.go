package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/repository/memory"
	"toolshare-backend/internal/security"
	"toolshare-backend/internal/service"
	"toolshare-backend/internal/utils"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func d(s string) utils.Date { return utils.MustParseDate(s) }

type testServer struct {
	router *mux.Router
	tokens security.TokenManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := memory.New()
	db.AddUser(domain.User{ID: 1, Name: "Olive Owner"})
	db.AddUser(domain.User{ID: 2, Name: "Remy Renter"})
	db.AddCategory(domain.Category{ID: 2, Name: "Power Tools", DefaultRiskTier: 2, RiskDailyFeeCents: 400, DeductibleCents: 7500})
	db.AddListing(domain.Listing{ID: 10, OwnerID: 1, CategoryID: 2, Title: "Table saw",
		DailyPriceCents: 1000, BookingType: domain.BookingTypeInstant})
	db.PutRental(domain.Rental{ID: 1, ListingID: 10, OwnerID: 1, RenterID: 2,
		StartDate: d("2024-06-25"), EndDate: d("2024-06-30"), Status: domain.RentalStatusActive})
	db.PutRental(domain.Rental{ID: 2, ListingID: 10, OwnerID: 1, RenterID: 2,
		StartDate: d("2024-07-03"), EndDate: d("2024-07-04"), Status: domain.RentalStatusApproved})
	store := db.Store()

	h := NewQueryHandler(
		service.NewBookingService(store.Listings, store.Rentals, store.Blackouts, store.Users, store.Tx, nil, 5000),
		service.NewListingService(store.Listings, store.Categories, nil),
		service.NewAvailabilityService(store.Listings, store.Blackouts, store.Tx),
		10,
	)
	h.clock = func() time.Time { return time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC) }

	tokens := security.NewTokenManager(testSecret, time.Hour)
	router := mux.NewRouter()
	RegisterQueryRoutes(router, h, tokens)
	return &testServer{router: router, tokens: tokens}
}

func (s *testServer) do(t *testing.T, method, path, body string, userID int32) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if userID != 0 {
		token, err := s.tokens.GenerateAccessToken(userID, "")
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

func TestQueryHandler_UnavailableDates(t *testing.T) {
	s := newTestServer(t)

	rec, out := s.do(t, "GET", "/api/v1/listings/10/unavailable-dates", "", 0)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"2024-07-03", "2024-07-04"}, out["dates"])
	assert.Equal(t, "2024-07-11", out["to"])

	rec, out = s.do(t, "GET", "/api/v1/listings/10/unavailable-dates?from=2024-06-29&to=2024-07-03", "", 0)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"2024-06-29", "2024-06-30", "2024-07-03"}, out["dates"])

	rec, out = s.do(t, "GET", "/api/v1/listings/10/unavailable-dates?from=2024-13-01", "", 0)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "from", out["field"])

	rec, out = s.do(t, "GET", "/api/v1/listings/10/unavailable-dates?from=0001-01-01&to=9999-12-31", "", 0)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "window", out["field"])

	rec, _ = s.do(t, "GET", "/api/v1/listings/99/unavailable-dates", "", 0)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQueryHandler_Quote(t *testing.T) {
	s := newTestServer(t)

	rec, out := s.do(t, "GET", "/api/v1/listings/10/quote?start=2024-07-10&end=2024-07-12", "", 0)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(3), out["total_days"])
	assert.Equal(t, float64(9200), out["total_due_cents"])

	rec, _ = s.do(t, "GET", "/api/v1/listings/10/quote?start=2024-07-12&end=2024-07-10", "", 0)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryHandler_TierPreview(t *testing.T) {
	s := newTestServer(t)

	rec, out := s.do(t, "POST", "/api/v1/tier-preview", `{"title":"Table saw","category_id":2,"manual_tier":3}`, 0)
	require.Equal(t, http.StatusOK, rec.Code)
	res := out["resolution"].(map[string]any)
	assert.Equal(t, float64(3), res["effective_tier"])
	assert.Equal(t, "manual", res["source"])

	rec, _ = s.do(t, "POST", "/api/v1/tier-preview", `{"title":`, 0)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryHandler_Dashboards(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(t, "GET", "/api/v1/me/rentals", "", 0)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, out := s.do(t, "GET", "/api/v1/me/rentals", "", 2)
	require.Equal(t, http.StatusOK, rec.Code)
	rentals := out["rentals"].([]any)
	require.Len(t, rentals, 2)
	assert.Equal(t, "overdue", rentals[0].(map[string]any)["display_status"])
	assert.Equal(t, "upcoming", rentals[1].(map[string]any)["display_status"])

	rec, out = s.do(t, "GET", "/api/v1/me/lendings", "", 1)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, out["lendings"].([]any), 2)
}
