package classify

import (
	"testing"
	"time"

	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/utils"

	"github.com/stretchr/testify/assert"
)

func rental(id int32, status domain.RentalStatus, start, end string) domain.Rental {
	return domain.Rental{
		ID:        id,
		Status:    status,
		StartDate: utils.MustParseDate(start),
		EndDate:   utils.MustParseDate(end),
	}
}

func TestRenter(t *testing.T) {
	now := time.Date(2024, 7, 12, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		r    domain.Rental
		want DisplayStatus
	}{
		{"Active before end", rental(1, domain.RentalStatusActive, "2024-07-10", "2024-07-14"), StatusActive},
		{"Due today", rental(2, domain.RentalStatusActive, "2024-07-10", "2024-07-12"), StatusDueToday},
		{"Overdue", rental(3, domain.RentalStatusActive, "2024-07-01", "2024-07-11"), StatusOverdue},
		{"Returned but late", rental(4, domain.RentalStatusReturned, "2024-07-01", "2024-07-11"), StatusOverdue},
		{"Approved and started counts as active", rental(5, domain.RentalStatusApproved, "2024-07-12", "2024-07-13"), StatusActive},
		{"Approved in future", rental(6, domain.RentalStatusApproved, "2024-07-13", "2024-07-15"), StatusUpcoming},
		{"Pending", rental(7, domain.RentalStatusPending, "2024-07-20", "2024-07-21"), StatusPending},
		{"Completed", rental(8, domain.RentalStatusCompleted, "2024-06-01", "2024-06-02"), StatusCompleted},
		{"Cancelled", rental(9, domain.RentalStatusCancelled, "2024-06-01", "2024-06-02"), StatusCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Renter(tt.r, now))
		})
	}
}

func TestOwner(t *testing.T) {
	now := time.Date(2024, 7, 12, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		r    domain.Rental
		want DisplayStatus
	}{
		{"Upcoming", rental(1, domain.RentalStatusApproved, "2024-07-13", "2024-07-15"), StatusUpcoming},
		{"Active", rental(2, domain.RentalStatusActive, "2024-07-10", "2024-07-12"), StatusActive},
		{"Overdue", rental(3, domain.RentalStatusActive, "2024-07-01", "2024-07-11"), StatusOverdue},
		{"Returned awaiting confirmation is still overdue", rental(4, domain.RentalStatusReturned, "2024-07-01", "2024-07-11"), StatusOverdue},
		{"Completed", rental(5, domain.RentalStatusCompleted, "2024-07-01", "2024-07-11"), StatusCompleted},
		{"Archived", rental(6, domain.RentalStatusArchived, "2024-07-01", "2024-07-11"), StatusArchived},
		{"Declined", rental(7, domain.RentalStatusDeclined, "2024-07-20", "2024-07-21"), StatusDeclined},
		{"Pending", rental(8, domain.RentalStatusPending, "2024-07-20", "2024-07-21"), StatusPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Owner(tt.r, now))
		})
	}
}

func TestYesterdayIsOverdueInBothViews(t *testing.T) {
	now := time.Date(2024, 7, 12, 0, 0, 1, 0, time.UTC)
	r := rental(1, domain.RentalStatusActive, "2024-07-09", "2024-07-11")

	assert.Equal(t, StatusOverdue, Renter(r, now))
	assert.Equal(t, StatusOverdue, Owner(r, now))
}

func TestClassifyIsIdempotent(t *testing.T) {
	now := time.Date(2024, 7, 12, 23, 59, 59, 0, time.FixedZone("UTC+14", 14*3600))
	r := rental(1, domain.RentalStatusApproved, "2024-07-12", "2024-07-12")

	for _, view := range []View{ViewRenter, ViewOwner} {
		first := Classify(r, now, view)
		second := Classify(r, now, view)
		assert.Equal(t, first, second)
	}
}

func TestDashboardOrdering(t *testing.T) {
	now := time.Date(2024, 7, 12, 12, 0, 0, 0, time.UTC)
	rentals := []domain.Rental{
		rental(1, domain.RentalStatusActive, "2024-07-10", "2024-07-20"),
		rental(2, domain.RentalStatusActive, "2024-07-01", "2024-07-10"),
		rental(3, domain.RentalStatusApproved, "2024-07-13", "2024-07-14"),
		rental(4, domain.RentalStatusActive, "2024-06-20", "2024-07-05"),
		rental(5, domain.RentalStatusActive, "2024-07-11", "2024-07-12"),
		rental(6, domain.RentalStatusApproved, "2024-07-13", "2024-07-14"),
	}

	entries := Dashboard(rentals, now, ViewOwner)

	var ids []int32
	for _, e := range entries {
		ids = append(ids, e.Rental.ID)
	}
	// overdue 4 then 2, then by soonest end date, ties on id
	assert.Equal(t, []int32{4, 2, 5, 3, 6, 1}, ids)
	assert.Equal(t, StatusOverdue, entries[0].Display)
	assert.Equal(t, StatusOverdue, entries[1].Display)
	assert.Equal(t, StatusActive, entries[2].Display)
}
