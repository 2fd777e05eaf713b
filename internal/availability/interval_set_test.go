package availability

import (
	"errors"
	"testing"
	"time"

	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) utils.Date { return utils.MustParseDate(s) }

func rng(start, end string) utils.DateRange {
	return utils.DateRange{Start: d(start), End: d(end)}
}

func rental(id int32, status domain.RentalStatus, start, end string) domain.Rental {
	return domain.Rental{ID: id, ListingID: 1, Status: status, StartDate: d(start), EndDate: d(end)}
}

func TestIntervalSet_OnlyOccupancyStatusesBlock(t *testing.T) {
	rentals := []domain.Rental{
		rental(1, domain.RentalStatusPending, "2024-07-01", "2024-07-02"),
		rental(2, domain.RentalStatusDeclined, "2024-07-03", "2024-07-04"),
		rental(3, domain.RentalStatusCancelled, "2024-07-05", "2024-07-06"),
		rental(4, domain.RentalStatusApproved, "2024-07-10", "2024-07-12"),
		rental(5, domain.RentalStatusActive, "2024-07-15", "2024-07-15"),
		rental(6, domain.RentalStatusReturned, "2024-07-20", "2024-07-21"),
	}
	set := New(1, nil, rentals)

	assert.True(t, set.IsFree(rng("2024-07-01", "2024-07-06")))
	assert.False(t, set.IsFree(rng("2024-07-12", "2024-07-14")))
	assert.False(t, set.IsFree(rng("2024-07-15", "2024-07-15")))
	assert.False(t, set.IsFree(rng("2024-07-21", "2024-07-25")))
	assert.Len(t, set.Blocks(), 3)
}

func TestIntervalSet_IgnoresOtherListings(t *testing.T) {
	other := rental(9, domain.RentalStatusApproved, "2024-07-10", "2024-07-12")
	other.ListingID = 2
	set := New(1, []domain.BlackoutRange{{ID: 1, ListingID: 2, StartDate: d("2024-07-01"), EndDate: d("2024-07-31")}}, []domain.Rental{other})
	assert.True(t, set.IsFree(rng("2024-07-01", "2024-07-31")))
}

func TestIntervalSet_OverlapIsBinary(t *testing.T) {
	set := New(1, []domain.BlackoutRange{{ID: 7, ListingID: 1, StartDate: d("2024-08-10"), EndDate: d("2024-08-15")}}, nil)

	for name, r := range map[string]utils.DateRange{
		"contained": rng("2024-08-11", "2024-08-12"),
		"partial":   rng("2024-08-14", "2024-08-20"),
		"equal":     rng("2024-08-10", "2024-08-15"),
		"covering":  rng("2024-08-01", "2024-08-31"),
	} {
		t.Run(name, func(t *testing.T) {
			err := set.Check(r)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrOverlap))
			var overlap *domain.OverlapError
			require.True(t, errors.As(err, &overlap))
			assert.Equal(t, []utils.DateRange{rng("2024-08-10", "2024-08-15")}, overlap.Conflicts)
		})
	}

	assert.NoError(t, set.Check(rng("2024-08-16", "2024-08-16")))
	assert.NoError(t, set.Check(rng("2024-08-09", "2024-08-09")))
}

func TestIntervalSet_Without(t *testing.T) {
	set := New(1, nil, []domain.Rental{
		rental(1, domain.RentalStatusApproved, "2024-07-10", "2024-07-12"),
		rental(2, domain.RentalStatusApproved, "2024-07-20", "2024-07-22"),
	})
	assert.False(t, set.IsFree(rng("2024-07-11", "2024-07-13")))
	assert.True(t, set.Without(1).IsFree(rng("2024-07-11", "2024-07-13")))
	assert.False(t, set.Without(1).IsFree(rng("2024-07-21", "2024-07-21")))
}

func TestIntervalSet_UnavailableDates(t *testing.T) {
	set := New(1,
		[]domain.BlackoutRange{{ID: 1, ListingID: 1, StartDate: d("2024-06-01"), EndDate: d("2024-06-03")}},
		[]domain.Rental{
			rental(1, domain.RentalStatusApproved, "2024-06-03", "2024-06-04"),
			rental(2, domain.RentalStatusPending, "2024-06-10", "2024-06-12"),
		},
	)

	dates := set.UnavailableDates(rng("2024-06-02", "2024-06-30"))
	assert.Equal(t, []utils.Date{d("2024-06-02"), d("2024-06-03"), d("2024-06-04")}, dates)
}

func TestIntervalSet_SingleDayBlackoutIsTimezoneStable(t *testing.T) {
	offsets := []int{-12, -5, 0, 5, 14}
	for _, off := range offsets {
		loc := time.FixedZone("test", off*3600)
		// A caller in any zone builds the blackout from its own local midnight.
		day := utils.DateOf(time.Date(2024, 6, 1, 0, 0, 0, 0, loc))
		set := New(1, []domain.BlackoutRange{{ID: 1, ListingID: 1, StartDate: day, EndDate: day}}, nil)

		dates := set.UnavailableDates(rng("2024-05-30", "2024-06-03"))
		assert.Equal(t, []utils.Date{d("2024-06-01")}, dates, "offset %d", off)
	}
}
