package utils

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	t.Run("Valid date", func(t *testing.T) {
		date, err := ParseDate("2024-01-15")
		assert.NoError(t, err)
		assert.Equal(t, 2024, date.Year)
		assert.Equal(t, 1, date.Month)
		assert.Equal(t, 15, date.Day)
	})

	t.Run("Invalid format", func(t *testing.T) {
		_, err := ParseDate("2024/01/15")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid date format")
	})

	t.Run("Invalid month", func(t *testing.T) {
		_, err := ParseDate("2024-13-15")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "month must be between 1 and 12")
	})

	t.Run("Invalid day", func(t *testing.T) {
		_, err := ParseDate("2024-01-32")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "day must be between 1 and 31")
	})

	t.Run("February 30 rejected", func(t *testing.T) {
		_, err := ParseDate("2023-02-29")
		assert.Error(t, err)
	})
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		year     int
		month    int
		expected int
	}{
		{2024, 1, 31},
		{2024, 2, 29}, // leap year
		{2023, 2, 28},
		{2024, 4, 30},
		{2024, 11, 30},
		{2024, 12, 31},
		{2000, 2, 29}, // divisible by 400
		{1900, 2, 28}, // divisible by 100 but not 400
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			assert.Equal(t, tt.expected, DaysInMonth(tt.year, tt.month))
		})
	}
}

func TestDateOf_KeepsCalendarDayAcrossZones(t *testing.T) {
	west := time.FixedZone("UTC-12", -12*3600)
	east := time.FixedZone("UTC+14", 14*3600)

	// Midnight and late evening in each zone still name June 1.
	assert.Equal(t, MustParseDate("2024-06-01"), DateOf(time.Date(2024, 6, 1, 0, 0, 0, 0, west)))
	assert.Equal(t, MustParseDate("2024-06-01"), DateOf(time.Date(2024, 6, 1, 23, 59, 0, 0, east)))
	assert.Equal(t, MustParseDate("2024-06-01"), DateOf(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
}

func TestDate_Arithmetic(t *testing.T) {
	d := MustParseDate("2024-02-28")
	assert.Equal(t, MustParseDate("2024-02-29"), d.AddDays(1))
	assert.Equal(t, MustParseDate("2024-03-01"), d.AddDays(2))
	assert.Equal(t, MustParseDate("2023-12-31"), MustParseDate("2024-01-01").AddDays(-1))
	assert.Equal(t, 2, d.DaysUntil(MustParseDate("2024-03-01")))
	assert.Equal(t, -2, MustParseDate("2024-03-01").DaysUntil(d))
	assert.True(t, d.Before(d.AddDays(1)))
	assert.True(t, d.AddDays(1).After(d))
	assert.Equal(t, 0, d.Compare(MustParseDate("2024-02-28")))
}

func TestDateRange_Days(t *testing.T) {
	t.Run("Same day is one day", func(t *testing.T) {
		r, err := NewDateRange(MustParseDate("2024-03-01"), MustParseDate("2024-03-01"))
		require.NoError(t, err)
		assert.Equal(t, 1, r.Days())
	})

	t.Run("Mar 1 to Mar 3 is three days", func(t *testing.T) {
		r, err := NewDateRange(MustParseDate("2024-03-01"), MustParseDate("2024-03-03"))
		require.NoError(t, err)
		assert.Equal(t, 3, r.Days())
	})

	t.Run("Cross month boundary", func(t *testing.T) {
		r, err := NewDateRange(MustParseDate("2024-01-25"), MustParseDate("2024-02-05"))
		require.NoError(t, err)
		assert.Equal(t, 12, r.Days())
	})

	t.Run("End before start", func(t *testing.T) {
		_, err := NewDateRange(MustParseDate("2024-03-03"), MustParseDate("2024-03-01"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "end date must be >= start date")
	})
}

func TestDateRange_Overlaps(t *testing.T) {
	base := DateRange{Start: MustParseDate("2024-07-10"), End: MustParseDate("2024-07-12")}

	tests := []struct {
		name     string
		other    DateRange
		overlaps bool
	}{
		{"shared last day", DateRange{MustParseDate("2024-07-12"), MustParseDate("2024-07-14")}, true},
		{"shared first day", DateRange{MustParseDate("2024-07-08"), MustParseDate("2024-07-10")}, true},
		{"contained", DateRange{MustParseDate("2024-07-11"), MustParseDate("2024-07-11")}, true},
		{"containing", DateRange{MustParseDate("2024-07-01"), MustParseDate("2024-07-31")}, true},
		{"equal", base, true},
		{"adjacent after", DateRange{MustParseDate("2024-07-13"), MustParseDate("2024-07-15")}, false},
		{"adjacent before", DateRange{MustParseDate("2024-07-05"), MustParseDate("2024-07-09")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.overlaps, base.Overlaps(tt.other))
			assert.Equal(t, tt.overlaps, tt.other.Overlaps(base))
		})
	}
}

func TestDate_ScanAndValue(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2024, 6, 1, 0, 0, 0, 0, time.FixedZone("", 0))))
	assert.Equal(t, MustParseDate("2024-06-01"), d)

	require.NoError(t, d.Scan([]byte("2024-06-02")))
	assert.Equal(t, MustParseDate("2024-06-02"), d)

	require.NoError(t, d.Scan("2024-06-03T00:00:00Z"))
	assert.Equal(t, MustParseDate("2024-06-03"), d)

	v, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-06-03", v)

	assert.Error(t, d.Scan(42))
}

func TestDate_JSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Start Date `json:"start"`
	}{MustParseDate("2024-06-01")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"2024-06-01"}`, string(b))

	var out struct {
		Start Date `json:"start"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"start":"2024-12-31"}`), &out))
	assert.Equal(t, MustParseDate("2024-12-31"), out.Start)
}
