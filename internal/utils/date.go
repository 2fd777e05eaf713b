package utils

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Date represents a calendar date, independent of any time zone.
type Date struct {
	Year  int
	Month int
	Day   int
}

const dateLayout = "2006-01-02"

// ParseDate converts a yyyy-mm-dd formatted string into a Date struct
func ParseDate(dateStr string) (Date, error) {
	parts := strings.Split(dateStr, "-")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("invalid date format, expected yyyy-mm-dd")
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return Date{}, fmt.Errorf("invalid year: %v", err)
	}

	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return Date{}, fmt.Errorf("invalid month: %v", err)
	}

	day, err := strconv.Atoi(parts[2])
	if err != nil {
		return Date{}, fmt.Errorf("invalid day: %v", err)
	}

	if month < 1 || month > 12 {
		return Date{}, fmt.Errorf("month must be between 1 and 12")
	}

	if day < 1 || day > DaysInMonth(year, month) {
		return Date{}, fmt.Errorf("day must be between 1 and %d", DaysInMonth(year, month))
	}

	return Date{Year: year, Month: month, Day: day}, nil
}

// MustParseDate is ParseDate for literals known to be valid.
func MustParseDate(dateStr string) Date {
	d, err := ParseDate(dateStr)
	if err != nil {
		panic(err)
	}
	return d
}

// DateOf returns the calendar day of t as seen in t's own location.
// The instant is never shifted into the process-local zone.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: int(m), Day: d}
}

// DaysInMonth returns the number of days in a given month
func DaysInMonth(year, month int) int {
	if month == 2 {
		// Check for leap year
		if (year%4 == 0 && year%100 != 0) || (year%400 == 0) {
			return 29
		}
		return 28
	}

	// Months with 30 days: April, June, September, November
	if month == 4 || month == 6 || month == 9 || month == 11 {
		return 30
	}

	return 31
}

// Time anchors the date at UTC midnight. Only used for arithmetic and storage.
func (d Date) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

// ordinal is the number of days since 1970-01-01.
func (d Date) ordinal() int64 {
	return d.Time().Unix() / 86400
}

func (d Date) IsZero() bool {
	return d == Date{}
}

// Compare returns -1, 0 or +1.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(d.Month, o.Month)
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }
func (d Date) After(o Date) bool  { return d.Compare(o) > 0 }

// AddDays moves the date by n whole days.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// DaysUntil returns the signed number of whole days from d to o.
func (d Date) DaysUntil(o Date) int {
	return int(o.ordinal() - d.ordinal())
}

func (d Date) String() string {
	return d.Time().Format(dateLayout)
}

// Value stores the date as an ISO string so the column type decides the zone (none, for DATE).
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// Scan accepts DATE columns as returned by lib/pq (time.Time) or as text.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = DateOf(v)
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

func (d *Date) scanString(s string) error {
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// DateRange is an inclusive [Start, End] span of calendar dates.
type DateRange struct {
	Start Date
	End   Date
}

// NewDateRange validates start <= end.
func NewDateRange(start, end Date) (DateRange, error) {
	if start.IsZero() || end.IsZero() {
		return DateRange{}, fmt.Errorf("start and end dates are required")
	}
	if end.Before(start) {
		return DateRange{}, fmt.Errorf("end date must be >= start date")
	}
	return DateRange{Start: start, End: end}, nil
}

// Overlaps reports whether two inclusive ranges share at least one day.
func (r DateRange) Overlaps(o DateRange) bool {
	return !r.Start.After(o.End) && !o.Start.After(r.End)
}

func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// Days is the inclusive whole-day count; a same-day range is 1 day.
func (r DateRange) Days() int {
	return r.Start.DaysUntil(r.End) + 1
}

// Each calls fn for every day from Start to End inclusive.
func (r DateRange) Each(fn func(Date)) {
	for d := r.Start; !d.After(r.End); d = d.AddDays(1) {
		fn(d)
	}
}

func (r DateRange) String() string {
	return r.Start.String() + ".." + r.End.String()
}
