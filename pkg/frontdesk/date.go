package frontdesk

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date without a time of day.
type Date struct {
	year  int
	month time.Month
	day   int
}

// NewDate builds a Date, normalizing out-of-range components the way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC), time.UTC)
}

// DateOf returns the calendar date of instant as observed in location.
func DateOf(instant time.Time, location *time.Location) Date {
	if location == nil {
		location = time.UTC
	}
	year, month, day := instant.In(location).Date()
	return Date{year: year, month: month, day: day}
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(raw string) (Date, error) {
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidStayDates, raw)
	}
	return DateOf(parsed, time.UTC), nil
}

// IsZero reports whether the date is unset.
func (date Date) IsZero() bool {
	return date.year == 0 && date.month == 0 && date.day == 0
}

// Time returns midnight UTC of the date.
func (date Date) Time() time.Time {
	if date.IsZero() {
		return time.Time{}
	}
	return time.Date(date.year, date.month, date.day, 0, 0, 0, 0, time.UTC)
}

// Before reports whether date is earlier than other.
func (date Date) Before(other Date) bool {
	return date.Time().Before(other.Time())
}

// After reports whether date is later than other.
func (date Date) After(other Date) bool {
	return date.Time().After(other.Time())
}

// Equal reports whether both dates name the same day.
func (date Date) Equal(other Date) bool {
	return date == other
}

// AddDays returns the date shifted by days.
func (date Date) AddDays(days int) Date {
	return DateOf(date.Time().AddDate(0, 0, days), time.UTC)
}

// String formats the date as YYYY-MM-DD.
func (date Date) String() string {
	if date.IsZero() {
		return ""
	}
	return date.Time().Format(dateLayout)
}
