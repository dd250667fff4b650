package aqs

import (
	"fmt"
	"strconv"
	"time"
)

// IsLeapYear reports whether year is a Gregorian leap year.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// LastDayOfMonth returns the last valid day of the given month.
func LastDayOfMonth(year, month int) (int, error) {
	if month < 1 || month > 12 {
		return 0, fmt.Errorf("%w: %02d", ErrInvalidMonth, month)
	}
	switch month {
	case 2:
		if IsLeapYear(year) {
			return 29, nil
		}
		return 28, nil
	case 1, 3, 5, 7, 8, 10, 12:
		return 31, nil
	default:
		return 30, nil
	}
}

// IsValidDate reports whether year/month/day names a real calendar date.
func IsValidDate(year, month, day int) bool {
	last, err := LastDayOfMonth(year, month)
	if err != nil {
		return false
	}
	return day >= 1 && day <= last
}

// parseDate splits an 8-digit YYYYMMDD string into its components.
func parseDate(value string) (year, month, day int, err error) {
	if len(value) != 8 {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidDateFormat, value)
	}
	for _, part := range []struct {
		s   string
		dst *int
	}{
		{value[:4], &year},
		{value[4:6], &month},
		{value[6:8], &day},
	} {
		n, convErr := strconv.Atoi(part.s)
		if convErr != nil {
			return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidDateFormat, value)
		}
		*part.dst = n
	}
	return year, month, day, nil
}

// CheckDate decides whether a YYYYMMDD date is usable for an AQS query as of
// now. Dates before 1970 or after now are rejected. Dates inside the recent
// ~18-month window (data not yet validated) or in the sparse 1971-1979 era
// are accepted with an advisory.
func CheckDate(value string, now time.Time) (*Advisory, error) {
	year, month, day, err := parseDate(value)
	if err != nil {
		return nil, err
	}
	if !IsValidDate(year, month, day) {
		return nil, fmt.Errorf("%w: %q is not a calendar date", ErrInvalidDateFormat, value)
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if year < 1970 || date.After(now) {
		return nil, fmt.Errorf("%w: %s", ErrDateOutOfBounds, value)
	}

	// Recency window approximated calendar-year-wise: second half of a year
	// more recent than two years ago, or first half of a year more recent
	// than one year ago.
	currentYear := now.Year()
	if (year > currentYear-2 && month >= 6) || (year > currentYear-1 && month < 6) {
		return &Advisory{
			Value:   value,
			Message: "date within the last 18 months; data may not be available or validated yet",
		}, nil
	}
	if year > 1970 && year < 1980 {
		return &Advisory{
			Value:   value,
			Message: "date before 1980; data may be sparse or unavailable",
		}, nil
	}
	return nil, nil
}
