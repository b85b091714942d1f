package domain

import (
	"fmt"
	"time"
)

// Wire layouts for plain date and clock values. The system stores both as
// strings and performs no timezone conversion.
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// ValidDate reports whether s is a well-formed YYYY-MM-DD date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// ValidClock reports whether s is a well-formed HH:MM clock value.
func ValidClock(s string) bool {
	_, err := time.Parse(ClockLayout, s)
	return err == nil
}

// MonthRange returns the first day of (year, month) and the first day of the
// following month as date strings. December rolls into January of the next
// year.
func MonthRange(year, month int) (start, end string) {
	start = fmt.Sprintf("%04d-%02d-01", year, month)
	if month == 12 {
		end = fmt.Sprintf("%04d-01-01", year+1)
	} else {
		end = fmt.Sprintf("%04d-%02d-01", year, month+1)
	}
	return start, end
}

// WeekStart returns the Monday of the week containing t as a date string.
func WeekStart(t time.Time) string {
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset).Format(DateLayout)
}
