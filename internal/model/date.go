package model

import (
	"time"

	"gorm.io/datatypes"
)

// Day truncates t to midnight UTC of the calendar day t falls on in its own
// location. Every date column is stored in this shape so comparisons ignore
// clock time and zones.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewDate returns a date column value for the given calendar day.
func NewDate(year int, month time.Month, day int) *datatypes.Date {
	v := datatypes.Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
	return &v
}

// DateOf converts t into a date column value, dropping the clock part.
func DateOf(t time.Time) *datatypes.Date {
	v := datatypes.Date(Day(t))
	return &v
}

func dayOf(d *datatypes.Date) time.Time {
	return Day(time.Time(*d))
}
