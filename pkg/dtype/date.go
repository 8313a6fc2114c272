package dtype

import (
	"fmt"
	"time"
)

// DateValue is a calendar date packed into an int32 as
// (year << 16) | (month << 8) | day, with month in 1..12 and day in 1..31.
// The packing is the storage format of Date columns; it orders correctly
// under plain integer comparison.
type DateValue int32

// NewDate packs a calendar date.
func NewDate(year, month, day int) DateValue {
	return DateValue(year<<16 | month<<8 | day)
}

// DateFromTime packs the calendar date of t in its own location.
func DateFromTime(t time.Time) DateValue {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// Year returns the packed year.
func (d DateValue) Year() int { return int(d >> 16) }

// Month returns the packed month, 1..12.
func (d DateValue) Month() int { return int(d>>8) & 0xff }

// Day returns the packed day of month, 1..31.
func (d DateValue) Day() int { return int(d) & 0xff }

// Time returns the date at midnight UTC.
func (d DateValue) Time() time.Time {
	return time.Date(d.Year(), time.Month(d.Month()), d.Day(), 0, 0, 0, 0, time.UTC)
}

// String formats the date as YYYY-MM-DD.
func (d DateValue) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year(), d.Month(), d.Day())
}
