// Package datetime builds absolute instants from timestamp components
// extracted by format grammars.
//
// Offsetless timestamps are interpreted in the configured zone (UTC when none
// is configured). Timestamps carrying an explicit UTC offset are
// authoritative and the configured zone is ignored for that field.
package datetime

import (
	"fmt"
	"time"
)

// startCentury is the first two digits of the year at process start, used as
// the expansion base for two-digit years ("14" becomes 2014 while the current
// year starts with 20).
var startCentury = time.Now().Year() / 100

// Components is a set of parsed date/time fields before zone resolution.
// Nsec holds fractional seconds in nanoseconds. Offset, when non-nil, is an
// explicit UTC offset in seconds east of UTC.
type Components struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int
	Nsec   int
	Offset *int
}

// ExpandYear expands a two-digit year using the century of the current year
// at process start. Years with more than two digits pass through unchanged.
func ExpandYear(year int) int {
	if year >= 100 {
		return year
	}
	return startCentury*100 + year
}

// daysIn returns the number of days in the given month, accounting for leap
// years. month must already be in 1..12.
func daysIn(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	}
	if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
		return 29
	}
	return 28
}

// Resolve validates the components and combines them into a single instant.
// Validation rejects month outside 1..12, a day invalid for the month, hour
// outside 0..23 and minute or second outside 0..59. loc may be nil for UTC.
func (c Components) Resolve(loc *time.Location) (time.Time, error) {
	if c.Month < 1 || c.Month > 12 {
		return time.Time{}, fmt.Errorf("month %d out of range", c.Month)
	}
	if c.Day < 1 || c.Day > daysIn(c.Year, c.Month) {
		return time.Time{}, fmt.Errorf("day %d invalid for %04d-%02d", c.Day, c.Year, c.Month)
	}
	if c.Hour < 0 || c.Hour > 23 {
		return time.Time{}, fmt.Errorf("hour %d out of range", c.Hour)
	}
	if c.Minute < 0 || c.Minute > 59 {
		return time.Time{}, fmt.Errorf("minute %d out of range", c.Minute)
	}
	if c.Second < 0 || c.Second > 59 {
		return time.Time{}, fmt.Errorf("second %d out of range", c.Second)
	}

	if c.Offset != nil {
		loc = time.FixedZone("", *c.Offset)
	} else if loc == nil {
		loc = time.UTC
	}

	return time.Date(c.Year, time.Month(c.Month), c.Day,
		c.Hour, c.Minute, c.Second, c.Nsec, loc), nil
}

// monthNums maps abbreviated English month names to their number.
// Log formats that spell months out (searchd query logs, syslog) are not
// locale aware, so only the C-locale abbreviations are recognized.
var monthNums = map[string]int{
	"Jan": 1, "Feb": 2, "Mar": 3, "Apr": 4, "May": 5, "Jun": 6,
	"Jul": 7, "Aug": 8, "Sep": 9, "Oct": 10, "Nov": 11, "Dec": 12,
}

// MonthNum returns the 1-based month number for an abbreviated English month
// name such as "Sep".
func MonthNum(name string) (int, bool) {
	n, ok := monthNums[name]
	return n, ok
}

// FracNsec converts the digits after a decimal point into nanoseconds.
// "609" becomes 609 milliseconds worth of nanoseconds.
func FracNsec(digits string) int {
	nsec := 0
	scale := int(time.Second)
	for i := 0; i < len(digits) && scale > 1; i++ {
		scale /= 10
		nsec += int(digits[i]-'0') * scale
	}
	return nsec
}
