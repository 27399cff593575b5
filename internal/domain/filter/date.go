package filter

import (
	"fmt"
	"strings"
	"time"
)

// Date is a civil calendar date with no time of day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// Accepted layouts for the start/end query values.
var dateLayouts = []string{ //nolint:gochecknoglobals // parse table
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	time.RFC3339,
}

// ParseDate parses a start/end filter value.
func ParseDate(raw string) (Date, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, fmt.Errorf("%w: %q", ErrMalformedDate, raw)
}

// DateOf returns the civil date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// YearStart returns Jan 1 of year.
func YearStart(year int) Date { return Date{Year: year, Month: time.January, Day: 1} }

// YearEnd returns Dec 31 of year.
func YearEnd(year int) Date { return Date{Year: year, Month: time.December, Day: 31} }

// In returns midnight of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// After reports whether d is strictly later than o.
func (d Date) After(o Date) bool { return o.Before(d) }

// String formats d as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}
