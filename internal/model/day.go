package model

import (
	"fmt"
	"time"
)

// DayFormat is the ISO-8601 calendar date layout used everywhere a date is
// rendered or parsed: series files, the roster cache, CLI flags, logs.
const DayFormat = "2006-01-02"

// Day is a calendar date with day granularity and no time zone.
type Day struct {
	y int
	m time.Month
	d int
}

// NewDay returns a normalized Day (out-of-range month/day values roll over
// the way time.Date rolls them over).
func NewDay(year int, month time.Month, day int) Day {
	d := Day{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// ParseDay parses an ISO-8601 date such as "2016-01-01".
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayFormat, s)
	if err != nil {
		return Day{}, fmt.Errorf("invalid date %q, want %s: %w", s, DayFormat, err)
	}
	return NewDay(t.Date()), nil
}

// MustParseDay is ParseDay that panics on error, for constants in tests.
func MustParseDay(s string) Day {
	d, err := ParseDay(s)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// Today returns the current date in local time.
func Today() Day { return NewDay(time.Now().Date()) }

// time returns the canonical midnight-UTC instant for the day.
func (d Day) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// Time returns the day as midnight UTC.
func (d Day) Time() time.Time { return d.time() }

// Unix returns the unix timestamp of midnight UTC on the day.
func (d Day) Unix() int64 { return d.time().Unix() }

// Add returns the day shifted by the given number of days.
func (d Day) Add(days int) Day { return NewDay(d.y, d.m, d.d+days) }

// After reports whether d is strictly after x.
func (d Day) After(x Day) bool { return d.time().After(x.time()) }

// Before reports whether d is strictly before x.
func (d Day) Before(x Day) bool { return d.time().Before(x.time()) }

// IsZero reports whether d is the zero Day.
func (d Day) IsZero() bool { return d == Day{} }

func (d Day) String() string { return d.time().Format(DayFormat) }
