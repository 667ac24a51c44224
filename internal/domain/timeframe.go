package domain

import (
	"fmt"
	"time"
)

// TimeFrame is the display granularity for chart and history queries.
type TimeFrame int

const (
	TimeFrameDay TimeFrame = iota
	TimeFrameWeek
	TimeFrameMonth
)

// String returns the lowercase wire name of the time frame.
func (f TimeFrame) String() string {
	switch f {
	case TimeFrameDay:
		return "day"
	case TimeFrameWeek:
		return "week"
	case TimeFrameMonth:
		return "month"
	}
	return "unknown"
}

// ParseTimeFrame maps a wire name back to a TimeFrame.
func ParseTimeFrame(s string) (TimeFrame, error) {
	switch s {
	case "day":
		return TimeFrameDay, nil
	case "week":
		return TimeFrameWeek, nil
	case "month":
		return TimeFrameMonth, nil
	}
	return 0, fmt.Errorf("unknown time frame %q", s)
}

// Day is a calendar day anchored to a specific location. The zero value is
// the "no day" sentinel used by streak state before any evaluation.
type Day struct {
	start time.Time
}

// DayOf returns the calendar day containing t in the given location.
func DayOf(t time.Time, loc *time.Location) Day {
	lt := t.In(loc)
	return Day{start: time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)}
}

// Start returns the first instant of the day.
func (d Day) Start() time.Time { return d.start }

// End returns the first instant of the following day. The interval covered
// by the day is half-open: [Start, End).
func (d Day) End() time.Time { return d.start.AddDate(0, 0, 1) }

// Next returns the following calendar day.
func (d Day) Next() Day { return Day{start: d.start.AddDate(0, 0, 1)} }

// Contains reports whether t falls within the day.
func (d Day) Contains(t time.Time) bool {
	return !t.Before(d.start) && t.Before(d.End())
}

// Equal reports whether two days are the same calendar day.
func (d Day) Equal(o Day) bool { return d.start.Equal(o.start) }

// Before reports whether d is an earlier calendar day than o.
func (d Day) Before(o Day) bool { return d.start.Before(o.start) }

// IsZero reports whether d is the "no day" sentinel.
func (d Day) IsZero() bool { return d.start.IsZero() }

// String formats the day as YYYY-MM-DD.
func (d Day) String() string { return d.start.Format("2006-01-02") }

// MarshalJSON encodes the day as its YYYY-MM-DD string, or null for the
// sentinel.
func (d Day) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}
