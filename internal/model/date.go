package model

import (
	"errors"
	"time"
)

const (
	// DateLayout is the accepted input format for calendar dates.
	DateLayout = "2006-01-02"

	// DisplayLayout renders dates the way the API returns them, e.g. "Mon May 01 2023".
	DisplayLayout = "Mon Jan 02 2006"
)

// ErrInvalidDate is returned when a date string is not a valid YYYY-MM-DD value.
var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

// CalendarDate is a date without time of day. The wrapped time is always
// midnight UTC so that comparisons and rendering never shift across zones.
type CalendarDate struct {
	t time.Time
}

// NewCalendarDate truncates t to its calendar date in t's own location and
// pins the result to midnight UTC.
func NewCalendarDate(t time.Time) CalendarDate {
	y, m, d := t.Date()
	return CalendarDate{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current UTC calendar date.
func Today() CalendarDate {
	return NewCalendarDate(time.Now().UTC())
}

// ParseCalendarDate parses a YYYY-MM-DD string as a UTC calendar date.
func ParseCalendarDate(s string) (CalendarDate, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return CalendarDate{}, ErrInvalidDate
	}
	return CalendarDate{t: t}, nil
}

// Time returns the date as midnight UTC.
func (d CalendarDate) Time() time.Time {
	return d.t
}

// IsZero reports whether the date is unset.
func (d CalendarDate) IsZero() bool {
	return d.t.IsZero()
}

// String returns the YYYY-MM-DD form.
func (d CalendarDate) String() string {
	return d.t.Format(DateLayout)
}

// Display renders the date as "Mon Jan 02 2006".
func (d CalendarDate) Display() string {
	return d.t.Format(DisplayLayout)
}

// MarshalText implements encoding.TextMarshaler.
func (d CalendarDate) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *CalendarDate) UnmarshalText(b []byte) error {
	parsed, err := ParseCalendarDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
