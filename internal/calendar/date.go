// Package calendar provides a time-zone free calendar date and the 7-day
// window used to lay out the charge schedule.
package calendar

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Date is a calendar day with no time-of-day or location attached.
// Dates compare component-wise, so the same Date always means the same day
// regardless of the caller's clock.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// New builds a Date, normalising out-of-range components the way time.Date does
// (e.g. March 0 is the last day of February).
func New(year int, month time.Month, day int) Date {
	return FromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// FromTime returns the calendar day of t in t's own location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the current calendar day in loc.
func Today(loc *time.Location) Date {
	if loc == nil {
		loc = time.Local
	}

	return FromTime(time.Now().In(loc))
}

// Parse reads a YYYY-MM-DD string. A trailing time component, as produced by
// ISO timestamps, is rejected rather than silently truncated.
func Parse(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, fmt.Errorf("parsing date %q: %w", s, err)
	}

	return FromTime(t), nil
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

// AddDays moves the date by n calendar days.
func (d Date) AddDays(n int) Date {
	return New(d.Year, d.Month, d.Day+n)
}

func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// Compare returns -1, 0 or +1 comparing year, then month, then day.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }
func (d Date) After(o Date) bool  { return d.Compare(o) > 0 }
func (d Date) Equal(o Date) bool  { return d == o }

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}

	return 0
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}

	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	if s == nil || *s == "" {
		*d = Date{}
		return nil
	}

	parsed, err := Parse(*s)
	if err != nil {
		return err
	}

	*d = parsed

	return nil
}

// Scan implements sql.Scanner. DATE columns arrive as time.Time from the pgx
// driver; text representations are accepted as well.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
	case time.Time:
		*d = FromTime(v)
	case string:
		parsed, err := Parse(v)
		if err != nil {
			return err
		}

		*d = parsed
	case []byte:
		parsed, err := Parse(string(v))
		if err != nil {
			return err
		}

		*d = parsed
	default:
		return fmt.Errorf("cannot scan %T into calendar.Date", src)
	}

	return nil
}

// Value implements driver.Valuer. Dates are sent as YYYY-MM-DD text so the
// database never applies a time zone conversion.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}

	return d.String(), nil
}
