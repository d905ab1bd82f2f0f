// Package recurrence computes the due date of the next occurrence of a
// recurring charge.
//
// Each frequency has its own strategy. Weekly advances by seven calendar days.
// Monthly moves to the same day of the following month and clamps to that
// month's last day when the day does not exist there (Jan 31 -> Feb 29 in a
// leap year, Feb 28 otherwise).
package recurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/carlosandre007/escala/internal/calendar"
)

// Frequency is how often a recurring charge comes due.
type Frequency string

const (
	None    Frequency = "none"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
)

// ParseFrequency accepts the stored frequency names. The legacy value "fixed"
// and the empty string both mean a one-off charge.
func ParseFrequency(s string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "fixed":
		return None, nil
	case "weekly":
		return Weekly, nil
	case "monthly":
		return Monthly, nil
	}

	return "", fmt.Errorf("unknown frequency: %s", s)
}

// Rule describes whether and how a charge recurs.
type Rule struct {
	Recurring bool
	Frequency Frequency

	// AnchorWeekday is the weekday a weekly charge was scheduled for.
	AnchorWeekday *time.Weekday
	// AnchorDay is the day of month a monthly charge was scheduled for.
	AnchorDay *int
}

// Repeats reports whether settling a charge with this rule produces a successor.
func (r Rule) Repeats() bool {
	if !r.Recurring {
		return false
	}

	_, ok := strategies[r.Frequency]

	return ok
}

// Next returns the due date that follows due under the rule. The boolean is
// false when the rule does not recur.
//
// A monthly date that was clamped to a month end springs back to AnchorDay
// in the following month: with AnchorDay 31, Jan 31 -> Feb 29 -> Mar 31.
func (r Rule) Next(due calendar.Date) (calendar.Date, bool) {
	if !r.Recurring {
		return calendar.Date{}, false
	}

	if r.Frequency == Monthly && r.AnchorDay != nil {
		anchor := *r.AnchorDay
		if anchor > due.Day && due.Day == calendar.DaysIn(due.Year, due.Month) {
			return addMonthClamped(due.Year, due.Month, anchor), true
		}
	}

	return Next(due, r.Frequency)
}

// Next returns the due date following due for the frequency, or false when
// the frequency does not recur.
func Next(due calendar.Date, f Frequency) (calendar.Date, bool) {
	s, ok := strategies[f]
	if !ok {
		return calendar.Date{}, false
	}

	return s.Next(due), true
}

// Strategy advances a due date by one period.
type Strategy interface {
	Next(due calendar.Date) calendar.Date
}

// WeeklyStrategy advances by seven calendar days.
type WeeklyStrategy struct{}

func (WeeklyStrategy) Next(due calendar.Date) calendar.Date {
	return due.AddDays(7)
}

// MonthlyStrategy advances to the same day of the next month, clamped to the
// last day of that month.
type MonthlyStrategy struct{}

func (MonthlyStrategy) Next(due calendar.Date) calendar.Date {
	return addMonthClamped(due.Year, due.Month, due.Day)
}

func addMonthClamped(year int, month time.Month, day int) calendar.Date {
	y, m := year, month+1
	if m > time.December {
		y, m = y+1, time.January
	}

	if last := calendar.DaysIn(y, m); day > last {
		day = last
	}

	return calendar.Date{Year: y, Month: m, Day: day}
}

var strategies = map[Frequency]Strategy{
	Weekly:  WeeklyStrategy{},
	Monthly: MonthlyStrategy{},
}
