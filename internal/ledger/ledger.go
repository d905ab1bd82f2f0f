// Package ledger aggregates charges into settled and outstanding totals and
// lays them out over a calendar window.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/carlosandre007/escala/internal/calendar"
	"github.com/carlosandre007/escala/internal/charge"
)

// Summary holds the totals of a set of charges. Total always equals
// Settled + Outstanding exactly.
type Summary struct {
	Total       decimal.Decimal
	Settled     decimal.Decimal
	Outstanding decimal.Decimal

	Count            int
	SettledCount     int
	OutstandingCount int
}

// Summarize adds up the amounts of charges by status.
func Summarize(charges []*charge.Charge) Summary {
	s := Summary{
		Settled:     decimal.Zero,
		Outstanding: decimal.Zero,
	}

	for _, c := range charges {
		if c.IsSettled() {
			s.Settled = s.Settled.Add(c.Amount)
			s.SettledCount++

			continue
		}

		s.Outstanding = s.Outstanding.Add(c.Amount)
		s.OutstandingCount++
	}

	s.Total = s.Settled.Add(s.Outstanding)
	s.Count = s.SettledCount + s.OutstandingCount

	return s
}

// BucketByDay partitions charges by due date over the window. Every day of
// the window has a key; charges due outside the window are left out.
func BucketByDay(charges []*charge.Charge, w calendar.Window) map[calendar.Date][]*charge.Charge {
	buckets := make(map[calendar.Date][]*charge.Charge, len(w))
	for _, d := range w {
		buckets[d] = []*charge.Charge{}
	}

	for _, c := range charges {
		if _, ok := buckets[c.DueDate]; !ok {
			continue
		}

		buckets[c.DueDate] = append(buckets[c.DueDate], c)
	}

	return buckets
}
