package scheduler

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/carlosandre007/escala/internal/calendar"
	"github.com/carlosandre007/escala/internal/charge"
	"github.com/carlosandre007/escala/internal/ledger"
)

// WeekView is what the operator sees for one window: the charges due in it,
// grouped by day, with their totals.
type WeekView struct {
	Window  calendar.Window
	Charges []*charge.Charge
	Days    map[calendar.Date][]*charge.Charge
	Summary ledger.Summary
}

// NewWeekView builds a view over w. Charges due outside w are dropped.
func NewWeekView(w calendar.Window, charges []*charge.Charge) *WeekView {
	inWindow := make([]*charge.Charge, 0, len(charges))

	for _, c := range charges {
		if w.Contains(c.DueDate) {
			inWindow = append(inWindow, c)
		}
	}

	slices.SortStableFunc(inWindow, func(a, b *charge.Charge) int {
		return cmp.Or(
			a.DueDate.Compare(b.DueDate),
			cmp.Compare(a.ClientName, b.ClientName),
		)
	})

	return &WeekView{
		Window:  w,
		Charges: inWindow,
		Days:    ledger.BucketByDay(inWindow, w),
		Summary: ledger.Summarize(inWindow),
	}
}

// Day returns the charges due on the i-th day of the window.
func (v *WeekView) Day(i int) []*charge.Charge {
	if i < 0 || i >= len(v.Window) {
		return nil
	}

	return v.Days[v.Window[i]]
}

func (v *WeekView) Find(id uuid.UUID) *charge.Charge {
	for _, c := range v.Charges {
		if c.ID == id {
			return c
		}
	}

	return nil
}

// WithStatus returns a copy of the view with one charge moved to status,
// for showing an optimistic result before the store confirms it.
func (v *WeekView) WithStatus(id uuid.UUID, status charge.Status, at time.Time) *WeekView {
	charges := make([]*charge.Charge, len(v.Charges))

	for i, c := range v.Charges {
		if c.ID != id {
			charges[i] = c
			continue
		}

		cp := c.Clone()
		cp.Status = status
		cp.SettledAt = nil

		if status == charge.StatusSettled {
			cp.SettledAt = new(at)
		}

		charges[i] = cp
	}

	return NewWeekView(v.Window, charges)
}

type DriftKind string

const (
	// DriftStatus: the local view showed a different status than the store holds.
	DriftStatus DriftKind = "status"
	// DriftMissing: the local view showed a charge the store no longer has.
	DriftMissing DriftKind = "missing"
	// DriftAdded: the store has a charge the local view did not show.
	DriftAdded DriftKind = "added"
)

// Drift is one disagreement between a local view and the store.
type Drift struct {
	ChargeID uuid.UUID
	Kind     DriftKind
	Local    charge.Status
	Stored   charge.Status
}

// Reconcile replaces local with the store snapshot and reports where they
// differed. The snapshot always wins; local state is never merged back.
func Reconcile(local, snapshot *WeekView) (*WeekView, []Drift) {
	if local == nil || local.Window != snapshot.Window {
		return snapshot, nil
	}

	var drift []Drift

	stored := make(map[uuid.UUID]*charge.Charge, len(snapshot.Charges))
	for _, c := range snapshot.Charges {
		stored[c.ID] = c
	}

	seen := make(map[uuid.UUID]struct{}, len(local.Charges))

	for _, c := range local.Charges {
		seen[c.ID] = struct{}{}

		s, ok := stored[c.ID]
		switch {
		case !ok:
			drift = append(drift, Drift{ChargeID: c.ID, Kind: DriftMissing, Local: c.Status})
		case s.Status != c.Status:
			drift = append(drift, Drift{ChargeID: c.ID, Kind: DriftStatus, Local: c.Status, Stored: s.Status})
		}
	}

	for _, c := range snapshot.Charges {
		if _, ok := seen[c.ID]; !ok {
			drift = append(drift, Drift{ChargeID: c.ID, Kind: DriftAdded, Stored: c.Status})
		}
	}

	return snapshot, drift
}
