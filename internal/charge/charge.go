package charge

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/carlosandre007/escala/internal/calendar"
	"github.com/carlosandre007/escala/internal/recurrence"
)

// Status represents the lifecycle state of a charge.
type Status string

const (
	StatusPending Status = "pending"
	StatusSettled Status = "settled"
)

var (
	ErrNotFound = errors.New("charge not found")
	// ErrConflict is returned when a guarded update finds the charge in a
	// different state than expected, usually because another session changed it.
	ErrConflict = errors.New("charge changed concurrently")
	ErrInvalid  = errors.New("invalid charge")
)

// Charge is one expected or settled payment from a client.
type Charge struct {
	ID         uuid.UUID
	ClientName string
	Reference  string
	Amount     decimal.Decimal
	DueDate    calendar.Date
	DueTime    *string // HH:MM, display only
	Status     Status
	SettledAt  *time.Time
	Recurrence recurrence.Rule

	// PredecessorID points at the charge whose settlement created this one.
	PredecessorID *uuid.UUID

	CreatedAt time.Time
	UpdatedAt *time.Time
}

func (c *Charge) IsSettled() bool {
	return c.Status == StatusSettled
}

// Clone returns a deep copy so views can be changed without touching the original.
func (c *Charge) Clone() *Charge {
	cp := *c

	if c.DueTime != nil {
		cp.DueTime = new(*c.DueTime)
	}

	if c.SettledAt != nil {
		cp.SettledAt = new(*c.SettledAt)
	}

	if c.PredecessorID != nil {
		cp.PredecessorID = new(*c.PredecessorID)
	}

	if c.UpdatedAt != nil {
		cp.UpdatedAt = new(*c.UpdatedAt)
	}

	if c.Recurrence.AnchorWeekday != nil {
		cp.Recurrence.AnchorWeekday = new(*c.Recurrence.AnchorWeekday)
	}

	if c.Recurrence.AnchorDay != nil {
		cp.Recurrence.AnchorDay = new(*c.Recurrence.AnchorDay)
	}

	return &cp
}

// Successor builds the pending occurrence that follows c, or returns nil when
// c does not recur.
func (c *Charge) Successor() *Charge {
	next, ok := c.Recurrence.Next(c.DueDate)
	if !ok {
		return nil
	}

	succ := c.Clone()
	succ.ID = uuid.Nil
	succ.DueDate = next
	succ.Status = StatusPending
	succ.SettledAt = nil
	succ.PredecessorID = new(c.ID)
	succ.CreatedAt = time.Time{}
	succ.UpdatedAt = nil

	return succ
}

// Patch is a targeted change to a single charge.
type Patch struct {
	Status    Status
	SettledAt *time.Time

	// From guards the write: the row is only changed while its status still
	// equals From. Empty means unguarded.
	From Status
}

// CreateParams holds the operator-entered fields of a new charge.
type CreateParams struct {
	ClientName string
	Reference  string
	Amount     decimal.Decimal
	DueDate    calendar.Date
	DueTime    *string
	Recurrence recurrence.Rule
}

// Validate rejects incomplete manual entries before they reach the store.
func (p CreateParams) Validate() error {
	if strings.TrimSpace(p.ClientName) == "" {
		return fmt.Errorf("%w: client name is required", ErrInvalid)
	}

	if strings.TrimSpace(p.Reference) == "" {
		return fmt.Errorf("%w: reference is required", ErrInvalid)
	}

	if p.Amount.IsNegative() {
		return fmt.Errorf("%w: amount cannot be negative", ErrInvalid)
	}

	if p.DueDate.IsZero() {
		return fmt.Errorf("%w: due date is required", ErrInvalid)
	}

	if p.DueTime != nil {
		if _, err := time.Parse("15:04", *p.DueTime); err != nil {
			return fmt.Errorf("%w: due time must be HH:MM", ErrInvalid)
		}
	}

	if _, err := recurrence.ParseFrequency(string(p.Recurrence.Frequency)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if wd := p.Recurrence.AnchorWeekday; wd != nil && (*wd < time.Sunday || *wd > time.Saturday) {
		return fmt.Errorf("%w: day of week must be between 0 and 6", ErrInvalid)
	}

	if d := p.Recurrence.AnchorDay; d != nil && (*d < 1 || *d > 31) {
		return fmt.Errorf("%w: day of month must be between 1 and 31", ErrInvalid)
	}

	return nil
}

// New builds a pending charge from params.
func New(p CreateParams) *Charge {
	rule := p.Recurrence
	if rule.Frequency == "" {
		rule.Frequency = recurrence.None
	}

	return &Charge{
		ClientName: strings.TrimSpace(p.ClientName),
		Reference:  strings.TrimSpace(p.Reference),
		Amount:     p.Amount,
		DueDate:    p.DueDate,
		DueTime:    p.DueTime,
		Status:     StatusPending,
		Recurrence: rule,
	}
}
