// Package events publishes charge lifecycle notifications for other parts of
// the dashboard (cash flow, alerts) to pick up.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/carlosandre007/escala/internal/calendar"
	"github.com/carlosandre007/escala/internal/charge"
)

type Type string

const (
	TypeSettled   Type = "charge.settled"
	TypeUnsettled Type = "charge.unsettled"
	TypeDeleted   Type = "charge.deleted"
)

// Event is the message body published for a charge state change.
type Event struct {
	Type        Type            `json:"type"`
	ChargeID    uuid.UUID       `json:"charge_id"`
	SuccessorID *uuid.UUID      `json:"successor_id,omitempty"`
	ClientName  string          `json:"client_name,omitempty"`
	DueDate     calendar.Date   `json:"due_date"`
	Amount      decimal.Decimal `json:"amount"`
	At          time.Time       `json:"at"`
}

// New builds an event describing c. successor may be nil.
func New(t Type, c *charge.Charge, successor *charge.Charge, at time.Time) Event {
	e := Event{
		Type:       t,
		ChargeID:   c.ID,
		ClientName: c.ClientName,
		DueDate:    c.DueDate,
		Amount:     c.Amount,
		At:         at,
	}

	if successor != nil {
		e.SuccessorID = new(successor.ID)
	}

	return e
}

func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
