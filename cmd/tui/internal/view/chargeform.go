package view

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/shopspring/decimal"

	"github.com/carlosandre007/escala/internal/calendar"
	"github.com/carlosandre007/escala/internal/charge"
	"github.com/carlosandre007/escala/internal/recurrence"
)

// chargeFormValues holds the bindings of the new-charge form.
type chargeFormValues struct {
	client    string
	reference string
	amount    string
	dueDate   string
	dueTime   string
	recurring bool
	frequency recurrence.Frequency
}

func newChargeFormValues(due calendar.Date) *chargeFormValues {
	return &chargeFormValues{
		dueDate:   due.String(),
		frequency: recurrence.Weekly,
	}
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}

		return nil
	}
}

func validAmount(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return errors.New("amount must be a number like 150.00")
	}

	if d.IsNegative() {
		return errors.New("amount cannot be negative")
	}

	return nil
}

func validDate(s string) error {
	if _, err := calendar.Parse(strings.TrimSpace(s)); err != nil {
		return errors.New("date must be YYYY-MM-DD")
	}

	return nil
}

func newChargeForm(v *chargeFormValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("client").
				Title("Client").
				Value(&v.client).
				Validate(required("client")),

			huh.NewInput().
				Key("reference").
				Title("Reference").
				Value(&v.reference).
				Validate(required("reference")),

			huh.NewInput().
				Key("amount").
				Title("Amount").
				Placeholder("150.00").
				Value(&v.amount).
				Validate(validAmount),

			huh.NewInput().
				Key("due_date").
				Title("Due date").
				Placeholder("YYYY-MM-DD").
				Value(&v.dueDate).
				Validate(validDate),

			huh.NewInput().
				Key("due_time").
				Title("Time (optional)").
				Placeholder("HH:MM").
				Value(&v.dueTime),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Key("recurring").
				Title("Recurring?").
				Value(&v.recurring),

			huh.NewSelect[recurrence.Frequency]().
				Key("frequency").
				Title("Repeats").
				Options(
					huh.NewOption("Weekly", recurrence.Weekly),
					huh.NewOption("Monthly", recurrence.Monthly),
				).
				Value(&v.frequency),
		),
	).WithWidth(45).WithShowHelp(false)
}

// params converts the form into create parameters. Recurring charges are
// anchored on the weekday or day of month of their first due date.
func (v *chargeFormValues) params() (charge.CreateParams, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(v.amount))
	if err != nil {
		return charge.CreateParams{}, fmt.Errorf("amount: %w", err)
	}

	due, err := calendar.Parse(strings.TrimSpace(v.dueDate))
	if err != nil {
		return charge.CreateParams{}, fmt.Errorf("due date: %w", err)
	}

	p := charge.CreateParams{
		ClientName: v.client,
		Reference:  v.reference,
		Amount:     amount,
		DueDate:    due,
		Recurrence: recurrence.Rule{Frequency: recurrence.None},
	}

	if t := strings.TrimSpace(v.dueTime); t != "" {
		p.DueTime = new(t)
	}

	if !v.recurring {
		return p, nil
	}

	p.Recurrence = recurrence.Rule{Recurring: true, Frequency: v.frequency}

	switch v.frequency {
	case recurrence.Weekly:
		p.Recurrence.AnchorWeekday = new(due.Weekday())
	case recurrence.Monthly:
		p.Recurrence.AnchorDay = new(due.Day)
	}

	return p, nil
}
