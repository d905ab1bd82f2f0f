package commands

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/carlosandre007/escala/internal/calendar"
	"github.com/carlosandre007/escala/internal/charge"
	"github.com/carlosandre007/escala/internal/recurrence"
	"github.com/carlosandre007/escala/internal/scheduler"
)

func newAddCommand(deps Deps) *cobra.Command {
	var (
		client, reference string
		amount, due       string
		dueTime, repeat   string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Schedule a new charge",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params, err := addParams(client, reference, amount, due, dueTime, repeat)
			if err != nil {
				return err
			}

			return withService(cmd, deps, func(svc *scheduler.Service) error {
				c, err := svc.Create(cmd.Context(), params)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Added %s: %s %s due %s\n",
					c.ID, c.ClientName, c.Amount.StringFixed(2), c.DueDate)

				return nil
			})
		},
	}

	cmd.Flags().StringVar(&client, "client", "", "client name (required)")
	cmd.Flags().StringVar(&reference, "ref", "", "what the charge is for (required)")
	cmd.Flags().StringVar(&amount, "amount", "", "amount, e.g. 150.00 (required)")
	cmd.Flags().StringVar(&due, "due", "", "due date YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&dueTime, "time", "", "due time HH:MM")
	cmd.Flags().StringVar(&repeat, "repeat", "none", "none, weekly or monthly")

	for _, f := range []string{"client", "ref", "amount", "due"} {
		_ = cmd.MarkFlagRequired(f)
	}

	return cmd
}

func addParams(client, reference, amount, due, dueTime, repeat string) (charge.CreateParams, error) {
	amt, err := decimal.NewFromString(amount)
	if err != nil {
		return charge.CreateParams{}, fmt.Errorf("amount: %w", err)
	}

	dueDate, err := calendar.Parse(due)
	if err != nil {
		return charge.CreateParams{}, fmt.Errorf("due date must be YYYY-MM-DD: %w", err)
	}

	freq, err := recurrence.ParseFrequency(repeat)
	if err != nil {
		return charge.CreateParams{}, err
	}

	p := charge.CreateParams{
		ClientName: client,
		Reference:  reference,
		Amount:     amt,
		DueDate:    dueDate,
		Recurrence: recurrence.Rule{Recurring: freq != recurrence.None, Frequency: freq},
	}

	if dueTime != "" {
		p.DueTime = new(dueTime)
	}

	switch freq {
	case recurrence.Weekly:
		p.Recurrence.AnchorWeekday = new(dueDate.Weekday())
	case recurrence.Monthly:
		p.Recurrence.AnchorDay = new(dueDate.Day)
	}

	return p, nil
}

func parseIDArg(args []string) (uuid.UUID, error) {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid charge id %q", args[0])
	}

	return id, nil
}

func newSettleCommand(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "settle <id>",
		Short: "Mark a charge as received",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args)
			if err != nil {
				return err
			}

			return withService(cmd, deps, func(svc *scheduler.Service) error {
				res, err := svc.Settle(cmd.Context(), id)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()

				if !res.Changed {
					fmt.Fprintf(out, "%s is already settled\n", res.Charge.ClientName)
					return nil
				}

				fmt.Fprintf(out, "Settled %s %s\n", res.Charge.ClientName, res.Charge.Amount.StringFixed(2))

				if res.Successor != nil {
					fmt.Fprintf(out, "Next occurrence %s due %s\n", res.Successor.ID, res.Successor.DueDate)
				}

				return nil
			})
		},
	}
}

func newUnsettleCommand(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "unsettle <id>",
		Short: "Return a settled charge to pending",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args)
			if err != nil {
				return err
			}

			return withService(cmd, deps, func(svc *scheduler.Service) error {
				res, err := svc.Unsettle(cmd.Context(), id)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()

				if !res.Changed {
					fmt.Fprintf(out, "%s is already pending\n", res.Charge.ClientName)
					return nil
				}

				fmt.Fprintf(out, "Unsettled %s\n", res.Charge.ClientName)

				switch {
				case res.Retracted:
					fmt.Fprintf(out, "Removed the occurrence due %s\n", res.Successor.DueDate)
				case res.Successor != nil:
					fmt.Fprintf(out, "The occurrence due %s is still scheduled\n", res.Successor.DueDate)
				}

				return nil
			})
		},
	}
}

func newDeleteCommand(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a charge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args)
			if err != nil {
				return err
			}

			return withService(cmd, deps, func(svc *scheduler.Service) error {
				if err := svc.Delete(cmd.Context(), id); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)

				return nil
			})
		},
	}
}
