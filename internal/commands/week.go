package commands

import (
	"fmt"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/carlosandre007/escala/internal/calendar"
	"github.com/carlosandre007/escala/internal/scheduler"
)

func newWeekCommand(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "week [date]",
		Short: "Show the charges of the week containing date (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, deps, func(svc *scheduler.Service) error {
				ref := svc.Today()

				if len(args) > 0 {
					d, err := calendar.Parse(args[0])
					if err != nil {
						return fmt.Errorf("date must be YYYY-MM-DD: %w", err)
					}

					ref = d
				}

				week, err := svc.Week(cmd.Context(), ref)
				if err != nil {
					return err
				}

				printWeek(cmd, week)

				return nil
			})
		},
	}
}

func printWeek(cmd *cobra.Command, week *scheduler.WeekView) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Week of %s to %s\n", week.Window.Start(), week.Window.End())

	t := table.New().Headers("Day", "ID", "Client", "Reference", "Amount", "Status", "Repeats")

	for i, d := range week.Window.Days() {
		for _, c := range week.Day(i) {
			t.Row(
				d.Time().Format("Mon 02"),
				c.ID.String(),
				c.ClientName,
				c.Reference,
				c.Amount.StringFixed(2),
				string(c.Status),
				string(c.Recurrence.Frequency),
			)
		}
	}

	fmt.Fprintln(out, t.Render())

	s := week.Summary
	fmt.Fprintf(out, "Expected %s  Received %s  Outstanding %s  (%d/%d settled)\n",
		s.Total.StringFixed(2), s.Settled.StringFixed(2), s.Outstanding.StringFixed(2), s.SettledCount, s.Count)
}
