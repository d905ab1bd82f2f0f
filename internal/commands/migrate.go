package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCommand(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := deps.Migrate(); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Database schema is up to date")

			return nil
		},
	}
}
