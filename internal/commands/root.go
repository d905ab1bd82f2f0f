package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carlosandre007/escala/internal/buildinfo"
	"github.com/carlosandre007/escala/internal/scheduler"
)

// Deps connects the commands to their backing services.
type Deps struct {
	// Open builds the scheduler service. The returned func releases it.
	Open func(ctx context.Context) (*scheduler.Service, func(), error)
	// Migrate brings the database schema up to date.
	Migrate func() error
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand(deps Deps) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "escala",
		Short:   "Weekly schedule of recurring client charges",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newWeekCommand(deps),
		newAddCommand(deps),
		newSettleCommand(deps),
		newUnsettleCommand(deps),
		newDeleteCommand(deps),
		newMigrateCommand(deps),
	)

	return rootCmd
}

// withService opens the service for the duration of fn.
func withService(cmd *cobra.Command, deps Deps, fn func(svc *scheduler.Service) error) error {
	svc, closeFn, err := deps.Open(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	return fn(svc)
}
