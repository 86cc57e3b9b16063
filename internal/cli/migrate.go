package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and list their state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			states, err := store.MigrationStatus()
			if err != nil {
				return fmt.Errorf("load migration status: %w", err)
			}

			rows := make([][]string, 0, len(states))
			for _, state := range states {
				applied := "pending"
				if state.Applied {
					applied = "applied"
				}
				rows = append(rows, []string{state.Version, state.Name, applied})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Version", "Migration", "State"}, rows, nil))
			return nil
		},
	}
}
