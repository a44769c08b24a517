package cli

import (
	"github.com/deppfellow/pixelmags/internal/database"
	"github.com/spf13/cobra"
)

func MigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending entity store migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newApp()
			if err != nil {
				return err
			}
			defer rt.close()

			return database.Migrate(cmd.Context(), rt.logger, rt.cfg)
		},
	}
}
