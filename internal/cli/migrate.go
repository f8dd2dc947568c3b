package cli

import (
	"fmt"

	"CursorAPI/internal/config"
	"CursorAPI/internal/db"

	"github.com/spf13/cobra"
)

func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the SQL migrations (PostgreSQL)",
	}
	for _, dir := range []db.MigrateDirection{db.MigrateUp, db.MigrateDown} {
		cmd.AddCommand(&cobra.Command{
			Use:   string(dir),
			Short: "Run migrations " + string(dir),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg := opts.Config
				if cfg.DBDriver != config.DriverPostgres {
					return fmt.Errorf("migrations require DB_DRIVER=%s, got %q", config.DriverPostgres, cfg.DBDriver)
				}
				if err := db.Migrate(cfg.PostgresDSN, cfg.MigrationsDir, dir); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "migrations %s: done\n", dir)
				return nil
			},
		})
	}
	return cmd
}
