package cli

import (
	"github.com/spf13/cobra"

	"github.com/heartmarshall/entitymap/internal/adapter/postgres"
	"github.com/heartmarshall/entitymap/internal/app"
)

// NewMigrateCommand creates the migrate command. It connects on its own:
// lookup tables cannot be loaded before the schema exists.
func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(opts.Config)
			if err != nil {
				return err
			}

			pool, err := postgres.NewPool(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer pool.Close()

			return app.Migrate(cmd.Context(), pool, dir, logger)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "migrations", "directory with goose migrations")
	return cmd
}
