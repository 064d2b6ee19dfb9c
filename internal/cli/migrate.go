package cli

import (
	"fmt"

	"fintrack/internal/config"
	"fintrack/internal/storage"

	"github.com/spf13/cobra"
)

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(*cobra.Command, []string) error {
			cfg, err := storageConfig(opts.cfg)
			if err != nil {
				return err
			}
			if err := storage.MigrateDown(cfg, steps); err != nil {
				return err
			}
			fmt.Fprintf(opts.out, "rolled back %d migration(s)\n", steps)
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply pending migrations",
			RunE: func(*cobra.Command, []string) error {
				cfg, err := storageConfig(opts.cfg)
				if err != nil {
					return err
				}
				if err := storage.Migrate(cfg); err != nil {
					return err
				}
				fmt.Fprintln(opts.out, "migrations applied")
				return nil
			},
		},
		down,
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			RunE: func(*cobra.Command, []string) error {
				cfg, err := storageConfig(opts.cfg)
				if err != nil {
					return err
				}
				version, dirty, err := storage.MigrationVersion(cfg)
				if err != nil {
					return err
				}
				fmt.Fprintf(opts.out, "version %d", version)
				if dirty {
					fmt.Fprint(opts.out, " (dirty)")
				}
				fmt.Fprintln(opts.out)
				return nil
			},
		},
	)
	return cmd
}

// storageConfig maps the configured backend to a SQL store config.
func storageConfig(cfg *config.Config) (storage.Config, error) {
	switch cfg.DataBackend {
	case config.BackendSQLite:
		return storage.Config{Driver: storage.DriverSQLite, DSN: cfg.SQLiteDBPath}, nil
	case config.BackendPostgres:
		return storage.Config{Driver: storage.DriverPostgres, DSN: cfg.DatabaseURL}, nil
	}
	return storage.Config{}, fmt.Errorf("backend %q has no schema to migrate", cfg.DataBackend)
}
