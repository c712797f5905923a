package cmd

import (
	"job-auction/internal/repository"
	"job-auction/utils"

	"github.com/spf13/cobra"
)

func MigrateCmd(a *app) *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	run := func(use, short string, apply func(a *app) error) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			RunE: func(*cobra.Command, []string) error {
				return apply(a)
			},
		}
	}

	migrateCmd.AddCommand(run("up", "Apply all pending migrations", func(a *app) error {
		db, err := a.openDB()
		if err != nil {
			return err
		}
		defer db.Close()
		return repository.MigrateUp(db.DB, a.cfg.Driver)
	}))
	migrateCmd.AddCommand(run("down", "Roll back the most recent migration", func(a *app) error {
		db, err := a.openDB()
		if err != nil {
			return err
		}
		defer db.Close()
		return repository.MigrateDown(db.DB, a.cfg.Driver)
	}))
	migrateCmd.AddCommand(run("status", "Show applied and pending migrations", func(a *app) error {
		db, err := a.openDB()
		if err != nil {
			return err
		}
		defer db.Close()
		if err := repository.MigrationStatus(db.DB, a.cfg.Driver); err != nil {
			return err
		}
		version, err := repository.SchemaVersion(db.DB, a.cfg.Driver)
		if err != nil {
			return err
		}
		utils.Info("schema version", map[string]any{"version": version})
		return nil
	}))

	return migrateCmd
}
