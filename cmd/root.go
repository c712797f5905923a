package cmd

import (
	"job-auction/internal/config"
	"job-auction/utils"

	"github.com/spf13/cobra"
)

// app carries what every subcommand needs once flags and environment are resolved
type app struct {
	cfg *config.Config
}

func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "job-auction",
		Short:         "Reverse auction service for delivery jobs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.loadConfig(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.Int("port", 0, "HTTP port (overrides PORT)")
	flags.String("storage", "", "storage driver: memory, postgres or sqlite3 (overrides STORAGE_DRIVER)")
	flags.String("database-url", "", "database connection string (overrides DATABASE_URL)")
	flags.String("log-level", "", "log level (overrides LOG_LEVEL)")

	rootCmd.AddCommand(ServeCmd(a))
	rootCmd.AddCommand(MigrateCmd(a))
	rootCmd.AddCommand(SweepCmd(a))

	return rootCmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		utils.Fatal("command failed", map[string]any{"error": err.Error()})
	}
}

func (a *app) loadConfig(cmd *cobra.Command) error {
	flags := cmd.Flags()
	cfg, err := config.NewConfig(func(c *config.Config) {
		if flags.Changed("port") {
			c.Port, _ = flags.GetInt("port")
		}
		if flags.Changed("storage") {
			c.Driver, _ = flags.GetString("storage")
		}
		if flags.Changed("database-url") {
			c.DatabaseURL, _ = flags.GetString("database-url")
		}
		if flags.Changed("log-level") {
			c.LogLevel, _ = flags.GetString("log-level")
		}
	})
	if err != nil {
		return err
	}
	if err := utils.SetLevel(cfg.LogLevel); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}
