package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/marketauth/internal/auth/app"
)

var (
	cfg app.Config

	flagPort         int
	flagEnv          string
	flagDatabaseFile string
	flagLogLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "auth",
	Short: "MarketAuth - session authentication and access control",
	Long: `auth runs the MarketAuth service and its maintenance tasks. Configuration
comes from environment variables; flags override individual settings.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = app.LoadConfig()

		// Flags win over the environment only when set explicitly
		flags := cmd.Flags()
		if flags.Changed("port") {
			cfg.Port = flagPort
		}
		if flags.Changed("env") {
			cfg.Env = flagEnv
		}
		if flags.Changed("db") {
			cfg.DatabaseFile = flagDatabaseFile
		}
		if flags.Changed("log-level") {
			cfg.LogLevel = flagLogLevel
		}

		return cfg.Validate()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagEnv, "env", "dev", "Environment (dev, staging, prod), overrides ENV")
	rootCmd.PersistentFlags().StringVar(&flagDatabaseFile, "db", "data/auth.db", "SQLite database file, overrides AUTH_DATABASE_FILE")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level, overrides LOG_LEVEL")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedAdminCmd)
	rootCmd.AddCommand(activateCmd)
}
