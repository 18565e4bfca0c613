package cmd

import (
	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/marketauth/internal/auth/app"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := app.OpenStore(cfg, app.NewLogger(cfg))
		if err != nil {
			return err
		}
		return db.Close()
	},
}
