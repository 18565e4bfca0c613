package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/marketauth/internal/auth/app"
	"github.com/aussiebroadwan/marketauth/internal/auth/service"
)

var (
	activateEmail string
	deactivate    bool
)

var activateCmd = &cobra.Command{
	Use:   "activate",
	Short: "Activate or deactivate an account by email",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := app.OpenStore(cfg, app.NewLogger(cfg))
		if err != nil {
			return err
		}
		defer db.Close()

		users := &service.UserService{Store: db, RequireActiveAccount: cfg.RequireActiveAccount}
		profile, err := users.FindByEmail(cmd.Context(), activateEmail)
		if err != nil {
			return fmt.Errorf("lookup %s: %w", activateEmail, err)
		}

		profile, err = users.SetActive(cmd.Context(), profile.ID, !deactivate)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s active=%t\n", profile.Email, profile.IsActive)
		return nil
	},
}

func init() {
	activateCmd.Flags().StringVar(&activateEmail, "email", "", "Account email address")
	activateCmd.Flags().BoolVar(&deactivate, "deactivate", false, "Deactivate instead of activate")
	_ = activateCmd.MarkFlagRequired("email")
}
