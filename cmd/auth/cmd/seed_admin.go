package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/marketauth/internal/auth/app"
	"github.com/aussiebroadwan/marketauth/internal/auth/domain"
	"github.com/aussiebroadwan/marketauth/internal/auth/service"
	"github.com/aussiebroadwan/marketauth/pkg/cryptox"
)

var seedAdmin service.SignupInput

var seedAdminCmd = &cobra.Command{
	Use:   "seed-admin",
	Short: "Create an active ADMIN user",
	Long: `seed-admin creates an active user with the ADMIN role. When --password is
omitted a random password is generated and printed once.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := app.NewLogger(cfg)
		db, err := app.OpenStore(cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		in := seedAdmin
		generated := in.Password == ""
		if generated {
			if in.Password, err = cryptox.GeneratePassword(); err != nil {
				return err
			}
		}

		users := &service.UserService{Store: db, RequireActiveAccount: cfg.RequireActiveAccount}
		profile, err := users.CreateUser(cmd.Context(), in, domain.RoleAdmin, true)
		if err != nil {
			return fmt.Errorf("failed to create admin: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "created admin %s (%s)\n", profile.Email, profile.ID)
		if generated {
			fmt.Fprintf(out, "password: %s\n", in.Password)
		}
		return nil
	},
}

func init() {
	f := seedAdminCmd.Flags()
	f.StringVar(&seedAdmin.Email, "email", "", "Admin email address")
	f.StringVar(&seedAdmin.Username, "username", "administrator", "Admin username (8 to 24 characters)")
	f.StringVar(&seedAdmin.FirstName, "first-name", "Market", "Admin first name")
	f.StringVar(&seedAdmin.LastName, "last-name", "Admin", "Admin last name")
	f.StringVar(&seedAdmin.Password, "password", "", "Admin password, generated when empty")
	_ = seedAdminCmd.MarkFlagRequired("email")
}
