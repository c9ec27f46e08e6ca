package main

import (
	"errors"
	"fmt"
	"time"

	"carebaby/internal/shared/middleware"

	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	var (
		userID string
		role   string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development bearer token",
		Long: `Sign an access token with JWT_SECRET for local testing of the API.

Example:
  tagctl token --user 5b0c... --role admin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return errors.New("--user is required")
			}
			if role != middleware.RoleCaregiver && role != middleware.RoleAdmin {
				return fmt.Errorf("unknown role %q", role)
			}

			cfg, _ := loadConfig()
			if ttl == 0 {
				ttl = cfg.JWT.JWTExpiresIn
			}

			token, err := middleware.IssueToken(cfg.JWT.Secret, userID, role, ttl)
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id placed in the token")
	cmd.Flags().StringVar(&role, "role", middleware.RoleCaregiver, "caregiver or admin")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default JWT_EXPIRES_IN)")
	return cmd
}
