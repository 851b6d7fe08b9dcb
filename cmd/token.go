package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/weiawesome/wes-io-live/support-service/internal/config"
	"github.com/weiawesome/wes-io-live/support-service/internal/domain"
	"github.com/weiawesome/wes-io-live/support-service/pkg/jwt"
)

// newTokenCmd mints a token for local testing against a running server.
func newTokenCmd(configPath *string) *cobra.Command {
	var (
		userID string
		email  string
		kind   string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a development access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return errors.New("--user is required")
			}
			k := domain.ParseUserKind(kind)
			if k == domain.UserKindUndefined {
				return fmt.Errorf("unknown user kind %q", kind)
			}

			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			manager, err := jwt.NewManager(cfg.Auth.Secret, cfg.Auth.Issuer, ttl)
			if err != nil {
				return err
			}

			token, err := manager.GenerateToken(userID, email, string(k))
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id")
	cmd.Flags().StringVar(&email, "email", "", "user email")
	cmd.Flags().StringVar(&kind, "kind", string(domain.UserKindEndUser), "user kind: END_USER, ADMIN or SUPER_ADMIN")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
