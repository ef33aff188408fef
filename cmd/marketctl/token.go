package main

import (
	"fmt"

	"github.com/cuongbtq/solosphere-be/internal/api/auth"
	"github.com/spf13/cobra"
)

func TokenCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a signed access token for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			name, _ := cmd.Flags().GetString("name")
			if email == "" {
				return fmt.Errorf("the --email flag is required")
			}
			if a.cfg.Auth.TokenSecret == "" {
				return fmt.Errorf("auth token_secret is not configured")
			}

			issuer := auth.NewTokenIssuer(a.cfg.Auth.TokenSecret, a.cfg.Auth.TokenTTL)
			token, err := issuer.Issue(auth.Identity{Email: email, Name: name})
			if err != nil {
				return fmt.Errorf("failed to sign token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().String("email", "", "Email the token is issued for")
	cmd.Flags().String("name", "", "Display name carried in the token")
	cmd.MarkFlagRequired("email")
	return cmd
}
