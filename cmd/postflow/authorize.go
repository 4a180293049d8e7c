package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/postflow/internal/config"
	"github.com/randalmurphal/postflow/internal/linkedin"
)

func newAuthorizeCmd(opts *appOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "authorize",
		Short: "Run the LinkedIn OAuth flow and store the access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.envFile)
			if err != nil {
				return err
			}
			if err := cfg.ValidateAuthorization(); err != nil {
				return err
			}

			flow, err := linkedin.NewFlow(linkedin.AuthConfig{
				ClientID:     cfg.LinkedInClientID,
				ClientSecret: cfg.LinkedInClientSecret,
				RedirectURI:  cfg.LinkedInRedirectURI,
			}, cfg.SaveAccessToken, slog.Default())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Starting LinkedIn authorization. A browser window should open; if it does not, follow the URL printed in the log.")
			if err := flow.Run(cmd.Context()); err != nil {
				return fmt.Errorf("authorization failed: %w", err)
			}
			fmt.Fprintf(out, "Access token stored in %s.\n", cfg.EnvFile())
			return nil
		},
	}
}
