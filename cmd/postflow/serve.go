package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/postflow/internal/config"
	"github.com/randalmurphal/postflow/internal/linkedin"
	"github.com/randalmurphal/postflow/internal/web"
)

func newServeCmd(opts *appOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.envFile)
			if err != nil {
				return err
			}
			if err := cfg.ValidateGeneration(); err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), missingAPIKeyMessage)
				return errAlreadyReported
			}
			if addr == "" {
				addr = cfg.Addr
			}

			logger := slog.Default()
			wf, store, closeSink, err := buildWorkflow(cfg, resolveTraceDB(opts, cfg), logger)
			if err != nil {
				return err
			}
			defer closeSink()

			publisher := linkedin.NewClient(cfg.LinkedInAccessToken, linkedin.WithClientLogger(logger))
			srv := web.New(wf, publisher, store, web.WithLogger(logger))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Start(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to POSTFLOW_ADDR or :8501)")
	return cmd
}
