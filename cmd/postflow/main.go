// Command postflow generates platform-fitted social content with AI
// agents and publishes it to LinkedIn.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/postflow/internal/config"
	"github.com/randalmurphal/postflow/internal/genai"
	"github.com/randalmurphal/postflow/internal/imagestore"
	"github.com/randalmurphal/postflow/internal/workflow"
	"github.com/randalmurphal/postflow/pkg/trace"
)

// errAlreadyReported marks failures whose message was already printed
// by the command, so main only sets the exit code.
var errAlreadyReported = errors.New("already reported")

const missingAPIKeyMessage = "ERROR: OPENAI_API_KEY environment variable is not set. Please create a .env file with this key."

// appOptions holds the global flags shared by every subcommand.
type appOptions struct {
	envFile string
	traceDB string
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &appOptions{}
	cmd := &cobra.Command{
		Use:           "postflow",
		Short:         "Generate platform-fitted social content with AI agents",
		Long:          "Postflow runs a research, content, and image pipeline for a topic\nand renders the result for twitter, linkedin, or medium. LinkedIn\ncontent can be published directly.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if opts.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", config.DefaultEnvFile, "path to the dotenv file")
	cmd.PersistentFlags().StringVar(&opts.traceDB, "trace-db", "", "SQLite trace journal path (overrides POSTFLOW_TRACE_DB)")
	cmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "enable debug logging")

	cmd.AddCommand(newGenerateCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newAuthorizeCmd(opts))
	return cmd
}

// resolveTraceDB prefers the flag over the configured path.
func resolveTraceDB(opts *appOptions, cfg *config.Config) string {
	if opts.traceDB != "" {
		return opts.traceDB
	}
	return cfg.TraceDB
}

// buildSink assembles the trace sink: structured log events always,
// plus the SQLite journal when a path is configured. The returned
// closer flushes the journal.
func buildSink(traceDB string, logger *slog.Logger) (trace.Sink, func(), error) {
	slogSink := trace.NewSlogSink(logger)
	if traceDB == "" {
		return slogSink, func() {}, nil
	}

	journal, err := trace.OpenJournal(traceDB)
	if err != nil {
		return nil, nil, fmt.Errorf("open trace journal: %w", err)
	}
	closer := func() {
		if err := journal.Close(); err != nil {
			logger.Warn("close trace journal", slog.String("error", err.Error()))
		}
	}
	return trace.Multi(slogSink, journal), closer, nil
}

// buildWorkflow assembles the OpenAI-backed workflow, its image store,
// and the trace sink closer.
func buildWorkflow(cfg *config.Config, traceDB string, logger *slog.Logger) (*workflow.Workflow, *imagestore.Store, func(), error) {
	client, err := genai.NewOpenAIClient(cfg.OpenAIAPIKey,
		genai.WithModel(cfg.OpenAIModel),
		genai.WithImageModel(cfg.OpenAIImageModel),
		genai.WithBaseURL(cfg.OpenAIBaseURL),
	)
	if err != nil {
		return nil, nil, nil, err
	}

	sink, closeSink, err := buildSink(traceDB, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	store := imagestore.New(cfg.ImageDir)
	wf, err := workflow.New(client, client, store,
		workflow.WithSink(sink),
		workflow.WithLogger(logger),
		workflow.WithMetrics(true),
		workflow.WithTracing(true),
	)
	if err != nil {
		closeSink()
		return nil, nil, nil, err
	}
	return wf, store, closeSink, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errAlreadyReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
