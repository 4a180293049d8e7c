package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/postflow/internal/config"
	"github.com/randalmurphal/postflow/internal/linkedin"
	"github.com/randalmurphal/postflow/internal/model"
	"github.com/randalmurphal/postflow/internal/workflow"
)

func newGenerateCmd(opts *appOptions) *cobra.Command {
	var (
		topic        string
		platformFlag string
		toneFlag     string
		publish      bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run the content generation workflow and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			cfg, err := config.Load(opts.envFile)
			if err != nil {
				return err
			}
			if err := cfg.ValidateGeneration(); err != nil {
				fmt.Fprintln(out, missingAPIKeyMessage)
				return errAlreadyReported
			}

			platform, err := model.ParsePlatform(platformFlag)
			if err != nil {
				return err
			}
			tone, err := model.ParseTone(toneFlag)
			if err != nil {
				return err
			}
			if publish {
				if platform != model.PlatformLinkedIn {
					return fmt.Errorf("--publish is only supported for linkedin content")
				}
				if err := cfg.ValidatePublishing(); err != nil {
					return err
				}
			}

			logger := slog.Default()
			wf, _, closeSink, err := buildWorkflow(cfg, resolveTraceDB(opts, cfg), logger)
			if err != nil {
				return err
			}
			defer closeSink()

			req := workflow.Request{Topic: topic, Platform: platform, Tone: tone}
			printStart(out, req)

			state, err := wf.Run(cmd.Context(), req)
			if err != nil {
				fmt.Fprintf(out, "Error during workflow execution: %s\n", err)
				return errAlreadyReported
			}

			fmt.Fprint(out, renderReport(state))

			if publish {
				client := linkedin.NewClient(cfg.LinkedInAccessToken, linkedin.WithClientLogger(logger))
				result := publishState(cmd.Context(), client, state)
				if !result.Success {
					fmt.Fprintf(out, "\nLinkedIn publish failed: %s\n", result.ErrorMessage)
					return errAlreadyReported
				}
				fmt.Fprintln(out, "\nPublished to LinkedIn:")
				fmt.Fprintf(out, "  Post ID: %s\n", result.PostID)
				fmt.Fprintf(out, "  Post URL: %s\n", result.PostURL)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&topic, "topic", "", "topic for content generation")
	cmd.Flags().StringVar(&platformFlag, "platform", "", "target platform (twitter, linkedin, medium)")
	cmd.Flags().StringVar(&toneFlag, "tone", "", "content tone (informative, persuasive, casual, professional, enthusiastic)")
	cmd.Flags().BoolVar(&publish, "publish", false, "publish the generated content to LinkedIn")
	_ = cmd.MarkFlagRequired("topic")
	_ = cmd.MarkFlagRequired("platform")
	_ = cmd.MarkFlagRequired("tone")
	return cmd
}

// publishState posts the generated content, choosing the article shape
// when a title is present.
func publishState(ctx context.Context, client *linkedin.Client, state model.State) model.PublishResult {
	content := state.Content
	if content.Title != nil && *content.Title != "" {
		return client.PostArticle(ctx, *content.Title, content.Content)
	}
	return client.PostContent(ctx, content.Content)
}
