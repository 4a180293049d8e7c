package agent

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/randalmurphal/postflow/internal/genai"
	"github.com/randalmurphal/postflow/internal/imagestore"
	"github.com/randalmurphal/postflow/internal/model"
	"github.com/randalmurphal/postflow/pkg/pipeline"
)

const imagePromptTemplate = `Content: %s
Title (if any): %s
Platform: %s
Tone: %s

Please create a detailed image generation prompt that captures the essence of this content.
The prompt should be descriptive and include visual elements like style, colors, mood, and composition.`

// imagePrompt is the structured output of the prompt synthesis call.
type imagePrompt struct {
	ImagePrompt string `json:"image_prompt"`
}

func (p imagePrompt) Validate() error {
	if strings.TrimSpace(p.ImagePrompt) == "" {
		return errors.New("image prompt is empty")
	}
	return nil
}

// ImageStage returns the stage that synthesizes an illustration prompt
// from the generated content and renders it to a PNG under the store.
//
// The two halves fail differently: prompt synthesis errors abort the
// stage, while rendering errors are logged and replaced with the
// store's placeholder path so the pipeline still completes.
func ImageStage(gen genai.Client, img genai.ImageClient, store *imagestore.Store) pipeline.StageFunc[model.State] {
	return func(ctx pipeline.Context, state model.State) (model.State, error) {
		if state.Content == nil {
			return state, errors.New("image stage requires content results")
		}
		task := genai.Task{
			Agent:  ImageAgent,
			System: instructions.Image.System,
			Prompt: imagePromptRequest(state.Content, state.Platform, state.Tone),
			Schema: imagePromptSchema(),
		}
		synthesized, err := genai.Invoke[imagePrompt](ctx, gen, task)
		if err != nil {
			return state, err
		}

		path := store.SentinelPath()
		data, renderErr := img.GenerateImage(ctx, synthesized.ImagePrompt)
		if renderErr == nil {
			path, renderErr = store.Save(state.Platform, data)
		}
		if renderErr != nil {
			path = store.SentinelPath()
			ctx.Logger().Warn("image rendering failed, using placeholder",
				slog.String("platform", string(state.Platform)),
				slog.String("tone", string(state.Tone)),
				slog.String("image_prompt", synthesized.ImagePrompt),
				slog.String("error", renderErr.Error()),
			)
		}

		state.Image = &model.ImageResult{
			Prompt: synthesized.ImagePrompt,
			Path:   path,
		}
		return state, nil
	}
}

func imagePromptRequest(content *model.ContentResult, platform model.Platform, tone model.Tone) string {
	title := ""
	if content.Title != nil {
		title = *content.Title
	}
	return fmt.Sprintf(imagePromptTemplate, content.Content, title, platform, tone)
}

func imagePromptSchema() genai.Schema {
	return genai.Schema{
		Name: "image_prompt",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"image_prompt": map[string]any{
					"type":        "string",
					"description": "Detailed prompt describing the image to generate",
				},
			},
			"required":             []string{"image_prompt"},
			"additionalProperties": false,
		},
	}
}
