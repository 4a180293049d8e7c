package agent

import (
	"errors"
	"fmt"
	"strings"

	"github.com/randalmurphal/postflow/internal/genai"
	"github.com/randalmurphal/postflow/internal/model"
	"github.com/randalmurphal/postflow/pkg/pipeline"
)

const contentPromptTemplate = `Platform: %s
Tone: %s

Research Bullet Points:
%s

Instructions:
%s

Ensure the content uses a %s tone consistently throughout.
Incorporate the key points from the research naturally into your content.`

// ContentStage returns the stage that turns research bullet points into
// a platform-shaped post. Only medium posts carry a title; an empty
// title on any other platform is normalized to absent.
func ContentStage(gen genai.Client) pipeline.StageFunc[model.State] {
	return func(ctx pipeline.Context, state model.State) (model.State, error) {
		if state.Research == nil {
			return state, errors.New("content stage requires research results")
		}
		task := genai.Task{
			Agent:  ContentAgent,
			System: instructions.Content.System,
			Prompt: contentPrompt(state.Research.BulletPoints, state.Platform, state.Tone),
			Schema: contentSchema(),
		}
		result, err := genai.Invoke[model.ContentResult](ctx, gen, task)
		if err != nil {
			return state, err
		}
		if state.Platform != model.PlatformMedium && result.Title != nil && strings.TrimSpace(*result.Title) == "" {
			result.Title = nil
		}
		state.Content = &result
		return state, nil
	}
}

func contentPrompt(bullets []string, platform model.Platform, tone model.Tone) string {
	return fmt.Sprintf(contentPromptTemplate, platform, tone, formatBullets(bullets), platformInstruction(platform), tone)
}

// formatBullets renders one bullet per line with a leading "• " marker.
func formatBullets(bullets []string) string {
	var b strings.Builder
	for i, point := range bullets {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("• ")
		b.WriteString(point)
	}
	return b.String()
}

func contentSchema() genai.Schema {
	return genai.Schema{
		Name: "content_result",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title": map[string]any{
					"type":        []string{"string", "null"},
					"description": "Title for the content, only used for medium posts",
				},
				"content": map[string]any{
					"type":        "string",
					"description": "Generated content for the specified platform and tone",
				},
			},
			"required":             []string{"title", "content"},
			"additionalProperties": false,
		},
	}
}
