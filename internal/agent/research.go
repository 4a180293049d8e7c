package agent

import (
	"fmt"

	"github.com/randalmurphal/postflow/internal/genai"
	"github.com/randalmurphal/postflow/internal/model"
	"github.com/randalmurphal/postflow/pkg/pipeline"
)

const researchPromptTemplate = `Research Topic: %s
Target Platform: %s
Content Tone: %s

Please provide 5-7 factual bullet points on this topic that would be useful
for creating content for %s with a %s tone.

Focus on recent data, surprising facts, and information that would engage the
target audience on %s.`

// ResearchStage returns the stage that gathers factual bullet points on
// the state's topic. The result is validated before it is stored: fewer
// than five or more than seven bullet points fails the stage.
func ResearchStage(gen genai.Client) pipeline.StageFunc[model.State] {
	return func(ctx pipeline.Context, state model.State) (model.State, error) {
		task := genai.Task{
			Agent:  ResearchAgent,
			System: instructions.Research.System,
			Prompt: researchPrompt(state.Topic, state.Platform, state.Tone),
			Schema: researchSchema(),
		}
		result, err := genai.Invoke[model.ResearchResult](ctx, gen, task)
		if err != nil {
			return state, err
		}
		state.Research = &result
		return state, nil
	}
}

func researchPrompt(topic string, platform model.Platform, tone model.Tone) string {
	return fmt.Sprintf(researchPromptTemplate, topic, platform, tone, platform, tone, platform)
}

func researchSchema() genai.Schema {
	return genai.Schema{
		Name: "research_result",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"bullet_points": map[string]any{
					"type":        "array",
					"description": "Factual bullet points about the requested topic",
					"items":       map[string]any{"type": "string"},
					"minItems":    model.MinBulletPoints,
					"maxItems":    model.MaxBulletPoints,
				},
			},
			"required":             []string{"bullet_points"},
			"additionalProperties": false,
		},
	}
}
