package agent

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/postflow/internal/genai"
	"github.com/randalmurphal/postflow/internal/model"
)

// TestResearchStage_PopulatesState verifies a successful research call
// stores the returned bullet points without touching other state fields.
func TestResearchStage_PopulatesState(t *testing.T) {
	mock := genai.NewMockClient().RespondWith(ResearchAgent, researchJSON(t, 6))
	stage := ResearchStage(mock)

	in := model.State{Topic: "quantum computing", Platform: model.PlatformTwitter, Tone: model.ToneCasual}
	out, err := stage(testCtx(), in)

	require.NoError(t, err)
	require.NotNil(t, out.Research)
	assert.Len(t, out.Research.BulletPoints, 6)
	assert.Equal(t, "fact number 1", out.Research.BulletPoints[0])
	assert.Equal(t, "quantum computing", out.Topic)
	assert.Nil(t, out.Content)
	assert.Nil(t, out.Image)
}

// TestResearchStage_TaskShape verifies the generation task names the
// research agent and weaves topic, platform, and tone into the prompt.
func TestResearchStage_TaskShape(t *testing.T) {
	mock := genai.NewMockClient().RespondWith(ResearchAgent, researchJSON(t, 5))
	stage := ResearchStage(mock)

	_, err := stage(testCtx(), model.State{Topic: "urban beekeeping", Platform: model.PlatformLinkedIn, Tone: model.ToneProfessional})
	require.NoError(t, err)

	task := mock.LastCall()
	require.NotNil(t, task)
	assert.Equal(t, ResearchAgent, task.Agent)
	assert.NotEmpty(t, task.System)
	assert.Contains(t, task.Prompt, "Research Topic: urban beekeeping")
	assert.Contains(t, task.Prompt, "Target Platform: linkedin")
	assert.Contains(t, task.Prompt, "Content Tone: professional")
	assert.Equal(t, "research_result", task.Schema.Name)
}

// TestResearchStage_DeterministicPrompt verifies identical inputs
// produce byte-identical prompts across independent invocations.
func TestResearchStage_DeterministicPrompt(t *testing.T) {
	state := model.State{Topic: "deep sea mining", Platform: model.PlatformMedium, Tone: model.ToneInformative}

	first := genai.NewMockClient().RespondWith(ResearchAgent, researchJSON(t, 5))
	_, err := ResearchStage(first)(testCtx(), state)
	require.NoError(t, err)

	second := genai.NewMockClient().RespondWith(ResearchAgent, researchJSON(t, 5))
	_, err = ResearchStage(second)(testCtx(), state)
	require.NoError(t, err)

	assert.Equal(t, first.LastCall().Prompt, second.LastCall().Prompt)
	assert.Equal(t, first.LastCall().System, second.LastCall().System)
}

// TestResearchStage_BulletCountEnforced verifies payloads outside the
// 5-7 bullet range fail the stage instead of being padded or truncated.
func TestResearchStage_BulletCountEnforced(t *testing.T) {
	for _, n := range []int{4, 8} {
		mock := genai.NewMockClient().RespondWith(ResearchAgent, researchJSON(t, n))
		out, err := ResearchStage(mock)(testCtx(), model.State{Topic: "x", Platform: model.PlatformTwitter, Tone: model.ToneCasual})

		require.Error(t, err, "bullet count %d", n)
		assert.Contains(t, err.Error(), "validate research_agent result")
		assert.Nil(t, out.Research)
	}
}

// TestResearchStage_GenerateError verifies transport failures surface
// as stage errors with the input state unchanged.
func TestResearchStage_GenerateError(t *testing.T) {
	mock := genai.NewMockClient().WithError(errors.New("rate limited"))
	out, err := ResearchStage(mock)(testCtx(), model.State{Topic: "x", Platform: model.PlatformTwitter, Tone: model.ToneCasual})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
	assert.Nil(t, out.Research)
}
