package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/postflow/internal/model"
	"github.com/randalmurphal/postflow/pkg/pipeline"
)

// testCtx returns a pipeline context suitable for driving stages directly.
func testCtx() pipeline.Context {
	return pipeline.NewContext(context.Background())
}

func strPtr(s string) *string { return &s }

func sampleBullets(n int) []string {
	bullets := make([]string, n)
	for i := range bullets {
		bullets[i] = fmt.Sprintf("fact number %d", i+1)
	}
	return bullets
}

// researchedState returns a state that already passed the research stage.
func researchedState(platform model.Platform, tone model.Tone) model.State {
	return model.State{
		Topic:    "quantum computing",
		Platform: platform,
		Tone:     tone,
		Research: &model.ResearchResult{BulletPoints: sampleBullets(5)},
	}
}

// researchJSON encodes a research payload carrying n bullet points.
func researchJSON(t *testing.T, n int) string {
	t.Helper()
	raw, err := json.Marshal(map[string]any{"bullet_points": sampleBullets(n)})
	require.NoError(t, err)
	return string(raw)
}

// contentJSON encodes a content payload; a nil title marshals to null.
func contentJSON(t *testing.T, title *string, content string) string {
	t.Helper()
	raw, err := json.Marshal(map[string]any{"title": title, "content": content})
	require.NoError(t, err)
	return string(raw)
}
