package workflow_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/postflow/internal/agent"
	"github.com/randalmurphal/postflow/internal/genai"
	"github.com/randalmurphal/postflow/internal/imagestore"
	"github.com/randalmurphal/postflow/internal/model"
	"github.com/randalmurphal/postflow/internal/workflow"
	"github.com/randalmurphal/postflow/pkg/pipeline"
	"github.com/randalmurphal/postflow/pkg/trace"
)

const (
	researchPayload    = `{"bullet_points": ["Urban hives yield 2x more honey than rural ones", "City bee mortality dropped 15% since 2020", "Paris hosts over 1000 rooftop hives", "Pesticide exposure is lower downtown", "Bee diversity in cities keeps rising"]}`
	twitterPayload     = `{"title": null, "content": "City bees now out-produce their country cousins 2 to 1! 🐝 #UrbanBeekeeping #CityNature"}`
	mediumPayload      = `{"title": "The Quiet Rise of Urban Hives", "content": "Cities have become unlikely sanctuaries for honeybees.\n\nLower pesticide exposure and diverse plantings are driving the shift."}`
	imagePromptPayload = `{"image_prompt": "Watercolor rooftop apiary at sunset, warm golden light, city skyline behind"}`
)

// fullMock returns a client with canned responses for all three agents
// plus image bytes, enough to drive a complete run.
func fullMock() *genai.MockClient {
	return genai.NewMockClient().
		RespondWith(agent.ResearchAgent, researchPayload).
		RespondWith(agent.ContentAgent, twitterPayload).
		RespondWith(agent.ImageAgent, imagePromptPayload).
		WithImage([]byte("png-bytes"))
}

func newWorkflow(t *testing.T, mock *genai.MockClient, sink trace.Sink) (*workflow.Workflow, *imagestore.Store) {
	t.Helper()
	store := imagestore.New(t.TempDir())
	wf, err := workflow.New(mock, mock, store,
		workflow.WithSink(sink),
		workflow.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err)
	return wf, store
}

func twitterRequest() workflow.Request {
	return workflow.Request{Topic: "urban beekeeping", Platform: model.PlatformTwitter, Tone: model.ToneEnthusiastic}
}

// TestWorkflow_Run_CompletesAllStages verifies a full run populates
// every state section and writes the rendered image to disk.
func TestWorkflow_Run_CompletesAllStages(t *testing.T) {
	wf, store := newWorkflow(t, fullMock(), nil)

	state, err := wf.Run(context.Background(), twitterRequest())

	require.NoError(t, err)
	require.NotNil(t, state.Research)
	assert.Len(t, state.Research.BulletPoints, 5)
	require.NotNil(t, state.Content)
	assert.Contains(t, state.Content.Content, "City bees")
	require.NotNil(t, state.Image)
	assert.False(t, store.IsSentinel(state.Image.Path))

	data, err := os.ReadFile(state.Image.Path)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
}

// TestWorkflow_Run_TwitterPostShape verifies the properties a twitter
// run guarantees end to end: post within the platform limit with a
// hashtag, no title, and a real image on disk.
func TestWorkflow_Run_TwitterPostShape(t *testing.T) {
	wf, store := newWorkflow(t, fullMock(), nil)

	state, err := wf.Run(context.Background(), twitterRequest())

	require.NoError(t, err)
	require.NotNil(t, state.Content)
	assert.LessOrEqual(t, utf8.RuneCountInString(state.Content.Content), 280)
	assert.Contains(t, state.Content.Content, "#")
	assert.Nil(t, state.Content.Title)
	require.NotNil(t, state.Image)
	assert.False(t, store.IsSentinel(state.Image.Path))
	assert.FileExists(t, state.Image.Path)
}

// TestWorkflow_Run_MediumCarriesTitle verifies a medium run keeps the
// generated title through to the final state.
func TestWorkflow_Run_MediumCarriesTitle(t *testing.T) {
	mock := fullMock().RespondWith(agent.ContentAgent, mediumPayload)
	wf, _ := newWorkflow(t, mock, nil)

	state, err := wf.Run(context.Background(), workflow.Request{
		Topic: "urban beekeeping", Platform: model.PlatformMedium, Tone: model.ToneInformative,
	})

	require.NoError(t, err)
	require.NotNil(t, state.Content)
	require.NotNil(t, state.Content.Title)
	assert.Equal(t, "The Quiet Rise of Urban Hives", *state.Content.Title)
}

// TestWorkflow_Run_EventSequence verifies the full trace stream of a
// successful run: workflow and stage boundaries from the engine
// interleaved with agent events from the tracing decorator, in stage
// order.
func TestWorkflow_Run_EventSequence(t *testing.T) {
	sink := trace.NewMemorySink()
	wf, _ := newWorkflow(t, fullMock(), sink)

	_, err := wf.Run(context.Background(), twitterRequest())
	require.NoError(t, err)

	type step struct {
		name  string
		event string
		agent string
	}
	want := []step{
		{trace.WorkflowEvent, "workflow_start", ""},
		{trace.WorkflowEvent, "stage_start", ""},
		{trace.AgentStart, "agent_start", agent.ResearchAgent},
		{trace.AgentCompletion, "agent_completion", agent.ResearchAgent},
		{trace.WorkflowEvent, "stage_complete", ""},
		{trace.WorkflowEvent, "stage_start", ""},
		{trace.AgentStart, "agent_start", agent.ContentAgent},
		{trace.AgentCompletion, "agent_completion", agent.ContentAgent},
		{trace.WorkflowEvent, "stage_complete", ""},
		{trace.WorkflowEvent, "stage_start", ""},
		{trace.AgentStart, "agent_start", agent.ImageAgent},
		{trace.AgentCompletion, "agent_completion", agent.ImageAgent},
		{trace.AgentStart, "agent_start", genai.ImageGenerationAgent},
		{trace.AgentCompletion, "agent_completion", genai.ImageGenerationAgent},
		{trace.WorkflowEvent, "stage_complete", ""},
		{trace.WorkflowEvent, "workflow_complete", ""},
	}

	events := sink.Events()
	require.Len(t, events, len(want))
	for i, w := range want {
		assert.Equal(t, w.name, events[i].Name, "event %d", i)
		assert.Equal(t, w.event, events[i].Fields["event"], "event %d", i)
		if w.agent != "" {
			assert.Equal(t, w.agent, events[i].Fields["agent_type"], "event %d", i)
		}
	}

	stageOrder := make([]string, 0, 3)
	for _, e := range events {
		if e.Fields["event"] == "stage_start" {
			stageOrder = append(stageOrder, e.Fields["stage"].(string))
		}
	}
	assert.Equal(t, []string{"research", "content", "image"}, stageOrder)
}

// TestWorkflow_Run_SharedExecutionID verifies every workflow event of
// one run carries the same non-empty execution id.
func TestWorkflow_Run_SharedExecutionID(t *testing.T) {
	sink := trace.NewMemorySink()
	wf, _ := newWorkflow(t, fullMock(), sink)

	_, err := wf.Run(context.Background(), twitterRequest())
	require.NoError(t, err)

	var id string
	for _, e := range sink.Events() {
		if e.Name != trace.WorkflowEvent {
			continue
		}
		current, ok := e.Fields["execution_id"].(string)
		require.True(t, ok)
		require.NotEmpty(t, current)
		if id == "" {
			id = current
		}
		assert.Equal(t, id, current)
	}
	require.NotEmpty(t, id)
}

// TestWorkflow_Run_SnapshotProgression verifies state snapshots in
// events grow as stages complete: the content stage start already
// carries the research summary, while the run start does not.
func TestWorkflow_Run_SnapshotProgression(t *testing.T) {
	sink := trace.NewMemorySink()
	wf, _ := newWorkflow(t, fullMock(), sink)

	_, err := wf.Run(context.Background(), twitterRequest())
	require.NoError(t, err)

	var start, contentStart, complete map[string]any
	for _, e := range sink.Events() {
		switch {
		case e.Fields["event"] == "workflow_start":
			start = e.Fields
		case e.Fields["event"] == "stage_start" && e.Fields["stage"] == "content":
			contentStart = e.Fields
		case e.Fields["event"] == "workflow_complete":
			complete = e.Fields
		}
	}

	require.NotNil(t, start)
	assert.Equal(t, "urban beekeeping", start["topic"])
	assert.Equal(t, "twitter", start["platform"])
	assert.NotContains(t, start, "research_result")

	require.NotNil(t, contentStart)
	assert.Contains(t, contentStart, "research_result")
	assert.NotContains(t, contentStart, "content_result")

	require.NotNil(t, complete)
	assert.Contains(t, complete, "research_result")
	assert.Contains(t, complete, "content_result")
	assert.Contains(t, complete, "image_result")
}

// TestWorkflow_Run_ResearchFailureStopsRun verifies a research failure
// aborts before content or image calls and surfaces the stage error.
func TestWorkflow_Run_ResearchFailureStopsRun(t *testing.T) {
	sink := trace.NewMemorySink()
	mock := genai.NewMockClient().WithError(errors.New("api down"))
	wf, _ := newWorkflow(t, mock, sink)

	state, err := wf.Run(context.Background(), twitterRequest())

	require.Error(t, err)
	var stageErr *pipeline.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "research", stageErr.Stage)
	assert.Nil(t, state.Research)
	assert.Equal(t, 1, mock.CallCount())

	names := sink.Names()
	assert.Contains(t, names, trace.AgentError)
	events := sink.Events()
	last := events[len(events)-1]
	assert.Equal(t, trace.WorkflowEvent, last.Name)
	assert.Equal(t, "workflow_error", last.Fields["event"])
	assert.Equal(t, "research", last.Fields["stage"])
}

// TestWorkflow_Run_ContentFailureSkipsImage verifies an unconfigured
// content response fails the second stage and never reaches the image
// stage.
func TestWorkflow_Run_ContentFailureSkipsImage(t *testing.T) {
	mock := genai.NewMockClient().
		RespondWith(agent.ResearchAgent, researchPayload).
		WithImage([]byte("png"))
	wf, _ := newWorkflow(t, mock, nil)

	state, err := wf.Run(context.Background(), twitterRequest())

	require.Error(t, err)
	var stageErr *pipeline.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "content", stageErr.Stage)
	require.NotNil(t, state.Research)
	assert.Nil(t, state.Content)
	assert.Empty(t, mock.ImageCalls)
}

// TestWorkflow_Run_ImageRenderFailureStillCompletes verifies rendering
// failures downgrade to the placeholder path without failing the run.
func TestWorkflow_Run_ImageRenderFailureStillCompletes(t *testing.T) {
	sink := trace.NewMemorySink()
	mock := fullMock().WithImageError(errors.New("rendering backend down"))
	wf, store := newWorkflow(t, mock, sink)

	state, err := wf.Run(context.Background(), twitterRequest())

	require.NoError(t, err)
	require.NotNil(t, state.Image)
	assert.Equal(t, store.SentinelPath(), state.Image.Path)
	assert.NotEmpty(t, state.Image.Prompt)

	names := sink.Names()
	assert.Contains(t, names, trace.AgentError)
	assert.Equal(t, trace.WorkflowEvent, sink.Events()[len(names)-1].Name)
	assert.Equal(t, "workflow_complete", sink.Events()[len(names)-1].Fields["event"])
}

// TestWorkflow_Run_EmptyTopic verifies blank topics are rejected
// before any stage or event fires.
func TestWorkflow_Run_EmptyTopic(t *testing.T) {
	sink := trace.NewMemorySink()
	mock := fullMock()
	wf, _ := newWorkflow(t, mock, sink)

	_, err := wf.Run(context.Background(), workflow.Request{Topic: "   ", Platform: model.PlatformTwitter, Tone: model.ToneCasual})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "topic must not be empty")
	assert.Empty(t, sink.Events())
	assert.Equal(t, 0, mock.CallCount())
}

// TestSnapshot verifies the event snapshot omits absent sections and
// clips long values.
func TestSnapshot(t *testing.T) {
	initial := model.State{Topic: "bees", Platform: model.PlatformTwitter, Tone: model.ToneCasual}
	snap := workflow.Snapshot(initial)
	assert.Equal(t, "bees", snap["topic"])
	assert.Equal(t, "twitter", snap["platform"])
	assert.Equal(t, "casual", snap["tone"])
	assert.NotContains(t, snap, "research_result")
	assert.NotContains(t, snap, "content_result")
	assert.NotContains(t, snap, "image_result")

	long := strings.Repeat("a", 150)
	full := initial
	full.Research = &model.ResearchResult{BulletPoints: []string{long}}
	full.Content = &model.ContentResult{Content: long}
	full.Image = &model.ImageResult{Prompt: "p", Path: "data/images/twitter_1a2b3c4d.png"}

	snap = workflow.Snapshot(full)
	assert.Equal(t, strings.Repeat("a", 100)+"...", snap["research_result"])
	assert.Equal(t, strings.Repeat("a", 100)+"...", snap["content_result"])
	assert.Equal(t, "data/images/twitter_1a2b3c4d.png", snap["image_result"])
}
