// Package workflow assembles the content generation pipeline. Stages
// run in fixed order: research gathers bullet points, content shapes
// them into a post, image renders an illustration. A stage failure
// stops the run where it happened, so a research error means no
// content and no image calls are made.
package workflow

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/randalmurphal/postflow/internal/agent"
	"github.com/randalmurphal/postflow/internal/genai"
	"github.com/randalmurphal/postflow/internal/imagestore"
	"github.com/randalmurphal/postflow/internal/model"
	"github.com/randalmurphal/postflow/pkg/pipeline"
	"github.com/randalmurphal/postflow/pkg/trace"
)

// Name identifies the pipeline in logs, spans, and trace events.
const Name = "content-generation"

// Request carries the inputs for one generation run.
type Request struct {
	Topic    string
	Platform model.Platform
	Tone     model.Tone
}

// Workflow runs the three-stage content pipeline. The generation
// clients are wrapped in a tracing decorator at construction time, so
// the stages themselves contain no tracing calls.
type Workflow struct {
	runner  *pipeline.Runner[model.State]
	sink    trace.Sink
	logger  *slog.Logger
	metrics bool
	tracing bool
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithSink sets the trace sink receiving agent and workflow events.
// Without a sink, events are silently discarded.
func WithSink(s trace.Sink) Option {
	return func(w *Workflow) { w.sink = s }
}

// WithLogger sets the logger for run lifecycle and stage logs.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workflow) { w.logger = logger }
}

// WithMetrics enables OpenTelemetry metrics on each run.
func WithMetrics(enabled bool) Option {
	return func(w *Workflow) { w.metrics = enabled }
}

// WithTracing enables OpenTelemetry spans on each run.
func WithTracing(enabled bool) Option {
	return func(w *Workflow) { w.tracing = enabled }
}

// New assembles the pipeline around the given generation clients and
// image store.
func New(gen genai.Client, img genai.ImageClient, store *imagestore.Store, opts ...Option) (*Workflow, error) {
	w := &Workflow{}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}

	traced := genai.NewTraced(gen, img, w.sink, w.logger)

	runner, err := pipeline.New[model.State](Name).
		Stage("research", agent.ResearchStage(traced)).
		Stage("content", agent.ContentStage(traced)).
		Stage("image", agent.ImageStage(traced, traced, store)).
		Snapshot(Snapshot).
		Build()
	if err != nil {
		return nil, err
	}
	w.runner = runner
	return w, nil
}

// Run executes the pipeline for one request. The returned state holds
// whatever the completed stages produced; on error it is the failing
// stage's input state.
func (w *Workflow) Run(ctx context.Context, req Request) (model.State, error) {
	state := model.State{Topic: req.Topic, Platform: req.Platform, Tone: req.Tone}
	if strings.TrimSpace(req.Topic) == "" {
		return state, errors.New("topic must not be empty")
	}

	pctx := pipeline.NewContext(ctx, pipeline.WithLogger(w.logger))
	return w.runner.Run(pctx, state,
		pipeline.WithObservabilityLogger(w.logger),
		pipeline.WithSink(w.sink),
		pipeline.WithMetrics(w.metrics),
		pipeline.WithTracing(w.tracing),
	)
}

// Snapshot summarizes state for trace events. Values are clipped to
// keep events small; sections that have not run yet are omitted.
func Snapshot(state model.State) map[string]any {
	snap := map[string]any{
		"topic":    trace.Truncate(state.Topic, 0),
		"platform": string(state.Platform),
		"tone":     string(state.Tone),
	}
	if state.Research != nil {
		snap["research_result"] = trace.Truncate(strings.Join(state.Research.BulletPoints, "; "), 0)
	}
	if state.Content != nil {
		snap["content_result"] = trace.Truncate(state.Content.Content, 0)
	}
	if state.Image != nil {
		snap["image_result"] = trace.Truncate(state.Image.Path, 0)
	}
	return snap
}
