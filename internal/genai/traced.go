package genai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/randalmurphal/postflow/pkg/pipeline/observability"
	"github.com/randalmurphal/postflow/pkg/trace"
)

// ImageGenerationAgent is the agent name carried in trace events for
// image rendering calls, which have no Task of their own.
const ImageGenerationAgent = "image_generation"

// Traced decorates a generation client pair with agent-level trace
// events: agent_start before each call, agent_completion or agent_error
// after. Emission is fire-and-forget; a failing sink is logged at warn
// level and never affects the call. Wrapping happens once at assembly
// time so stage code stays free of tracing concerns.
type Traced struct {
	client Client
	images ImageClient
	sink   trace.Sink
	logger *slog.Logger
}

// Compile-time interface checks.
var (
	_ Client      = (*Traced)(nil)
	_ ImageClient = (*Traced)(nil)
)

// NewTraced wraps a client pair with agent event emission.
// sink and logger may each be nil.
func NewTraced(client Client, images ImageClient, sink trace.Sink, logger *slog.Logger) *Traced {
	return &Traced{client: client, images: images, sink: sink, logger: logger}
}

// Generate implements Client.
func (t *Traced) Generate(ctx context.Context, task Task) ([]byte, error) {
	t.emit(ctx, trace.AgentStart, map[string]any{
		"agent_type": task.Agent,
		"event":      trace.AgentStart,
		"prompt":     task.Prompt,
	})

	done := observability.TimedOperation()
	raw, err := t.client.Generate(ctx, task)
	if err != nil {
		t.emit(ctx, trace.AgentError, map[string]any{
			"agent_type":    task.Agent,
			"event":         trace.AgentError,
			"error_type":    fmt.Sprintf("%T", err),
			"error_message": err.Error(),
		})
		return nil, err
	}

	t.emit(ctx, trace.AgentCompletion, map[string]any{
		"agent_type":      task.Agent,
		"event":           trace.AgentCompletion,
		"result":          string(raw),
		"elapsed_time_ms": done(),
	})
	return raw, nil
}

// GenerateImage implements ImageClient.
func (t *Traced) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	t.emit(ctx, trace.AgentStart, map[string]any{
		"agent_type": ImageGenerationAgent,
		"event":      trace.AgentStart,
		"prompt":     prompt,
	})

	done := observability.TimedOperation()
	data, err := t.images.GenerateImage(ctx, prompt)
	if err != nil {
		t.emit(ctx, trace.AgentError, map[string]any{
			"agent_type":    ImageGenerationAgent,
			"event":         trace.AgentError,
			"error_type":    fmt.Sprintf("%T", err),
			"error_message": err.Error(),
		})
		return nil, err
	}

	t.emit(ctx, trace.AgentCompletion, map[string]any{
		"agent_type":      ImageGenerationAgent,
		"event":           trace.AgentCompletion,
		"result":          fmt.Sprintf("%d bytes", len(data)),
		"elapsed_time_ms": done(),
	})
	return data, nil
}

// emit sends one agent event, logging drops instead of failing.
func (t *Traced) emit(ctx context.Context, name string, fields map[string]any) {
	if err := trace.Emit(ctx, t.sink, name, fields); err != nil {
		observability.LogSinkError(t.logger, name, err)
	}
}
