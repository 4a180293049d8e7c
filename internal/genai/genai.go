// Package genai is the structured generation capability: it turns a
// prompt plus a JSON schema into a validated, typed result, and renders
// illustration images. Stages depend on the small Client/ImageClient
// interfaces; the OpenAI implementation and the tracing decorator live
// here so stage code stays free of transport and telemetry concerns.
package genai

import (
	"context"
	"encoding/json"
	"fmt"
)

// Schema declares the response format for a structured generation.
type Schema struct {
	// Name identifies the schema to the model provider.
	Name string
	// Schema is the JSON Schema document the response must conform to.
	Schema map[string]any
}

// Task is one structured generation request.
type Task struct {
	// Agent is the logical agent name carried in trace events.
	Agent string
	// System is the system prompt establishing the agent's role.
	System string
	// Prompt is the user prompt for this invocation.
	Prompt string
	// Schema constrains the response shape.
	Schema Schema
}

// Client produces schema-conforming JSON for a task.
type Client interface {
	// Generate returns raw JSON matching the task's schema.
	Generate(ctx context.Context, task Task) ([]byte, error)
}

// ImageClient renders an image for a prompt.
type ImageClient interface {
	// GenerateImage returns decoded PNG bytes for the prompt.
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

// Result is implemented by decodable generation outputs.
// Validate is the contract check rejecting generations that are
// malformed beyond what the JSON schema expresses (e.g. bullet counts).
type Result interface {
	Validate() error
}

// Invoke runs a task and decodes the response into T.
// The result's own contract check runs here, inside the capability:
// a violating generation is rejected, never patched by the caller.
func Invoke[T Result](ctx context.Context, c Client, task Task) (T, error) {
	var out T

	raw, err := c.Generate(ctx, task)
	if err != nil {
		return out, err
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode %s result: %w", task.Agent, err)
	}

	if err := out.Validate(); err != nil {
		return out, fmt.Errorf("validate %s result: %w", task.Agent, err)
	}

	return out, nil
}
