package pipeline

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/randalmurphal/postflow/pkg/pipeline/observability"
)

// Context provides execution context to stages.
// It extends context.Context with pipeline-specific services and metadata.
//
// Context is immutable after creation. The runner creates derived
// contexts for each stage with the stage name set and the logger
// enriched.
type Context interface {
	context.Context

	// Logger returns the configured logger, enriched with run and stage
	// context during execution. Never returns nil - defaults to
	// slog.Default() if not configured.
	Logger() *slog.Logger

	// RunID returns the unique identifier for this execution run.
	// Auto-generated if not configured.
	RunID() string

	// Stage returns the name of the stage currently executing.
	// Empty string before execution starts.
	Stage() string
}

// executionContext is the internal implementation of Context.
type executionContext struct {
	context.Context

	logger *slog.Logger
	runID  string
	stage  string
}

// Logger returns the configured logger.
func (c *executionContext) Logger() *slog.Logger {
	return c.logger
}

// RunID returns the run identifier.
func (c *executionContext) RunID() string {
	return c.runID
}

// Stage returns the current stage name.
func (c *executionContext) Stage() string {
	return c.stage
}

// ContextOption configures a Context.
type ContextOption func(*executionContext)

// WithLogger sets the logger for the context.
// The logger is enriched with run_id and stage during execution.
func WithLogger(logger *slog.Logger) ContextOption {
	return func(c *executionContext) {
		c.logger = logger
	}
}

// WithRunID sets the run identifier for the context.
// If not set, a UUID is auto-generated.
func WithRunID(id string) ContextOption {
	return func(c *executionContext) {
		c.runID = id
	}
}

// NewContext creates an execution context from a standard context.
// The returned Context wraps the provided context.Context and adds
// pipeline-specific services and metadata.
//
// Example:
//
//	ctx := pipeline.NewContext(context.Background(),
//	    pipeline.WithLogger(myLogger),
//	    pipeline.WithRunID("run-123"))
func NewContext(ctx context.Context, opts ...ContextOption) Context {
	ec := &executionContext{
		Context: ctx,
		logger:  slog.Default(),
		runID:   uuid.New().String(),
	}

	for _, opt := range opts {
		opt(ec)
	}

	return ec
}

// withStage returns a new context with the given stage name set.
// Used internally by the runner to enrich the context per-stage.
func (c *executionContext) withStage(name string) *executionContext {
	return &executionContext{
		Context: c.Context,
		logger:  observability.EnrichLogger(c.logger, c.runID, name),
		runID:   c.runID,
		stage:   name,
	}
}
