package pipeline

import (
	"log/slog"

	"github.com/randalmurphal/postflow/pkg/pipeline/observability"
	"github.com/randalmurphal/postflow/pkg/trace"
)

// runConfig holds configuration for pipeline execution.
type runConfig struct {
	logger         *slog.Logger
	metrics        observability.MetricsRecorder
	metricsEnabled bool
	spans          observability.SpanManager
	tracingEnabled bool
	sink           trace.Sink
	runID          string
}

// defaultRunConfig returns the default execution configuration.
// Observability is disabled: no logger, no-op metrics and spans, no sink.
func defaultRunConfig() runConfig {
	return runConfig{
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
}

// RunOption configures execution behavior.
type RunOption func(*runConfig)

// WithObservabilityLogger sets the logger for run and stage lifecycle
// logs. Without it, lifecycle logging is silent. Stage code logs via
// Context.Logger(), which is configured separately on the Context.
func WithObservabilityLogger(logger *slog.Logger) RunOption {
	return func(c *runConfig) {
		c.logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics for this run.
// The recorder uses the global OTel meter provider.
func WithMetrics(enabled bool) RunOption {
	return func(c *runConfig) {
		c.metricsEnabled = enabled
		if enabled {
			c.metrics = observability.NewMetricsRecorder()
		} else {
			c.metrics = observability.NoopMetrics{}
		}
	}
}

// WithTracing enables OpenTelemetry spans for this run.
// The span manager uses the global OTel tracer provider.
func WithTracing(enabled bool) RunOption {
	return func(c *runConfig) {
		c.tracingEnabled = enabled
		if enabled {
			c.spans = observability.NewSpanManager()
		} else {
			c.spans = observability.NoopSpanManager{}
		}
	}
}

// WithSink sets the trace sink receiving workflow lifecycle events.
// Emission is fire-and-forget: sink errors are logged at warn level
// and never affect the run.
func WithSink(s trace.Sink) RunOption {
	return func(c *runConfig) {
		c.sink = s
	}
}

// WithRunIDOverride sets the run identifier for this run, taking
// precedence over the Context's run ID in logs and events.
func WithRunIDOverride(id string) RunOption {
	return func(c *runConfig) {
		c.runID = id
	}
}
