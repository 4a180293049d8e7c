package pipeline

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/randalmurphal/postflow/pkg/pipeline/observability"
	"github.com/randalmurphal/postflow/pkg/trace"
)

// Lifecycle event values carried in the "event" field of workflow
// trace events emitted by the runner.
const (
	EventWorkflowStart    = "workflow_start"
	EventWorkflowComplete = "workflow_complete"
	EventWorkflowError    = "workflow_error"
	EventStageStart       = "stage_start"
	EventStageComplete    = "stage_complete"
	EventStageError       = "stage_error"
)

// Run executes the stages in order with the given initial state.
// Returns the final state and any error encountered.
//
// On success, returns the state after the last stage.
// On error, returns the state at the point of failure: a stage failure
// aborts the run and later stages do not execute.
//
// Execution flow per stage:
//  1. Check for cancellation
//  2. Emit stage_start, log, open span
//  3. Execute the stage (panics recovered)
//  4. Record metrics, close span
//  5. Emit stage_complete or stage_error
//
// Example:
//
//	ctx := pipeline.NewContext(context.Background())
//	result, err := runner.Run(ctx, initialState)
//	if err != nil {
//	    // result contains state at point of failure
//	}
func (r *Runner[S]) Run(ctx Context, state S, opts ...RunOption) (result S, runErr error) {
	if ctx == nil {
		return state, ErrNilContext
	}

	cfg := defaultRunConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	// Run ID for observability (from config or context)
	runID := cfg.runID
	if runID == "" {
		runID = ctx.RunID()
	}

	startTime := time.Now()

	observability.LogRunStart(cfg.logger, runID)
	r.emitWorkflowEvent(ctx, &cfg, runID, EventWorkflowStart, "", state, nil)

	// Start run span if tracing enabled
	var execCtx context.Context = ctx
	var runSpan oteltrace.Span
	if cfg.tracingEnabled {
		execCtx, runSpan = cfg.spans.StartRunSpan(ctx, r.name, runID)
		defer func() {
			cfg.spans.EndSpanWithError(runSpan, runErr)
		}()
	}

	var stageCount int
	result, stageCount, runErr = r.runStages(execCtx, ctx, state, &cfg, runID)

	duration := time.Since(startTime)
	durationMs := float64(duration.Milliseconds())

	cfg.metrics.RecordPipelineRun(ctx, runErr == nil, duration)

	if runErr != nil {
		lastStage := failedStage(runErr)
		observability.LogRunError(cfg.logger, runID, runErr, durationMs, lastStage)
		r.emitWorkflowEvent(ctx, &cfg, runID, EventWorkflowError, lastStage, result, map[string]any{
			"error": runErr.Error(),
		})
		return result, runErr
	}

	observability.LogRunComplete(cfg.logger, runID, durationMs, stageCount)
	r.emitWorkflowEvent(ctx, &cfg, runID, EventWorkflowComplete, "", result, map[string]any{
		"elapsed_time_ms": durationMs,
	})
	return result, nil
}

// runStages executes the stage sequence with per-stage observability.
// tracingCtx carries span context; pctx is the pipeline Context.
// Returns the final state, completed stage count, and any error.
func (r *Runner[S]) runStages(tracingCtx context.Context, pctx Context, state S, cfg *runConfig, runID string) (S, int, error) {
	stageCount := 0

	for _, st := range r.stages {
		// Check for cancellation before executing the stage
		select {
		case <-pctx.Done():
			return state, stageCount, &CancellationError{
				Stage: st.name,
				State: state,
				Cause: pctx.Err(),
			}
		default:
		}

		observability.LogStageStart(cfg.logger, st.name)
		r.emitWorkflowEvent(tracingCtx, cfg, runID, EventStageStart, st.name, state, nil)

		// Start stage span if tracing enabled
		stageTracingCtx := tracingCtx
		var stageSpan oteltrace.Span
		if cfg.tracingEnabled {
			stageTracingCtx, stageSpan = cfg.spans.StartStageSpan(tracingCtx, st.name)
		}

		stageStart := time.Now()

		var stageErr error
		state, stageErr = r.executeStage(pctx, st, state)

		stageDuration := time.Since(stageStart)
		stageDurationMs := float64(stageDuration.Milliseconds())

		cfg.metrics.RecordStageExecution(stageTracingCtx, st.name, stageDuration, stageErr)

		if cfg.tracingEnabled {
			cfg.spans.EndSpanWithError(stageSpan, stageErr)
		}

		if stageErr != nil {
			observability.LogStageError(cfg.logger, st.name, stageErr)
			r.emitWorkflowEvent(tracingCtx, cfg, runID, EventStageError, st.name, state, map[string]any{
				"error": stageErr.Error(),
			})
			return state, stageCount, stageErr
		}

		observability.LogStageComplete(cfg.logger, st.name, stageDurationMs)
		r.emitWorkflowEvent(tracingCtx, cfg, runID, EventStageComplete, st.name, state, map[string]any{
			"elapsed_time_ms": stageDurationMs,
		})
		stageCount++
	}

	return state, stageCount, nil
}

// executeStage executes a single stage with panic recovery.
// Returns the new state and any error (including wrapped panics).
func (r *Runner[S]) executeStage(ctx Context, st stage[S], state S) (result S, err error) {
	// Create stage-specific context with enriched logger
	stageCtx := ctx
	if ec, ok := ctx.(*executionContext); ok {
		stageCtx = ec.withStage(st.name)
	}

	// Panic recovery
	defer func() {
		if rec := recover(); rec != nil {
			result = state
			err = &PanicError{
				Stage: st.name,
				Value: rec,
				Stack: string(debug.Stack()),
			}
		}
	}()

	result, err = st.fn(stageCtx, state)
	if err != nil {
		return result, &StageError{
			Stage: st.name,
			Op:    "execute",
			Err:   err,
		}
	}

	return result, nil
}

// emitWorkflowEvent sends one lifecycle event to the configured sink.
// Fields: event, execution_id, stage (when stage-scoped), the state
// snapshot, and any extras. Sink failures are logged, never returned.
func (r *Runner[S]) emitWorkflowEvent(ctx context.Context, cfg *runConfig, runID, event, stageName string, state S, extra map[string]any) {
	if cfg.sink == nil {
		return
	}

	fields := map[string]any{
		"event":        event,
		"execution_id": runID,
	}
	if stageName != "" {
		fields["stage"] = stageName
	}
	if r.snapshot != nil {
		for k, v := range r.snapshot(state) {
			if _, taken := fields[k]; !taken {
				fields[k] = v
			}
		}
	}
	for k, v := range extra {
		fields[k] = v
	}

	if err := cfg.sink.Emit(ctx, trace.Event{Name: trace.WorkflowEvent, Fields: fields}); err != nil {
		observability.LogSinkError(cfg.logger, event, err)
		return
	}
	cfg.metrics.RecordEventEmitted(ctx, trace.WorkflowEvent)
}

// failedStage extracts the stage name from a run error, if any.
func failedStage(err error) string {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage
	}
	var panicErr *PanicError
	if errors.As(err, &panicErr) {
		return panicErr.Stage
	}
	var cancelErr *CancellationError
	if errors.As(err, &cancelErr) {
		return cancelErr.Stage
	}
	return ""
}
