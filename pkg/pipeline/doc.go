/*
Package pipeline provides linear orchestration for staged LLM workflows.

# Overview

pipeline executes a fixed sequence of stages over a typed state value.
Each stage receives the current state and returns an updated copy; the
runner threads the state through the stages in the order they were
declared. There is no branching: the transition order is decided at
construction time and validated by Build().

The package is designed for workflows whose structure is known up
front, with:
  - Type-safe generics for state management
  - Build-time validation of the stage sequence
  - Panic recovery and typed stage errors
  - Lifecycle trace events at the runner boundary
  - OpenTelemetry integration for observability

# Basic Usage

Declare stages, build, and run:

	type State struct {
	    Input  string
	    Output string
	}

	func process(ctx pipeline.Context, s State) (State, error) {
	    s.Output = "Processed: " + s.Input
	    return s, nil
	}

	func main() {
	    runner, err := pipeline.New[State]("demo").
	        Stage("process", process).
	        Build()
	    if err != nil {
	        log.Fatal(err)
	    }

	    ctx := pipeline.NewContext(context.Background())
	    result, err := runner.Run(ctx, State{Input: "hello"})
	    if err != nil {
	        log.Fatal(err)
	    }
	    fmt.Println(result.Output) // "Processed: hello"
	}

# Trace Events

The runner, not the stages, reports lifecycle progress. Configure a
sink and a snapshot function to receive workflow events around the run
and around every stage:

	runner, _ := pipeline.New[State]("demo").
	    Stage("process", process).
	    Snapshot(func(s State) map[string]any {
	        return map[string]any{"input": s.Input}
	    }).
	    Build()

	result, err := runner.Run(ctx, state, pipeline.WithSink(sink))

Event emission is fire-and-forget: a failing sink is logged at warn
level and never affects the run. Stage code stays free of tracing.

# Observability

Enable logging, metrics, and tracing per run:

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	result, err := runner.Run(ctx, state,
	    pipeline.WithObservabilityLogger(logger),
	    pipeline.WithMetrics(true),
	    pipeline.WithTracing(true))

Logs include structured fields: run_id, stage, duration_ms.
OpenTelemetry metrics: pipeline.stage.executions, pipeline.stage.latency_ms, etc.
OpenTelemetry tracing: pipeline.run > pipeline.stage.{name} spans.

# Error Handling

Errors include context about which stage failed:

	result, err := runner.Run(ctx, state)
	var stageErr *pipeline.StageError
	if errors.As(err, &stageErr) {
	    log.Printf("stage %s failed: %v", stageErr.Stage, stageErr.Err)
	}

Panics in stages are recovered and converted to PanicError with a
stack trace. A stage failure aborts the run; later stages do not
execute, and the state at the point of failure is returned.

# Thread Safety

  - Pipeline[S] is NOT safe for concurrent use during construction
  - Runner[S] IS safe for concurrent use (immutable)
  - Context IS safe for concurrent use
*/
package pipeline
