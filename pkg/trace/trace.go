// Package trace provides fire-and-forget workflow trace events.
//
// Events are flat, string-keyed records describing agent and workflow
// lifecycle moments. They are emitted to a Sink as a side effect of
// execution and are never read back into workflow state. Sinks must
// tolerate failure: emit errors are reported to the caller, which logs
// a warning and continues.
package trace

import (
	"context"
)

// Event names understood by downstream consumers.
const (
	// AgentStart marks the beginning of a single agent invocation.
	// Fields: agent_type, event, prompt.
	AgentStart = "agent_start"

	// AgentCompletion marks a successful agent invocation.
	// Fields: agent_type, event, result, elapsed_time_ms.
	AgentCompletion = "agent_completion"

	// AgentError marks a failed agent invocation.
	// Fields: agent_type, event, error_type, error_message.
	AgentError = "agent_error"

	// WorkflowEvent marks a workflow lifecycle moment (run or stage
	// boundaries). Fields: event, execution_id, plus a state snapshot.
	WorkflowEvent = "workflow_event"
)

// Event is a single trace record.
// Fields must be flat and JSON-serializable: strings, numbers, bools.
// Nested structures are flattened or stringified by the producer.
type Event struct {
	Name   string
	Fields map[string]any
}

// Sink receives trace events.
//
// Emit is fire-and-forget from the producer's perspective: a returned
// error means the event was lost, never that the producing operation
// failed. Implementations must be safe for concurrent use.
type Sink interface {
	Emit(ctx context.Context, e Event) error
}

// Emit sends an event to the sink, tolerating a nil sink.
// Returns the sink's error so callers can log dropped events.
func Emit(ctx context.Context, s Sink, name string, fields map[string]any) error {
	if s == nil {
		return nil
	}
	return s.Emit(ctx, Event{Name: name, Fields: fields})
}

// maxValueLen bounds snapshot values included in event fields.
const maxValueLen = 100

// Truncate clips s for inclusion in an event field.
// Values longer than n runes get a "..." suffix.
func Truncate(s string, n int) string {
	if n <= 0 {
		n = maxValueLen
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
