package trace_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/randalmurphal/postflow/pkg/trace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEmit_NilSink verifies the package helper tolerates a nil sink.
func TestEmit_NilSink(t *testing.T) {
	err := trace.Emit(context.Background(), nil, trace.AgentStart, map[string]any{"agent_type": "research"})
	assert.NoError(t, err)
}

// TestEmit_ForwardsToSink verifies the helper wraps name and fields into an event.
func TestEmit_ForwardsToSink(t *testing.T) {
	sink := trace.NewMemorySink()

	err := trace.Emit(context.Background(), sink, trace.WorkflowEvent, map[string]any{"event": "workflow_start"})
	require.NoError(t, err)

	events := sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, trace.WorkflowEvent, events[0].Name)
	assert.Equal(t, "workflow_start", events[0].Fields["event"])
}

// TestTruncate_ShortString returns short strings unchanged.
func TestTruncate_ShortString(t *testing.T) {
	assert.Equal(t, "hello", trace.Truncate("hello", 10))
}

// TestTruncate_LongString clips and appends an ellipsis marker.
func TestTruncate_LongString(t *testing.T) {
	long := strings.Repeat("x", 150)

	got := trace.Truncate(long, 100)

	assert.Equal(t, strings.Repeat("x", 100)+"...", got)
}

// TestTruncate_DefaultLimit applies the default cap when n is not positive.
func TestTruncate_DefaultLimit(t *testing.T) {
	long := strings.Repeat("y", 150)

	got := trace.Truncate(long, 0)

	assert.Len(t, got, 103) // 100 runes + "..."
}

// TestMemorySink_CopiesFields verifies recorded events are isolated from
// later mutation of the producer's map.
func TestMemorySink_CopiesFields(t *testing.T) {
	sink := trace.NewMemorySink()
	fields := map[string]any{"event": "stage_start"}

	require.NoError(t, sink.Emit(context.Background(), trace.Event{Name: trace.WorkflowEvent, Fields: fields}))
	fields["event"] = "mutated"

	events := sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "stage_start", events[0].Fields["event"])
}

// TestMemorySink_NamesAndReset covers the ordering helpers.
func TestMemorySink_NamesAndReset(t *testing.T) {
	sink := trace.NewMemorySink()
	ctx := context.Background()

	require.NoError(t, trace.Emit(ctx, sink, trace.AgentStart, nil))
	require.NoError(t, trace.Emit(ctx, sink, trace.AgentCompletion, nil))

	assert.Equal(t, []string{trace.AgentStart, trace.AgentCompletion}, sink.Names())

	sink.Reset()
	assert.Empty(t, sink.Events())
}

// TestSlogSink_WritesStructuredLine verifies one log record per event
// with the event name as message and fields as attributes.
func TestSlogSink_WritesStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	sink := trace.NewSlogSink(logger)

	err := sink.Emit(context.Background(), trace.Event{
		Name:   trace.AgentCompletion,
		Fields: map[string]any{"agent_type": "content", "elapsed_time_ms": 42.0},
	})
	require.NoError(t, err)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, trace.AgentCompletion, record["msg"])
	assert.Equal(t, "content", record["agent_type"])
	assert.Equal(t, 42.0, record["elapsed_time_ms"])
}

// failingSink always fails, for fan-out error propagation tests.
type failingSink struct{ err error }

func (f failingSink) Emit(context.Context, trace.Event) error { return f.err }

// TestMulti_FansOutToAllSinks verifies every sink sees the event even
// when one of them fails, and the failure surfaces.
func TestMulti_FansOutToAllSinks(t *testing.T) {
	a := trace.NewMemorySink()
	b := trace.NewMemorySink()
	boom := errors.New("boom")

	multi := trace.Multi(a, failingSink{err: boom}, b, nil)

	err := multi.Emit(context.Background(), trace.Event{Name: trace.AgentStart})
	assert.ErrorIs(t, err, boom)
	assert.Len(t, a.Events(), 1)
	assert.Len(t, b.Events(), 1)
}
