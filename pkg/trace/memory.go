package trace

import (
	"context"
	"sync"
)

// MemorySink accumulates events in memory.
// Useful for tests and for inspecting a run without a journal file.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

// Compile-time interface check.
var _ Sink = (*MemorySink)(nil)

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Emit implements Sink. The event's field map is copied so later
// mutation by the producer cannot change recorded history.
func (m *MemorySink) Emit(_ context.Context, e Event) error {
	fields := make(map[string]any, len(e.Fields))
	for k, v := range e.Fields {
		fields[k] = v
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, Event{Name: e.Name, Fields: fields})
	return nil
}

// Events returns a copy of all recorded events in emit order.
func (m *MemorySink) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// Names returns the event names in emit order.
func (m *MemorySink) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, len(m.events))
	for i, e := range m.events {
		names[i] = e.Name
	}
	return names
}

// Reset discards all recorded events.
func (m *MemorySink) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}
