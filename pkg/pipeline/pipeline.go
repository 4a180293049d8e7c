package pipeline

import (
	"fmt"
	"strings"
	"sync"
)

// Pipeline is a mutable builder for creating stage sequences.
// Use New to create a pipeline, then chain Stage calls to define the
// workflow in execution order, and Build() to obtain a Runner.
//
// Pipeline is NOT thread-safe during building. Use a single goroutine
// to construct the pipeline, then call Build() to create an immutable
// Runner that can be safely shared.
//
// Example:
//
//	runner, err := pipeline.New[Draft]("content-generation").
//	    Stage("research", researchStage).
//	    Stage("content", contentStage).
//	    Stage("image", imageStage).
//	    Build()
type Pipeline[S any] struct {
	mu       sync.Mutex
	name     string
	stages   []stage[S]
	snapshot func(S) map[string]any
}

// New creates a pipeline builder for state type S.
// The name identifies the pipeline in spans and logs.
//
// Panics if name is empty.
func New[S any](name string) *Pipeline[S] {
	if name == "" {
		panic("pipeline: name cannot be empty")
	}
	return &Pipeline[S]{name: name}
}

// Stage appends a named stage to the pipeline. Stages execute in the
// order they are added; the order is fixed once Build() is called.
// Returns the pipeline for method chaining.
//
// Panics if:
//   - name is empty
//   - name contains whitespace (space, tab, newline)
//   - fn is nil
//   - name was already added
func (p *Pipeline[S]) Stage(name string, fn StageFunc[S]) *Pipeline[S] {
	if name == "" {
		panic("pipeline: stage name cannot be empty")
	}

	if strings.ContainsAny(name, " \t\n\r") {
		panic("pipeline: stage name cannot contain whitespace")
	}

	if fn == nil {
		panic("pipeline: stage function cannot be nil")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, st := range p.stages {
		if st.name == name {
			panic(fmt.Sprintf("pipeline: duplicate stage name: %s", name))
		}
	}

	p.stages = append(p.stages, stage[S]{name: name, fn: fn})
	return p
}

// Snapshot sets the function used to summarize state in trace events.
// The returned map must be flat and JSON-serializable; long values
// should be truncated by the caller (see trace.Truncate).
// Without a snapshot function, events carry only lifecycle fields.
// Returns the pipeline for method chaining.
func (p *Pipeline[S]) Snapshot(fn func(S) map[string]any) *Pipeline[S] {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.snapshot = fn
	return p
}

// Build validates the pipeline and creates an executable Runner.
// Returns ErrNoStages if no stage was added.
func (p *Pipeline[S]) Build() (*Runner[S], error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.stages) == 0 {
		return nil, ErrNoStages
	}

	stages := make([]stage[S], len(p.stages))
	copy(stages, p.stages)

	return &Runner[S]{
		name:     p.name,
		stages:   stages,
		snapshot: p.snapshot,
	}, nil
}

// Runner is an immutable, executable stage sequence.
// It is created by calling Build() on a Pipeline builder.
//
// Runner is thread-safe and can be used concurrently for multiple
// Run() calls. The stage sequence cannot be modified after building.
type Runner[S any] struct {
	name     string
	stages   []stage[S]
	snapshot func(S) map[string]any
}

// Name returns the pipeline name.
func (r *Runner[S]) Name() string {
	return r.name
}

// Stages returns the stage names in execution order.
func (r *Runner[S]) Stages() []string {
	names := make([]string, len(r.stages))
	for i, st := range r.stages {
		names[i] = st.name
	}
	return names
}

// HasStage checks if a stage exists in the pipeline.
func (r *Runner[S]) HasStage(name string) bool {
	for _, st := range r.stages {
		if st.name == name {
			return true
		}
	}
	return false
}
