package pipeline

import (
	"context"
)

// Test state types used across tests

// Counter is a simple state for testing incrementing.
type Counter struct {
	Value int
}

// Draft is a richer state for testing various scenarios.
type Draft struct {
	Initial  string
	Progress []string
	Output   string
	Step     int
}

// Helper stage functions

// increment is a stage that increments the counter.
func increment(ctx Context, s Counter) (Counter, error) {
	s.Value++
	return s, nil
}

// makeTrackingStage creates a stage that records its execution.
func makeTrackingStage(name string, tracker *[]string) StageFunc[Draft] {
	return func(ctx Context, s Draft) (Draft, error) {
		*tracker = append(*tracker, name)
		s.Progress = append(s.Progress, name)
		return s, nil
	}
}

// makeFailingStage creates a stage that returns the given error.
func makeFailingStage(err error) StageFunc[Draft] {
	return func(ctx Context, s Draft) (Draft, error) {
		return s, err
	}
}

// makePanicStage creates a stage that panics with the given value.
func makePanicStage(value any) StageFunc[Draft] {
	return func(ctx Context, s Draft) (Draft, error) {
		panic(value)
	}
}

// testCtx creates a simple test context.
func testCtx() Context {
	return NewContext(context.Background())
}
