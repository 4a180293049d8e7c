package trace

import (
	"context"
	"errors"
)

// multiSink fans events out to several sinks.
type multiSink struct {
	sinks []Sink
}

// Multi returns a sink that emits to every given sink.
// Nil sinks are skipped. Every sink receives the event even when an
// earlier one fails; the errors are joined.
func Multi(sinks ...Sink) Sink {
	kept := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return &multiSink{sinks: kept}
}

// Emit implements Sink.
func (m *multiSink) Emit(ctx context.Context, e Event) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Emit(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
