package trace

import (
	"context"
	"log/slog"
	"sort"
)

// SlogSink writes each event as one structured log line.
// It is the default sink when no journal is configured.
type SlogSink struct {
	logger *slog.Logger
}

// Compile-time interface check.
var _ Sink = (*SlogSink)(nil)

// NewSlogSink creates a sink that logs events through the given logger.
// A nil logger falls back to slog.Default().
func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger}
}

// Emit implements Sink. Fields are sorted by key so output is stable.
func (s *SlogSink) Emit(_ context.Context, e Event) error {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]any, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, e.Fields[k]))
	}

	s.logger.Info(e.Name, attrs...)
	return nil
}
