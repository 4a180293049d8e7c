package pipeline

// StageFunc is the signature for all stage functions.
// Stages receive the execution context and current state,
// and return the updated state (or the same state) and any error.
//
// The state parameter is passed by value. Stages should set their
// fields on the copy and return it, not rely on pointer mutation.
//
// Example:
//
//	func enrich(ctx pipeline.Context, s Draft) (Draft, error) {
//	    s.Summary = summarize(s.Body)
//	    return s, nil
//	}
type StageFunc[S any] func(ctx Context, state S) (S, error)

// stage pairs a name with its function. Order is positional.
type stage[S any] struct {
	name string
	fn   StageFunc[S]
}
