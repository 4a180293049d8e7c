package web

import (
	"sync"

	"github.com/google/uuid"

	"github.com/randalmurphal/postflow/internal/model"
)

// sessionStore keeps generated results in memory so result pages and
// publish actions can reference them by id.
type sessionStore struct {
	mu      sync.Mutex
	entries map[string]*sessionEntry
}

type sessionEntry struct {
	state   model.State
	publish *model.PublishResult
}

func newSessionStore() *sessionStore {
	return &sessionStore{entries: make(map[string]*sessionEntry)}
}

func (s *sessionStore) add(state model.State) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.entries[id] = &sessionEntry{state: state}
	s.mu.Unlock()
	return id
}

func (s *sessionStore) state(id string) (model.State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return model.State{}, false
	}
	return e.state, true
}

// publishResult returns a copy of the recorded publish outcome, or nil
// when no attempt was made yet.
func (s *sessionStore) publishResult(id string) *model.PublishResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok || e.publish == nil {
		return nil
	}
	res := *e.publish
	return &res
}

// recordPublish stores the outcome and returns the record that won. A
// recorded success is never overwritten, so concurrent publishes of
// the same entry settle on the first success.
func (s *sessionStore) recordPublish(id string, res model.PublishResult) model.PublishResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return res
	}
	if e.publish != nil && e.publish.Success {
		return *e.publish
	}
	e.publish = &res
	return res
}
