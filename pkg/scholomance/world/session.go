package world

import (
	"crypto/rand"
	"sync"

	"github.com/oklog/ulid/v2"
)

// Session pairs a generated world with a player's state.
type Session struct {
	ID      string `json:"id"`
	Scroll  Scroll `json:"scroll"`
	World   World  `json:"world"`
	State   State  `json:"state"`
	mu      sync.Mutex
	history []Action
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

func newSessionID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Now(), entropy).String()
}

// NewSession computes metrics for the scroll, generates its world and
// starts a fresh state. Session IDs sort by creation time.
func NewSession(s Scroll) *Session {
	w := Generate(ComputeMetrics(s), s)
	return &Session{
		ID:     newSessionID(),
		Scroll: s,
		World:  w,
		State:  InitialState(w),
	}
}

// Dispatch applies a to the session state and returns the new state.
func (s *Session) Dispatch(a Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.State = Reduce(s.World, s.State, a)
	s.history = append(s.history, a)
	return s.State
}

// Snapshot returns the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.State.clone()
}

// Replay rebuilds the state from the start by reapplying every
// dispatched action.
func (s *Session) Replay() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := InitialState(s.World)
	for _, a := range s.history {
		st = Reduce(s.World, st, a)
	}
	return st
}
