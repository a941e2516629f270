package devtools

import (
	"sync"
)

// State is the inspection state of one bridge: the live client and the event
// history. It is created by the caller and shared with the bridge, so anything
// holding it can inspect the bridge without a panel attached.
type State struct {
	events *EventCache

	mu     sync.RWMutex
	client Executor
	active bool
}

// NewState creates empty inspection state.
func NewState() *State {
	return &State{events: NewEventCache()}
}

// Client returns the client the bridge is installed in, or nil before activation.
func (s *State) Client() Executor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client
}

// Active reports whether a bridge has been activated with this state.
func (s *State) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Cache returns the event cache.
func (s *State) Cache() *EventCache {
	return s.events
}

// Events returns copies of all cached events in order.
func (s *State) Events() []Event {
	return s.events.Events()
}

// activate records the live client. The client is set once; later
// activations keep the first one.
func (s *State) activate(c Executor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		s.client = c
		s.active = true
	}
}
