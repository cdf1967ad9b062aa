// Package status tracks the lifecycle of a conversation view.
package status

import (
	"fmt"
	"slices"
	"sync"

	"github.com/matheus3301/fleetchat/internal/bus"
)

// State is a conversation view lifecycle state.
type State string

const (
	// Closed: no poller, no list.
	Closed State = "CLOSED"
	// Opening: names resolving and history seeding.
	Opening State = "OPENING"
	// Live: the poller is running.
	Live State = "LIVE"
	// Idle: open, but there is no target to poll for.
	Idle State = "IDLE"
	// Error: the poller stopped without being asked to.
	Error State = "ERROR"
)

var validTransitions = map[State][]State{
	Closed:  {Opening},
	Opening: {Live, Idle, Closed, Error},
	Live:    {Idle, Opening, Closed, Error},
	Idle:    {Live, Opening, Closed, Error},
	Error:   {Opening, Live, Idle, Closed},
}

// Machine enforces view lifecycle transitions.
type Machine struct {
	mu      sync.RWMutex
	current State
	bus     *bus.Bus
}

// NewMachine creates a machine in the Closed state. b may be nil.
func NewMachine(b *bus.Bus) *Machine {
	return &Machine{
		current: Closed,
		bus:     b,
	}
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Transition moves to a new state, or returns an error if the move is not allowed.
// Transitioning to the current state is a no-op.
func (m *Machine) Transition(to State) error {
	m.mu.Lock()
	from := m.current
	if from == to {
		m.mu.Unlock()
		return nil
	}
	if !slices.Contains(validTransitions[from], to) {
		m.mu.Unlock()
		return fmt.Errorf("invalid transition from %s to %s", from, to)
	}
	m.current = to
	m.mu.Unlock()

	m.bus.Emit(bus.KindViewStatusChanged, StatusChange{From: from, To: to})
	return nil
}

// StatusChange is the payload for view.status_changed events.
type StatusChange struct {
	From State
	To   State
}
