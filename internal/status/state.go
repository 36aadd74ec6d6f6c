package status

import (
	"fmt"
	"slices"
	"sync"

	"github.com/matheus3301/chatterm/internal/bus"
)

// State is the client's connection lifecycle state.
type State string

const (
	Booting      State = "BOOTING"
	SignedOut    State = "SIGNED_OUT"
	Connecting   State = "CONNECTING"
	Online       State = "ONLINE"
	Disconnected State = "DISCONNECTED"
	Error        State = "ERROR"
)

// validTransitions defines allowed state transitions.
// Disconnected has no path back to Online on its own: the live channel
// does not reconnect, a fresh session check or login must go through Connecting.
var validTransitions = map[State][]State{
	Booting:      {SignedOut, Connecting, Error},
	SignedOut:    {Connecting, Error},
	Connecting:   {Online, Disconnected, SignedOut, Error},
	Online:       {Disconnected, SignedOut, Error},
	Disconnected: {Connecting, SignedOut, Error},
	Error:        {Booting, SignedOut},
}

// Machine tracks and enforces client state transitions.
type Machine struct {
	mu      sync.RWMutex
	current State
	bus     *bus.Bus
}

// NewMachine creates a new state machine starting in Booting state.
func NewMachine(b *bus.Bus) *Machine {
	return &Machine{
		current: Booting,
		bus:     b,
	}
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Transition attempts to move to a new state. Returns error if transition is invalid.
// A transition to the current state is a no-op.
func (m *Machine) Transition(to State) error {
	m.mu.Lock()
	if m.current == to {
		m.mu.Unlock()
		return nil
	}
	if !slices.Contains(validTransitions[m.current], to) {
		from := m.current
		m.mu.Unlock()
		return fmt.Errorf("invalid transition from %s to %s", from, to)
	}
	change := StatusChange{From: m.current, To: to}
	m.current = to
	m.mu.Unlock()

	m.bus.Emit(bus.StatusChanged, change)
	return nil
}

// StatusChange is the payload for status change events.
type StatusChange struct {
	From State
	To   State
}
