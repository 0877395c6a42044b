package bridge

import "sync"

// State is the bridge's view of its broker connection.
type State int

const (
	Disconnected State = iota
	Connecting
	Subscribed
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Subscribed:
		return "subscribed"
	}
	return "unknown"
}

type transition int

const (
	connectStarted transition = iota
	connectSucceeded
	connectFailed
	transportDropped
)

// next returns the state after t. Connect success from Subscribed re-enters
// Subscribed, which is how a broker-initiated reconnect is absorbed.
func next(s State, t transition) State {
	switch t {
	case connectStarted:
		if s == Subscribed {
			return Subscribed
		}
		return Connecting
	case connectSucceeded:
		return Subscribed
	case connectFailed:
		if s == Subscribed {
			return Subscribed
		}
		return Disconnected
	case transportDropped:
		return Disconnected
	}
	return s
}

type stateMachine struct {
	mu      sync.Mutex
	current State
}

func (m *stateMachine) fire(t transition) (from, to State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	from = m.current
	m.current = next(from, t)
	return from, m.current
}

func (m *stateMachine) get() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}
