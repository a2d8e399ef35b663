package system

import "sync/atomic"

// State is the lifecycle position of a System.
type State int32

const (
	NotStarted State = iota
	Starting
	Running
	Stopping
	Stopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	default:
		return "invalid"
	}
}

// Phase reports whether the state runs node hooks.
func (s State) Phase() bool {
	return s == Starting || s == Running || s == Stopping
}

// stateCell holds the current state and notifies an observer on change.
type stateCell struct {
	v        atomic.Int32
	observer func(State)
}

func (c *stateCell) load() State {
	return State(c.v.Load())
}

func (c *stateCell) store(s State) {
	c.v.Store(int32(s))
	if c.observer != nil {
		c.observer(s)
	}
}
