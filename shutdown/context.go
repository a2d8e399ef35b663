package shutdown

import "context"

// Kind names the two shutdown paths.
type Kind string

const (
	KindGraceful  Kind = "graceful"
	KindEmergency Kind = "emergency"
)

// Context bundles the graceful and emergency signals of one system.
// It is created once per system and shared by reference with every node.
type Context struct {
	graceful  *Signal
	emergency *Signal
}

// NewContext creates a Context with two empty signals.
func NewContext() *Context {
	return &Context{
		graceful:  NewSignal(),
		emergency: NewSignal(),
	}
}

// RequestShutdown asks the system to finish the current phase early and run
// the stopping hooks.
func (c *Context) RequestShutdown(ctx context.Context) error {
	return c.graceful.Request(ctx)
}

// RequestEmergencyShutdown asks the system to abort immediately, skipping the
// stopping hooks.
func (c *Context) RequestEmergencyShutdown(ctx context.Context) error {
	return c.emergency.Request(ctx)
}

// AwaitShutdown blocks until a graceful request is available and consumes it.
func (c *Context) AwaitShutdown(ctx context.Context) error {
	return c.graceful.Await(ctx)
}

// AwaitEmergencyShutdown blocks until an emergency request is available and
// consumes it.
func (c *Context) AwaitEmergencyShutdown(ctx context.Context) error {
	return c.emergency.Await(ctx)
}

// Graceful returns the graceful signal.
func (c *Context) Graceful() *Signal {
	return c.graceful
}

// Emergency returns the emergency signal.
func (c *Context) Emergency() *Signal {
	return c.emergency
}
