// Package system drives registered nodes through a shared lifecycle.
//
// A System owns an ordered set of nodes, one shutdown.Context and one
// mailbox.Mailbox. Start runs three phases in order:
//
//	NotStarted -> Starting -> Running -> Stopping -> Stopped
//
// Each phase calls the matching hook on every node in its own goroutine and
// waits for whichever comes first:
//
//   - all hooks returned: move to the next phase
//   - graceful shutdown requested: abandon the phase and jump to Stopping
//   - emergency shutdown requested: abandon the phase and return ErrShutdown
//   - a hook failed or panicked: abandon the phase and return ErrUnknown
//
// Abandoning a phase cancels the context handed to its hooks. Hooks that
// ignore their context keep running but are no longer waited for.
//
// # Usage
//
//	sys := system.New(system.WithName("pipeline"))
//	sys.AddNode(&Producer{}).AddNode(&Consumer{})
//
//	if err := sys.Start(ctx); err != nil {
//	    if errors.Is(err, system.ErrShutdown) {
//	        // emergency path, stopping hooks were skipped
//	    }
//	    return err
//	}
//
// There are no phase timeouts. A hook that never returns and never observes
// its context or a shutdown signal holds its phase open forever.
package system
