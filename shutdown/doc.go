// Package shutdown provides the one-shot signals nodes use to end a system's
// lifecycle.
//
// # Overview
//
// A Signal is a single-slot notification. Request fills the slot and Await
// empties it, so each Request is observed by exactly one waiter:
//
//	sig := shutdown.NewSignal()
//	sig.Request(ctx) // slot filled
//	sig.Await(ctx)   // returns, slot cleared
//	sig.Await(ctx)   // blocks until the next Request
//
// A second Request while the slot is still full blocks until someone awaits
// it or ctx is done. Signals are not broadcasts.
//
// # Context
//
// Context bundles two independent signals and is shared by every node of a
// system:
//
//	┌───────────────────────────── Context ─────────────────────────────┐
//	│  graceful  ── RequestShutdown ─────────► phase ends, Stopping runs │
//	│  emergency ── RequestEmergencyShutdown ─► lifecycle aborts         │
//	└────────────────────────────────────────────────────────────────────┘
//
// The orchestrator races both signals against every phase. A graceful request
// still runs the stopping hooks. An emergency request skips them and Start
// returns a SHUTDOWN error.
//
//	func (n *Worker) Running(ctx context.Context, sc *shutdown.Context, mb *mailbox.Mailbox) error {
//	    if n.done() {
//	        return sc.RequestShutdown(ctx)
//	    }
//	    ...
//	}
//
// # OS signals
//
// HandleSignals forwards the first SIGINT/SIGTERM as a graceful request and
// the second as an emergency request.
package shutdown
