// Package errors provides the structured error taxonomy of the runtime.
//
// Every failure surfaced by the mailbox, the shutdown signals, the state store
// and the orchestrator is an *Error carrying a code and a category:
//
//	CHANNEL_CLOSED, SEND_FAILED, RECEIVE_FAILED   permanent, mailbox transport
//	SHUTDOWN, UNKNOWN                             fatal, returned from Start
//	CANCELED, ALREADY_STARTED                     permanent, lifecycle misuse
//	NOT_FOUND, TYPE_MISMATCH, INVALID_INPUT       permanent, state store
//	INTERNAL, PANIC                               internal
//
// Errors compare by code, so package sentinels work with the standard library:
//
//	if stderrors.Is(err, system.ErrShutdown) {
//	    // emergency path, stopping hooks were skipped
//	}
//
// Or with the helpers in this package:
//
//	if errors.Is(err, errors.ErrCodeUnknown) {
//	    log.Printf("node %s failed", errors.GetMetadata(err)["node"])
//	}
//
// None of the runtime errors are retried internally.
package errors
