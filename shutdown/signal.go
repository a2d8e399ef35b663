package shutdown

import (
	"context"

	nkerrors "github.com/vinayprograms/nodekit/errors"
)

// Signal is a one-slot notification used as a cancellation flag.
type Signal struct {
	ch chan struct{}
}

// NewSignal creates an empty signal.
func NewSignal() *Signal {
	return &Signal{ch: make(chan struct{}, 1)}
}

// Request publishes one notification.
// It blocks while a previous notification is still unconsumed. A done ctx
// never publishes, even when the slot is free.
func (s *Signal) Request(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return nkerrors.Wrap(err, "shutdown request")
	}
	select {
	case s.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return nkerrors.Wrap(ctx.Err(), "shutdown request")
	}
}

// Await blocks until a notification is available and consumes it.
func (s *Signal) Await(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return nkerrors.Wrap(err, "shutdown await")
	}
	select {
	case <-s.ch:
		return nil
	case <-ctx.Done():
		return nkerrors.Wrap(ctx.Err(), "shutdown await")
	}
}

// C exposes the slot for use in a select. Receiving from it consumes the
// notification exactly like Await.
func (s *Signal) C() <-chan struct{} {
	return s.ch
}

// Pending reports whether a notification is waiting to be consumed.
func (s *Signal) Pending() bool {
	return len(s.ch) > 0
}
