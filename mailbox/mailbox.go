package mailbox

import (
	"context"
	"sync"
	"sync/atomic"

	nkerrors "github.com/vinayprograms/nodekit/errors"
)

// Common errors. Compare with errors.Is.
var (
	// ErrChannelClosed indicates no receiver can ever observe the channel again.
	ErrChannelClosed = nkerrors.Sentinel(nkerrors.ErrCodeChannelClosed)

	// ErrSendFailed indicates a message could not be enqueued.
	ErrSendFailed = nkerrors.Sentinel(nkerrors.ErrCodeSendFailed)

	// ErrReceiveFailed indicates the channel is closed and nothing is pending.
	ErrReceiveFailed = nkerrors.Sentinel(nkerrors.ErrCodeReceiveFailed)
)

// Message is any value passed through a Mailbox. Its dynamic type is its tag.
type Message = any

// Mailbox is an unbounded MPMC queue of type-erased messages.
// The zero value is not usable; create one with New.
type Mailbox struct {
	mu     sync.Mutex
	queue  []Message
	notify chan struct{} // closed and replaced whenever the queue or closed flag changes
	closed bool

	sent    atomic.Uint64
	dropped atomic.Uint64
}

// New creates an empty, open Mailbox.
func New() *Mailbox {
	return &Mailbox{
		notify: make(chan struct{}),
	}
}

// Send enqueues msg. It never blocks on capacity.
func (m *Mailbox) Send(ctx context.Context, msg Message) error {
	if msg == nil {
		return nkerrors.InvalidInput("mailbox: nil message")
	}
	if err := ctx.Err(); err != nil {
		return nkerrors.Wrap(err, "mailbox send")
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nkerrors.New(nkerrors.ErrCodeSendFailed, "mailbox send",
			nkerrors.WithCause(ErrChannelClosed))
	}
	m.queue = append(m.queue, msg)
	m.wakeLocked()
	m.mu.Unlock()

	m.sent.Add(1)
	return nil
}

// Next dequeues the next message of any type, waiting until one arrives.
// A done ctx takes nothing, even when messages are pending.
func (m *Mailbox) Next(ctx context.Context) (Message, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, nkerrors.Wrap(err, "mailbox receive")
		}
		m.mu.Lock()
		if len(m.queue) > 0 {
			msg := m.queue[0]
			m.queue[0] = nil
			m.queue = m.queue[1:]
			m.mu.Unlock()
			return msg, nil
		}
		if m.closed {
			m.mu.Unlock()
			return nil, nkerrors.New(nkerrors.ErrCodeReceiveFailed, "mailbox receive",
				nkerrors.WithCause(ErrChannelClosed))
		}
		wait := m.notify
		m.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return nil, nkerrors.Wrap(ctx.Err(), "mailbox receive")
		}
	}
}

// Recv waits for a message whose dynamic type is M.
// Messages of any other type dequeued while waiting are discarded.
func Recv[M any](ctx context.Context, m *Mailbox) (M, error) {
	for {
		msg, err := m.Next(ctx)
		if err != nil {
			var zero M
			return zero, err
		}
		if typed, ok := msg.(M); ok {
			return typed, nil
		}
		m.dropped.Add(1)
	}
}

// Close permanently closes the mailbox and wakes every waiting receiver.
// Close is idempotent.
func (m *Mailbox) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	m.wakeLocked()
}

// Closed reports whether Close has been called.
func (m *Mailbox) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Len returns a snapshot of the number of queued messages.
func (m *Mailbox) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Stats is a snapshot of mailbox counters.
type Stats struct {
	Sent    uint64
	Dropped uint64
	Pending int
}

// Stats returns delivery counters. Dropped counts messages discarded by Recv
// because their type did not match.
func (m *Mailbox) Stats() Stats {
	return Stats{
		Sent:    m.sent.Load(),
		Dropped: m.dropped.Load(),
		Pending: m.Len(),
	}
}

// wakeLocked releases every goroutine waiting on the current notify channel.
// Must be called with mu held.
func (m *Mailbox) wakeLocked() {
	close(m.notify)
	m.notify = make(chan struct{})
}
