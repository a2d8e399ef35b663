// Package mailbox provides the shared, type-erased message channel every node
// receives.
//
// # Overview
//
// A Mailbox is one unbounded multi-producer/multi-consumer queue. Any non-nil
// Go value is a message; its dynamic type is the message's type tag. Every
// successfully sent message is delivered to exactly one receive call. There is
// no broadcast and no replay.
//
// # Typed receive drops mismatches
//
// Recv[M] dequeues messages in arrival order and returns the first one whose
// dynamic type is M. Every message dequeued before that match is discarded
// permanently:
//
//	mb.Send(ctx, Ping{})
//	mb.Send(ctx, Pong{})
//
//	pong, _ := mailbox.Recv[Pong](ctx, mb) // Ping is dropped on the way
//	mailbox.Recv[Ping](ctx, mb)            // blocks until another Ping is sent
//
// Two nodes waiting on different types over the same Mailbox therefore race
// and may drop each other's messages. A node that handles several message
// types should use Next and a type switch instead:
//
//	for {
//	    msg, err := mb.Next(ctx)
//	    if err != nil {
//	        return err
//	    }
//	    switch m := msg.(type) {
//	    case Ping:
//	        ...
//	    case Pong:
//	        ...
//	    }
//	}
//
// # Cancellation
//
// Send, Next and Recv return once ctx is done, wrapping the context error in a
// CANCELED error. A receive that is cancelled consumes nothing.
//
// # Closing
//
// Close marks the channel permanently closed. Later sends fail with
// ErrSendFailed (cause ErrChannelClosed). Receivers drain what is still queued
// and then fail with ErrReceiveFailed.
package mailbox
