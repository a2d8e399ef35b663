// Package node defines the unit of behavior a system drives through its
// lifecycle.
//
// A node implements three hooks. Each receives the phase context, the shared
// shutdown Context and the shared Mailbox. Embed Base to get no-op defaults
// and override only the hooks you need:
//
//	type Counter struct {
//	    node.Base
//	    n int
//	}
//
//	func (c *Counter) Running(ctx context.Context, sc *shutdown.Context, mb *mailbox.Mailbox) error {
//	    for {
//	        c.n++
//	        if c.n == 10 {
//	            return sc.RequestShutdown(ctx)
//	        }
//	        select {
//	        case <-ctx.Done():
//	            return nil
//	        case <-time.After(time.Second):
//	        }
//	    }
//	}
//
// A hook that returns has finished its phase. A hook that loops should watch
// ctx: when the system abandons the phase it cancels ctx, and every mailbox
// and shutdown operation returns with that error. Returning a non-nil error
// or panicking aborts the whole phase.
//
// A node's own fields are only touched by its hooks. Hooks of one node run
// one phase at a time, unless an abandoned hook ignores its ctx and keeps
// running into the next phase.
package node

import (
	"context"
	"fmt"
	"strings"

	"github.com/vinayprograms/nodekit/mailbox"
	"github.com/vinayprograms/nodekit/shutdown"
)

// Node is a registered unit of behavior.
type Node interface {
	// Starting runs once during the Starting phase.
	Starting(ctx context.Context, sc *shutdown.Context, mb *mailbox.Mailbox) error

	// Running runs once during the Running phase. It usually loops until ctx
	// is cancelled or it requests a shutdown.
	Running(ctx context.Context, sc *shutdown.Context, mb *mailbox.Mailbox) error

	// Stopping runs once during the Stopping phase. It is skipped on
	// emergency shutdown.
	Stopping(ctx context.Context, sc *shutdown.Context, mb *mailbox.Mailbox) error
}

// Named is implemented by nodes that report their own name for logs, spans
// and error metadata.
type Named interface {
	Name() string
}

// Base provides empty hooks. Embed it in a node type.
type Base struct{}

// Starting does nothing.
func (Base) Starting(context.Context, *shutdown.Context, *mailbox.Mailbox) error { return nil }

// Running does nothing.
func (Base) Running(context.Context, *shutdown.Context, *mailbox.Mailbox) error { return nil }

// Stopping does nothing.
func (Base) Stopping(context.Context, *shutdown.Context, *mailbox.Mailbox) error { return nil }

// HookFunc is the signature shared by all three hooks.
type HookFunc func(ctx context.Context, sc *shutdown.Context, mb *mailbox.Mailbox) error

// Funcs builds a node from plain functions. Nil hooks do nothing.
type Funcs struct {
	NodeName   string
	OnStarting HookFunc
	OnRunning  HookFunc
	OnStopping HookFunc
}

var (
	_ Node  = (*Funcs)(nil)
	_ Named = (*Funcs)(nil)
)

// Name returns NodeName.
func (f *Funcs) Name() string {
	return f.NodeName
}

// Starting calls OnStarting.
func (f *Funcs) Starting(ctx context.Context, sc *shutdown.Context, mb *mailbox.Mailbox) error {
	return call(f.OnStarting, ctx, sc, mb)
}

// Running calls OnRunning.
func (f *Funcs) Running(ctx context.Context, sc *shutdown.Context, mb *mailbox.Mailbox) error {
	return call(f.OnRunning, ctx, sc, mb)
}

// Stopping calls OnStopping.
func (f *Funcs) Stopping(ctx context.Context, sc *shutdown.Context, mb *mailbox.Mailbox) error {
	return call(f.OnStopping, ctx, sc, mb)
}

func call(fn HookFunc, ctx context.Context, sc *shutdown.Context, mb *mailbox.Mailbox) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, sc, mb)
}

// NameOf returns the node's reported name, or its Go type name.
func NameOf(n Node) string {
	if named, ok := n.(Named); ok {
		if name := named.Name(); name != "" {
			return name
		}
	}
	return strings.TrimPrefix(fmt.Sprintf("%T", n), "*")
}
