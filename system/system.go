package system

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	nkerrors "github.com/vinayprograms/nodekit/errors"
	"github.com/vinayprograms/nodekit/logging"
	"github.com/vinayprograms/nodekit/mailbox"
	"github.com/vinayprograms/nodekit/node"
	"github.com/vinayprograms/nodekit/shutdown"
	"github.com/vinayprograms/nodekit/telemetry"
)

// Sentinel errors returned by Start. Match with errors.Is.
var (
	ErrShutdown       = nkerrors.Sentinel(nkerrors.ErrCodeShutdown)
	ErrUnknown        = nkerrors.Sentinel(nkerrors.ErrCodeUnknown)
	ErrAlreadyStarted = nkerrors.Sentinel(nkerrors.ErrCodeAlreadyStarted)
)

// Phase outcomes, recorded in logs, spans and events.
const (
	outcomeCompleted = "completed"
	outcomeGraceful  = "graceful"
	outcomeEmergency = "emergency"
	outcomeFailed    = "failed"
	outcomeCanceled  = "canceled"
)

// Option configures a System.
type Option func(*System)

// WithName sets the system name used in logs and spans.
func WithName(name string) Option {
	return func(s *System) {
		s.name = name
	}
}

// WithLogger sets the logger. The system derives a "system" component from it.
func WithLogger(l *logging.Logger) Option {
	return func(s *System) {
		s.logger = l
	}
}

// WithTracer sets the tracer for phase and hook spans.
func WithTracer(t *telemetry.Tracer) Option {
	return func(s *System) {
		s.tracer = t
	}
}

// WithExporter sets the lifecycle event exporter.
func WithExporter(e telemetry.Exporter) Option {
	return func(s *System) {
		s.exporter = e
	}
}

// WithObserver registers a callback invoked on every state transition.
// It runs on the orchestrator goroutine and must not block.
func WithObserver(fn func(State)) Option {
	return func(s *System) {
		s.state.observer = fn
	}
}

// registered is a node plus the identity assigned at registration.
type registered struct {
	node node.Node
	name string
	id   string
}

// System is the lifecycle orchestrator.
type System struct {
	id   string
	name string

	sc *shutdown.Context
	mb *mailbox.Mailbox

	logger   *logging.Logger
	tracer   *telemetry.Tracer
	exporter telemetry.Exporter

	mu      sync.Mutex
	nodes   []registered
	started bool

	state stateCell
}

// New creates a System with a fresh shutdown context and mailbox.
func New(opts ...Option) *System {
	s := &System{
		id:   uuid.NewString(),
		name: "nodekit",
		sc:   shutdown.NewContext(),
		mb:   mailbox.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.New()
	}
	s.logger = s.logger.WithComponent("system").WithTraceID(s.id)
	if s.tracer == nil {
		s.tracer = telemetry.GetTracer()
	}
	if s.exporter == nil {
		s.exporter = telemetry.NewNoopExporter()
	}
	return s
}

// ID returns the unique system ID.
func (s *System) ID() string { return s.id }

// Name returns the system name.
func (s *System) Name() string { return s.name }

// Context returns the shutdown context shared by every node.
func (s *System) Context() *shutdown.Context { return s.sc }

// Mailbox returns the mailbox shared by every node.
func (s *System) Mailbox() *mailbox.Mailbox { return s.mb }

// State returns the current lifecycle state.
func (s *System) State() State { return s.state.load() }

// Nodes returns the number of registered nodes.
func (s *System) Nodes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.nodes)
}

// AddNode registers a node and returns the system for chaining.
// Registration order is fan-out order. Nodes added after Start are ignored.
func (s *System) AddNode(n node.Node) *System {
	if n == nil {
		s.logger.Warn("node_ignored", map[string]interface{}{"reason": "nil node"})
		return s
	}

	r := registered{node: n, name: node.NameOf(n), id: uuid.NewString()}

	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		s.logger.Warn("node_ignored", map[string]interface{}{
			"node":   r.name,
			"reason": "system already started",
		})
		return s
	}
	s.nodes = append(s.nodes, r)
	s.mu.Unlock()

	s.logger.NodeRegistered(r.name, r.id)
	return s
}

// Start drives every node through Starting, Running and Stopping.
//
// It returns nil once Stopping completes, ErrShutdown when emergency shutdown
// was requested, ErrUnknown when a hook failed, or a CANCELED error when ctx
// ends first. The mailbox is closed when Start returns. Start may only be
// called once.
func (s *System) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nkerrors.New(nkerrors.ErrCodeAlreadyStarted, "system already started",
			nkerrors.WithMetadata("system", s.id))
	}
	s.started = true
	nodes := append([]registered(nil), s.nodes...)
	s.mu.Unlock()

	defer s.mb.Close()

	begin := time.Now()
	s.logger.SystemStart(s.name, len(nodes))
	s.emit(telemetry.Event{Name: "system_start", Data: map[string]interface{}{
		"name":  s.name,
		"nodes": len(nodes),
	}})

	ctx, span := s.tracer.StartSystemSpan(ctx, s.id, s.name, len(nodes))
	err := s.run(ctx, nodes)

	outcome := outcomeCompleted
	switch {
	case err == nil:
	case nkerrors.Code(err) == nkerrors.ErrCodeShutdown:
		outcome = outcomeEmergency
	case nkerrors.Code(err) == nkerrors.ErrCodeCanceled:
		outcome = outcomeCanceled
	default:
		outcome = outcomeFailed
	}
	s.tracer.EndSpan(span, outcome, err)

	s.logger.SystemComplete(s.name, time.Since(begin), err)
	data := map[string]interface{}{
		"outcome":     outcome,
		"duration_ms": time.Since(begin).Milliseconds(),
	}
	if err != nil {
		data["error"] = err.Error()
	}
	s.emit(telemetry.Event{Name: "system_complete", Phase: s.State().String(), Data: data})
	if ferr := s.exporter.Flush(); ferr != nil {
		s.logger.Warn("event_flush_failed", map[string]interface{}{"error": ferr.Error()})
	}
	return err
}

// run is the state machine. Graceful shutdown in Starting or Running jumps
// straight to Stopping.
func (s *System) run(ctx context.Context, nodes []registered) error {
	for _, st := range []State{Starting, Running} {
		outcome, err := s.runPhase(ctx, st, nodes)
		if err != nil {
			return err
		}
		if outcome == outcomeGraceful {
			break
		}
	}

	if _, err := s.runPhase(ctx, Stopping, nodes); err != nil {
		return err
	}
	s.state.store(Stopped)
	return nil
}

// runPhase fans the phase hook out to every node and races the join
// against both shutdown signals, the first hook failure and ctx.
func (s *System) runPhase(ctx context.Context, st State, nodes []registered) (string, error) {
	phase := st.String()
	s.state.store(st)
	s.logger.PhaseStart(phase, len(nodes))
	s.emit(telemetry.Event{Name: "phase_start", Phase: phase, Data: map[string]interface{}{
		"nodes": len(nodes),
	}})

	begin := time.Now()
	spanCtx, span := s.tracer.StartPhaseSpan(ctx, phase, len(nodes))

	phaseCtx, cancel := context.WithCancel(spanCtx)
	defer cancel()

	var (
		failOnce sync.Once
		failed   = make(chan struct{})
		failure  error
	)
	fail := func(err error) {
		failOnce.Do(func() {
			failure = err
			close(failed)
		})
	}

	g, gctx := errgroup.WithContext(phaseCtx)
	for _, r := range nodes {
		r := r
		g.Go(func() error {
			err := s.callHook(gctx, st, r)
			if err != nil {
				if phaseCtx.Err() == nil {
					s.logger.HookFailed(r.name, phase, err)
					s.emit(telemetry.Event{Name: "hook_failed", Phase: phase, Node: r.name, Data: map[string]interface{}{
						"node_id": r.id,
						"error":   err.Error(),
					}})
				}
				fail(nkerrors.Unknown(r.name, phase, err))
			}
			return err
		})
	}

	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()

	// Graceful requests are not consumed once Stopping is underway.
	var gracefulC <-chan struct{}
	if st != Stopping {
		gracefulC = s.sc.Graceful().C()
	}

	var (
		outcome string
		err     error
	)
	select {
	case <-done:
		// failure is written before its goroutine returns, so it is
		// visible once Wait has returned.
		if failure != nil {
			outcome, err = outcomeFailed, failure
		} else {
			outcome = outcomeCompleted
		}
	case <-failed:
		outcome, err = outcomeFailed, failure
	case <-gracefulC:
		outcome = s.graceful(phase)
	case <-s.sc.Emergency().C():
		outcome, err = outcomeEmergency, s.emergency(phase)
	case <-ctx.Done():
		outcome, err = outcomeCanceled, s.canceled(ctx, phase)
	}

	// Emergency wins over a phase that finished at the same time. A graceful
	// request that raced the join still skips the rest of Starting/Running.
	if err == nil {
		select {
		case <-s.sc.Emergency().C():
			outcome, err = outcomeEmergency, s.emergency(phase)
		default:
			if outcome == outcomeCompleted {
				select {
				case <-gracefulC:
					outcome = s.graceful(phase)
				default:
				}
			}
		}
	}

	// Anything but emergency that ends after the caller's ctx is done counts
	// as a cancellation.
	if outcome != outcomeCanceled && outcome != outcomeEmergency && ctx.Err() != nil {
		outcome, err = outcomeCanceled, s.canceled(ctx, phase)
	}

	s.tracer.EndSpan(span, outcome, err)
	s.logger.PhaseComplete(phase, time.Since(begin), outcome)
	s.emit(telemetry.Event{Name: "phase_complete", Phase: phase, Data: map[string]interface{}{
		"outcome":     outcome,
		"duration_ms": time.Since(begin).Milliseconds(),
	}})
	return outcome, err
}

// callHook invokes one node hook inside its span and converts panics.
func (s *System) callHook(ctx context.Context, st State, r registered) (err error) {
	ctx, span := s.tracer.StartHookSpan(ctx, st.String(), r.name, r.id)
	defer func() {
		if rec := recover(); rec != nil {
			err = nkerrors.RecoverPanic(rec)
		}
		outcome := outcomeCompleted
		if err != nil {
			outcome = outcomeFailed
		}
		s.tracer.EndSpan(span, outcome, err)
	}()

	switch st {
	case Starting:
		return r.node.Starting(ctx, s.sc, s.mb)
	case Running:
		return r.node.Running(ctx, s.sc, s.mb)
	case Stopping:
		return r.node.Stopping(ctx, s.sc, s.mb)
	default:
		return nkerrors.Internal("no hook for state " + st.String())
	}
}

func (s *System) graceful(phase string) string {
	s.logger.ShutdownRequested(string(shutdown.KindGraceful), phase)
	s.emit(telemetry.Event{Name: "shutdown_requested", Phase: phase, Data: map[string]interface{}{
		"kind": string(shutdown.KindGraceful),
	}})
	return outcomeGraceful
}

func (s *System) emergency(phase string) error {
	s.logger.ShutdownRequested(string(shutdown.KindEmergency), phase)
	s.emit(telemetry.Event{Name: "shutdown_requested", Phase: phase, Data: map[string]interface{}{
		"kind": string(shutdown.KindEmergency),
	}})
	return nkerrors.Shutdown(phase, nkerrors.WithMetadata("system", s.id))
}

func (s *System) canceled(ctx context.Context, phase string) error {
	return nkerrors.Wrap(ctx.Err(), "start canceled during "+phase,
		nkerrors.WithPhase(phase), nkerrors.WithMetadata("system", s.id))
}

func (s *System) emit(ev telemetry.Event) {
	ev.SystemID = s.id
	s.exporter.RecordEvent(ev)
}
