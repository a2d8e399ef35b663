// OpenTelemetry tracing for lifecycle phases and node hooks.
package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Span attribute keys.
const (
	AttrSystemID   = attribute.Key("nodekit.system.id")
	AttrSystemName = attribute.Key("nodekit.system.name")
	AttrPhase      = attribute.Key("nodekit.phase")
	AttrNodes      = attribute.Key("nodekit.nodes")
	AttrNode       = attribute.Key("nodekit.node")
	AttrNodeID     = attribute.Key("nodekit.node.id")
	AttrOutcome    = attribute.Key("nodekit.outcome")
)

// Tracer wraps OpenTelemetry tracing with lifecycle helpers.
type Tracer struct {
	tracer trace.Tracer
}

var (
	globalTracer *Tracer
	tracerMu     sync.RWMutex
)

// SetGlobalTracer sets the global tracer instance.
func SetGlobalTracer(t *Tracer) {
	tracerMu.Lock()
	defer tracerMu.Unlock()
	globalTracer = t
}

// GetTracer returns the global tracer, or a no-op tracer if not set.
func GetTracer() *Tracer {
	tracerMu.RLock()
	defer tracerMu.RUnlock()
	if globalTracer == nil {
		return &Tracer{tracer: noop.NewTracerProvider().Tracer("")}
	}
	return globalTracer
}

// NewTracer creates a tracer from the global otel provider.
func NewTracer(name string) *Tracer {
	return &Tracer{tracer: otel.Tracer(name)}
}

// NewTracerFromProvider creates a tracer from an explicit provider.
func NewTracerFromProvider(tp trace.TracerProvider, name string) *Tracer {
	return &Tracer{tracer: tp.Tracer(name)}
}

// StartSystemSpan starts the root span covering one Start call.
func (t *Tracer) StartSystemSpan(ctx context.Context, systemID, name string, nodes int) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "system.start",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			AttrSystemID.String(systemID),
			AttrSystemName.String(name),
			AttrNodes.Int(nodes),
		))
}

// StartPhaseSpan starts a span for one lifecycle phase.
func (t *Tracer) StartPhaseSpan(ctx context.Context, phase string, nodes int) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "phase."+phase,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			AttrPhase.String(phase),
			AttrNodes.Int(nodes),
		))
}

// StartHookSpan starts a span for one node hook invocation.
func (t *Tracer) StartHookSpan(ctx context.Context, phase, node, nodeID string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "hook."+phase,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			AttrPhase.String(phase),
			AttrNode.String(node),
			AttrNodeID.String(nodeID),
		))
}

// EndSpan records the outcome and error of a span and ends it.
// An empty outcome is not recorded.
func (t *Tracer) EndSpan(span trace.Span, outcome string, err error) {
	if outcome != "" {
		span.SetAttributes(AttrOutcome.String(outcome))
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	span.End()
}
