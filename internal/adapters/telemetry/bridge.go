package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/unitcache/internal/core/ports"
)

// SourceAttribute is the span attribute carrying the step that produced a handle.
const SourceAttribute = "unit.source"

// Bridge implements sdktrace.SpanProcessor to forward unit spans to a Renderer.
type Bridge struct {
	renderer ports.Renderer
}

// NewBridge returns a new Bridge.
func NewBridge(renderer ports.Renderer) *Bridge {
	return &Bridge{renderer: renderer}
}

// OnStart is called when a span starts.
func (b *Bridge) OnStart(_ context.Context, s sdktrace.ReadWriteSpan) {
	if b.renderer == nil {
		return
	}
	sc := s.SpanContext()
	if !sc.IsValid() {
		return
	}
	b.renderer.OnUnitStart(sc.SpanID().String(), s.Name(), s.StartTime())
}

// OnEnd is called when a span ends.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if b.renderer == nil {
		return
	}
	sc := s.SpanContext()
	if !sc.IsValid() {
		return
	}

	var err error
	if s.Status().Code == codes.Error {
		desc := s.Status().Description
		if desc == "" {
			desc = "unit failed"
		}
		err = errors.New(desc)
	}

	var source string
	for _, attr := range s.Attributes() {
		if string(attr.Key) == SourceAttribute {
			source = attr.Value.AsString()
		}
	}

	b.renderer.OnUnitComplete(sc.SpanID().String(), s.EndTime(), source, err)
}

// ForceFlush does nothing.
func (b *Bridge) ForceFlush(_ context.Context) error {
	return nil
}

// Shutdown does nothing.
func (b *Bridge) Shutdown(_ context.Context) error {
	return nil
}

// Setup installs a global tracer provider that reports spans to renderer,
// and streams span output to it. The returned function shuts both down.
func Setup(renderer ports.Renderer) func(context.Context) error {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(NewBridge(renderer)),
	)
	otel.SetTracerProvider(tp)

	var fwd *forwarder
	if renderer != nil {
		fwd = newForwarder(renderer)
	}
	if prev := active.Swap(fwd); prev != nil {
		prev.close()
	}

	return func(ctx context.Context) error {
		active.CompareAndSwap(fwd, nil)
		if fwd != nil {
			fwd.close()
		}
		return tp.Shutdown(ctx)
	}
}
