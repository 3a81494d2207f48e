// Package telemetry adapts OpenTelemetry to the tracing ports.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/unitcache/internal/core/ports"
)

var (
	_ ports.Tracer = (*OTelTracer)(nil)
	_ ports.Span   = (*OTelSpan)(nil)
)

// OTelTracer is a concrete implementation of ports.Tracer using OpenTelemetry.
type OTelTracer struct {
	name   string
	tracer trace.Tracer
}

// NewOTelTracer creates a tracer that starts spans from whichever global
// provider is installed at the time, under the given instrumentation name.
func NewOTelTracer(name string) *OTelTracer {
	return &OTelTracer{name: name}
}

// NewOTelTracerFrom wraps an existing OpenTelemetry tracer.
func NewOTelTracerFrom(tracer trace.Tracer) *OTelTracer {
	return &OTelTracer{tracer: tracer}
}

// Start creates a new span. While a renderer is installed by Setup, output
// written to the span is batched and streamed to it.
func (t *OTelTracer) Start(ctx context.Context, name string) (context.Context, ports.Span) {
	tracer := t.tracer
	if tracer == nil {
		tracer = otel.Tracer(t.name)
	}
	ctx, span := tracer.Start(ctx, name)

	s := &OTelSpan{span: span}
	if fwd := active.Load(); fwd != nil {
		spanID := span.SpanContext().SpanID().String()
		s.fwd = fwd
		s.batcher = NewLineBatcher(0, 0, func(data []byte) {
			fwd.send(spanID, data)
		})
	}
	return ctx, s
}

// EmitPlan records the planned units as an event on the current span and
// announces them to the renderer installed by Setup.
func (t *OTelTracer) EmitPlan(ctx context.Context, unitNames []string) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.AddEvent("plan_emitted", trace.WithAttributes(
			attribute.StringSlice("units", unitNames),
		))
	}
	if fwd := active.Load(); fwd != nil {
		fwd.renderer.OnPlanEmit(unitNames)
	}
}

// OTelSpan is a concrete implementation of ports.Span using OpenTelemetry.
type OTelSpan struct {
	span    trace.Span
	batcher *LineBatcher
	fwd     *forwarder
}

// End flushes pending output and completes the span.
func (s *OTelSpan) End() {
	if s.batcher != nil {
		_ = s.batcher.Close()
		s.fwd.drain()
	}
	s.span.End()
}

// Write streams p to the installed renderer, or records it as a span event
// when there is none.
func (s *OTelSpan) Write(p []byte) (int, error) {
	if s.batcher != nil {
		return s.batcher.Write(p)
	}
	s.span.AddEvent("log", trace.WithAttributes(attribute.String("message", string(p))))
	return len(p), nil
}

// RecordError records an error and marks the span failed.
func (s *OTelSpan) RecordError(err error) {
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// SetAttribute adds a key-value pair to the span.
func (s *OTelSpan) SetAttribute(key string, value any) {
	switch v := value.(type) {
	case string:
		s.span.SetAttributes(attribute.String(key, v))
	case int:
		s.span.SetAttributes(attribute.Int(key, v))
	case int64:
		s.span.SetAttributes(attribute.Int64(key, v))
	case float64:
		s.span.SetAttributes(attribute.Float64(key, v))
	case bool:
		s.span.SetAttributes(attribute.Bool(key, v))
	case []string:
		s.span.SetAttributes(attribute.StringSlice(key, v))
	case time.Duration:
		s.span.SetAttributes(attribute.Int64(key, v.Milliseconds()))
	default:
		s.span.SetAttributes(attribute.String(key, fmt.Sprintf("%v", v)))
	}
}
