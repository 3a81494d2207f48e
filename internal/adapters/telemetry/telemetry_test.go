package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/unitcache/internal/adapters/telemetry"
	"go.trai.ch/unitcache/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestBridge_ForwardsUnitSpans(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)

	var startedID string
	renderer.EXPECT().OnUnitStart(gomock.Any(), "alpha", gomock.Any()).
		Do(func(id, _ string, _ time.Time) { startedID = id })
	renderer.EXPECT().OnUnitComplete(gomock.Any(), gomock.Any(), "memory", nil).
		Do(func(id string, _ time.Time, _ string, _ error) {
			assert.Equal(t, startedID, id)
		})

	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(renderer)))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	tracer := telemetry.NewOTelTracerFrom(tp.Tracer("test"))
	_, span := tracer.Start(context.Background(), "alpha")
	span.SetAttribute(telemetry.SourceAttribute, "memory")
	span.End()
}

func TestBridge_ReportsFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)
	renderer.EXPECT().OnUnitStart(gomock.Any(), "beta", gomock.Any())
	renderer.EXPECT().OnUnitComplete(gomock.Any(), gomock.Any(), "", gomock.Any()).
		Do(func(_ string, _ time.Time, _ string, err error) {
			require.Error(t, err)
			assert.Equal(t, "source path not found", err.Error())
		})

	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(renderer)))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	tracer := telemetry.NewOTelTracerFrom(tp.Tracer("test"))
	_, span := tracer.Start(context.Background(), "beta")
	span.RecordError(errors.New("source path not found"))
	span.End()
}

func TestBridge_NilRenderer(t *testing.T) {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(nil)))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	_, span := tp.Tracer("test").Start(context.Background(), "alpha")
	span.End()
}

func TestOTelSpan_Attributes(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	tracer := telemetry.NewOTelTracerFrom(tp.Tracer("test"))
	ctx, span := tracer.Start(context.Background(), "alpha")
	tracer.EmitPlan(ctx, []string{"alpha", "beta"})
	span.SetAttribute("unit.path", "/units/alpha")
	span.SetAttribute("unit.shared", true)
	span.SetAttribute("unit.attempt", 2)
	span.SetAttribute("unit.elapsed", 1500*time.Millisecond)
	span.SetAttribute("unit.other", struct{ A int }{A: 1})
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)

	attrs := map[string]string{}
	for _, kv := range ended[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "/units/alpha", attrs["unit.path"])
	assert.Equal(t, "true", attrs["unit.shared"])
	assert.Equal(t, "2", attrs["unit.attempt"])
	assert.Equal(t, "1500", attrs["unit.elapsed"])
	assert.Equal(t, "{1}", attrs["unit.other"])

	events := ended[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "plan_emitted", events[0].Name)
}

func TestNoOpTracer(t *testing.T) {
	tracer := telemetry.NewNoOpTracer()
	ctx, span := tracer.Start(context.Background(), "alpha")
	assert.NotNil(t, ctx)
	tracer.EmitPlan(ctx, []string{"alpha"})
	span.SetAttribute("k", "v")
	span.RecordError(errors.New("x"))
	span.End()
}

func TestSetup_StreamsSpanOutput(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)

	var startedID string
	gomock.InOrder(
		renderer.EXPECT().OnPlanEmit([]string{"alpha"}),
		renderer.EXPECT().OnUnitStart(gomock.Any(), "alpha", gomock.Any()).
			Do(func(id, _ string, _ time.Time) { startedID = id }),
		renderer.EXPECT().OnUnitLog(gomock.Any(), []byte("compiling\n")).
			Do(func(id string, _ []byte) { assert.Equal(t, startedID, id) }),
		renderer.EXPECT().OnUnitComplete(gomock.Any(), gomock.Any(), "cold", nil),
	)

	shutdown := telemetry.Setup(renderer)
	tracer := telemetry.NewOTelTracer("test")

	ctx := context.Background()
	tracer.EmitPlan(ctx, []string{"alpha"})
	_, span := tracer.Start(ctx, "alpha")
	n, err := span.Write([]byte("compiling\n"))
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	span.SetAttribute(telemetry.SourceAttribute, "cold")
	span.End()

	require.NoError(t, shutdown(context.Background()))
}

func TestOTelSpan_WriteWithoutRenderer(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	tracer := telemetry.NewOTelTracerFrom(tp.Tracer("test"))
	_, span := tracer.Start(context.Background(), "alpha")
	n, err := span.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	events := ended[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "log", events[0].Name)
}

func TestNoOpSpan_Write(t *testing.T) {
	n, err := telemetry.NoOpSpan{}.Write([]byte("data"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}
