package otelhelper

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartSpanAndSetError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := provider.Tracer("test")

	ctx, span := StartSpan(context.Background(), tracer, "workflow.execute", attribute.Int64(WorkflowIDKey, 7))
	require.NotNil(t, ctx)

	SetError(span, errors.New("boom"), attribute.String("op", "execute"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	ended := spans[0]
	assert.Equal(t, "workflow.execute", ended.Name())
	assert.Equal(t, codes.Error, ended.Status().Code)
	assert.Equal(t, "boom", ended.Status().Description)
	assert.Contains(t, ended.Attributes(), attribute.Int64(WorkflowIDKey, 7))
}

func TestNoopTracer(t *testing.T) {
	_, span := StartSpan(context.Background(), NoopTracer(), "noop")
	defer span.End()

	assert.False(t, span.SpanContext().IsValid())
}
