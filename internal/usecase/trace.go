package usecase

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var (
	usecaseTracer   = otel.Tracer("footyodds/internal/usecase")
	usecasePassSpan = trace.SpanFromContext(context.Background())
)

// startUsecaseSpan opens a child span for one pipeline step. Requests
// filtered out of tracing (health checks, metrics scrapes) carry no
// recording parent; the step then runs unspanned instead of starting
// a root trace of its own.
func startUsecaseSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if strings.TrimSpace(name) == "" {
		return ctx, usecasePassSpan
	}
	if !trace.SpanFromContext(ctx).SpanContext().IsValid() {
		return ctx, usecasePassSpan
	}
	return usecaseTracer.Start(ctx, name)
}
