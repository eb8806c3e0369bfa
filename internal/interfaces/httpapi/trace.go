package httpapi

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var (
	apiTracer   = otel.Tracer("footyodds/internal/interfaces/httpapi")
	apiPassSpan = trace.SpanFromContext(context.Background())
)

// startSpan opens a child span for handler work under the otelhttp
// server span. Middleware and response helpers stay out of the trace;
// only Handler entry points get spans of their own, and nothing is
// spanned on routes the tracing filter skipped.
func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if !trace.SpanFromContext(ctx).SpanContext().IsValid() {
		return ctx, apiPassSpan
	}
	if !strings.HasPrefix(name, "httpapi.Handler.") {
		return ctx, apiPassSpan
	}
	return apiTracer.Start(ctx, name)
}
