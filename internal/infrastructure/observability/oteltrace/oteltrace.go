package oteltrace

import (
	"context"

	"github.com/eccennah/AuditStock/internal/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type tracer struct{ t trace.Tracer }

// New wraps the globally configured otel tracer. The host is responsible for
// installing a TracerProvider; without one the spans are no-ops.
func New(name string) observability.Tracer {
	if name == "" {
		name = "auditstock"
	}
	return &tracer{t: otel.Tracer(name)}
}

func (t *tracer) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.t.Start(ctx, name, trace.WithAttributes(attrs...))
}
