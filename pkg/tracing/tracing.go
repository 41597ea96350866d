package tracing

import (
	"context"

	"github.com/Ramsey-B/kitchin/pkg/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/Ramsey-B/kitchin"

const (
	MutationIDKey = attribute.Key("kitchin.mutation.id")
	TableKey      = attribute.Key("kitchin.table")
	OperationKey  = attribute.Key("kitchin.operation")
	EntityIDKey   = attribute.Key("kitchin.entity.id")
)

// StartSpan starts a span on the global tracer provider. Until Setup installs one the
// span does not record and carries no IDs.
func StartSpan(ctx context.Context, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, spanName, trace.WithAttributes(attrs...))
}

// MutationAttributes describes m for span attributes.
func MutationAttributes(m models.Mutation) []attribute.KeyValue {
	return []attribute.KeyValue{
		MutationIDKey.String(m.ID),
		TableKey.String(string(m.Table)),
		OperationKey.String(string(m.Operation)),
		EntityIDKey.String(m.EntityID),
	}
}

// RecordError marks span as failed. A nil err leaves it untouched.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// GetTraceID returns the trace ID carried by ctx, or "".
func GetTraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

func GetSpanID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasSpanID() {
		return ""
	}
	return sc.SpanID().String()
}
