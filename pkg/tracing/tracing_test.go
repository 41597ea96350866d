package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/Ramsey-B/kitchin/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	previous := otel.GetTracerProvider()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = provider.Shutdown(context.Background())
	})
	return recorder
}

func TestIDs_WithoutSpan(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
	assert.Empty(t, GetSpanID(context.Background()))
}

func TestStartSpan_RecordsMutation(t *testing.T) {
	recorder := withRecorder(t)

	m := models.Mutation{ID: "m1", Table: models.TableShoppingListItems, Operation: models.OperationUpdate, EntityID: "i1"}
	ctx, span := StartSpan(context.Background(), "sync.Push", MutationAttributes(m)...)
	assert.Len(t, GetTraceID(ctx), 32)
	assert.Len(t, GetSpanID(ctx), 16)

	RecordError(span, errors.New("boom"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "sync.Push", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Contains(t, ended[0].Attributes(), TableKey.String("shopping_list_items"))
	assert.Contains(t, ended[0].Attributes(), EntityIDKey.String("i1"))
}

func TestRecordError_Nil(t *testing.T) {
	recorder := withRecorder(t)

	_, span := StartSpan(context.Background(), "noop")
	RecordError(span, nil)
	span.End()

	require.Len(t, recorder.Ended(), 1)
	assert.Equal(t, codes.Unset, recorder.Ended()[0].Status().Code)
}

func TestSetup_UnsupportedExporter(t *testing.T) {
	_, err := Setup(context.Background(), Config{ServiceName: "kitchin", Exporter: "zipkin"})
	require.Error(t, err)

	_, err = Setup(context.Background(), Config{ServiceName: "kitchin", Exporter: "otlp", Protocol: "carrier-pigeon"})
	require.Error(t, err)
}
