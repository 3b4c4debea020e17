package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext(t *testing.T) {
	t.Run("returns attached logger", func(t *testing.T) {
		base := zap.NewNop()
		ctx := WithContext(context.Background(), base)

		assert.Same(t, base, FromContext(ctx))
	})

	t.Run("falls back to no-op", func(t *testing.T) {
		log := FromContext(context.Background())

		require.NotNil(t, log)
		assert.NotPanics(t, func() { log.Info("ignored") })
	})
}

func TestContextEnrichment(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	base := zap.New(core)

	ctx := context.Background()
	ctx, log := WithRequestID(ctx, base, "req-1")
	ctx, log = WithStoreID(ctx, log, "store-1")
	ctx, log = WithUserID(ctx, log, "user-1")

	log.Info("checkout started")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "store-1", fields["store_id"])
	assert.Equal(t, "user-1", fields["user_id"])

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "store-1", GetStoreID(ctx))
	assert.Equal(t, "user-1", GetUserID(ctx))

	// the enriched logger round-trips through the context
	assert.Same(t, log, FromContext(ctx))
}

func TestGetters_MissingValues(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetStoreID(ctx))
	assert.Empty(t, GetUserID(ctx))
}

func TestWithTraceContext(t *testing.T) {
	t.Run("no span leaves logger unchanged", func(t *testing.T) {
		base := zap.NewNop()

		assert.Same(t, base, WithTraceContext(context.Background(), base))
	})

	t.Run("valid span adds trace fields", func(t *testing.T) {
		core, logs := observer.New(zap.DebugLevel)
		base := zap.New(core)

		traceID := trace.TraceID{0x01}
		spanID := trace.SpanID{0x02}
		spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
			TraceID: traceID,
			SpanID:  spanID,
		})
		ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

		WithTraceContext(ctx, base).Info("traced")

		require.Equal(t, 1, logs.Len())
		fields := logs.All()[0].ContextMap()
		assert.Equal(t, traceID.String(), fields["trace_id"])
		assert.Equal(t, spanID.String(), fields["span_id"])
	})
}
