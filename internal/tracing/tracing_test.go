package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartSpanWithoutTracer(t *testing.T) {
	SetTracer(nil)

	ctx, span := StartSpan(context.Background(), "pipeline.test")
	require.NotNil(t, span)

	assert.Nil(t, GetActiveSpan(ctx))
	assert.Empty(t, GetTraceID(ctx))
	assert.Empty(t, GetSpanID(ctx))
}

func TestSetupInstallsTracer(t *testing.T) {
	shutdown, err := Setup(context.Background(), "tracing-test", nil)
	require.NoError(t, err)
	defer shutdown(context.Background())

	ctx, span := StartSpan(context.Background(), "pipeline.test")
	defer span.End()

	require.NotNil(t, GetActiveSpan(ctx))
	assert.Len(t, GetTraceID(ctx), 32)
	assert.Len(t, GetSpanID(ctx), 16)

	SetTracer(nil)
}
