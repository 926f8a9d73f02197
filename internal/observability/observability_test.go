package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "devconnector-test", Enabled: false})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracing_StdoutExporter(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{
		ServiceName:    "devconnector-test",
		ServiceVersion: "test",
		Environment:    "test",
		Enabled:        true,
		Exporter:       "stdout",
		SamplerRatio:   1.0,
	})
	require.NoError(t, err)
	defer func() { _ = shutdown(context.Background()) }()

	ctx, span := StartStoreSpan(context.Background(), "sqlite", "GetByID", "posts")
	assert.True(t, span.SpanContext().IsValid())
	assert.NotNil(t, ctx)
	EndSpan(span, errors.New("boom"))
}

func TestQueryTimer_Track(t *testing.T) {
	before := testutil.CollectAndCount(DatabaseQueryLatency)
	done := NewQueryTimer("sqlite").Track("List", "timer_test_table")
	done()
	assert.Equal(t, before+1, testutil.CollectAndCount(DatabaseQueryLatency))
}
