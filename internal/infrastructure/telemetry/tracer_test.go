package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap/zaptest"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	cfg := Config{
		CollectorEndpoint: "localhost:4317",
		SamplingRatio:     1,
		ServiceName:       "bizportal-test",
	}

	tp, err := NewTracerProvider(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, tp.IsEnabled())
	assert.Equal(t, "bizportal-test", tp.GetConfig().ServiceName)
	assert.NotNil(t, tp.Tracer("bizportal"))
	assert.NoError(t, tp.ForceFlush(ctx))
	assert.NoError(t, tp.Shutdown(ctx))
}

func TestServiceResource(t *testing.T) {
	res := serviceResource(Config{ServiceName: "bizportal", Environment: "staging"})

	attrs := make(map[string]string)
	for _, kv := range res.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "bizportal", attrs["service.name"])
	assert.Equal(t, "dev", attrs["service.version"])
	assert.Equal(t, "staging", attrs["deployment.environment.name"])

	res = serviceResource(Config{ServiceName: "bizportal", ServiceVersion: "1.4.0"})
	for _, kv := range res.Attributes() {
		assert.NotEqual(t, "deployment.environment.name", string(kv.Key))
		if kv.Key == "service.version" {
			assert.Equal(t, "1.4.0", kv.Value.AsString())
		}
	}
}

func TestSampler(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), sampler(1).Description())
	assert.Equal(t, sdktrace.AlwaysSample().Description(), sampler(2).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), sampler(0).Description())
	assert.Contains(t, sampler(0.25).Description(), "ParentBased")
}
