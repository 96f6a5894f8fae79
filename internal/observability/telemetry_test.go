package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInitTelemetryInstallsProvider(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	// экспортер создаётся лениво, соединение не требуется
	shutdown, err := InitTelemetry(context.Background(), "blockworld-test",
		otlptracehttp.WithEndpoint("127.0.0.1:1"), otlptracehttp.WithInsecure())
	require.NoError(t, err)

	_, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	assert.True(t, ok, "должен быть установлен SDK-провайдер")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
	assert.NoError(t, Noop(context.Background()))
}
