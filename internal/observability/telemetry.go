package observability

import (
	"context"
	"time"

	"github.com/annel0/blockworld/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// ShutdownFunc сбрасывает накопленные спаны и останавливает провайдер
type ShutdownFunc func(context.Context) error

// Noop - ShutdownFunc для выключенной телеметрии
func Noop(context.Context) error { return nil }

// InitTelemetry настраивает OTLP экспортер и глобальный TracerProvider.
// Спаны генерации колонн и HTTP-запросов отладочного API уходят через него.
func InitTelemetry(ctx context.Context, serviceName string, opts ...otlptracehttp.Option) (ShutdownFunc, error) {
	// по умолчанию localhost:4318, переопределяется OTEL_EXPORTER_OTLP_ENDPOINT
	exp, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, err
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exp),
		trace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	logging.Info("📡 OpenTelemetry инициализирован (service=%s)", serviceName)

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return tp.Shutdown(ctx)
	}, nil
}
