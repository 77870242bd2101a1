// Package observability настраивает трассировку OpenTelemetry.
package observability

import (
	"context"
	"time"

	"github.com/annel0/chunk-inspector/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// ShutdownFunc сбрасывает и останавливает экспорт спанов
type ShutdownFunc func(context.Context) error

// InitTelemetry устанавливает глобальный TracerProvider с OTLP HTTP экспортером
// (по умолчанию localhost:4318, настраивается через OTEL_EXPORTER_OTLP_*).
// При enabled == false остаётся no-op провайдер, спаны команд ничего не стоят.
func InitTelemetry(ctx context.Context, serviceName, version string, enabled bool) (ShutdownFunc, error) {
	if !enabled {
		logging.Debug("📡 OpenTelemetry выключен")
		return func(context.Context) error { return nil }, nil
	}

	exp, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
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
