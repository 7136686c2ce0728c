// Package logger wraps zerolog behind a service-wide logger that stamps every
// line with the service name and, when a span is active, the trace identifiers.
package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

// Logger is the process-wide logger. Init must run before first use.
var Logger zerolog.Logger

// Init configures the global logger. Production gets machine-readable JSON on
// stdout; development swaps in the console writer for readability.
func Init(serviceName string, isDevelopment bool) {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	Logger = zerolog.New(outputFor(isDevelopment)).
		Level(zerolog.InfoLevel).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()

	log.Logger = Logger
}

func outputFor(isDevelopment bool) io.Writer {
	if !isDevelopment {
		return os.Stdout
	}
	return zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "15:04:05",
	}
}

// SetLevel adjusts the global level from its string name. Unrecognized names
// fall back to info rather than failing startup.
func SetLevel(level string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}

// WithContext returns a logger enriched with the trace and span ids of the
// span carried by ctx, if any.
func WithContext(ctx context.Context) *zerolog.Logger {
	enriched := Logger
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		enriched = Logger.With().
			Str("trace_id", sc.TraceID().String()).
			Str("span_id", sc.SpanID().String()).
			Logger()
	}
	return &enriched
}

// Info starts an info event carrying the context's trace ids.
func Info(ctx context.Context) *zerolog.Event {
	return WithContext(ctx).Info()
}

// Warn starts a warn event carrying the context's trace ids.
func Warn(ctx context.Context) *zerolog.Event {
	return WithContext(ctx).Warn()
}

// Error starts an error event carrying the context's trace ids.
func Error(ctx context.Context) *zerolog.Event {
	return WithContext(ctx).Error()
}

// Debug starts a debug event carrying the context's trace ids.
func Debug(ctx context.Context) *zerolog.Event {
	return WithContext(ctx).Debug()
}

// Fatal starts a fatal event carrying the context's trace ids.
func Fatal(ctx context.Context) *zerolog.Event {
	return WithContext(ctx).Fatal()
}
