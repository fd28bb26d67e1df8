// Package logger provides a global, Sugared Zap logger that can be enriched
// per context. Log entries carry the active OpenTelemetry trace and span ids,
// and are mirrored to the OTEL log pipeline when telemetry is enabled.
package logger

import (
	"context"
	"os"
	"sync"

	"github.com/gabapcia/txalert/internal/pkg/telemetry"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKeyType struct{}

// ctxKey stores a derived *zap.SugaredLogger inside a context.
var ctxKey = ctxKeyType{}

var (
	// baseLogger is the process-wide logger configured by Init.
	baseLogger *zap.SugaredLogger

	// initBaseLoggerOnce guards baseLogger so Init only takes effect once.
	initBaseLoggerOnce sync.Once

	nopLogger = zap.NewNop().Sugar()
)

// Init configures the global logger to emit JSON to stdout at the given level
// ("debug", "info", "warn", "error"). When telemetry registered a
// LoggerProvider, entries are also forwarded through the otelzap bridge.
// Calls after the first successful one have no effect.
func Init(level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}

	initBaseLoggerOnce.Do(func() {
		cores := []zapcore.Core{
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				lvl,
			),
		}

		if lp := telemetry.LoggerProvider(); lp != nil {
			cores = append(cores, otelzap.NewCore("github.com/gabapcia/txalert", otelzap.WithLoggerProvider(lp)))
		}

		baseLogger = zap.New(zapcore.NewTee(cores...)).Sugar()
	})

	return nil
}

// Sync flushes any buffered log entries.
func Sync() error {
	if baseLogger == nil {
		return nil
	}
	return baseLogger.Sync()
}

// Derive returns a child context whose logger carries keysAndValues on every entry.
func Derive(ctx context.Context, keysAndValues ...any) context.Context {
	return context.WithValue(ctx, ctxKey, deriveFromCtx(ctx, keysAndValues...))
}

// deriveFromCtx picks the context logger (or the base logger), attaches the
// active span identifiers and the given fields.
func deriveFromCtx(ctx context.Context, keysAndValues ...any) *zap.SugaredLogger {
	l, ok := ctx.Value(ctxKey).(*zap.SugaredLogger)
	if !ok {
		l = baseLogger
	}
	if l == nil {
		l = nopLogger
	}

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		l = l.With("trace_id", sc.TraceID().String(), "span_id", sc.SpanID().String())
	}

	if len(keysAndValues) > 0 {
		l = l.With(keysAndValues...)
	}

	return l
}

func log(ctx context.Context, level zapcore.Level, msg string, keysAndValues ...any) {
	deriveFromCtx(ctx).Logw(level, msg, keysAndValues...)
}

// Debug logs a debug-level message with optional key/value context.
func Debug(ctx context.Context, msg string, keysAndValues ...any) {
	log(ctx, zapcore.DebugLevel, msg, keysAndValues...)
}

// Info logs an info-level message with optional key/value context.
func Info(ctx context.Context, msg string, keysAndValues ...any) {
	log(ctx, zapcore.InfoLevel, msg, keysAndValues...)
}

// Warn logs a warn-level message with optional key/value context.
func Warn(ctx context.Context, msg string, keysAndValues ...any) {
	log(ctx, zapcore.WarnLevel, msg, keysAndValues...)
}

// Error logs an error-level message with optional key/value context.
func Error(ctx context.Context, msg string, keysAndValues ...any) {
	log(ctx, zapcore.ErrorLevel, msg, keysAndValues...)
}
