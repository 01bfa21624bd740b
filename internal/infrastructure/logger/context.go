package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey contextKey = "logger"
	// RequestIDKey holds the X-Request-ID of the current request
	RequestIDKey contextKey = "request_id"
	// IdempotencyKeyKey holds the Idempotency-Key of a mutating request
	IdempotencyKeyKey contextKey = "idempotency_key"
)

// WithContext attaches logger to ctx
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

func fromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok && l != nil {
		return l
	}
	return zap.NewNop()
}

// WithRequestID stores the request id in ctx and returns a logger tagged with it
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	return withField(ctx, logger, RequestIDKey, requestID)
}

// WithIdempotencyKey stores the idempotency key of a sale, quote conversion
// or payment in ctx and returns a logger tagged with it.
func WithIdempotencyKey(ctx context.Context, logger *zap.Logger, key string) (context.Context, *zap.Logger) {
	return withField(ctx, logger, IdempotencyKeyKey, key)
}

func withField(ctx context.Context, logger *zap.Logger, key contextKey, value string) (context.Context, *zap.Logger) {
	tagged := logger.With(zap.String(string(key), value))
	return WithContext(context.WithValue(ctx, key, value), tagged), tagged
}

func stringValue(ctx context.Context, key contextKey) string {
	v, _ := ctx.Value(key).(string)
	return v
}

// GetRequestID returns the request id carried by ctx, if any
func GetRequestID(ctx context.Context) string {
	return stringValue(ctx, RequestIDKey)
}

// GetIdempotencyKey returns the idempotency key carried by ctx, if any
func GetIdempotencyKey(ctx context.Context) string {
	return stringValue(ctx, IdempotencyKeyKey)
}

func traceFields(ctx context.Context) []zap.Field {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return nil
	}
	return []zap.Field{
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	}
}

// contextFields returns the trace, request and idempotency fields of ctx for
// loggers that were not derived through WithRequestID or WithIdempotencyKey.
func contextFields(ctx context.Context) []zap.Field {
	fields := traceFields(ctx)
	for _, key := range []contextKey{RequestIDKey, IdempotencyKeyKey} {
		if v := stringValue(ctx, key); v != "" {
			fields = append(fields, zap.String(string(key), v))
		}
	}
	return fields
}

// ContextLogger logs with the correlation fields of its context
type ContextLogger struct {
	ctx    context.Context
	logger *zap.Logger
}

// L returns the logger attached to ctx, tagged with trace_id and span_id of
// the active span. request_id and idempotency_key are already bound by the
// middleware that attached the logger.
//
//	logger.L(ctx).Info("sale confirmed", zap.String("sale_id", id))
func L(ctx context.Context) *ContextLogger {
	return &ContextLogger{ctx: ctx, logger: fromContext(ctx)}
}

func (cl *ContextLogger) zap() *zap.Logger {
	return cl.logger.With(traceFields(cl.ctx)...)
}

// With returns a child logger with extra fields
func (cl *ContextLogger) With(fields ...zap.Field) *ContextLogger {
	return &ContextLogger{ctx: cl.ctx, logger: cl.logger.With(fields...)}
}

func (cl *ContextLogger) Debug(msg string, fields ...zap.Field) { cl.zap().Debug(msg, fields...) }
func (cl *ContextLogger) Info(msg string, fields ...zap.Field)  { cl.zap().Info(msg, fields...) }
func (cl *ContextLogger) Warn(msg string, fields ...zap.Field)  { cl.zap().Warn(msg, fields...) }
func (cl *ContextLogger) Error(msg string, fields ...zap.Field) { cl.zap().Error(msg, fields...) }
