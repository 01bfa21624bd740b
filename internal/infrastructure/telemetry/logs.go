package telemetry

import (
	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// BridgeLogger tees l into the OTLP log exporter for entries at or above
// level. Without log export l is returned unchanged.
func (p *Providers) BridgeLogger(l *zap.Logger, serviceName string, level zapcore.Level) *zap.Logger {
	if p.logs == nil {
		return l
	}
	var otelCore zapcore.Core = otelzap.NewCore(serviceName, otelzap.WithLoggerProvider(p.logs))
	if filtered, err := zapcore.NewIncreaseLevelCore(otelCore, level); err == nil {
		otelCore = filtered
	}
	return l.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, otelCore)
	}))
}
