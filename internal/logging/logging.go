// Where: internal/logging/logging.go
// What: Structured logger construction for the Lambda handlers.
// Why: CloudWatch ingests one JSON object per line; zap emits exactly that.
package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production JSON logger at the given level.
// Unknown levels fall back to info.
func New(level string, fields ...zap.Field) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(ParseLevel(level))
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Sampling = nil
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(fields...), nil
}

// Must is New for main packages: it falls back to a no-op logger on error.
func Must(level string, fields ...zap.Field) *zap.Logger {
	logger, err := New(level, fields...)
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// ParseLevel maps a case-insensitive level name to a zap level.
func ParseLevel(level string) zapcore.Level {
	parsed, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zapcore.InfoLevel
	}
	return parsed
}

// Function tags every entry with the handler name.
func Function(name string) zap.Field {
	return zap.String("function", name)
}
