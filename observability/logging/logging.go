// Package logging builds the zap logger for httpget.
// Diagnostics go to stderr; stdout belongs to the program's output.
package logging

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a console logger writing to ws at the given level, replaces zap's globals with it, and redirects the stdlib log package through it.
// Callers should defer logger.Sync().
func New(ws zapcore.WriteSyncer, level zapcore.Level, fields ...zap.Field) *zap.Logger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.RFC3339TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeDuration = zapcore.StringDurationEncoder
	logger := zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(cfg),
		&zapcore.BufferedWriteSyncer{WS: ws, FlushInterval: time.Second},
		level,
	)).With(fields...)
	zap.ReplaceGlobals(logger)
	zap.RedirectStdLog(logger)
	return logger
}

// ParseLevel parses a level name like "debug" or "WARN". It's the parser for the HTTPGET_LOG_LEVEL envvar.
func ParseLevel(s string) (zapcore.Level, error) {
	var l zapcore.Level
	err := l.UnmarshalText([]byte(s))
	return l, err
}
