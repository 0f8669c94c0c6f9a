// Package logging owns the process-wide zap logger. Components take a named
// child with Named; entry points adjust verbosity with SetLevel.
package logging

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	base  *zap.Logger
	once  sync.Once
	level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
)

// root builds the logger on first use so tests and init paths need no setup
func root() *zap.Logger {
	once.Do(func() {
		cfg := zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.DisableStacktrace = true
		cfg.DisableCaller = true
		cfg.Level = level

		l, err := cfg.Build()
		if err != nil {
			fmt.Fprintf(os.Stderr, "fluxnet: logger unavailable: %v\n", err)
			l = zap.NewNop()
		}
		base = l.Named("fluxnet")
	})
	return base
}

// SetLevel maps a verbosity count to a level: 0 warn, 1 info, 2+ debug
func SetLevel(verbosity int) {
	switch {
	case verbosity <= 0:
		level.SetLevel(zapcore.WarnLevel)
	case verbosity == 1:
		level.SetLevel(zapcore.InfoLevel)
	default:
		level.SetLevel(zapcore.DebugLevel)
	}
}

// Named returns a child logger for one component
func Named(component string) *zap.Logger {
	return root().Named(component)
}

// Sync flushes buffered entries; call it before the process exits
func Sync() {
	_ = root().Sync()
}

// Info logs at info level on the root logger
func Info(msg string, fields ...zap.Field) {
	root().Info(msg, fields...)
}

// Warn logs at warn level on the root logger
func Warn(msg string, fields ...zap.Field) {
	root().Warn(msg, fields...)
}

// Error logs at error level on the root logger
func Error(msg string, fields ...zap.Field) {
	root().Error(msg, fields...)
}
