// Package logging builds the application's zap logger.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap logger. Development mode writes human readable console
// output; otherwise entries are JSON. An unparsable level falls back to info.
func New(level string, development bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)

	if level != "" {
		if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
			fmt.Fprintf(os.Stderr, "bad LOG_LEVEL=%s, falling back to info\n", level)
			cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		}
	}

	return cfg.Build(zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
}

// Must is New that panics on error.
func Must(level string, development bool) *zap.Logger {
	l, err := New(level, development)
	if err != nil {
		panic(err)
	}
	return l
}
