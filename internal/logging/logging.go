// Package logging builds the zap loggers used across pidroad.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// atomicLevel is shared by every logger built here so verbosity can be
// changed after construction.
var atomicLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)

// New builds a console logger at the given level ("debug", "info", "warn",
// "error"). Development mode adds caller and stack traces on warnings.
func New(level string, dev bool) (*zap.Logger, error) {
	if err := SetLevel(level); err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	if dev {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = atomicLevel
	cfg.Encoding = "console"
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build(zap.AddCaller())
}

// SetLevel adjusts the shared level. An empty string leaves it unchanged.
func SetLevel(level string) error {
	if level == "" {
		return nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("logging: unknown level %q: %w", level, err)
	}
	atomicLevel.SetLevel(lvl)
	return nil
}

// Level returns the current shared level.
func Level() zapcore.Level {
	return atomicLevel.Level()
}

// NewTestLogger creates a development logger that logs everything.
func NewTestLogger() *zap.Logger {
	return zap.Must(zap.NewDevelopment())
}
