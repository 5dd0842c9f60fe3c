// Package logging builds the zap logger shared by every front end.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ParseLevel maps a config string to a zap level. Unknown values fall back
// to info.
func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// New returns a logger at the given level. With a non-empty path the logger
// writes JSON lines to that file, which keeps the terminal free for the TUI.
// Otherwise it writes human readable lines to stderr.
func New(level, path string) (*zap.Logger, error) {
	lvl := zap.NewAtomicLevelAt(ParseLevel(level))

	if path == "" {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = lvl
		cfg.DisableStacktrace = true
		cfg.OutputPaths = []string{"stderr"}
		cfg.ErrorOutputPaths = []string{"stderr"}
		return cfg.Build()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	cfg.Sampling = nil
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

// Must is New for main: on failure it reports to stderr and returns a no-op
// logger so the program keeps working without logs.
func Must(level, path string) *zap.Logger {
	l, err := New(level, path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger setup failed: %v\n", err)
		return zap.NewNop()
	}
	return l
}
