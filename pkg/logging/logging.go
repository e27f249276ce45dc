// Package logging holds the process-wide structured logger.
//
// Every package logs through [Logger] or a [Named] child of it. The logger
// is a no-op until an application installs one with [SetLogger], so a
// library consumer that never configures logging pays nothing for it.
package logging

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	logger = zap.NewNop()
)

// Logger returns the process logger.
func Logger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// SetLogger installs l as the process logger. Passing nil restores the
// no-op logger. It returns the previously installed logger so tests can
// restore it.
func SetLogger(l *zap.Logger) *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	prev := logger
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
	return prev
}

// Named returns a child of the process logger scoped to a subsystem.
func Named(name string) *zap.Logger {
	return Logger().Named(name)
}

// New builds a logger for command-line use. Level is one of debug, info,
// warn or error; development selects the console encoder.
func New(level string, development bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	return cfg.Build()
}
