package utils

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a console zap logger at the given level
// (debug, info, warn, error). An unknown level panics: the level
// comes from configuration read at startup.
func NewLogger(level string) *zap.Logger {
	var lvl zapcore.Level

	if err := lvl.Set(level); err != nil {
		panic(fmt.Sprintf("error: unknown log level %s", level))
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = true

	l, err := cfg.Build()
	if err != nil {
		panic(fmt.Errorf("error while building logger: %w", err))
	}

	return l
}
