// Package logging builds the default logger for the pipeline: an ectologger
// facade delivering structured entries to a zap sink.
package logging

import (
	"github.com/Gobusters/ectologger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger returns an ectologger backed by a zap sink. Level accepts the
// usual debug/info/warn/error names; pretty switches to the development
// console encoder.
func NewLogger(appName, level string, pretty bool) (ectologger.Logger, func() error, error) {
	var cfg zap.Config
	if pretty {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	zl, err := cfg.Build(zap.Fields(zap.String("app", appName)))
	if err != nil {
		return nil, nil, err
	}

	// Each entry is forwarded wholesale; the zap encoder renders the
	// structured message, fields, and error in one object.
	logger := ectologger.NewEctoLogger(func(m ectologger.EctoLogMessage) {
		zl.Info("log", zap.Any("entry", m))
	})

	return logger, zl.Sync, nil
}

// NewNopLogger returns an ectologger that discards everything. Used in tests.
func NewNopLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}
