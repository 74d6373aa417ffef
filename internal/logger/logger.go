// Package logger provides structured logging using Zap.
package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	sugar *zap.SugaredLogger
	once  sync.Once
)

// FileOptions configures the optional rotating log file.
type FileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
}

// Init initializes the global logger for the given environment.
// For "production", it uses a JSON encoder. For "test", logging is disabled.
// All other environments use a human-readable console encoder.
func Init(env string) {
	InitWithFile(env, FileOptions{})
}

// InitWithFile is Init plus a rotating file sink when opts.Path is set.
func InitWithFile(env string, opts FileOptions) {
	once.Do(func() {
		sugar = build(env, opts).Sugar()
	})
}

// InitLevel initializes a console logger that only emits entries at or above
// level. Used by the CLI, which keeps stderr quiet by default.
func InitLevel(level string) {
	once.Do(func() {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			lvl = zapcore.WarnLevel
		}
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(lvl)
		cfg.DisableStacktrace = true
		base, err := cfg.Build()
		if err != nil {
			base = zap.NewNop()
		}
		sugar = base.Sugar()
	})
}

func build(env string, opts FileOptions) *zap.Logger {
	if env == "test" {
		return zap.NewNop()
	}

	var base *zap.Logger
	var err error
	if env == "production" {
		base, err = zap.NewProduction()
	} else {
		base, err = zap.NewDevelopment()
	}
	if err != nil {
		// Fallback to nop logger if initialization fails.
		return zap.NewNop()
	}

	if opts.Path == "" {
		return base
	}

	rotator := &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		Compress:   true,
	}
	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(rotator),
		zapcore.InfoLevel,
	)
	return base.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, fileCore)
	}))
}

// Get returns the global sugared logger.
// If Init has not been called, it initializes a development logger.
func Get() *zap.SugaredLogger {
	if sugar == nil {
		Init(os.Getenv("ENV"))
	}
	return sugar
}

// Sync flushes any buffered log entries. Call this before application exit.
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}
