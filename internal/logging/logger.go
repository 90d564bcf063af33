// Copyright (c) 2025 Expensetracker
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the verbosity of the process-wide logger.
type Config struct {
	Level   string
	Verbose bool
}

// New builds a console logger writing to stderr so command output on
// stdout stays clean.
func New(cfg Config) (*zap.Logger, error) {
	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	level := LevelFromString(cfg.Level)
	if cfg.Verbose {
		level = zapcore.DebugLevel
	}

	zcfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       false,
		DisableCaller:     !cfg.Verbose,
		DisableStacktrace: true,
		Encoding:          "console",
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
		InitialFields: map[string]interface{}{
			"pid": os.Getpid(),
		},
	}
	return zcfg.Build()
}

// Init builds the logger and installs it as the zap global.
// It falls back to a no-op logger if the configuration cannot be built.
func Init(cfg Config) *zap.Logger {
	logger, err := New(cfg)
	if err != nil {
		logger = zap.NewNop()
	}
	zap.ReplaceGlobals(logger)
	return logger
}

// Sync flushes the global logger.
func Sync() {
	_ = zap.L().Sync()
}

// LevelFromString parses a level name case-insensitively, defaulting to
// warn so that an unconfigured CLI only reports problems.
func LevelFromString(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "dbg":
		return zapcore.DebugLevel
	case "info", "information":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error", "err":
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel
	}
}

// Token returns a zap field whose value is masked.
func Token(key, value string) zap.Field {
	if value == "" {
		return zap.String(key, "")
	}
	return zap.String(key, "***")
}
