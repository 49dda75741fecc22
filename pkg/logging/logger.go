// Package logging provides a shared Zap logger with configurable log levels.
package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects level and encoding. Output always goes to stderr since
// stdout carries the stdio protocol stream.
type Options struct {
	Level  string
	Format string // "json" or "console"
}

// NewLogger creates the root SugaredLogger. Invalid levels fall back to info.
func NewLogger(opts Options) *zap.SugaredLogger {
	encoding := "json"
	if opts.Format == "console" {
		encoding = "console"
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(ParseLogLevel(opts.Level)),
		Development:      false,
		Encoding:         encoding,
		EncoderConfig:    buildEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := config.Build()
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger.Sugar()
}

// Named returns a child logger for component.
func Named(root *zap.SugaredLogger, component string) *zap.SugaredLogger {
	if root == nil {
		return zap.NewNop().Sugar()
	}
	return root.Named(component)
}

// ParseLogLevel converts a string log level to zapcore.Level.
func ParseLogLevel(levelStr string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return zapcore.DebugLevel
	case "info", "":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func buildEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}
