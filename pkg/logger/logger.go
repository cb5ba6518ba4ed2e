package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Validate checks the format and level accepted by Init.
func Validate(format string, logLevel string) error {
	switch format {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log-format %q: must be console or json", format)
	}
	if _, err := zapcore.ParseLevel(logLevel); err != nil {
		return fmt.Errorf("invalid log-level %q: %w", logLevel, err)
	}
	return nil
}

// Init builds the process logger. Logs go to stderr so command output on stdout
// stays clean. An unknown level falls back to info.
func Init(format string, logLevel string) *zap.Logger {
	lvl := zapcore.InfoLevel
	if level, err := zapcore.ParseLevel(logLevel); err == nil {
		lvl = level
	}

	encoder := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "severity",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if format == "console" {
		encoder.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	loggerCfg := &zap.Config{
		Level:            zap.NewAtomicLevelAt(lvl),
		Encoding:         format,
		EncoderConfig:    encoder,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	plain, err := loggerCfg.Build(zap.AddStacktrace(zap.DPanicLevel))
	if err != nil {
		panic(err)
	}

	return plain
}
