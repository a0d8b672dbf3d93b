// internal/logging/logging.go

// Package logging builds the process logger: zap console encoding into a
// rotating file, optionally teed to the terminal.
package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ParseLevel maps the CLI level names onto zap levels.
// CRITICAL maps to DPanic, which only panics in development loggers.
func ParseLevel(name string) (zapcore.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return zapcore.DebugLevel, nil
	case "INFO":
		return zapcore.InfoLevel, nil
	case "WARNING", "WARN":
		return zapcore.WarnLevel, nil
	case "ERROR":
		return zapcore.ErrorLevel, nil
	case "CRITICAL":
		return zapcore.DPanicLevel, nil
	}
	return zapcore.InfoLevel, fmt.Errorf("logging: unknown level %q", name)
}

// Options configures New.
type Options struct {
	// File is the log file path. Empty disables the file sink.
	File  string
	Level zapcore.Level

	// Console, when non-nil, receives the same entries.
	Console io.Writer

	// Rotation limits for the file sink. Zero values use lumberjack defaults.
	MaxSizeMB  int
	MaxBackups int
}

// EncoderConfig is the console layout used by every sink.
func EncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      zapcore.OmitKey,
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     utcISO8601,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}
}

func utcISO8601(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	zapcore.ISO8601TimeEncoder(t.UTC(), enc)
}

// New builds the logger. The returned close func flushes and closes the file.
func New(opts Options) (*zap.Logger, func() error, error) {
	enc := zapcore.NewConsoleEncoder(EncoderConfig())
	level := zap.NewAtomicLevelAt(opts.Level)

	var (
		cores []zapcore.Core
		file  *lumberjack.Logger
	)

	if opts.File != "" {
		file = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(file), level))
	}
	if opts.Console != nil {
		cores = append(cores, zapcore.NewCore(enc.Clone(), zapcore.Lock(zapcore.AddSync(opts.Console)), level))
	}
	if len(cores) == 0 {
		return nil, nil, fmt.Errorf("logging: no sink configured")
	}

	log := zap.New(zapcore.NewTee(cores...))
	closeFn := func() error {
		_ = log.Sync()
		if file != nil {
			return file.Close()
		}
		return nil
	}
	return log, closeFn, nil
}
