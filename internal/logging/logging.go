// Package logging builds the zap loggers used across the daemon and CLI.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options select the logger's verbosity and output.
type Options struct {
	Level  string // zap level name; empty or unknown falls back to info
	Format string // "json" (default) or "console"
	File   string // log file path; empty writes to stderr
}

// New builds the process logger. With a file configured the logger writes
// console-encoded lines there, otherwise it writes to stderr.
func New(opts Options) (*zap.Logger, error) {
	level := parseLevel(opts.Level)

	if opts.File != "" {
		logger, _, err := NewFileLogger(opts.File, level)
		return logger, err
	}

	encoding := "json"
	if opts.Format == "console" {
		encoding = "console"
	}

	cfg := zap.Config{
		Level:       zap.NewAtomicLevelAt(level),
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding:         encoding,
		EncoderConfig:    encoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return cfg.Build()
}

// NewFileLogger opens path for append and builds a console-encoded logger
// writing to it, creating the parent directory as needed. The returned
// file stays open for the logger's lifetime.
func NewFileLogger(path string, level zapcore.Level) (*zap.Logger, *os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	logF, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig()),
		zapcore.AddSync(logF),
		level,
	)

	return zap.New(core), logF, nil
}

func parseLevel(name string) zapcore.Level {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		level = zapcore.InfoLevel
	}
	return level
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}
