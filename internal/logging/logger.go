// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package logging builds the structured logger of lcdctl on log/slog.
//
// Configuration comes from the logging section of the config file:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "text"     # json, text
//	  output: "stderr"   # stdout, stderr
//
// Debug level includes one record per instruction and data byte sent to the
// display.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/GermanBionicSystems/charlcd/internal/config"
)

// Logger wraps slog.Logger. It is safe for concurrent use.
type Logger struct {
	*slog.Logger
}

// New returns a Logger writing to the output named in cfg, with the service
// and version attached to every record.
func New(cfg config.LoggingConfig, version string) *Logger {
	var output io.Writer
	switch strings.ToLower(cfg.Output) {
	case "stdout":
		output = os.Stdout
	default:
		output = os.Stderr
	}
	return NewWriter(cfg, version, output)
}

// NewWriter is New with an explicit destination.
func NewWriter(cfg config.LoggingConfig, version string, w io.Writer) *Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	handler = handler.WithAttrs([]slog.Attr{
		slog.String("service", "lcdctl"),
		slog.String("version", version),
	})
	return &Logger{Logger: slog.New(handler)}
}

// parseLevel defaults to info for unknown names.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a Logger with additional attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Default is used before the configuration is loaded: text on stderr at
// info level.
func Default() *Logger {
	return New(config.LoggingConfig{Level: "info", Format: "text", Output: "stderr"}, "dev")
}
