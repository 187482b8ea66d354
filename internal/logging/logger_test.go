// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/GermanBionicSystems/charlcd/internal/config"
)

func TestNew(t *testing.T) {
	for _, cfg := range []config.LoggingConfig{
		{Level: "info", Format: "json", Output: "stdout"},
		{Level: "debug", Format: "text", Output: "stderr"},
	} {
		if New(cfg, "1.0.0") == nil {
			t.Fatal("expected non-nil logger")
		}
	}
	if Default() == nil {
		t.Fatal("expected non-nil default logger")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.expected {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(config.LoggingConfig{Level: "info", Format: "json"}, "1.2.3", &buf)
	logger.With("component", "display").Info("ready", "rows", 2)
	logger.Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 record, got %d:\n%s", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	for k, want := range map[string]any{
		"msg":       "ready",
		"service":   "lcdctl",
		"version":   "1.2.3",
		"component": "display",
		"rows":      float64(2),
	} {
		if rec[k] != want {
			t.Errorf("%s = %v, want %v", k, rec[k], want)
		}
	}
}

func TestTextOutputDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(config.LoggingConfig{Level: "debug", Format: "text"}, "dev", &buf)
	logger.Debug("instruction", "value", "0x01")
	if !strings.Contains(buf.String(), "msg=instruction") || !strings.Contains(buf.String(), "value=0x01") {
		t.Errorf("unexpected output %q", buf.String())
	}
}
