// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/GermanBionicSystems/charlcd/hd44780"
	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lcdctl.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_Parallel4(t *testing.T) {
	path := writeConfig(t, `
display:
  transport: "parallel4"
  rows: 2
  cols: 20
pins:
  data: ["GPIO27", "GPIO22", "GPIO23", "GPIO24"]
  enable: "GPIO17"
  rs: "GPIO18"
timing:
  power_on: "100ms"
  attention: ["6ms", "6ms", "1ms"]
  enable_hold: "2us"
logging:
  level: "debug"
  format: "json"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Display.Transport != Parallel4 || cfg.Display.Cols != 20 {
		t.Errorf("Display = %+v", cfg.Display)
	}
	if diff := cmp.Diff([]string{"GPIO27", "GPIO22", "GPIO23", "GPIO24"}, cfg.Pins.Data); diff != "" {
		t.Errorf("Pins.Data (-want +got):\n%s", diff)
	}
	want := hd44780.Timing{
		PowerOn:    100 * time.Millisecond,
		Attention:  [3]time.Duration{6 * time.Millisecond, 6 * time.Millisecond, time.Millisecond},
		Settle:     hd44780.DefaultTiming.Settle,
		EnableHold: 2 * time.Microsecond,
	}
	if got := cfg.Timing.HD44780Timing(); got != want {
		t.Errorf("HD44780Timing() = %+v, want %+v", got, want)
	}
	// Keys absent from the file keep their defaults.
	if cfg.I2C.Address != 0x27 || cfg.Logging.Output != "stderr" {
		t.Errorf("defaults lost: %+v %+v", cfg.I2C, cfg.Logging)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/path/lcdctl.yaml"); err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "display: [yaml: content")); err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	path := writeConfig(t, `
display:
  transport: "spi"
  rows: 4
  cols: 41
timing:
  attention: ["1ms"]
`)
	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() expected validation error, got nil")
	}
	for _, s := range []string{"display.rows", "display.cols", "display.transport", "timing.attention"} {
		if !strings.Contains(err.Error(), s) {
			t.Errorf("error %q doesn't mention %s", err, s)
		}
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CHARLCD_I2C_ADDRESS", "0x3f")
	t.Setenv("CHARLCD_I2C_BUS", "2")
	t.Setenv("CHARLCD_LOGGING_LEVEL", "warn")
	t.Setenv("CHARLCD_SIMULATOR_ENABLED", "true")
	cfg, err := Load(writeConfig(t, "display:\n  cols: 8\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.I2C.Address != 0x3f || cfg.I2C.Bus != "2" || cfg.Logging.Level != "warn" || !cfg.Simulator.Enabled {
		t.Errorf("overrides not applied: %+v %+v %+v", cfg.I2C, cfg.Logging, cfg.Simulator)
	}

	t.Setenv("CHARLCD_I2C_ADDRESS", "twenty")
	if _, err := Load(writeConfig(t, "")); err == nil {
		t.Error("Load() expected error for a bad address override")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"default", func(c *Config) {}, ""},
		{"bad address", func(c *Config) { c.I2C.Address = 0x80 }, "i2c.address"},
		{"parallel8 short", func(c *Config) {
			c.Display.Transport = Parallel8
			c.Pins = PinsConfig{Data: []string{"a"}, Enable: "e", RS: "rs"}
		}, "pins.data"},
		{"serial without latch", func(c *Config) {
			c.Display.Transport = Serial
			c.Pins = PinsConfig{Serial: "s", Clock: "c", Enable: "e", RS: "rs"}
		}, "pins.latch"},
		{"parallel4 without enable", func(c *Config) {
			c.Display.Transport = Parallel4
			c.Pins = PinsConfig{Data: []string{"a", "b", "c", "d"}}
		}, "pins.enable"},
		{"simulated parallel4", func(c *Config) {
			c.Display.Transport = Parallel4
			c.Simulator.Enabled = true
		}, ""},
		{"font with 2 rows", func(c *Config) { c.Display.Font5x10 = true }, "font_5x10"},
		{"negative timing", func(c *Config) { c.Timing.Settle = -time.Second }, "negative"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestHD44780Timing_Defaults(t *testing.T) {
	if got := (TimingConfig{}).HD44780Timing(); got != hd44780.DefaultTiming {
		t.Errorf("HD44780Timing() = %+v, want %+v", got, hd44780.DefaultTiming)
	}
}
