// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/GermanBionicSystems/charlcd/internal/config"
	"github.com/jonboulle/clockwork"
)

func TestRun_TextToPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lcd.png")
	var out bytes.Buffer
	args := []string{"-sim", "-text", `Hello\nWorld`, "-png", path}
	if err := run(context.Background(), args, &out, clockwork.NewFakeClock()); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decoding %s: %v", path, err)
	}
	// Default geometry is 16x2 at scale 4.
	if got := img.Bounds().Dx(); got != 4*(12+16*8) {
		t.Errorf("width = %d", got)
	}
	if out.Len() != 0 {
		t.Errorf("unexpected output without -terminal: %q", out.String())
	}
}

func TestRun_Terminal(t *testing.T) {
	var out bytes.Buffer
	args := []string{"-sim", "-terminal", "-text", "Hi there"}
	if err := run(context.Background(), args, &out, clockwork.NewFakeClock()); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(out.String(), "Hi there        ") {
		t.Errorf("terminal output missing text: %q", out.String())
	}
}

func TestRun_Demo(t *testing.T) {
	for _, transport := range []string{config.I2C, config.Parallel4, config.Parallel8, config.Serial} {
		t.Run(transport, func(t *testing.T) {
			cfgPath := filepath.Join(t.TempDir(), "lcd.yaml")
			yaml := "display:\n  transport: " + transport + "\n  rows: 2\n  cols: 20\nsimulator:\n  enabled: true\n  terminal: true\nlogging:\n  level: error\n"
			if err := os.WriteFile(cfgPath, []byte(yaml), 0o644); err != nil {
				t.Fatal(err)
			}
			var out bytes.Buffer
			args := []string{"-config", cfgPath, "-demo", "-delay", "0"}
			if err := run(context.Background(), args, &out, clockwork.NewFakeClock()); err != nil {
				t.Fatalf("run() error = %v", err)
			}
			if !strings.Contains(out.String(), "Hello World!        ") {
				t.Errorf("final frame missing message: %q", out.String())
			}
		})
	}
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	args := []string{"-sim", "-demo", "-delay", "1s"}
	if err := run(ctx, args, &bytes.Buffer{}, clockwork.NewFakeClock()); err != nil {
		t.Fatalf("run() error = %v", err)
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"-nope"}},
		{"extra argument", []string{"-sim", "extra"}},
		{"png without simulator", []string{"-png", "x.png"}},
		{"missing config", []string{"-config", "/nonexistent/lcd.yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := run(context.Background(), tt.args, &bytes.Buffer{}, clockwork.NewFakeClock()); err == nil {
				t.Error("run() succeeded")
			}
		})
	}
}

func TestShowText(t *testing.T) {
	cfg := config.Default()
	cfg.Simulator.Enabled = true
	p, err := openPanel(cfg, nil, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	if err := showText(p.dev, "A line longer than sixteen\nsecond\nthird"); err != nil {
		t.Fatal(err)
	}
	want := "A line longer th\nsecond          "
	if got := p.ctrl.Text(2, 16); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestCustomChars(t *testing.T) {
	cfg := config.Default()
	cfg.Simulator.Enabled = true
	p, err := openPanel(cfg, nil, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	if err := customChars(p.dev); err != nil {
		t.Fatal(err)
	}
	for slot, g := range glyphs {
		if got := p.ctrl.Glyph(slot); got != g {
			t.Errorf("Glyph(%d) = %v, want %v", slot, got, g)
		}
	}
	if got, want := string(p.ctrl.Line(1, 8)), "\x00 \x01 \x02 \x03 "; got != want {
		t.Errorf("Line(1) = %q, want %q", got, want)
	}
}
