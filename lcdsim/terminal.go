// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcdsim

import (
	"bytes"
	"image/color"
	"io"
	"strings"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
)

// Backlight colors of a typical yellow-green module.
var (
	BacklightOn  = color.NRGBA{R: 0x9c, G: 0xd8, B: 0x3a, A: 0xff}
	BacklightOff = color.NRGBA{R: 0x3c, G: 0x4a, B: 0x20, A: 0xff}
)

// TerminalOpts represents the options available for a Terminal.
type TerminalOpts struct {
	Rows    int
	Cols    int
	Palette *ansi256.Palette
	// W receives the output. Default: a colorable stdout.
	W io.Writer

	_ struct{}
}

// Terminal draws the visible part of a controller to a console using ANSI
// color codes, with a colored frame standing for the backlight.
type Terminal struct {
	ctrl      *Controller
	w         io.Writer
	rows      int
	cols      int
	palette   ansi256.Palette
	backlight func() bool

	buf bytes.Buffer
}

// NewTerminal returns a Terminal showing c. backlight reports the backlight
// state and may be nil for a module that's always lit.
func NewTerminal(c *Controller, backlight func() bool, opts *TerminalOpts) *Terminal {
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := opts.W
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	if backlight == nil {
		backlight = func() bool { return true }
	}
	return &Terminal{
		ctrl:      c,
		w:         w,
		rows:      opts.Rows,
		cols:      opts.Cols,
		palette:   *p,
		backlight: backlight,
	}
}

func (t *Terminal) String() string {
	return "lcdsim.Terminal"
}

// Refresh writes the current content. Each call draws a complete frame.
func (t *Terminal) Refresh() error {
	// Reuse the buffer to keep allocations per frame down.
	t.buf.Reset()
	frame := BacklightOff
	if t.backlight() {
		frame = BacklightOn
	}
	edge := t.palette.Block(frame)
	text := t.ctrl.Text(t.rows, t.cols)
	for _, line := range strings.Split(text, "\n") {
		_, _ = t.buf.WriteString("\033[0m")
		_, _ = io.WriteString(&t.buf, edge)
		_, _ = t.buf.WriteString(line)
		_, _ = io.WriteString(&t.buf, edge)
		_, _ = t.buf.WriteString("\033[0m\n")
	}
	_, err := t.buf.WriteTo(t.w)
	return err
}

// Halt resets the terminal colors.
func (t *Terminal) Halt() error {
	_, err := t.w.Write([]byte("\033[0m"))
	return err
}
