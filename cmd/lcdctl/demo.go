// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"strings"
	"time"

	"github.com/GermanBionicSystems/charlcd/hd44780"
	"github.com/jonboulle/clockwork"
)

// showText clears the display and writes one line per row. Lines are split
// on newlines or a literal `\n`, and are cut to the display width.
func showText(dev *hd44780.Dev, text string) error {
	if err := dev.Clear(); err != nil {
		return err
	}
	text = strings.ReplaceAll(text, `\n`, "\n")
	for row, line := range strings.Split(text, "\n") {
		if row >= dev.Rows() {
			break
		}
		if len(line) > dev.Cols() {
			line = line[:dev.Cols()]
		}
		if err := dev.SetCursor(row, 0); err != nil {
			return err
		}
		if _, err := dev.WriteString(line); err != nil {
			return err
		}
	}
	return nil
}

// Custom characters for the demo, five bits per row.
var glyphs = [...][8]byte{
	{0x00, 0x0a, 0x1f, 0x1f, 0x0e, 0x04, 0x00, 0x00}, // heart
	{0x00, 0x0a, 0x00, 0x00, 0x11, 0x0e, 0x00, 0x00}, // smiley
	{0x04, 0x0e, 0x0e, 0x0e, 0x1f, 0x00, 0x04, 0x00}, // bell
	{0x0e, 0x11, 0x11, 0x1f, 0x1b, 0x1b, 0x1f, 0x00}, // lock
}

// scrollMode is one of the entry modes shown by the demo, with the position
// the message starts from on the second line.
type scrollMode struct {
	label string
	set   func(*hd44780.Dev) error
	col   func(msg string) int
}

var scrollModes = []scrollMode{
	{"Cursor Forward", (*hd44780.Dev).SetCursorAutoIncrement, func(string) int { return 0 }},
	{"Cursor Backward", (*hd44780.Dev).SetCursorAutoDecrement, func(m string) int { return len(m) - 1 }},
	{"Display Backward", (*hd44780.Dev).SetDisplayAutoDecrement, func(m string) int { return len(m) }},
	{"Display Forward", (*hd44780.Dev).SetDisplayAutoIncrement, func(string) int { return hd44780.LineWidth - 1 }},
}

const demoMessage = "Hello World!"

// runDemo walks through text, cursor styles, custom characters, the four
// entry modes, display shifts and the backlight.
func runDemo(ctx context.Context, dev *hd44780.Dev, clock clockwork.Clock, delay time.Duration) error {
	steps := []func() error{
		func() error { return showText(dev, demoMessage) },
		func() error { return cursorStyles(ctx, dev, clock, delay) },
		func() error { return customChars(dev) },
		func() error { return entryModes(ctx, dev, clock, delay) },
		func() error { return shifts(ctx, dev, clock, delay) },
		func() error { return backlight(ctx, dev, clock, delay) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
		if err := pause(ctx, clock, delay); err != nil {
			return err
		}
	}
	return showText(dev, demoMessage)
}

func cursorStyles(ctx context.Context, dev *hd44780.Dev, clock clockwork.Clock, delay time.Duration) error {
	for _, f := range []func() error{dev.EnableCursor, dev.EnableBlink, dev.DisableCursor, dev.DisableBlink} {
		if err := f(); err != nil {
			return err
		}
		if err := pause(ctx, clock, delay); err != nil {
			return err
		}
	}
	return nil
}

func customChars(dev *hd44780.Dev) error {
	for slot, g := range glyphs {
		if err := dev.CreateChar(slot, g); err != nil {
			return err
		}
	}
	// CreateChar leaves the address counter in CGRAM.
	if err := dev.SetCursor(1, 0); err != nil {
		return err
	}
	for slot := range glyphs {
		if _, err := dev.Write([]byte{byte(slot), ' '}); err != nil {
			return err
		}
	}
	return nil
}

func entryModes(ctx context.Context, dev *hd44780.Dev, clock clockwork.Clock, delay time.Duration) error {
	for _, m := range scrollModes {
		if err := dev.SetCursorAutoIncrement(); err != nil {
			return err
		}
		if err := showText(dev, m.label); err != nil {
			return err
		}
		if err := m.set(dev); err != nil {
			return err
		}
		if err := dev.SetCursor(1, m.col(demoMessage)); err != nil {
			return err
		}
		for i := range len(demoMessage) {
			if err := dev.SendData(demoMessage[i]); err != nil {
				return err
			}
			if err := pause(ctx, clock, delay/4); err != nil {
				return err
			}
		}
		if err := pause(ctx, clock, delay); err != nil {
			return err
		}
	}
	return dev.SetCursorAutoIncrement()
}

func shifts(ctx context.Context, dev *hd44780.Dev, clock clockwork.Clock, delay time.Duration) error {
	if err := showText(dev, demoMessage); err != nil {
		return err
	}
	for _, f := range []func() error{dev.ScrollDisplayRight, dev.ScrollDisplayLeft} {
		for range 4 {
			if err := f(); err != nil {
				return err
			}
			if err := pause(ctx, clock, delay/4); err != nil {
				return err
			}
		}
	}
	return nil
}

func backlight(ctx context.Context, dev *hd44780.Dev, clock clockwork.Clock, delay time.Duration) error {
	for range 2 {
		if err := dev.ToggleBacklight(); err != nil {
			return err
		}
		if err := pause(ctx, clock, delay); err != nil {
			return err
		}
	}
	return nil
}

// pause waits for d on clock, or until ctx is canceled.
func pause(ctx context.Context, clock clockwork.Clock, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-clock.After(d):
		return nil
	}
}
