// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"fmt"

	"periph.io/x/conn/v3/display"
)

// AutoScroll shifts the display instead of the cursor after each write.
func (dev *Dev) AutoScroll(enabled bool) error {
	return dev.setEntryMode(EntryMode{ShiftDisplay: enabled, Increment: true})
}

// Return the number of columns the display supports
func (dev *Dev) Cols() int {
	return dev.cols
}

// Return the number of rows the display supports.
func (dev *Dev) Rows() int {
	return dev.rows
}

// Return the min column position.
func (dev *Dev) MinCol() int {
	return 1
}

// Return the min row position.
func (dev *Dev) MinRow() int {
	return 1
}

// Set the cursor mode. You can pass multiple arguments.
// Cursor(CursorOff, CursorUnderline)
//
// The HD44780 block cursor always blinks, so CursorBlock and CursorBlink are
// the same.
func (dev *Dev) Cursor(modes ...display.CursorMode) error {
	s := DisplayState{Display: dev.display.Display}
	for _, mode := range modes {
		switch mode {
		case display.CursorOff:
			s.Cursor = false
			s.Blink = false
		case display.CursorUnderline:
			s.Cursor = true
		case display.CursorBlock, display.CursorBlink:
			s.Blink = true
		default:
			return fmt.Errorf("hd44780: unexpected cursor: %d", mode)
		}
	}
	return dev.setDisplayState(s)
}

// Move the cursor forward or backward.
func (dev *Dev) Move(dir display.CursorDirection) error {
	switch dir {
	case display.Backward:
		return dev.MoveCursorLeft()
	case display.Forward:
		return dev.MoveCursorRight()
	case display.Up, display.Down:
		return ErrNotImplemented
	default:
		return fmt.Errorf("hd44780: unexpected direction: %d", dir)
	}
}

// MoveTo moves the cursor to row, col, both starting at 1.
func (dev *Dev) MoveTo(row, col int) error {
	if row < dev.MinRow() || row > dev.rows || col < dev.MinCol() || col > dev.cols {
		return fmt.Errorf("%w: MoveTo(%d,%d)", ErrOutOfRange, row, col)
	}
	return dev.SetCursor(row-dev.MinRow(), col-dev.MinCol())
}

// Turn the display on / off
func (dev *Dev) Display(on bool) error {
	if on {
		return dev.EnableDisplay()
	}
	return dev.DisableDisplay()
}

// Backlight turns the backlight on for any non-zero intensity. Only the I²C
// transport has a backlight control.
func (dev *Dev) Backlight(intensity display.Intensity) error {
	if intensity > 0 {
		return dev.EnableBacklight()
	}
	return dev.DisableBacklight()
}

var _ display.TextDisplay = &Dev{}
var _ display.DisplayBacklight = &Dev{}
