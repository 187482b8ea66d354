// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package lcdsim emulates an HD44780 character LCD controller.
//
// A Controller decodes the instructions and data latched on its bus the way
// the real part does, including the 4-bit nibble pairing and the address
// counter rules for DDRAM and CGRAM. Front ends turn host side activity into
// latches: Pins for the parallel wirings, ShiftRegister for a 74HC595 feeding
// D0-D7, and I2CBus for a PCF8574 backpack.
//
// The result can be shown in a terminal with Terminal or rendered to an
// image with Render.
package lcdsim

import (
	"fmt"
	"sync"
)

const (
	ddramSize  = 128
	cgramSize  = 64
	lineWidth  = 40
	line1Start = 0x40
	blank      = ' '
)

// Latch is one full byte received by the controller.
type Latch struct {
	// RS is true for data, false for an instruction.
	RS    bool
	Value byte
}

func (l Latch) String() string {
	if l.RS {
		return fmt.Sprintf("D:0x%02x", l.Value)
	}
	return fmt.Sprintf("I:0x%02x", l.Value)
}

// Controller is the emulated controller. It powers up in 8-bit mode with
// DDRAM blank and the display off. It is safe for concurrent use.
type Controller struct {
	mu sync.Mutex
	registers
}

type registers struct {
	eightBit  bool
	twoLines  bool
	font5x10  bool
	display   bool
	cursor    bool
	blink     bool
	increment bool
	shift     bool

	ddram   [ddramSize]byte
	cgram   [cgramSize]byte
	ac      byte
	inCGRAM bool
	offset  int

	// high holds the first nibble of a 4-bit transfer.
	high    byte
	pending bool

	latches []Latch
}

// NewController returns a controller in its power on state.
func NewController() *Controller {
	c := &Controller{}
	c.reset()
	return c
}

// Reset returns the controller to its power on state and forgets the latch
// history.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

func (c *Controller) reset() {
	c.registers = registers{eightBit: true, increment: true}
	for i := range c.ddram {
		c.ddram[i] = blank
	}
}

// Strobe is the falling edge of E. bus holds D0-D7; in 4-bit mode only D4-D7
// are read.
func (c *Controller) Strobe(rs bool, bus byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.eightBit {
		c.execute(rs, bus)
		return
	}
	if !c.pending {
		c.high = bus & 0xf0
		c.pending = true
		return
	}
	c.pending = false
	c.execute(rs, c.high|bus>>4)
}

func (c *Controller) execute(rs bool, v byte) {
	c.latches = append(c.latches, Latch{RS: rs, Value: v})
	if rs {
		c.writeData(v)
		return
	}
	switch {
	case v&0x80 != 0:
		c.ac = v & 0x7f
		c.inCGRAM = false
	case v&0x40 != 0:
		c.ac = v & 0x3f
		c.inCGRAM = true
	case v&0x20 != 0:
		c.eightBit = v&0x10 != 0
		c.twoLines = v&0x08 != 0
		c.font5x10 = v&0x04 != 0
		c.pending = false
	case v&0x10 != 0:
		right := v&0x04 != 0
		if v&0x08 != 0 {
			c.scroll(right)
		} else {
			c.moveCursor(right)
		}
	case v&0x08 != 0:
		c.display = v&0x04 != 0
		c.cursor = v&0x02 != 0
		c.blink = v&0x01 != 0
	case v&0x04 != 0:
		c.increment = v&0x02 != 0
		c.shift = v&0x01 != 0
	case v&0x02 != 0:
		c.ac = 0
		c.inCGRAM = false
		c.offset = 0
	case v == 0x01:
		for i := range c.ddram {
			c.ddram[i] = blank
		}
		c.ac = 0
		c.inCGRAM = false
		c.offset = 0
		c.increment = true
	}
}

func (c *Controller) writeData(v byte) {
	if c.inCGRAM {
		c.cgram[c.ac&(cgramSize-1)] = v
		if c.increment {
			c.ac = (c.ac + 1) & (cgramSize - 1)
		} else {
			c.ac = (c.ac - 1) & (cgramSize - 1)
		}
		return
	}
	c.ddram[c.ac&(ddramSize-1)] = v
	c.moveCursor(c.increment)
	if c.shift {
		c.scroll(!c.increment)
	}
}

// moveCursor steps the DDRAM address counter. In two line mode the end of
// line 0 continues on line 1 and the end of line 1 wraps to line 0.
func (c *Controller) moveCursor(right bool) {
	if c.inCGRAM {
		return
	}
	if !c.twoLines {
		last := byte(2*lineWidth - 1)
		switch {
		case right && c.ac >= last:
			c.ac = 0
		case right:
			c.ac++
		case c.ac == 0:
			c.ac = last
		default:
			c.ac--
		}
		return
	}
	switch {
	case right && c.ac == lineWidth-1:
		c.ac = line1Start
	case right && c.ac == line1Start+lineWidth-1:
		c.ac = 0
	case right:
		c.ac++
	case c.ac == 0:
		c.ac = line1Start + lineWidth - 1
	case c.ac == line1Start:
		c.ac = lineWidth - 1
	default:
		c.ac--
	}
}

// scroll moves the visible window. Scrolling the display right shows
// earlier columns.
func (c *Controller) scroll(right bool) {
	if right {
		c.offset--
	} else {
		c.offset++
	}
	c.offset = (c.offset%lineWidth + lineWidth) % lineWidth
}

// Line returns the cols characters visible on row, honoring the display
// shift. The characters are raw codes; slots 0-7 are CGRAM glyphs.
func (c *Controller) Line(row, cols int) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.line(row, cols)
}

func (c *Controller) line(row, cols int) []byte {
	width, base := lineWidth, 0
	if !c.twoLines {
		width = 2 * lineWidth
	} else if row != 0 {
		base = line1Start
	}
	out := make([]byte, cols)
	for col := range out {
		out[col] = c.ddram[base+(col+c.offset)%width]
	}
	return out
}

// Text returns the visible lines joined by newlines, with glyph slots shown
// as '#'. A display that's off shows blank lines.
func (c *Controller) Text(rows, cols int) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var b []byte
	for row := range rows {
		if row > 0 {
			b = append(b, '\n')
		}
		for _, ch := range c.line(row, cols) {
			switch {
			case !c.display:
				ch = blank
			case ch < 8:
				ch = '#'
			}
			b = append(b, ch)
		}
	}
	return string(b)
}

// DDRAM returns a copy of display data memory.
func (c *Controller) DDRAM() [ddramSize]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ddram
}

// CGRAM returns a copy of character generator memory. Slot n occupies bytes
// 8n to 8n+7.
func (c *Controller) CGRAM() [cgramSize]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cgram
}

// Glyph returns the 8 rows stored for slot.
func (c *Controller) Glyph(slot int) [8]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	var g [8]byte
	copy(g[:], c.cgram[(slot&7)*8:])
	return g
}

// Address returns the address counter.
func (c *Controller) Address() byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ac
}

// InCGRAM reports whether the address counter points into CGRAM.
func (c *Controller) InCGRAM() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inCGRAM
}

// Offset returns the display shift, in columns to the left.
func (c *Controller) Offset() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offset
}

// EightBit reports the interface width selected by the last function set.
func (c *Controller) EightBit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eightBit
}

// TwoLines reports the line count selected by the last function set.
func (c *Controller) TwoLines() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.twoLines
}

// Font5x10 reports the font selected by the last function set.
func (c *Controller) Font5x10() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.font5x10
}

// DisplayOn reports the D flag.
func (c *Controller) DisplayOn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.display
}

// CursorOn reports the C flag.
func (c *Controller) CursorOn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursor
}

// BlinkOn reports the B flag.
func (c *Controller) BlinkOn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blink
}

// Increment reports the I/D flag of the entry mode.
func (c *Controller) Increment() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.increment
}

// Shift reports the S flag of the entry mode.
func (c *Controller) Shift() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shift
}

// Latches returns every byte executed since power on or Reset, in order.
func (c *Controller) Latches() []Latch {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Latch(nil), c.latches...)
}

// Instructions returns the instructions executed, in order.
func (c *Controller) Instructions() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []byte
	for _, l := range c.latches {
		if !l.RS {
			out = append(out, l.Value)
		}
	}
	return out
}

func (c *Controller) String() string {
	return "HD44780 simulator"
}
