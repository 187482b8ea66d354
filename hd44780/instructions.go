// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

// Instruction opcodes. The parameter bits of each instruction are OR'ed into
// the opcode.
const (
	cmdClear          byte = 0x01
	cmdHome           byte = 0x02
	cmdEntryMode      byte = 0x04
	cmdDisplayControl byte = 0x08
	cmdShift          byte = 0x10
	cmdFunctionSet    byte = 0x20
	cmdSetCGRAMAddr   byte = 0x40
	cmdSetDDRAMAddr   byte = 0x80
)

// Parameter bits.
const (
	entryShiftDisplay byte = 0x01
	entryIncrement    byte = 0x02

	displayBlink  byte = 0x01
	displayCursor byte = 0x02
	displayOn     byte = 0x04

	shiftRight   byte = 0x04
	shiftDisplay byte = 0x08

	fnFont5x10 byte = 0x04
	fnTwoLines byte = 0x08
	fnEightBit byte = 0x10
)

const (
	// Row base addresses in DDRAM. Each row allocates 40 columns even though
	// a 16x2 module only shows 16 of them.
	row0Address byte = 0x00
	row1Address byte = 0x40

	ddramMask byte = 0x7f
	cgramMask byte = 0x3f

	// LineWidth is the number of DDRAM positions allocated to a row.
	LineWidth = 40
	// GlyphSlots is the number of programmable characters in CGRAM.
	GlyphSlots = 8
)

// DisplayState holds the display-control flags. It's always the value carried
// by the last display-control instruction sent to the controller.
type DisplayState struct {
	Display bool
	Cursor  bool
	Blink   bool
}

func (s DisplayState) bits() byte {
	var b byte
	if s.Display {
		b |= displayOn
	}
	if s.Cursor {
		b |= displayCursor
	}
	if s.Blink {
		b |= displayBlink
	}
	return b
}

// EntryMode governs how the address counter, or the visible window, moves
// after each data write.
type EntryMode struct {
	// ShiftDisplay moves the whole display instead of the cursor.
	ShiftDisplay bool
	// Increment moves to the right. When false, writes move to the left.
	Increment bool
}

func (m EntryMode) bits() byte {
	var b byte
	if m.ShiftDisplay {
		b |= entryShiftDisplay
	}
	if m.Increment {
		b |= entryIncrement
	}
	return b
}

var defaultEntryMode = EntryMode{Increment: true}

func clearDisplay() byte { return cmdClear }

func returnHome() byte { return cmdHome }

func entryModeSet(m EntryMode) byte {
	return cmdEntryMode | m.bits()
}

func displayControl(s DisplayState) byte {
	return cmdDisplayControl | s.bits()
}

// cursorOrDisplayShift moves the cursor, or scrolls the display when display
// is set, one position without touching DDRAM.
func cursorOrDisplayShift(display, right bool) byte {
	b := cmdShift
	if display {
		b |= shiftDisplay
	}
	if right {
		b |= shiftRight
	}
	return b
}

func functionSet(eightBit, twoLines, font5x10 bool) byte {
	b := cmdFunctionSet
	if eightBit {
		b |= fnEightBit
	}
	if twoLines {
		b |= fnTwoLines
	}
	if font5x10 {
		b |= fnFont5x10
	}
	return b
}

func setCGRAMAddress(addr byte) byte {
	return cmdSetCGRAMAddr | (addr & cgramMask)
}

func setDDRAMAddress(addr byte) byte {
	return cmdSetDDRAMAddr | (addr & ddramMask)
}

// ddramAddress returns the address of row, col. Any non-zero row selects the
// second line. col isn't range checked; the sum wraps within the address
// field.
func ddramAddress(row, col int) byte {
	base := row0Address
	if row != 0 {
		base = row1Address
	}
	return base + byte(col)
}

func cgramAddress(slot int) byte {
	return byte(slot) << 3
}
