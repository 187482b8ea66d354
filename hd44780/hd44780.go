// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hd44780 controls the Hitachi HD44780 LCD controller and its many
// clones (KS0066, SPLC780, ST7066) found on 16x2 and 20x2 character modules.
//
// The controller can be wired four ways and this package supports all of
// them behind the same Dev:
//
//   - 4-bit parallel: D4-D7, E and RS on host GPIOs.
//   - 8-bit parallel: D0-D7, E and RS on host GPIOs.
//   - Shift register: a 74HC595 fed over data/clock/latch GPIOs drives
//     D0-D7, with E and RS on host GPIOs.
//   - I²C: a PCF8574 backpack in 4-bit mode, with the backlight on P3.
//
// The R/W line is never used. The busy flag isn't read; every step waits a
// fixed, conservative delay instead. Delays go through a Sleeper so tests can
// run against a virtual clock.
//
// # Datasheet
//
// https://www.sparkfun.com/datasheets/LCD/HD44780.pdf
package hd44780

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
)

const packageName = "hd44780"

var (
	// ErrNotImplemented is returned by operations the controller can't do.
	ErrNotImplemented = fmt.Errorf("%s: %w", packageName, display.ErrNotImplemented)
	// ErrNotReady is returned when a Dev that wasn't created by one of the
	// constructors is used.
	ErrNotReady = errors.New("hd44780: controller not initialized")
	// ErrOutOfRange is returned by MoveTo for positions outside the display.
	ErrOutOfRange = errors.New("hd44780: position out of range")
)

func wrap(err error) error {
	if err == nil || strings.HasPrefix(err.Error(), packageName) {
		return err
	}
	return fmt.Errorf("%s: %w", packageName, err)
}

type state int

const (
	stateUninitialized state = iota
	stateInitializing
	stateReady
	// stateResync means a 4-bit transfer was cut after its first nibble. The
	// controller is waiting for the other half, so it's initialized again
	// before the next instruction or data byte.
	stateResync
)

// Timing holds the fixed delays used in place of busy flag polling.
type Timing struct {
	// PowerOn is the wait for Vcc to stabilize before the first instruction.
	PowerOn time.Duration
	// Attention follows each of the three 8-bit function set writes that
	// bring the controller to a known state.
	Attention [3]time.Duration
	// Settle follows every instruction.
	Settle time.Duration
	// EnableHold is held before and after the falling edge of E on the GPIO
	// driven transports.
	EnableHold time.Duration
}

// DefaultTiming is conservative enough for every clone and for Clear and Home,
// the slowest instructions.
var DefaultTiming = Timing{
	PowerOn:    50 * time.Millisecond,
	Attention:  [3]time.Duration{5 * time.Millisecond, 5 * time.Millisecond, 2 * time.Millisecond},
	Settle:     2 * time.Millisecond,
	EnableHold: time.Millisecond,
}

// Opts holds the display geometry and the runtime hooks.
type Opts struct {
	// Rows is 1 or 2. Default: 2.
	Rows int
	// Cols is the visible width, at most 40. Default: 16.
	Cols int
	// Font5x10 selects the 5x10 dot font. Only valid with a single row.
	Font5x10 bool
	// Timing overrides DefaultTiming.
	Timing *Timing
	// Sleeper performs the delays. Default: clockwork.NewRealClock().
	Sleeper Sleeper
	// Logger receives a Debug record for every instruction and data byte.
	Logger *slog.Logger
}

func (o *Opts) withDefaults() (Opts, error) {
	var r Opts
	if o != nil {
		r = *o
	}
	if r.Rows == 0 {
		r.Rows = 2
	}
	if r.Cols == 0 {
		r.Cols = 16
	}
	if r.Rows < 1 || r.Rows > 2 {
		return r, fmt.Errorf("hd44780: rows must be 1 or 2, got %d", r.Rows)
	}
	if r.Cols < 1 || r.Cols > LineWidth {
		return r, fmt.Errorf("hd44780: cols must be between 1 and %d, got %d", LineWidth, r.Cols)
	}
	if r.Font5x10 && r.Rows > 1 {
		return r, errors.New("hd44780: the 5x10 font is only available on single row displays")
	}
	if r.Timing == nil {
		t := DefaultTiming
		r.Timing = &t
	}
	if r.Sleeper == nil {
		r.Sleeper = clockwork.NewRealClock()
	}
	if r.Logger == nil {
		r.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r, nil
}

// Dev is an HD44780 display on one Transport.
//
// Dev isn't safe for concurrent use, and the pins or bus behind the
// transport must not be shared with anything else.
type Dev struct {
	bus      Transport
	rows     int
	cols     int
	font5x10 bool
	timing   Timing
	clock    Sleeper
	log      *slog.Logger

	state   state
	display DisplayState
	entry   EntryMode
}

// New initializes the controller behind t and returns it ready for use. opts
// may be nil.
func New(t Transport, opts *Opts) (*Dev, error) {
	if t == nil {
		return nil, errors.New("hd44780: nil transport")
	}
	o, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	t.setTiming(o.Sleeper, o.Timing.EnableHold)
	dev := &Dev{
		bus:      t,
		rows:     o.Rows,
		cols:     o.Cols,
		font5x10: o.Font5x10,
		timing:   *o.Timing,
		clock:    o.Sleeper,
		log:      o.Logger.With("device", packageName),
	}
	if err := dev.init(); err != nil {
		return nil, err
	}
	return dev, nil
}

// NewParallel4 returns a display wired in 4-bit mode. data holds D4-D7.
func NewParallel4(data [4]gpio.PinOut, e, rs gpio.PinOut, opts *Opts) (*Dev, error) {
	t, err := NewParallelHalf(data, e, rs)
	if err != nil {
		return nil, err
	}
	return New(t, opts)
}

// NewParallel8 returns a display wired in 8-bit mode. data holds D0-D7.
func NewParallel8(data [8]gpio.PinOut, e, rs gpio.PinOut, opts *Opts) (*Dev, error) {
	t, err := NewParallelFull(data, e, rs)
	if err != nil {
		return nil, err
	}
	return New(t, opts)
}

// NewSerial returns a display whose data lines are driven by a 74HC595
// serial-in parallel-out shift register.
func NewSerial(data, clock, latch, e, rs gpio.PinOut, opts *Opts) (*Dev, error) {
	t, err := NewShiftRegister(data, clock, latch, e, rs)
	if err != nil {
		return nil, err
	}
	return New(t, opts)
}

// NewI2C returns a display behind a PCF8574 backpack at addr. Use
// DefaultI2CAddress for the common 0x27 boards.
func NewI2C(bus i2c.Bus, addr uint16, opts *Opts) (*Dev, error) {
	t, err := NewI2CExpander(bus, addr)
	if err != nil {
		return nil, err
	}
	return New(t, opts)
}

// init runs the "initializing by instruction" sequence from the datasheet.
// The controller may power up in either interface width, so it's forced into
// 8-bit mode three times before the real function set.
func (dev *Dev) init() error {
	dev.state = stateInitializing
	dev.log.Debug("initializing", "transport", dev.bus.String())
	dev.clock.Sleep(dev.timing.PowerOn)

	attention := functionSet(true, false, false)
	for _, d := range dev.timing.Attention {
		if err := dev.bus.writeInit(attention); err != nil {
			dev.state = stateUninitialized
			return wrap(err)
		}
		dev.clock.Sleep(d)
	}
	eightBit := dev.bus.interfaceMode() == mode8Bit
	if !eightBit {
		if err := dev.bus.writeInit(functionSet(false, false, false)); err != nil {
			dev.state = stateUninitialized
			return wrap(err)
		}
		dev.clock.Sleep(dev.timing.Settle)
	}

	err := dev.command(functionSet(eightBit, dev.rows > 1, dev.font5x10))
	if err == nil {
		err = dev.setDisplayState(DisplayState{})
	}
	if err == nil {
		err = dev.command(clearDisplay())
	}
	if err == nil {
		err = dev.setEntryMode(defaultEntryMode)
	}
	if err == nil {
		err = dev.setDisplayState(DisplayState{Display: true})
	}
	if err != nil {
		dev.state = stateUninitialized
		return err
	}
	dev.state = stateReady
	dev.log.Debug("ready")
	return nil
}

// command sends one instruction and waits for it to complete.
func (dev *Dev) command(instr byte) error {
	if err := dev.ready(); err != nil {
		return err
	}
	if err := dev.bus.write(instr, modeCommand); err != nil {
		dev.interrupted()
		return wrap(err)
	}
	dev.log.Debug("instruction", "value", fmt.Sprintf("0x%02x", instr))
	dev.clock.Sleep(dev.timing.Settle)
	return nil
}

// ready resynchronizes the controller when a previous transfer was cut.
func (dev *Dev) ready() error {
	switch dev.state {
	case stateUninitialized:
		return ErrNotReady
	case stateResync:
		return dev.resync()
	}
	return nil
}

// interrupted records a failed write. On a 4-bit bus the first nibble may
// have been latched already.
func (dev *Dev) interrupted() {
	if dev.bus.interfaceMode() == mode4Bit {
		dev.state = stateResync
	}
}

// resync runs the init sequence again and restores the display control and
// entry mode. DDRAM is cleared by the init sequence; CGRAM is kept.
func (dev *Dev) resync() error {
	display, entry := dev.display, dev.entry
	dev.log.Warn("resynchronizing after an interrupted transfer")
	if err := dev.init(); err != nil {
		dev.state = stateResync
		return err
	}
	if err := dev.setEntryMode(entry); err != nil {
		return err
	}
	return dev.setDisplayState(display)
}

func (dev *Dev) setDisplayState(s DisplayState) error {
	if err := dev.command(displayControl(s)); err != nil {
		return err
	}
	dev.display = s
	return nil
}

func (dev *Dev) setEntryMode(m EntryMode) error {
	if err := dev.command(entryModeSet(m)); err != nil {
		return err
	}
	dev.entry = m
	return nil
}

// SendInstruction sends a raw instruction byte. The display state and entry
// mode tracked by Dev aren't updated.
func (dev *Dev) SendInstruction(instr byte) error {
	return dev.command(instr)
}

// SendData writes one byte at the current address, DDRAM or CGRAM, which
// then moves as set by the entry mode.
func (dev *Dev) SendData(b byte) error {
	if err := dev.ready(); err != nil {
		return err
	}
	if err := dev.bus.write(b, modeData); err != nil {
		dev.interrupted()
		return wrap(err)
	}
	dev.log.Debug("data", "value", fmt.Sprintf("0x%02x", b))
	return nil
}

// Write sends p one byte at a time, in order. It stops at the first error.
func (dev *Dev) Write(p []byte) (n int, err error) {
	for _, b := range p {
		if err = dev.SendData(b); err != nil {
			return
		}
		n++
	}
	return
}

// WriteString writes the bytes of text. No character set conversion is done.
func (dev *Dev) WriteString(text string) (int, error) {
	return dev.Write([]byte(text))
}

// Clear blanks DDRAM and moves the cursor home. The entry mode direction is
// set to increment by the controller, which Dev doesn't track.
func (dev *Dev) Clear() error {
	return dev.command(clearDisplay())
}

// Home moves the cursor to the first position and undoes any display shift.
func (dev *Dev) Home() error {
	return dev.command(returnHome())
}

// SetCursor moves the address counter to row, col, both zero based. Any
// non-zero row selects the second line. col isn't range checked: columns past
// the visible width address the hidden part of the line.
func (dev *Dev) SetCursor(row, col int) error {
	return dev.command(setDDRAMAddress(ddramAddress(row, col)))
}

func (dev *Dev) EnableDisplay() error {
	s := dev.display
	s.Display = true
	return dev.setDisplayState(s)
}

func (dev *Dev) DisableDisplay() error {
	s := dev.display
	s.Display = false
	return dev.setDisplayState(s)
}

func (dev *Dev) ToggleDisplay() error {
	s := dev.display
	s.Display = !s.Display
	return dev.setDisplayState(s)
}

// EnableCursor shows the underline cursor.
func (dev *Dev) EnableCursor() error {
	s := dev.display
	s.Cursor = true
	return dev.setDisplayState(s)
}

func (dev *Dev) DisableCursor() error {
	s := dev.display
	s.Cursor = false
	return dev.setDisplayState(s)
}

func (dev *Dev) ToggleCursor() error {
	s := dev.display
	s.Cursor = !s.Cursor
	return dev.setDisplayState(s)
}

// EnableBlink turns on the blinking block cursor.
func (dev *Dev) EnableBlink() error {
	s := dev.display
	s.Blink = true
	return dev.setDisplayState(s)
}

func (dev *Dev) DisableBlink() error {
	s := dev.display
	s.Blink = false
	return dev.setDisplayState(s)
}

func (dev *Dev) ToggleBlink() error {
	s := dev.display
	s.Blink = !s.Blink
	return dev.setDisplayState(s)
}

// SetCursorAutoIncrement moves the cursor right after each write.
func (dev *Dev) SetCursorAutoIncrement() error {
	return dev.setEntryMode(EntryMode{Increment: true})
}

// SetCursorAutoDecrement moves the cursor left after each write.
func (dev *Dev) SetCursorAutoDecrement() error {
	return dev.setEntryMode(EntryMode{})
}

// SetDisplayAutoIncrement shifts the display after each write, with the
// direction bit cleared (entry mode 0x05).
//
// The direction bit is paired the opposite way of the name. This matches the
// behavior of the boards this driver was validated on and is kept until it's
// checked against the datasheet.
func (dev *Dev) SetDisplayAutoIncrement() error {
	return dev.setEntryMode(EntryMode{ShiftDisplay: true})
}

// SetDisplayAutoDecrement shifts the display after each write, with the
// direction bit set (entry mode 0x07). See SetDisplayAutoIncrement.
func (dev *Dev) SetDisplayAutoDecrement() error {
	return dev.setEntryMode(EntryMode{ShiftDisplay: true, Increment: true})
}

// MoveCursorLeft moves the cursor one position without changing DDRAM.
func (dev *Dev) MoveCursorLeft() error {
	return dev.command(cursorOrDisplayShift(false, false))
}

func (dev *Dev) MoveCursorRight() error {
	return dev.command(cursorOrDisplayShift(false, true))
}

// ScrollDisplayLeft shifts every line of the visible window one position.
func (dev *Dev) ScrollDisplayLeft() error {
	return dev.command(cursorOrDisplayShift(true, false))
}

func (dev *Dev) ScrollDisplayRight() error {
	return dev.command(cursorOrDisplayShift(true, true))
}

// CreateChar stores glyph in CGRAM slot 0-7. Each byte is one row, top
// first, using the low 5 bits. Write byte(slot) to show it.
//
// The address counter is left pointing into CGRAM. Call SetCursor, Home or
// MoveTo before writing text again, or the text overwrites glyph memory.
func (dev *Dev) CreateChar(slot int, glyph [8]byte) error {
	if err := dev.command(setCGRAMAddress(cgramAddress(slot))); err != nil {
		return err
	}
	_, err := dev.Write(glyph[:])
	return err
}

// EnableBacklight turns the backlight on. It only has an effect on the I²C
// transport.
func (dev *Dev) EnableBacklight() error {
	return dev.setBacklight(func(bool) bool { return true })
}

func (dev *Dev) DisableBacklight() error {
	return dev.setBacklight(func(bool) bool { return false })
}

func (dev *Dev) ToggleBacklight() error {
	return dev.setBacklight(func(on bool) bool { return !on })
}

func (dev *Dev) setBacklight(next func(on bool) bool) error {
	if dev.state == stateUninitialized {
		return ErrNotReady
	}
	x, ok := dev.bus.(*I2CExpander)
	if !ok {
		return nil
	}
	on := next(x.Backlight())
	if err := x.setBacklight(on); err != nil {
		return wrap(err)
	}
	dev.log.Debug("backlight", "on", on)
	return nil
}

// State returns the flags of the last display control instruction sent.
func (dev *Dev) State() DisplayState {
	return dev.display
}

// Entry returns the entry mode last sent.
func (dev *Dev) Entry() EntryMode {
	return dev.entry
}

// Transport returns the bus the display is on.
func (dev *Dev) Transport() Transport {
	return dev.bus
}

// Halt clears the display, turns it and the backlight off, and leaves E low.
func (dev *Dev) Halt() error {
	if dev.bus == nil {
		return ErrNotReady
	}
	_ = dev.Clear()
	_ = dev.DisableDisplay()
	_ = dev.DisableBacklight()
	return wrap(dev.bus.halt())
}

// Return info about the display.
func (dev *Dev) String() string {
	return fmt.Sprintf("HD44780::%s - Rows: %d, Cols: %d", dev.bus, dev.rows, dev.cols)
}

var _ conn.Resource = &Dev{}
