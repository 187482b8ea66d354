// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"errors"
	"fmt"
	"time"

	"github.com/GermanBionicSystems/charlcd/nxp74hc595"
	"github.com/GermanBionicSystems/charlcd/pcf857x"
	"github.com/jonboulle/clockwork"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
)

type writeMode bool

type ifMode byte

const (
	modeCommand writeMode = false
	modeData    writeMode = true

	mode4Bit ifMode = 0x04
	mode8Bit ifMode = 0x08
)

// I²C backpack control byte layout. The PCF8574 outputs are wired to the
// LCD as P0=RS, P1=R/W, P2=E, P3=backlight, P4-P7=D4-D7.
const (
	i2cRS        = 0
	i2cRW        = 1
	i2cEnable    = 2
	i2cBacklight = 3

	// DefaultI2CAddress is the usual address of PCF8574 backpacks.
	DefaultI2CAddress uint16 = 0x27
)

var errMissingPin = errors.New("hd44780: missing pin")

// Sleeper blocks for a duration. clockwork.Clock implements it.
type Sleeper interface {
	Sleep(d time.Duration)
}

// Transport is the bus between the host and the controller. It's one of
// *ParallelHalf, *ParallelFull, *ShiftRegister or *I2CExpander; other
// implementations can't be created.
type Transport interface {
	fmt.Stringer
	interfaceMode() ifMode
	// write latches one full instruction or data value.
	write(value byte, mode writeMode) error
	// writeInit sends an instruction while the controller may still be in
	// 8-bit mode. Transports wired for 4 bits send only the high nibble.
	writeInit(value byte) error
	setTiming(clock Sleeper, hold time.Duration)
	halt() error
}

// strobe generates the enable pulse shared by the GPIO driven transports.
type strobe struct {
	clock Sleeper
	hold  time.Duration
}

func newStrobe() strobe {
	return strobe{clock: clockwork.NewRealClock(), hold: DefaultTiming.EnableHold}
}

func (s *strobe) setTiming(clock Sleeper, hold time.Duration) {
	s.clock = clock
	s.hold = hold
}

// pulse raises e, holds, drops it and holds again. The controller latches
// the data lines on the falling edge.
func (s *strobe) pulse(e gpio.PinOut) error {
	if err := e.Out(gpio.High); err != nil {
		return err
	}
	s.clock.Sleep(s.hold)
	if err := e.Out(gpio.Low); err != nil {
		return err
	}
	s.clock.Sleep(s.hold)
	return nil
}

func outBits(pins []gpio.PinOut, value byte) error {
	for ix, p := range pins {
		if err := p.Out(gpio.Level(value>>ix&1 == 1)); err != nil {
			return err
		}
	}
	return nil
}

func checkPins(pins ...gpio.PinOut) error {
	for ix, p := range pins {
		if p == nil {
			return fmt.Errorf("%w (#%d)", errMissingPin, ix)
		}
	}
	return nil
}

// ParallelHalf drives the controller over D4-D7 in 4-bit mode. D0-D3 are left
// unconnected.
type ParallelHalf struct {
	// Data holds D4, D5, D6 and D7 in that order.
	Data [4]gpio.PinOut
	E    gpio.PinOut
	RS   gpio.PinOut
	strobe
}

// NewParallelHalf returns a 4-bit parallel transport.
func NewParallelHalf(data [4]gpio.PinOut, e, rs gpio.PinOut) (*ParallelHalf, error) {
	if err := checkPins(append(data[:], e, rs)...); err != nil {
		return nil, err
	}
	return &ParallelHalf{Data: data, E: e, RS: rs, strobe: newStrobe()}, nil
}

func (p *ParallelHalf) interfaceMode() ifMode { return mode4Bit }

// sendNibble presents the low 4 bits of nibble on D4-D7 and strobes E.
func (p *ParallelHalf) sendNibble(nibble byte) error {
	if err := outBits(p.Data[:], nibble); err != nil {
		return err
	}
	return p.pulse(p.E)
}

func (p *ParallelHalf) write(value byte, mode writeMode) error {
	if err := p.RS.Out(gpio.Level(mode)); err != nil {
		return err
	}
	if err := p.sendNibble(value >> 4); err != nil {
		return err
	}
	return p.sendNibble(value & 0x0f)
}

func (p *ParallelHalf) writeInit(value byte) error {
	if err := p.RS.Out(gpio.Level(modeCommand)); err != nil {
		return err
	}
	return p.sendNibble(value >> 4)
}

func (p *ParallelHalf) halt() error {
	return p.E.Out(gpio.Low)
}

func (p *ParallelHalf) String() string {
	return fmt.Sprintf("ParallelHalf{D4-D7=%s,%s,%s,%s E=%s RS=%s}",
		p.Data[0], p.Data[1], p.Data[2], p.Data[3], p.E, p.RS)
}

// ParallelFull drives the controller over D0-D7 in 8-bit mode.
type ParallelFull struct {
	// Data holds D0 through D7.
	Data [8]gpio.PinOut
	E    gpio.PinOut
	RS   gpio.PinOut
	strobe
}

// NewParallelFull returns an 8-bit parallel transport.
func NewParallelFull(data [8]gpio.PinOut, e, rs gpio.PinOut) (*ParallelFull, error) {
	if err := checkPins(append(data[:], e, rs)...); err != nil {
		return nil, err
	}
	return &ParallelFull{Data: data, E: e, RS: rs, strobe: newStrobe()}, nil
}

func (p *ParallelFull) interfaceMode() ifMode { return mode8Bit }

func (p *ParallelFull) sendByte(b byte) error {
	if err := outBits(p.Data[:], b); err != nil {
		return err
	}
	return p.pulse(p.E)
}

func (p *ParallelFull) write(value byte, mode writeMode) error {
	if err := p.RS.Out(gpio.Level(mode)); err != nil {
		return err
	}
	return p.sendByte(value)
}

func (p *ParallelFull) writeInit(value byte) error {
	return p.write(value, modeCommand)
}

func (p *ParallelFull) halt() error {
	return p.E.Out(gpio.Low)
}

func (p *ParallelFull) String() string {
	return fmt.Sprintf("ParallelFull{D0-D7=%s E=%s RS=%s}", p.Data, p.E, p.RS)
}

// ShiftRegister feeds D0-D7 from the outputs of a 74HC595 (Q0=D0 ... Q7=D7).
// E and RS are driven directly by the host.
type ShiftRegister struct {
	SR *nxp74hc595.Dev
	E  gpio.PinOut
	RS gpio.PinOut
	strobe
}

// NewShiftRegister returns a shift register transport using a bit-banged
// 74HC595 on the data, clock and latch pins.
func NewShiftRegister(data, clock, latch, e, rs gpio.PinOut) (*ShiftRegister, error) {
	if err := checkPins(e, rs); err != nil {
		return nil, err
	}
	sr, err := nxp74hc595.NewGPIO(data, clock, latch)
	if err != nil {
		return nil, err
	}
	return &ShiftRegister{SR: sr, E: e, RS: rs, strobe: newStrobe()}, nil
}

// NewShiftRegisterDev returns a shift register transport over an existing
// 74HC595, e.g. one fed by SPI.
func NewShiftRegisterDev(sr *nxp74hc595.Dev, e, rs gpio.PinOut) (*ShiftRegister, error) {
	if sr == nil {
		return nil, fmt.Errorf("%w (shift register)", errMissingPin)
	}
	if err := checkPins(e, rs); err != nil {
		return nil, err
	}
	return &ShiftRegister{SR: sr, E: e, RS: rs, strobe: newStrobe()}, nil
}

func (s *ShiftRegister) interfaceMode() ifMode { return mode8Bit }

// sendShiftedByte shifts b into the register, latches it onto D0-D7 and
// strobes E.
func (s *ShiftRegister) sendShiftedByte(b byte) error {
	if err := s.SR.Shift(b); err != nil {
		return err
	}
	return s.pulse(s.E)
}

func (s *ShiftRegister) write(value byte, mode writeMode) error {
	if err := s.RS.Out(gpio.Level(mode)); err != nil {
		return err
	}
	return s.sendShiftedByte(value)
}

func (s *ShiftRegister) writeInit(value byte) error {
	return s.write(value, modeCommand)
}

func (s *ShiftRegister) halt() error {
	return s.E.Out(gpio.Low)
}

func (s *ShiftRegister) String() string {
	return fmt.Sprintf("ShiftRegister{%s E=%s RS=%s}", s.SR, s.E, s.RS)
}

// I2CExpander drives the controller in 4-bit mode through a PCF8574 I²C
// backpack. Each nibble is one I²C write of three control bytes with E low,
// high, low, so no host side delay is needed; the bus transaction provides
// the timing.
type I2CExpander struct {
	exp       *pcf857x.Dev
	bus       i2c.Bus
	addr      uint16
	backlight bool
}

// NewI2CExpander returns an I²C transport for the backpack at addr. The
// backlight starts on.
func NewI2CExpander(bus i2c.Bus, addr uint16) (*I2CExpander, error) {
	if bus == nil {
		return nil, errors.New("hd44780: nil i2c.Bus")
	}
	exp, err := pcf857x.New(bus, addr, pcf857x.PCF8574)
	if err != nil {
		return nil, err
	}
	return &I2CExpander{exp: exp, bus: bus, addr: addr, backlight: true}, nil
}

func (x *I2CExpander) interfaceMode() ifMode { return mode4Bit }

// Backlight reports the backlight bit sent with every control byte.
func (x *I2CExpander) Backlight() bool {
	return x.backlight
}

// Address returns the 7-bit I²C address of the backpack.
func (x *I2CExpander) Address() uint16 {
	return x.addr
}

func (x *I2CExpander) controlByte(nibble byte, mode writeMode) byte {
	b := (nibble & 0x0f) << 4
	if mode == modeData {
		b |= 1 << i2cRS
	}
	if x.backlight {
		b |= 1 << i2cBacklight
	}
	return b
}

// sendI2CNibble transmits nibble as three control bytes: E low, E high, E
// low. R/W stays low.
func (x *I2CExpander) sendI2CNibble(nibble byte, mode writeMode) error {
	b := gpio.GPIOValue(x.controlByte(nibble, mode))
	return x.exp.Write(b, b|1<<i2cEnable, b)
}

func (x *I2CExpander) write(value byte, mode writeMode) error {
	if err := x.sendI2CNibble(value>>4, mode); err != nil {
		return err
	}
	return x.sendI2CNibble(value&0x0f, mode)
}

func (x *I2CExpander) writeInit(value byte) error {
	return x.sendI2CNibble(value>>4, modeCommand)
}

// setBacklight sends a lone control byte carrying only the backlight bit.
// The bit is kept for all later control bytes.
func (x *I2CExpander) setBacklight(on bool) error {
	var b gpio.GPIOValue
	if on {
		b = 1 << i2cBacklight
	}
	if err := x.exp.Write(b); err != nil {
		return err
	}
	x.backlight = on
	return nil
}

func (x *I2CExpander) setTiming(clock Sleeper, hold time.Duration) {}

func (x *I2CExpander) halt() error {
	return x.exp.Halt()
}

func (x *I2CExpander) String() string {
	return fmt.Sprintf("I2CExpander{%s@0x%02x}", x.bus, x.addr)
}

var (
	_ Transport = &ParallelHalf{}
	_ Transport = &ParallelFull{}
	_ Transport = &ShiftRegister{}
	_ Transport = &I2CExpander{}
)
