// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// The 74HC595 is a serial shift register. It converts a serial stream to a
// parallel output. It can be fed by an SPI port, with the storage register
// clock (latch) wired to chip select, or bit-banged over three GPIO pins.
//
// # Datasheet
//
// https://www.nexperia.com/product/74HC595D
//
// There's a nice tutorial on the device here:
//
// https://docs.arduino.cc/tutorials/communication/guide-to-shift-out/
package nxp74hc595

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/spi"
)

const (
	devName = "74HC595"
	numPins = 8
)

var (
	ErrNotImplemented = errors.New("nxp74hc595: not implemented")
)

// Dev represents a 74HC595 device.
type Dev struct {
	// Pins are the parallel outputs Q0-Q7.
	Pins []gpio.PinOut

	mu      sync.Mutex
	out     shifter
	value   byte
	written bool
}

type shifter interface {
	shift(b byte) error
	String() string
}

// New returns a 74HC595 fed by an SPI connection. The connection must be set
// up MSB first so that Q7 receives bit 7.
func New(conn spi.Conn) (*Dev, error) {
	if conn == nil {
		return nil, errors.New("nxp74hc595: nil spi.Conn")
	}
	return newDev(&spiShifter{conn: conn}), nil
}

// NewGPIO returns a 74HC595 driven through its serial data (DS), shift clock
// (SHCP) and storage clock (STCP) inputs.
func NewGPIO(data, clock, latch gpio.PinOut) (*Dev, error) {
	if data == nil || clock == nil || latch == nil {
		return nil, errors.New("nxp74hc595: data, clock and latch pins are required")
	}
	return newDev(&gpioShifter{data: data, clock: clock, latch: latch}), nil
}

func newDev(out shifter) *Dev {
	dev := &Dev{out: out, Pins: make([]gpio.PinOut, numPins)}
	for ix := range numPins {
		dev.Pins[ix] = &Pin{dev: dev, q: uint8(ix)}
	}
	return dev
}

// Shift clocks b into the register and latches it onto the outputs. Unlike
// writes through Pins, it always reaches the device.
func (dev *Dev) Shift(b byte) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.shiftLocked(b)
}

// Value returns the byte currently presented on Q0-Q7.
func (dev *Dev) Value() byte {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.value
}

// write updates the outputs selected by mask. It's skipped when the outputs
// already hold the result.
func (dev *Dev) write(value, mask byte) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	next := (dev.value &^ mask) | (value & mask)
	if dev.written && next == dev.value {
		return nil
	}
	return dev.shiftLocked(next)
}

func (dev *Dev) shiftLocked(b byte) error {
	if dev.out == nil {
		return errors.New("nxp74hc595: device halted")
	}
	if err := dev.out.shift(b); err != nil {
		return fmt.Errorf("nxp74hc595: %w", err)
	}
	dev.value = b
	dev.written = true
	return nil
}

// Halt disables the device.
func (dev *Dev) Halt() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	dev.Pins = nil
	dev.out = nil
	return nil
}

func (dev *Dev) String() string {
	if dev.out == nil {
		return devName
	}
	return devName + "{" + dev.out.String() + "}"
}

type spiShifter struct {
	conn spi.Conn
}

func (s *spiShifter) shift(b byte) error {
	return s.conn.Tx([]byte{b}, nil)
}

func (s *spiShifter) String() string {
	return s.conn.String()
}

type gpioShifter struct {
	data  gpio.PinOut
	clock gpio.PinOut
	latch gpio.PinOut
}

// shift sends b MSB first, one SHCP pulse per bit, then pulses STCP. The part
// is fast enough that no delay is needed between edges.
func (s *gpioShifter) shift(b byte) error {
	for bit := 7; bit >= 0; bit-- {
		if err := s.data.Out(gpio.Level(b>>bit&1 == 1)); err != nil {
			return err
		}
		if err := s.clock.Out(gpio.High); err != nil {
			return err
		}
		if err := s.clock.Out(gpio.Low); err != nil {
			return err
		}
	}
	if err := s.latch.Out(gpio.High); err != nil {
		return err
	}
	return s.latch.Out(gpio.Low)
}

func (s *gpioShifter) String() string {
	return fmt.Sprintf("DS=%s SHCP=%s STCP=%s", s.data, s.clock, s.latch)
}
