// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package pcf857x drives the TI/NXP PCF857x I²C I/O expanders as output
// ports. The PCF8574 has 8 quasi-bidirectional pins and the PCF8575 has 16.
// These chips are the usual glue on the LCD1602/LCD2004 "I²C backpacks".
//
// The chip has no registers. Every write sets all of the pins at once: one
// byte for the PCF8574, two (low byte first) for the PCF8575. Several pin
// states can be sent back to back in a single I²C transaction with Write,
// which is how HD44780 backpacks encode an enable strobe without extra bus
// traffic.
//
// # Datasheet
//
// https://www.ti.com/lit/ds/symlink/pcf8574.pdf
//
// A good description of the I2C LCD backpack usage can be found here:
//
// https://www.handsontec.com/dataspecs/I2C_2004_LCD.pdf
package pcf857x

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
)

// Variant represents the actual chip model.
type Variant string

const (
	PCF8574 Variant = "PCF8574"
	PCF8575 Variant = "PCF8575"

	// DefaultAddress is the address with A0-A2 tied low.
	DefaultAddress uint16 = 0x20
)

var (
	ErrNotImplemented = errors.New("pcf857x: not implemented")
	ErrUnknownVariant = errors.New("pcf857x: unknown variant")
)

// Dev is a PCF857x device.
type Dev struct {
	// Pins exposed by the device, 8 for the PCF8574 and 16 for the PCF8575.
	Pins []gpio.PinOut

	chip  Variant
	width int
	mask  gpio.GPIOValue

	mu    sync.Mutex
	d     *i2c.Dev
	value gpio.GPIOValue
	fresh bool
}

// New returns a PCF857x at address on bus. No I/O happens until the first
// write.
func New(bus i2c.Bus, address uint16, chip Variant) (*Dev, error) {
	var width int
	switch chip {
	case PCF8574:
		width = 8
	case PCF8575:
		width = 16
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownVariant, chip)
	}
	dev := &Dev{
		d:     &i2c.Dev{Bus: bus, Addr: address},
		chip:  chip,
		width: width,
		mask:  gpio.GPIOValue(1<<width) - 1,
		fresh: true,
	}
	dev.Pins = make([]gpio.PinOut, width)
	for ix := range width {
		dev.Pins[ix] = &Pin{dev: dev, number: ix, name: fmt.Sprintf("%s_GPIO%d", dev, ix)}
	}
	return dev, nil
}

// Out sets the pins selected by mask to the matching bits of value. The
// other pins keep their last written level. Nothing is sent if the port
// already holds the result.
func (dev *Dev) Out(value, mask gpio.GPIOValue) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	mask &= dev.mask
	next := (dev.value &^ mask) | (value & mask)
	if next == dev.value && !dev.fresh {
		return nil
	}
	return dev.tx(next)
}

// Write sends every value in frames, in order, within one I²C transaction.
// Each frame replaces the state of all pins.
func (dev *Dev) Write(frames ...gpio.GPIOValue) error {
	if len(frames) == 0 {
		return nil
	}
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.tx(frames...)
}

// Value returns the last state written to the pins.
func (dev *Dev) Value() gpio.GPIOValue {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.value
}

// tx must be called with dev.mu held.
func (dev *Dev) tx(frames ...gpio.GPIOValue) error {
	n := dev.width / 8
	w := make([]byte, 0, n*len(frames))
	for _, f := range frames {
		f &= dev.mask
		for ix := range n {
			w = append(w, byte(f>>(ix*8)))
		}
	}
	if err := dev.d.Tx(w, nil); err != nil {
		return fmt.Errorf("pcf857x: %w", err)
	}
	dev.value = frames[len(frames)-1] & dev.mask
	dev.fresh = false
	return nil
}

// Halt releases the pins. The port keeps its last state.
func (dev *Dev) Halt() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	dev.Pins = nil
	return nil
}

func (dev *Dev) String() string {
	return fmt.Sprintf("%s_%x", dev.chip, dev.d.Addr)
}
