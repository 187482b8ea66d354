// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"github.com/GermanBionicSystems/charlcd/nxp74hc595"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/spi"
)

// 74HC595 outputs on the SPI side of the Adafruit I2C/SPI backpack.
const (
	afRS        = 1
	afEnable    = 2
	afD4        = 6
	afD5        = 5
	afD6        = 4
	afD7        = 3
	afBacklight = 7
)

// This function returns a display configured to use the common PCF8574 i2c
// backpacks sold with LCD1602 and LCD2004 modules.
//
// # Product Information
//
// https://www.handsontec.com/dataspecs/I2C_2004_LCD.pdf
func NewPCF857xBackpack(bus i2c.Bus, address uint16, rows, cols int) (*Dev, error) {
	return NewI2C(bus, address, &Opts{Rows: rows, Cols: cols})
}

// This function returns a display configured to use the SPI side of the
// Adafruit I2C/SPI backpack. The SPI side uses a 74HC595 whose outputs drive
// the display in 4-bit mode, so every pin change is one SPI write.
//
// # Product Information
//
// https://www.adafruit.com/product/292
func NewAdafruitSPIBackpack(conn spi.Conn, rows, cols int) (*Dev, error) {
	chip, err := nxp74hc595.New(conn)
	if err != nil {
		return nil, err
	}
	p := chip.Pins
	if err := p[afBacklight].Out(gpio.High); err != nil {
		return nil, wrap(err)
	}
	return NewParallel4([4]gpio.PinOut{p[afD4], p[afD5], p[afD6], p[afD7]}, p[afEnable], p[afRS],
		&Opts{Rows: rows, Cols: cols})
}
