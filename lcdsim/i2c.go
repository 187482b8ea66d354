// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcdsim

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// PCF8574 backpack output assignment.
const (
	bpRS        = 1 << 0
	bpRW        = 1 << 1
	bpEnable    = 1 << 2
	bpBacklight = 1 << 3
)

// I2CBus emulates an I²C bus with a single PCF8574 LCD backpack on it. Each
// written byte sets the expander outputs; a falling edge on P2 strobes
// P4-P7 into the controller as D4-D7.
type I2CBus struct {
	ctrl *Controller
	addr uint16

	mu     sync.Mutex
	output byte
	writes [][]byte
}

// NewI2CBus returns a bus with the backpack of c at addr.
func NewI2CBus(c *Controller, addr uint16) *I2CBus {
	return &I2CBus{ctrl: c, addr: addr}
}

func (b *I2CBus) String() string {
	return fmt.Sprintf("lcdsim.I2CBus(0x%02x)", b.addr)
}

// Tx implements i2c.Bus. Reads return the output latch, as the quasi
// bidirectional PCF8574 pins do when nothing pulls them low.
func (b *I2CBus) Tx(addr uint16, w, r []byte) error {
	if addr != b.addr {
		return fmt.Errorf("lcdsim: no device at 0x%02x", addr)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(w) > 0 {
		b.writes = append(b.writes, append([]byte(nil), w...))
	}
	for _, v := range w {
		if b.output&bpEnable != 0 && v&bpEnable == 0 && v&bpRW == 0 {
			b.ctrl.Strobe(v&bpRS != 0, v&0xf0)
		}
		b.output = v
	}
	for i := range r {
		r[i] = b.output
	}
	return nil
}

// SetSpeed implements i2c.Bus.
func (b *I2CBus) SetSpeed(f physic.Frequency) error {
	return nil
}

// Backlight reports P3.
func (b *I2CBus) Backlight() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.output&bpBacklight != 0
}

// Output returns the last byte written to the expander.
func (b *I2CBus) Output() byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.output
}

// Writes returns the payload of every write transaction, in order.
func (b *I2CBus) Writes() [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([][]byte(nil), b.writes...)
}

// Controller returns the controller behind the backpack.
func (b *I2CBus) Controller() *Controller {
	return b.ctrl
}

var _ i2c.Bus = &I2CBus{}
