// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcdsim

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

// Pin is an emulated output. It calls its edge hook after every level
// change.
type Pin struct {
	gpiotest.Pin
	onEdge func(l gpio.Level)
}

func newPin(name string, num int) *Pin {
	return &Pin{Pin: gpiotest.Pin{N: name, Num: num}}
}

// Out implements gpio.PinOut.
func (p *Pin) Out(l gpio.Level) error {
	p.Lock()
	prev := p.L
	p.L = l
	hook := p.onEdge
	p.Unlock()
	if prev != l && hook != nil {
		hook(l)
	}
	return nil
}

// Pins wires a controller to emulated GPIOs: D0-D7, E and RS. In 4-bit mode
// only D4-D7 are used and D0-D3 stay low.
type Pins struct {
	D  [8]*Pin
	E  *Pin
	RS *Pin

	ctrl *Controller
}

// NewPins returns the parallel bus of c.
func NewPins(c *Controller) *Pins {
	p := &Pins{ctrl: c, E: newPin("E", 8), RS: newPin("RS", 9)}
	for i := range p.D {
		p.D[i] = newPin(fmt.Sprintf("D%d", i), i)
	}
	p.E.onEdge = func(l gpio.Level) {
		if l == gpio.Low {
			c.Strobe(bool(p.RS.Read()), p.bus())
		}
	}
	return p
}

func (p *Pins) bus() byte {
	var b byte
	for i, d := range p.D {
		if d.Read() {
			b |= 1 << i
		}
	}
	return b
}

// Data4 returns D4-D7 for a 4-bit wiring.
func (p *Pins) Data4() [4]gpio.PinOut {
	return [4]gpio.PinOut{p.D[4], p.D[5], p.D[6], p.D[7]}
}

// Data8 returns D0-D7 for an 8-bit wiring.
func (p *Pins) Data8() [8]gpio.PinOut {
	var d [8]gpio.PinOut
	for i, pin := range p.D {
		d[i] = pin
	}
	return d
}

// Controller returns the controller behind the pins.
func (p *Pins) Controller() *Controller {
	return p.ctrl
}

// ShiftRegister emulates a 74HC595 whose outputs Q0-Q7 drive D0-D7. DS is
// sampled on the rising edge of SHCP and shifted towards Q7; the rising edge
// of STCP copies the shift stage to the outputs.
type ShiftRegister struct {
	Data  *Pin
	Clock *Pin
	Latch *Pin
	E     *Pin
	RS    *Pin

	ctrl    *Controller
	stage   byte
	outputs byte
}

// NewShiftRegister returns the shift register front end of c.
func NewShiftRegister(c *Controller) *ShiftRegister {
	s := &ShiftRegister{
		ctrl:  c,
		Data:  newPin("DS", 0),
		Clock: newPin("SHCP", 1),
		Latch: newPin("STCP", 2),
		E:     newPin("E", 3),
		RS:    newPin("RS", 4),
	}
	s.Clock.onEdge = func(l gpio.Level) {
		if l == gpio.High {
			s.stage <<= 1
			if s.Data.Read() {
				s.stage |= 1
			}
		}
	}
	s.Latch.onEdge = func(l gpio.Level) {
		if l == gpio.High {
			s.outputs = s.stage
		}
	}
	s.E.onEdge = func(l gpio.Level) {
		if l == gpio.Low {
			c.Strobe(bool(s.RS.Read()), s.outputs)
		}
	}
	return s
}

// Outputs returns Q0-Q7.
func (s *ShiftRegister) Outputs() byte {
	return s.outputs
}

// Controller returns the controller behind the register.
func (s *ShiftRegister) Controller() *Controller {
	return s.ctrl
}

var _ gpio.PinOut = &Pin{}
