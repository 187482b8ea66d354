// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package nxp74hc595

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// Pin is output Qn of the register. Setting it shifts the whole byte again
// with the other outputs unchanged.
type Pin struct {
	dev *Dev
	q   uint8
}

func (p *Pin) String() string {
	return p.Name()
}

// Name returns "74HC595_Qn".
func (p *Pin) Name() string {
	return fmt.Sprintf("%s_Q%d", devName, p.q)
}

func (p *Pin) Number() int {
	return int(p.q)
}

// Function implements pin.Pin.
func (p *Pin) Function() string {
	return "Out/" + p.Read().String()
}

// Halt is a no-op; the output keeps its level.
func (p *Pin) Halt() error {
	return nil
}

// Read returns the level last latched on the output.
func (p *Pin) Read() gpio.Level {
	return gpio.Level(p.dev.Value()&p.mask() != 0)
}

func (p *Pin) Out(l gpio.Level) error {
	var v byte
	if l {
		v = p.mask()
	}
	return p.dev.write(v, p.mask())
}

// PWM isn't supported by the register.
func (p *Pin) PWM(duty gpio.Duty, f physic.Frequency) error {
	return fmt.Errorf("%s: %w", p.Name(), ErrNotImplemented)
}

func (p *Pin) mask() byte {
	return 1 << p.q
}

var _ gpio.PinOut = &Pin{}
