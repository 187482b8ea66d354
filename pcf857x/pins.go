// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pcf857x

import (
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// Pin is a single output of the expander.
type Pin struct {
	dev    *Dev
	number int
	name   string
}

func (pin *Pin) Function() string {
	return "Out"
}

func (pin *Pin) Halt() error {
	return nil
}

func (pin *Pin) Name() string {
	return pin.name
}

func (pin *Pin) Number() int {
	return pin.number
}

// Out drives the pin. A Low pulls the line to ground, a High releases it to
// the weak pull-up.
func (pin *Pin) Out(l gpio.Level) error {
	mask := gpio.GPIOValue(1) << pin.number
	var value gpio.GPIOValue
	if l {
		value = mask
	}
	return pin.dev.Out(value, mask)
}

func (pin *Pin) PWM(duty gpio.Duty, f physic.Frequency) error {
	return ErrNotImplemented
}

func (pin *Pin) String() string {
	return pin.name
}

var _ gpio.PinOut = &Pin{}
