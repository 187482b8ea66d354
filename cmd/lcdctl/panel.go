// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/GermanBionicSystems/charlcd/hd44780"
	"github.com/GermanBionicSystems/charlcd/internal/config"
	"github.com/GermanBionicSystems/charlcd/lcdsim"
	"github.com/jonboulle/clockwork"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// panel is an opened display, either on hardware or on the simulator.
type panel struct {
	dev *hd44780.Dev

	// Simulator only.
	ctrl      *lcdsim.Controller
	term      *lcdsim.Terminal
	backlight func() bool

	closers []func() error
}

func (p *panel) close() error {
	var first error
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// refreshLoop redraws the terminal every interval until done is closed, then
// draws the final frame.
func (p *panel) refreshLoop(ctx context.Context, clock clockwork.Clock, interval time.Duration, done <-chan struct{}) error {
	t := clock.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-done:
			return p.term.Refresh()
		case <-t.Chan():
			if err := p.term.Refresh(); err != nil {
				return err
			}
		}
	}
}

func openPanel(cfg *config.Config, log *slog.Logger, stdout io.Writer) (*panel, error) {
	opts := &hd44780.Opts{
		Rows:     cfg.Display.Rows,
		Cols:     cfg.Display.Cols,
		Font5x10: cfg.Display.Font5x10,
		Logger:   log,
	}
	if cfg.Simulator.Enabled {
		return openSimulator(cfg, opts, stdout)
	}
	t := cfg.Timing.HD44780Timing()
	opts.Timing = &t
	return openHardware(cfg, opts)
}

// openSimulator attaches the display to an emulated controller through the
// front end matching the configured transport. The emulation answers
// instantly so no delays are inserted.
func openSimulator(cfg *config.Config, opts *hd44780.Opts, stdout io.Writer) (*panel, error) {
	opts.Timing = &hd44780.Timing{}
	p := &panel{ctrl: lcdsim.NewController(), backlight: func() bool { return true }}
	var err error
	switch cfg.Display.Transport {
	case config.Parallel4:
		pins := lcdsim.NewPins(p.ctrl)
		p.dev, err = hd44780.NewParallel4(pins.Data4(), pins.E, pins.RS, opts)
	case config.Parallel8:
		pins := lcdsim.NewPins(p.ctrl)
		p.dev, err = hd44780.NewParallel8(pins.Data8(), pins.E, pins.RS, opts)
	case config.Serial:
		sr := lcdsim.NewShiftRegister(p.ctrl)
		p.dev, err = hd44780.NewSerial(sr.Data, sr.Clock, sr.Latch, sr.E, sr.RS, opts)
	case config.I2C:
		bus := lcdsim.NewI2CBus(p.ctrl, cfg.I2C.Address)
		p.backlight = bus.Backlight
		p.dev, err = hd44780.NewI2C(bus, cfg.I2C.Address, opts)
	default:
		return nil, fmt.Errorf("unknown transport %q", cfg.Display.Transport)
	}
	if err != nil {
		return nil, err
	}
	if cfg.Simulator.Terminal {
		p.term = lcdsim.NewTerminal(p.ctrl, p.backlight, &lcdsim.TerminalOpts{
			Rows: cfg.Display.Rows,
			Cols: cfg.Display.Cols,
			W:    stdout,
		})
		p.closers = append(p.closers, p.term.Halt)
	}
	return p, nil
}

func openHardware(cfg *config.Config, opts *hd44780.Opts) (*panel, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	p := &panel{}
	if cfg.Display.Transport == config.I2C {
		bus, err := i2creg.Open(cfg.I2C.Bus)
		if err != nil {
			return nil, err
		}
		p.closers = append(p.closers, bus.Close)
		if p.dev, err = hd44780.NewI2C(bus, cfg.I2C.Address, opts); err != nil {
			_ = p.close()
			return nil, err
		}
		return p, nil
	}

	e, err := pinByName("pins.enable", cfg.Pins.Enable)
	if err != nil {
		return nil, err
	}
	rs, err := pinByName("pins.rs", cfg.Pins.RS)
	if err != nil {
		return nil, err
	}
	switch cfg.Display.Transport {
	case config.Parallel4:
		var data [4]gpio.PinOut
		for i := range data {
			if data[i], err = pinByName(fmt.Sprintf("pins.data[%d]", i), cfg.Pins.Data[i]); err != nil {
				return nil, err
			}
		}
		p.dev, err = hd44780.NewParallel4(data, e, rs, opts)
	case config.Parallel8:
		var data [8]gpio.PinOut
		for i := range data {
			if data[i], err = pinByName(fmt.Sprintf("pins.data[%d]", i), cfg.Pins.Data[i]); err != nil {
				return nil, err
			}
		}
		p.dev, err = hd44780.NewParallel8(data, e, rs, opts)
	case config.Serial:
		var ds, shcp, stcp gpio.PinOut
		if ds, err = pinByName("pins.serial", cfg.Pins.Serial); err != nil {
			return nil, err
		}
		if shcp, err = pinByName("pins.clock", cfg.Pins.Clock); err != nil {
			return nil, err
		}
		if stcp, err = pinByName("pins.latch", cfg.Pins.Latch); err != nil {
			return nil, err
		}
		p.dev, err = hd44780.NewSerial(ds, shcp, stcp, e, rs, opts)
	default:
		return nil, fmt.Errorf("unknown transport %q", cfg.Display.Transport)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func pinByName(key, name string) (gpio.PinOut, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("%s: no GPIO named %q", key, name)
	}
	return pin, nil
}
