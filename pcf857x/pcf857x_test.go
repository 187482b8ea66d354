// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pcf857x

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

func getDev(t *testing.T, chip Variant) (*Dev, *i2ctest.Record) {
	bus := &i2ctest.Record{}
	dev, err := New(bus, DefaultAddress, chip)
	if err != nil {
		t.Fatal(err)
	}
	return dev, bus
}

func writes(ops []i2ctest.IO) [][]byte {
	var result [][]byte
	for _, op := range ops {
		result = append(result, op.W)
	}
	return result
}

func TestBasic(t *testing.T) {
	dev, _ := getDev(t, PCF8574)
	if len(dev.Pins) != 8 {
		t.Errorf("expected 8 pins, found %d", len(dev.Pins))
	}
	pin := dev.Pins[1]
	if pin.Name() != pin.String() {
		t.Error("pin.Name()!=pin.String()")
	}
	if !strings.HasPrefix(pin.Name(), dev.String()) {
		t.Errorf("expected pin.Name()=%s to start with dev.String()=%s", pin.Name(), dev.String())
	}
	if pin.Number() != 1 {
		t.Errorf("pin.Number() expected 1, received %d", pin.Number())
	}
	if err := pin.PWM(10, 10); !errors.Is(err, ErrNotImplemented) {
		t.Errorf("PWM() expected ErrNotImplemented, received %v", err)
	}
	if err := dev.Halt(); err != nil {
		t.Error(err)
	}

	dev16, _ := getDev(t, PCF8575)
	if len(dev16.Pins) != 16 {
		t.Errorf("expected 16 pins, found %d", len(dev16.Pins))
	}

	if _, err := New(&i2ctest.Record{}, DefaultAddress, "PCF9999"); !errors.Is(err, ErrUnknownVariant) {
		t.Errorf("expected ErrUnknownVariant, received %v", err)
	}
}

func TestPinOut(t *testing.T) {
	dev, bus := getDev(t, PCF8574)
	for _, step := range []struct {
		pin   int
		level gpio.Level
	}{
		{3, gpio.High},
		{3, gpio.High}, // unchanged, skipped
		{0, gpio.High},
		{3, gpio.Low},
	} {
		if err := dev.Pins[step.pin].Out(step.level); err != nil {
			t.Fatal(err)
		}
	}
	want := [][]byte{{0x08}, {0x09}, {0x01}}
	if diff := cmp.Diff(want, writes(bus.Ops)); diff != "" {
		t.Errorf("writes (-want +got):\n%s", diff)
	}
	for _, op := range bus.Ops {
		if op.Addr != DefaultAddress {
			t.Errorf("unexpected address 0x%x", op.Addr)
		}
	}
	if dev.Value() != 0x01 {
		t.Errorf("Value() expected 0x01, received 0x%x", dev.Value())
	}
}

func TestFirstWriteAlwaysSent(t *testing.T) {
	dev, bus := getDev(t, PCF8574)
	if err := dev.Out(0, 0xff); err != nil {
		t.Fatal(err)
	}
	if len(bus.Ops) != 1 {
		t.Fatalf("expected the initial write to reach the bus, found %d ops", len(bus.Ops))
	}
}

func TestWriteFrames(t *testing.T) {
	dev, bus := getDev(t, PCF8574)
	if err := dev.Write(0x38, 0x3c, 0x38); err != nil {
		t.Fatal(err)
	}
	if err := dev.Write(); err != nil {
		t.Fatal(err)
	}
	want := [][]byte{{0x38, 0x3c, 0x38}}
	if diff := cmp.Diff(want, writes(bus.Ops)); diff != "" {
		t.Errorf("writes (-want +got):\n%s", diff)
	}
	if dev.Value() != 0x38 {
		t.Errorf("Value() expected 0x38, received 0x%x", dev.Value())
	}

	dev16, bus16 := getDev(t, PCF8575)
	if err := dev16.Write(0x1234, 0xabcd); err != nil {
		t.Fatal(err)
	}
	want = [][]byte{{0x34, 0x12, 0xcd, 0xab}}
	if diff := cmp.Diff(want, writes(bus16.Ops)); diff != "" {
		t.Errorf("writes (-want +got):\n%s", diff)
	}
}

func TestTxError(t *testing.T) {
	bus := &i2ctest.Playback{DontPanic: true}
	dev, err := New(bus, DefaultAddress, PCF8574)
	if err != nil {
		t.Fatal(err)
	}
	err = dev.Write(0x01)
	if err == nil || !strings.HasPrefix(err.Error(), "pcf857x: ") {
		t.Errorf("expected wrapped error, received %v", err)
	}
	if dev.Value() != 0 {
		t.Errorf("a failed write must not change Value(), found 0x%x", dev.Value())
	}
}
