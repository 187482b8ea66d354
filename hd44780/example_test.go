// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780_test

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/GermanBionicSystems/charlcd/hd44780"
	"github.com/GermanBionicSystems/charlcd/lcdsim"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/display/displaytest"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// This example drives a display wired in 4-bit mode to the GPIO header of a
// Raspberry Pi.
func Example() {
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	var data [4]gpio.PinOut
	for i, name := range []string{"GPIO27", "GPIO22", "GPIO23", "GPIO24"} {
		if data[i] = gpioreg.ByName(name); data[i] == nil {
			log.Fatalf("no pin %s", name)
		}
	}
	lcd, err := hd44780.NewParallel4(data, gpioreg.ByName("GPIO17"), gpioreg.ByName("GPIO18"), &hd44780.Opts{Rows: 2, Cols: 16})
	if err != nil {
		log.Fatal(err)
	}
	defer lcd.Halt()
	fmt.Println("lcd=", lcd.String())

	_ = lcd.MoveTo(1, 1)
	_, _ = lcd.WriteString("Line 1")
	_ = lcd.MoveTo(2, 2)
	_, _ = lcd.WriteString("Line 2")
	time.Sleep(5 * time.Second)

	errs := displaytest.TestTextDisplay(lcd, true)
	for _, e := range errs {
		if !errors.Is(e, display.ErrNotImplemented) {
			log.Println(e)
		}
	}
}

// Drive a simulated display and read back what it shows.
func Example_simulator() {
	sim := lcdsim.NewI2CBus(lcdsim.NewController(), hd44780.DefaultI2CAddress)
	lcd, err := hd44780.NewI2C(sim, hd44780.DefaultI2CAddress, &hd44780.Opts{Rows: 2, Cols: 16})
	if err != nil {
		log.Fatal(err)
	}
	_, _ = lcd.WriteString("Hello")
	_ = lcd.SetCursor(1, 0)
	_, _ = lcd.WriteString("World")
	fmt.Println(sim.Controller().Text(2, 5))
	// Output:
	// Hello
	// World
}

func ExampleDev_CreateChar() {
	sim := lcdsim.NewPins(lcdsim.NewController())
	lcd, err := hd44780.NewParallel4(sim.Data4(), sim.E, sim.RS, nil)
	if err != nil {
		log.Fatal(err)
	}
	bell := [8]byte{0x04, 0x0e, 0x0e, 0x0e, 0x1f, 0x00, 0x04, 0x00}
	if err := lcd.CreateChar(0, bell); err != nil {
		log.Fatal(err)
	}
	// Leave CGRAM before writing text.
	_ = lcd.Home()
	_, _ = lcd.Write([]byte{0, ' ', 'R', 'i', 'n', 'g'})
	fmt.Println(sim.Controller().Text(1, 6))
	// Output:
	// # Ring
}

func ExampleNewPCF857xBackpack() {
	// Make sure periph is initialized.
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}

	// Open default I²C bus.
	bus, err := i2creg.Open("")
	if err != nil {
		log.Fatalf("failed to open I²C: %v", err)
	}
	defer bus.Close()
	dev, err := hd44780.NewPCF857xBackpack(bus, hd44780.DefaultI2CAddress, 2, 20)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(dev.String())
	for range 5 {
		fmt.Println("toggling backlight")
		_ = dev.ToggleBacklight()
		time.Sleep(500 * time.Millisecond)
	}
	_ = dev.Clear()
	_, _ = dev.WriteString("Hello")
}

func ExampleNewAdafruitSPIBackpack() {
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}

	pc, err := spireg.Open("")
	if err != nil {
		log.Fatal(err)
	}
	defer pc.Close()
	conn, err := pc.Connect(physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		log.Fatal(err)
	}
	lcd, err := hd44780.NewAdafruitSPIBackpack(conn, 2, 16)
	if err != nil {
		log.Fatal(err)
	}

	_ = lcd.Clear()
	_, _ = lcd.WriteString("Hello")
}
