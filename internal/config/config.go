// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package config loads and validates the lcdctl configuration.
//
// The file is YAML:
//
//	display:
//	  transport: "i2c"     # parallel4, parallel8, serial, i2c
//	  rows: 2
//	  cols: 16
//	i2c:
//	  bus: ""              # empty selects the first bus
//	  address: 0x27
//	pins:
//	  data: ["GPIO27", "GPIO22", "GPIO23", "GPIO24"]
//	  enable: "GPIO17"
//	  rs: "GPIO18"
//	timing:
//	  power_on: "50ms"
//	  attention: ["5ms", "5ms", "2ms"]
//	logging:
//	  level: "info"
//	  format: "text"
//	simulator:
//	  enabled: true
//	  png: "lcd.png"
//
// Environment variables named CHARLCD_SECTION_KEY override a few keys.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/GermanBionicSystems/charlcd/hd44780"
	"gopkg.in/yaml.v3"
)

// Transport names.
const (
	Parallel4 = "parallel4"
	Parallel8 = "parallel8"
	Serial    = "serial"
	I2C       = "i2c"
)

// Config is the root of the configuration file.
type Config struct {
	Display   DisplayConfig   `yaml:"display"`
	I2C       I2CConfig       `yaml:"i2c"`
	Pins      PinsConfig      `yaml:"pins"`
	Timing    TimingConfig    `yaml:"timing"`
	Logging   LoggingConfig   `yaml:"logging"`
	Simulator SimulatorConfig `yaml:"simulator"`
}

// DisplayConfig selects the wiring and the geometry.
type DisplayConfig struct {
	Transport string `yaml:"transport"`
	Rows      int    `yaml:"rows"`
	Cols      int    `yaml:"cols"`
	Font5x10  bool   `yaml:"font_5x10"`
}

// I2CConfig locates the PCF8574 backpack.
type I2CConfig struct {
	Bus     string `yaml:"bus"`
	Address uint16 `yaml:"address"`
}

// PinsConfig names the host GPIOs, as known to gpioreg.
type PinsConfig struct {
	// Data lists D4-D7 for parallel4 and D0-D7 for parallel8.
	Data   []string `yaml:"data"`
	Enable string   `yaml:"enable"`
	RS     string   `yaml:"rs"`
	// Serial, Clock and Latch drive the 74HC595 DS, SHCP and STCP inputs.
	Serial string `yaml:"serial"`
	Clock  string `yaml:"clock"`
	Latch  string `yaml:"latch"`
}

// TimingConfig overrides hd44780.DefaultTiming. Zero values keep the
// default.
type TimingConfig struct {
	PowerOn    time.Duration   `yaml:"power_on"`
	Attention  []time.Duration `yaml:"attention"`
	Settle     time.Duration   `yaml:"settle"`
	EnableHold time.Duration   `yaml:"enable_hold"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SimulatorConfig replaces the hardware with lcdsim.
type SimulatorConfig struct {
	Enabled bool `yaml:"enabled"`
	// PNG is written with the panel content on exit when set.
	PNG   string `yaml:"png"`
	Scale int    `yaml:"scale"`
	// Terminal draws the panel on stdout after every change.
	Terminal bool `yaml:"terminal"`
}

// Load reads the file at path over the defaults, applies the environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Default returns the configuration used without a file: a 16x2 display on
// a PCF8574 backpack at 0x27.
func Default() *Config {
	return &Config{
		Display: DisplayConfig{
			Transport: I2C,
			Rows:      2,
			Cols:      16,
		},
		I2C: I2CConfig{
			Address: hd44780.DefaultI2CAddress,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Simulator: SimulatorConfig{
			Scale: 4,
		},
	}
}

// applyEnvOverrides follows the CHARLCD_SECTION_KEY pattern.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("CHARLCD_DISPLAY_TRANSPORT"); v != "" {
		cfg.Display.Transport = v
	}
	if v := os.Getenv("CHARLCD_I2C_BUS"); v != "" {
		cfg.I2C.Bus = v
	}
	if v := os.Getenv("CHARLCD_I2C_ADDRESS"); v != "" {
		a, err := strconv.ParseUint(v, 0, 16)
		if err != nil {
			return fmt.Errorf("CHARLCD_I2C_ADDRESS: %w", err)
		}
		cfg.I2C.Address = uint16(a)
	}
	if v := os.Getenv("CHARLCD_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("CHARLCD_SIMULATOR_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CHARLCD_SIMULATOR_ENABLED: %w", err)
		}
		cfg.Simulator.Enabled = b
	}
	return nil
}

// Validate reports every problem found, not only the first.
func (c *Config) Validate() error {
	var errs []string

	if c.Display.Rows < 1 || c.Display.Rows > 2 {
		errs = append(errs, "display.rows must be 1 or 2")
	}
	if c.Display.Cols < 1 || c.Display.Cols > hd44780.LineWidth {
		errs = append(errs, fmt.Sprintf("display.cols must be between 1 and %d", hd44780.LineWidth))
	}
	if c.Display.Font5x10 && c.Display.Rows != 1 {
		errs = append(errs, "display.font_5x10 requires a single row")
	}

	// Pins only matter on real hardware.
	hw := !c.Simulator.Enabled
	switch c.Display.Transport {
	case I2C:
		if c.I2C.Address == 0 || c.I2C.Address > 0x7f {
			errs = append(errs, "i2c.address must be a 7-bit address")
		}
	case Parallel4:
		if hw && len(c.Pins.Data) != 4 {
			errs = append(errs, "pins.data must list D4-D7 for parallel4")
		}
	case Parallel8:
		if hw && len(c.Pins.Data) != 8 {
			errs = append(errs, "pins.data must list D0-D7 for parallel8")
		}
	case Serial:
		if hw && (c.Pins.Serial == "" || c.Pins.Clock == "" || c.Pins.Latch == "") {
			errs = append(errs, "pins.serial, pins.clock and pins.latch are required for serial")
		}
	default:
		errs = append(errs, fmt.Sprintf("display.transport %q is not one of %s, %s, %s, %s",
			c.Display.Transport, Parallel4, Parallel8, Serial, I2C))
	}
	if hw && c.Display.Transport != I2C && (c.Pins.Enable == "" || c.Pins.RS == "") {
		errs = append(errs, "pins.enable and pins.rs are required")
	}

	if n := len(c.Timing.Attention); n != 0 && n != 3 {
		errs = append(errs, "timing.attention must have 3 entries")
	}
	for _, d := range append([]time.Duration{c.Timing.PowerOn, c.Timing.Settle, c.Timing.EnableHold}, c.Timing.Attention...) {
		if d < 0 {
			errs = append(errs, "timing values must not be negative")
			break
		}
	}

	switch strings.ToLower(c.Logging.Format) {
	case "", "json", "text":
	default:
		errs = append(errs, "logging.format must be json or text")
	}
	if c.Simulator.Scale < 0 {
		errs = append(errs, "simulator.scale must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// HD44780Timing merges the overrides into hd44780.DefaultTiming.
func (t TimingConfig) HD44780Timing() hd44780.Timing {
	r := hd44780.DefaultTiming
	if t.PowerOn > 0 {
		r.PowerOn = t.PowerOn
	}
	if len(t.Attention) == len(r.Attention) {
		copy(r.Attention[:], t.Attention)
	}
	if t.Settle > 0 {
		r.Settle = t.Settle
	}
	if t.EnableHold > 0 {
		r.EnableHold = t.EnableHold
	}
	return r
}
