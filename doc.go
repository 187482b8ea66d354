// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package charlcd is a container for the HD44780 character LCD driver and its
// supporting packages.
//
// The driver is in hd44780. The pcf857x and nxp74hc595 packages drive the
// I/O expander and shift register found on LCD backpacks, and lcdsim emulates
// the controller for tests and for running without hardware. cmd/lcdctl
// writes text to a display from the command line.
package charlcd
