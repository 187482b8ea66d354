// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// lcdctl writes text to an HD44780 character LCD, or runs a demo on it.
//
// The display is described by a YAML file (see internal/config). Without
// one, a 16x2 display on a PCF8574 backpack at 0x27 on the first I²C bus is
// assumed. With -sim, or simulator.enabled in the file, the display is
// emulated and can be drawn to the terminal or saved as a PNG.
//
//	lcdctl -text 'Hello\nWorld'
//	lcdctl -config lcd.yaml -demo
//	lcdctl -sim -text 'Hi there' -png lcd.png
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/GermanBionicSystems/charlcd/internal/config"
	"github.com/GermanBionicSystems/charlcd/internal/logging"
	"github.com/GermanBionicSystems/charlcd/lcdsim"
	"github.com/jonboulle/clockwork"
	"github.com/mattn/go-colorable"
	"golang.org/x/sync/errgroup"
)

// Set at build time with -ldflags "-X main.version=1.0.0".
var version = "dev"

// refreshInterval paces the terminal view of the simulator.
const refreshInterval = 100 * time.Millisecond

type options struct {
	configPath string
	text       string
	sim        bool
	terminal   bool
	png        string
	demo       bool
	delay      time.Duration
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], colorable.NewColorableStdout(), clockwork.NewRealClock()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("lcdctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	o := &options{}
	fs.StringVar(&o.configPath, "config", os.Getenv("CHARLCD_CONFIG"), "YAML configuration file")
	fs.StringVar(&o.text, "text", "", `text to show, lines separated by \n`)
	fs.BoolVar(&o.sim, "sim", false, "use the simulator instead of hardware")
	fs.BoolVar(&o.terminal, "terminal", false, "draw the simulated panel on stdout")
	fs.StringVar(&o.png, "png", "", "save the simulated panel to this PNG file on exit")
	fs.BoolVar(&o.demo, "demo", false, "run the demo: text, cursors, custom characters and scrolling")
	fs.DurationVar(&o.delay, "delay", 750*time.Millisecond, "pause between demo steps")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return o, nil
}

// run is main without the process concerns. It returns once the text is
// shown, or when the demo completes or ctx is canceled.
func run(ctx context.Context, args []string, stdout io.Writer, clock clockwork.Clock) error {
	log := logging.Default()
	opts, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}

	cfg := config.Default()
	if opts.configPath != "" {
		if cfg, err = config.Load(opts.configPath); err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	}
	if opts.sim {
		cfg.Simulator.Enabled = true
	}
	if opts.terminal {
		cfg.Simulator.Terminal = true
	}
	if opts.png != "" {
		cfg.Simulator.PNG = opts.png
	}
	if cfg.Simulator.PNG != "" && !cfg.Simulator.Enabled {
		return errors.New("-png requires the simulator")
	}
	log = logging.New(cfg.Logging, version)
	log.Info("starting lcdctl", "version", version, "transport", cfg.Display.Transport, "simulator", cfg.Simulator.Enabled)

	p, err := openPanel(cfg, log.With("component", "display").Logger, stdout)
	if err != nil {
		return fmt.Errorf("opening display: %w", err)
	}
	defer func() {
		if closeErr := p.close(); closeErr != nil {
			log.Error("error closing display", "error", closeErr)
		}
	}()
	log.Info("display ready", "device", p.dev.String())

	g, gctx := errgroup.WithContext(ctx)
	done := make(chan struct{})
	if p.term != nil {
		g.Go(func() error {
			return p.refreshLoop(gctx, clock, refreshInterval, done)
		})
	}
	g.Go(func() error {
		defer close(done)
		if opts.demo {
			return runDemo(gctx, p.dev, clock, opts.delay)
		}
		return showText(p.dev, opts.text)
	})
	if err := g.Wait(); err != nil {
		if !errors.Is(err, context.Canceled) {
			return err
		}
		// Interrupted; leave the panel blank rather than half drawn.
		log.Info("interrupted, blanking display")
		if err := p.dev.Halt(); err != nil {
			log.Warn("halting display", "error", err)
		}
		return nil
	}

	if cfg.Simulator.PNG != "" {
		if err := lcdsim.SavePNG(cfg.Simulator.PNG, p.ctrl, lcdsim.RenderOpts{
			Rows:      cfg.Display.Rows,
			Cols:      cfg.Display.Cols,
			Backlight: p.backlight(),
			Scale:     cfg.Simulator.Scale,
		}); err != nil {
			return fmt.Errorf("saving %s: %w", cfg.Simulator.PNG, err)
		}
		log.Info("panel saved", "path", cfg.Simulator.PNG)
	}
	return nil
}
