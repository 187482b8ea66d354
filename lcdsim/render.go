// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcdsim

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

// Cell geometry at scale 1, in pixels. basicfont.Face7x13 fits a cell with
// one pixel of spacing.
const (
	cellW    = 8
	cellH    = 14
	margin   = 6
	baseline = 11
)

// Ink is the color of lit dots.
var Ink = color.NRGBA{R: 0x1c, G: 0x28, B: 0x10, A: 0xff}

// RenderOpts controls Render.
type RenderOpts struct {
	Rows int
	Cols int
	// Backlight selects the lit background color.
	Backlight bool
	// Scale multiplies the size of the image. Values below 2 render at
	// native size.
	Scale int
}

// Render draws the visible characters of c. ROM characters are drawn with
// basicfont; CGRAM slots 0-7 are drawn dot by dot from their glyph rows.
func Render(c *Controller, opts RenderOpts) image.Image {
	w := 2*margin + opts.Cols*cellW
	h := 2*margin + opts.Rows*cellH
	dc := gg.NewContext(w, h)
	if opts.Backlight {
		dc.SetColor(BacklightOn)
	} else {
		dc.SetColor(BacklightOff)
	}
	dc.Clear()
	dc.SetColor(Ink)
	dc.SetFontFace(basicfont.Face7x13)
	if c.DisplayOn() {
		for row := range opts.Rows {
			y := float64(margin + row*cellH)
			for col, ch := range c.Line(row, opts.Cols) {
				x := float64(margin + col*cellW)
				switch {
				case ch < 8:
					drawGlyph(dc, c.Glyph(int(ch)), x, y)
				case ch == blank:
				default:
					if ch > 0x7e {
						ch = '?'
					}
					dc.DrawString(string(rune(ch)), x, y+baseline)
				}
			}
		}
	}
	img := dc.Image()
	if opts.Scale < 2 {
		return img
	}
	s := float64(opts.Scale)
	big := gg.NewContext(w*opts.Scale, h*opts.Scale)
	big.Scale(s, s)
	big.DrawImage(img, 0, 0)
	return big.Image()
}

// drawGlyph fills one pixel per set bit. Bit 4 is the leftmost column.
func drawGlyph(dc *gg.Context, glyph [8]byte, x, y float64) {
	for gy, bits := range glyph {
		for gx := 0; gx < 5; gx++ {
			if bits>>(4-gx)&1 == 1 {
				dc.DrawRectangle(x+1+float64(gx), y+3+float64(gy), 1, 1)
			}
		}
	}
	dc.Fill()
}

// SavePNG renders c and writes it to path.
func SavePNG(path string, c *Controller, opts RenderOpts) error {
	return gg.SavePNG(path, Render(c, opts))
}
