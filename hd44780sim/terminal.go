// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780sim

import (
	"bytes"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
)

var (
	backlitColor = color.NRGBA{0x9c, 0xd1, 0x3a, 0xff}
	unlitColor   = color.NRGBA{0x3a, 0x4a, 0x2a, 0xff}
)

// Terminal renders the glass of a Controller to a terminal using ANSI color
// codes for the bezel.
type Terminal struct {
	w       io.Writer
	cols    int
	palette ansi256.Palette

	buf bytes.Buffer
}

// NewTerminal returns a Terminal that displays cols columns on stdout. palette
// may be nil to use ansi256.Default.
func NewTerminal(cols int, palette *ansi256.Palette) *Terminal {
	return NewTerminalWriter(colorable.NewColorableStdout(), cols, palette)
}

// NewTerminalWriter is NewTerminal writing to w.
func NewTerminalWriter(w io.Writer, cols int, palette *ansi256.Palette) *Terminal {
	if palette == nil {
		palette = ansi256.Default
	}
	return &Terminal{w: w, cols: cols, palette: *palette}
}

func (t *Terminal) String() string {
	return "Terminal"
}

// Render draws the visible characters of c, framed by a bezel colored after
// the backlight. Nothing is shown on the glass while the display is off.
func (t *Terminal) Render(c *Controller) error {
	bezel := t.palette.Block(unlitColor)
	if c.Backlight() {
		bezel = t.palette.Block(backlitColor)
	}
	on := c.State().DisplayOn
	t.buf.Reset()
	t.edge(bezel)
	for _, row := range c.Rows(t.cols) {
		_, _ = t.buf.WriteString(bezel + "\033[0m")
		for _, ch := range row {
			if !on {
				ch = blank
			}
			_, _ = t.buf.WriteRune(glyph(ch))
		}
		_, _ = t.buf.WriteString(bezel + "\033[0m\n")
	}
	t.edge(bezel)
	_, err := t.buf.WriteTo(t.w)
	return err
}

func (t *Terminal) edge(bezel string) {
	for range t.cols + 2 {
		_, _ = t.buf.WriteString(bezel)
	}
	_, _ = t.buf.WriteString("\033[0m\n")
}

// glyph maps a character code of the A00 character ROM to a rune. Codes
// without an ASCII counterpart show as a middle dot.
func glyph(ch byte) rune {
	switch {
	case ch == 0x5c:
		return '¥'
	case ch == 0x7e:
		return '→'
	case ch == 0x7f:
		return '←'
	case ch >= 0x20 && ch < 0x7e:
		return rune(ch)
	default:
		return '·'
	}
}
