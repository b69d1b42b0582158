// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780sim

import (
	"image"
	"io"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
)

const margin = 8

// GoRegular returns the Go Regular font face at size points.
func GoRegular(size float64) (font.Face, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{Size: size}), nil
}

// Image draws the glass of c with cols columns. face may be nil to use
// basicfont.Face7x13. The cursor is drawn as an underline when enabled.
func Image(c *Controller, cols int, face font.Face) image.Image {
	return draw(c, cols, face).Image()
}

// WritePNG encodes Image as PNG to w.
func WritePNG(w io.Writer, c *Controller, cols int, face font.Face) error {
	return draw(c, cols, face).EncodePNG(w)
}

func draw(c *Controller, cols int, face font.Face) *gg.Context {
	if face == nil {
		face = basicfont.Face7x13
	}
	m := face.Metrics()
	cellW := font.MeasureString(face, "M").Ceil() + 2
	cellH := m.Height.Ceil() + 4
	rows := c.Rows(cols)
	state := c.State()

	dc := gg.NewContext(cols*cellW+2*margin, len(rows)*cellH+2*margin)
	bg := unlitColor
	if c.Backlight() {
		bg = backlitColor
	}
	dc.SetColor(bg)
	dc.Clear()
	if !state.DisplayOn {
		return dc
	}
	dc.SetFontFace(face)
	dc.SetRGB(0.1, 0.15, 0.1)
	baseline := float64(m.Ascent.Ceil() + 2)
	for r, row := range rows {
		y := float64(margin+r*cellH) + baseline
		for col, ch := range row {
			dc.DrawString(string(glyph(ch)), float64(margin+col*cellW+1), y)
		}
	}
	if state.CursorOn {
		row, col := c.Cursor()
		col = cursorColumn(state, col)
		if row < len(rows) && col < cols {
			dc.DrawRectangle(float64(margin+col*cellW), float64(margin+(row+1)*cellH-2), float64(cellW-1), 2)
			dc.Fill()
		}
	}
	return dc
}

// cursorColumn returns the window column showing DDRAM column col.
func cursorColumn(s State, col int) int {
	return (col + s.Shift) % s.lineLen()
}
