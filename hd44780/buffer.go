// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"github.com/sirupsen/logrus"
)

// renderer is what the buffer needs from the protocol engine.
type renderer interface {
	putChar(c byte) error
	setCursorRow(row int) error
}

// Snapshot is a copy of the buffered text and the cursor.
//
// Length is carried separately from Data because newlines and other control
// bytes are valid content.
type Snapshot struct {
	Data   []byte
	Length int
	Row    int
	Col    int
}

// buffer holds the text written since the last clear and tracks the cursor.
//
// Writes are appended to the existing content until the buffer is cleared or
// full; a full buffer refuses further bytes. Newlines are stored but not
// rendered.
type buffer struct {
	data []byte
	rows int
	cols int
	row  int
	col  int
}

func newBuffer(rows, cols int) *buffer {
	return &buffer{data: make([]byte, 0, rows*cols), rows: rows, cols: cols}
}

// consume appends p and renders each accepted byte through r. It returns the
// number of bytes accepted.
func (b *buffer) consume(p []byte, r renderer, log logrus.FieldLogger) (int, error) {
	for i, c := range p {
		if len(b.data) == cap(b.data) {
			log.WithFields(logrus.Fields{"accepted": i, "dropped": len(p) - i}).Warn("buffer full")
			return i, nil
		}
		if c == '\n' {
			b.data = append(b.data, c)
			b.row++
			b.col = 0
			if b.row >= b.rows {
				log.WithField("row", b.row).Warn("newline past the last row")
				continue
			}
			log.WithField("row", b.row).Debug("newline")
			if err := r.setCursorRow(b.row); err != nil {
				return i + 1, err
			}
			continue
		}
		if b.col >= b.cols && b.row < b.rows-1 {
			b.row++
			b.col = 0
			log.WithField("row", b.row).Debug("row full, wrapping")
			if err := r.setCursorRow(b.row); err != nil {
				return i, err
			}
		}
		b.data = append(b.data, c)
		b.col++
		if err := r.putChar(c); err != nil {
			return i + 1, err
		}
	}
	return len(p), nil
}

// reset empties the buffer and zeroes the stored bytes.
func (b *buffer) reset() {
	clear(b.data[:cap(b.data)])
	b.data = b.data[:0]
	b.row = 0
	b.col = 0
}

func (b *buffer) snapshot() Snapshot {
	return Snapshot{
		Data:   append([]byte(nil), b.data...),
		Length: len(b.data),
		Row:    b.row,
		Col:    b.col,
	}
}
