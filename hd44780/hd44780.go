// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hd44780 controls the Hitachi LCD display chipset HD-44780 through an
// 8-bit I/O expander, in 4-bit mode.
//
// The driver keeps the text written to the display in a buffer of Rows*Cols
// bytes. Writes are appended to that buffer until it is cleared: a newline
// moves to the next row, a full first row wraps to the second one, and bytes
// are refused once the buffer is full. The buffer can be read back without
// touching the hardware.
//
// Every operation blocks until the controller had time to process it and is
// serialized against the others, so a Dev may be shared between goroutines.
//
// # Datasheet
//
// https://www.sparkfun.com/datasheets/LCD/HD44780.pdf
package hd44780

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
)

// ErrHalted is returned by operations on a Dev after Halt.
var ErrHalted = errors.New("hd44780: device halted")

// Dev is an attached display.
type Dev struct {
	mu     sync.Mutex
	e      engine
	buf    *buffer
	rows   int
	cols   int
	log    logrus.FieldLogger
	halted bool
}

// New attaches a display wired to lines and runs the initialization
// handshake. opts may be nil to use DefaultOpts.
//
// A nil line is reported as a *LineError. If the handshake fails the lines
// are released.
func New(lines Lines, opts *Opts) (*Dev, error) {
	return newDev(lines, opts, waitFor)
}

func newDev(lines Lines, opts *Opts, wait func(time.Duration)) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if err := lines.check(); err != nil {
		return nil, err
	}
	d := &Dev{
		e:    engine{lineDriver{lines: lines, wait: wait}},
		buf:  newBuffer(opts.Rows, opts.Cols),
		rows: opts.Rows,
		cols: opts.Cols,
	}
	d.log = opts.logger().WithField("dev", d.String())
	if err := d.attach(opts.Backlight); err != nil {
		_ = lines.halt()
		return nil, err
	}
	return d, nil
}

// attach drives every line low, as after acquisition, and initializes the
// controller.
func (d *Dev) attach(backlight bool) error {
	d.log.Info("attaching")
	for _, nl := range d.e.lines.named() {
		if err := d.e.setLine(nl, gpio.Low); err != nil {
			return err
		}
	}
	if backlight {
		if err := d.e.setBacklight(true); err != nil {
			return err
		}
	}
	d.log.Info("4-bit initialization started")
	if err := d.e.initialize(d.rows); err != nil {
		return fmt.Errorf("hd44780: initialization: %w", err)
	}
	d.log.Info("4-bit initialization done")
	return nil
}

// Append adds p to the buffer and renders it. It returns the number of bytes
// accepted, which is less than len(p) when the buffer fills up. A full buffer
// is not an error.
func (d *Dev) Append(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return 0, ErrHalted
	}
	return d.buf.consume(p, &d.e, d.log)
}

// Read returns a copy of the buffer. It doesn't access the hardware.
func (d *Dev) Read() (Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return Snapshot{}, ErrHalted
	}
	return d.buf.snapshot(), nil
}

// Clear empties the buffer and clears the display.
func (d *Dev) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return ErrHalted
	}
	return d.clear()
}

func (d *Dev) clear() error {
	d.log.Debug("clear screen")
	d.buf.reset()
	return d.e.clearScreen()
}

// Backlight turns the backlight on or off.
func (d *Dev) Backlight(on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return ErrHalted
	}
	d.log.WithField("on", on).Debug("backlight")
	return d.e.setBacklight(on)
}

// Shift moves the cursor or the display content one position. It doesn't
// change the buffer.
func (d *Dev) Shift(target ShiftTarget, dir Direction) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return ErrHalted
	}
	d.log.WithFields(logrus.Fields{"target": target, "direction": dir}).Debug("shift")
	return d.e.shift(target, dir)
}

// Home returns the cursor to the first position and undoes display shifts.
// It doesn't change the buffer.
func (d *Dev) Home() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return ErrHalted
	}
	d.log.Debug("cursor return")
	return d.e.cursorReturn()
}

// Rows returns the number of rows of the display.
func (d *Dev) Rows() int {
	return d.rows
}

// Cols returns the number of columns of the display.
func (d *Dev) Cols() int {
	return d.cols
}

// Halt turns the backlight off, clears the display and releases the lines.
// The Dev can't be used afterwards.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return nil
	}
	d.halted = true
	d.log.Info("detaching")
	err := d.e.setBacklight(false)
	if e := d.clear(); err == nil {
		err = e
	}
	if e := d.e.lines.halt(); err == nil {
		err = e
	}
	return err
}

func (d *Dev) String() string {
	return fmt.Sprintf("HD44780::%s - Rows: %d, Cols: %d", &d.e.lines, d.rows, d.cols)
}

var _ conn.Resource = &Dev{}
