// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	// ErrNotAttached is returned when the dispatcher has no device.
	ErrNotAttached = errors.New("hd44780: no device attached")
	// ErrAttached is returned when attaching to an occupied dispatcher.
	ErrAttached = errors.New("hd44780: device already attached")
)

// Response is the result of a dispatched Command.
type Response struct {
	Op Op
	// Accepted is the number of bytes a WriteValue added to the buffer.
	Accepted int
	// Snapshot is the buffer returned by ReadValue.
	Snapshot Snapshot
}

// Dispatcher routes commands to a single device slot. Each call holds the
// dispatcher for its whole duration, so attach, detach and commands never
// interleave.
type Dispatcher struct {
	mu  sync.Mutex
	dev *Dev
	log logrus.FieldLogger
}

// NewDispatcher returns a dispatcher for dev. dev may be nil, in which case
// Attach must be called before dispatching. log may be nil.
func NewDispatcher(dev *Dev, log logrus.FieldLogger) *Dispatcher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Dispatcher{dev: dev, log: log}
}

// Attach creates the device in the slot. See New.
func (d *Dispatcher) Attach(lines Lines, opts *Opts) (*Dev, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dev != nil {
		return nil, ErrAttached
	}
	if opts == nil {
		o := DefaultOpts
		opts = &o
	}
	if opts.Logger == nil {
		o := *opts
		o.Logger = d.log
		opts = &o
	}
	dev, err := New(lines, opts)
	if err != nil {
		return nil, err
	}
	d.dev = dev
	return dev, nil
}

// Detach halts the device and empties the slot.
func (d *Dispatcher) Detach() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dev == nil {
		return ErrNotAttached
	}
	err := d.dev.Halt()
	d.dev = nil
	return err
}

// Dispatch runs c on the device and waits for the hardware to complete.
// Unknown commands are logged and ignored.
func (d *Dispatcher) Dispatch(c Command) (Response, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	resp := Response{Op: c.Op()}
	if d.dev == nil {
		return resp, ErrNotAttached
	}
	d.log.WithField("op", resp.Op).Debug("dispatch")
	var err error
	switch c := c.(type) {
	case WriteValue:
		resp.Accepted, err = d.dev.Append(c.Text)
	case ReadValue:
		resp.Snapshot, err = d.dev.Read()
	case ClearScreen:
		err = d.dev.Clear()
	case BacklightOn:
		err = d.dev.Backlight(true)
	case BacklightOff:
		err = d.dev.Backlight(false)
	case Shift:
		err = d.dev.Shift(c.Target, c.Direction)
	case CursorReturn:
		err = d.dev.Home()
	default:
		d.log.WithField("op", resp.Op).Warn("unrecognized command")
	}
	return resp, err
}
