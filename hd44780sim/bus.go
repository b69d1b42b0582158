// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780sim

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// Bus is an I²C bus with a simulated PCF8574 backpack at a single address.
// Every byte written is a port image; reads return the current port image.
type Bus struct {
	c    *Controller
	addr uint16
}

// NewBus returns a bus with the backpack of c at addr.
func NewBus(c *Controller, addr uint16) *Bus {
	return &Bus{c: c, addr: addr}
}

func (b *Bus) String() string {
	return fmt.Sprintf("hd44780sim@%#x", b.addr)
}

// Tx implements i2c.Bus. Transactions to other addresses are not
// acknowledged.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	if addr != b.addr {
		return fmt.Errorf("hd44780sim: no device at %#x", addr)
	}
	for _, v := range w {
		b.c.Port(v)
	}
	for i := range r {
		r[i] = b.c.PortValue()
	}
	return nil
}

// SetSpeed implements i2c.Bus.
func (b *Bus) SetSpeed(f physic.Frequency) error {
	return nil
}

// Close implements i2c.BusCloser.
func (b *Bus) Close() error {
	return nil
}

var _ i2c.BusCloser = &Bus{}
