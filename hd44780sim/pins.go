// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780sim

import (
	"errors"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// PinSet are the eight controller lines, each driving one bit of the port.
type PinSet struct {
	D4, D5, D6, D7 gpio.PinOut
	EN, RW, RS, BL gpio.PinOut
}

// NewPins returns lines driving c.
func NewPins(c *Controller) PinSet {
	p := func(name string, bit uint) gpio.PinOut {
		return &simPin{c: c, name: name, bit: bit}
	}
	return PinSet{
		D4: p("SIM_D4", BitD4), D5: p("SIM_D5", BitD5), D6: p("SIM_D6", BitD6), D7: p("SIM_D7", BitD7),
		EN: p("SIM_EN", BitEN), RW: p("SIM_RW", BitRW), RS: p("SIM_RS", BitRS), BL: p("SIM_BL", BitBL),
	}
}

type simPin struct {
	c    *Controller
	name string
	bit  uint
}

func (p *simPin) String() string {
	return p.name
}

// Halt implements conn.Resource. The line keeps its level.
func (p *simPin) Halt() error {
	return nil
}

func (p *simPin) Name() string {
	return p.name
}

func (p *simPin) Number() int {
	return int(p.bit)
}

// Deprecated: returns "Out".
func (p *simPin) Function() string {
	return "Out"
}

func (p *simPin) Out(l gpio.Level) error {
	p.c.setBit(p.bit, bool(l))
	return nil
}

func (p *simPin) PWM(duty gpio.Duty, f physic.Frequency) error {
	return errors.New("hd44780sim: PWM not supported")
}

var _ gpio.PinOut = &simPin{}
