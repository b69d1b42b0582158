// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pcf857x

import (
	"time"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
)

type pcfPin struct {
	dev    *Dev
	number int
	name   string
}

func (pin *pcfPin) DefaultPull() gpio.Pull {
	return gpio.PullUp
}

// Deprecated: returns "Out" or "In" depending on the last written level.
func (pin *pcfPin) Function() string {
	if pin.dev.Value()&pin.bit() == 0 {
		return "Out/Low"
	}
	return "In/High"
}

// Halt implements conn.Resource. The pin keeps its last level and is
// removed from gpioreg, so the expander can be created again.
func (pin *pcfPin) Halt() error {
	pin.unregister()
	return nil
}

// In configures the pin as input by writing a High to it. The chip has a
// weak pull-up and no edge detection, so pull and edge are ignored.
func (pin *pcfPin) In(pull gpio.Pull, edge gpio.Edge) error {
	return pin.dev.write(pin.bit(), pin.bit())
}

func (pin *pcfPin) Name() string {
	return pin.name
}

func (pin *pcfPin) Number() int {
	return pin.number
}

func (pin *pcfPin) Out(l gpio.Level) error {
	var value gpio.GPIOValue
	if l {
		value = pin.bit()
	}
	return pin.dev.write(value, pin.bit())
}

func (pin *pcfPin) Pull() gpio.Pull {
	return gpio.PullUp
}

// Read samples the pin. Bus errors are logged and read as Low.
func (pin *pcfPin) Read() gpio.Level {
	value, err := pin.dev.read(pin.bit())
	if err != nil {
		logrus.WithError(err).WithField("pin", pin.name).Error("read failed")
		return gpio.Low
	}
	return value != 0
}

func (pin *pcfPin) PWM(duty gpio.Duty, f physic.Frequency) error {
	return ErrNotImplemented
}

func (pin *pcfPin) String() string {
	return pin.name
}

// The interrupt output of the chip can't be attributed to a pin.
func (pin *pcfPin) WaitForEdge(timeout time.Duration) bool {
	return false
}

// unregister removes the pin from gpioreg unless the name was taken over by
// another pin.
func (pin *pcfPin) unregister() {
	if gpioreg.ByName(pin.name) == gpio.PinIO(pin) {
		_ = gpioreg.Unregister(pin.name)
	}
}

func (pin *pcfPin) bit() gpio.GPIOValue {
	return gpio.GPIOValue(1) << pin.number
}

var _ gpio.PinIO = &pcfPin{}
