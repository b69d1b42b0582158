// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package pcf857x provides a driver for the TI/NXP PCF857X I2C I/O Expander.
// These devices provide 8 pins (PCF8574) or 16 pins (PCF8575) of
// "quasi-bidirectional" input/output. The PCF8574 is the chip found on the
// common LCD1602/LCD2004 character display backpacks.
//
// # Datasheet
//
// https://www.ti.com/lit/ds/symlink/pcf8574.pdf
//
// A good description of the I2C LCD backpack usage can be found here:
//
// https://www.handsontec.com/dataspecs/I2C_2004_LCD.pdf
//
// # Notes
//
// The chip doesn't implement a register architecture. Every write sends the
// complete port image, so the driver keeps a shadow copy of the last value
// written and merges single pin changes into it. The port powers up with all
// pins high, which is also the initial shadow value.
//
// Reading a pin consists of writing a High to it and then sampling the port:
// setting a pin to Low activates an open drain to ground.
package pcf857x

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
)

// Variant represents the actual chip model.
type Variant string

const (
	PCF8574 Variant = "PCF8574"
	PCF8575 Variant = "PCF8575"

	// DefaultAddress is the address with A0-A2 tied low. Most LCD backpacks
	// ship strapped to 0x27 instead.
	DefaultAddress uint16 = 0x20
	// BackpackAddress is the usual address of LCD1602 backpacks.
	BackpackAddress uint16 = 0x27
)

var (
	ErrNotImplemented = errors.New("pcf857x: not implemented")
	ErrHalted         = errors.New("pcf857x: device halted")
)

// Dev is representation of a PCF857x device.
type Dev struct {
	// Pins exposed by the device. 8 pins for the PCF8574, 16 for the PCF8575.
	Pins     []gpio.PinIO
	mask     gpio.GPIOValue
	width    int
	chipType Variant

	mu     sync.Mutex
	d      *i2c.Dev
	value  gpio.GPIOValue
	halted bool
}

// New creates a new PCF857x io expander and returns it. chip should be one of
// the Variant constants above.
//
// The pins are registered in gpioreg as "<variant>_<addr>_GPIO<n>" so they
// can be resolved by name. New fails if an expander at the same address is
// still registered; Halt the previous one first.
func New(bus i2c.Bus, address uint16, chip Variant) (*Dev, error) {
	if chip != PCF8574 && chip != PCF8575 {
		return nil, fmt.Errorf("pcf857x: unknown variant %q", chip)
	}
	dev := &Dev{d: &i2c.Dev{Bus: bus, Addr: address}, chipType: chip, width: 8}
	if chip == PCF8575 {
		dev.width = 16
	}
	dev.mask = gpio.GPIOValue((1 << dev.width) - 1)
	dev.value = dev.mask
	dev.Pins = make([]gpio.PinIO, dev.width)
	for ix := range dev.width {
		pin := &pcfPin{dev: dev, number: ix, name: fmt.Sprintf("%s_GPIO%d", dev, ix)}
		if err := gpioreg.Register(pin); err != nil {
			for _, p := range dev.Pins[:ix] {
				p.(*pcfPin).unregister()
			}
			return nil, fmt.Errorf("pcf857x: %w", err)
		}
		dev.Pins[ix] = pin
	}
	return dev, nil
}

// Value returns the port image last written to the device.
func (dev *Dev) Value() gpio.GPIOValue {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.value
}

// Width returns the number of pins of the device.
func (dev *Dev) Width() int {
	return dev.width
}

// Halt shuts down the device and removes its pins from gpioreg. Pins can't
// be used after this call.
func (dev *Dev) Halt() error {
	dev.mu.Lock()
	dev.halted = true
	dev.mu.Unlock()
	for _, p := range dev.Pins {
		p.(*pcfPin).unregister()
	}
	return nil
}

// read performs the low level i2c read operation from the device.
func (dev *Dev) read(mask gpio.GPIOValue) (gpio.GPIOValue, error) {
	// Before you can read a pin, you must have set it to high. If nothing
	// pulls that down, then it's high. If it's pulled down, it's low.
	if err := dev.write(mask, mask); err != nil {
		return 0, err
	}

	dev.mu.Lock()
	defer dev.mu.Unlock()
	if dev.halted {
		return 0, ErrHalted
	}
	r := make([]byte, dev.width/8)
	if err := dev.d.Tx(nil, r); err != nil {
		return 0, fmt.Errorf("pcf857x: %w", err)
	}
	result := gpio.GPIOValue(r[0])
	if len(r) > 1 {
		result |= gpio.GPIOValue(r[1]) << 8
	}
	return result & mask, nil
}

// write merges value into the shadow port image for the pins in mask and
// sends the result. If the port image is unchanged, the write is skipped.
func (dev *Dev) write(value, mask gpio.GPIOValue) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if dev.halted {
		return ErrHalted
	}
	wrValue := dev.value&(dev.mask^mask) | value&mask
	if dev.value == wrValue {
		return nil
	}
	w := make([]byte, dev.width/8)
	for ix := range w {
		w[ix] = byte(wrValue >> (ix * 8))
	}
	if err := dev.d.Tx(w, nil); err != nil {
		return fmt.Errorf("pcf857x: %w", err)
	}
	dev.value = wrValue
	return nil
}

func (dev *Dev) String() string {
	return fmt.Sprintf("%s_%x", dev.chipType, dev.d.Addr)
}
