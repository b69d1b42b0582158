// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"fmt"

	"github.com/GermanBionicSystems/lcd1602/pcf857x"
	"periph.io/x/conn/v3/i2c"
)

const (
	// Name is the LCD pin name, and the integer value is the GPIO
	// number (not physical) of the PCF8574 I2C GPIO Expander.
	pcfRS = 0
	pcfRW = 1
	pcfEN = 2
	pcfBL = 3
	pcfD4 = 4
	pcfD5 = 5
	pcfD6 = 6
	pcfD7 = 7
)

// PCF8574Lines returns the lines of the common LCD1602/LCD2004 backpack.
//
// # Product Information
//
// https://www.handsontec.com/dataspecs/I2C_2004_LCD.pdf
func PCF8574Lines(dev *pcf857x.Dev) Lines {
	p := dev.Pins
	return Lines{
		D4: p[pcfD4], D5: p[pcfD5], D6: p[pcfD6], D7: p[pcfD7],
		EN: p[pcfEN], RW: p[pcfRW], RS: p[pcfRS], BL: p[pcfBL],
	}
}

// PCF8574LineNames returns the gpioreg names of the backpack lines, as
// registered by pcf857x.New for a PCF8574 at address.
func PCF8574LineNames(address uint16) LineNames {
	name := func(n int) string {
		return fmt.Sprintf("%s_%x_GPIO%d", pcf857x.PCF8574, address, n)
	}
	return LineNames{
		D4: name(pcfD4), D5: name(pcfD5), D6: name(pcfD6), D7: name(pcfD7),
		EN: name(pcfEN), RW: name(pcfRW), RS: name(pcfRS), BL: name(pcfBL),
	}
}

// NewPCF857xBackpack returns a display behind a PCF8574 backpack at address
// on bus. opts may be nil to use DefaultOpts. On failure the expander is
// halted, so the call can be retried.
func NewPCF857xBackpack(bus i2c.Bus, address uint16, opts *Opts) (*Dev, error) {
	pcf, err := pcf857x.New(bus, address, pcf857x.PCF8574)
	if err != nil {
		return nil, err
	}
	d, err := New(PCF8574Lines(pcf), opts)
	if err != nil {
		_ = pcf.Halt()
		return nil, err
	}
	return d, nil
}
