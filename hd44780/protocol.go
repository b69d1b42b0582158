// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
)

type writeMode bool

const (
	modeCommand writeMode = false
	modeData    writeMode = true
)

// Instruction set.
const (
	cmdClear       byte = 0x01
	cmdHome        byte = 0x02
	cmdEntryMode   byte = 0x04
	cmdDisplay     byte = 0x08
	cmdShift       byte = 0x10
	cmdFunctionSet byte = 0x20
	cmdSetDDRAM    byte = 0x80

	entryIncrement byte = 0x02

	displayOn     byte = 0x04
	displayCursor byte = 0x02
	displayBlink  byte = 0x01

	shiftDisplay byte = 0x08
	shiftRight   byte = 0x04

	functionTwoLines byte = 0x08
)

const (
	powerOnDelay  = 120 * time.Millisecond
	resetDelay    = 5 * time.Millisecond
	commandDelay  = 200 * time.Microsecond
	settleDelay   = 2 * time.Millisecond
	wakeUpNibble  = 0x03
	fourBitNibble = 0x02
)

// DDRAM address of the first column of each row.
var rowOffsets = []byte{0x00, 0x40}

// engine composes line operations into controller transactions.
type engine struct {
	lineDriver
}

// writeNibble presents the low 4 bits of value on D4-D7 and strobes.
func (e *engine) writeNibble(value byte, mode writeMode) error {
	if err := e.setLine(namedLine{"rs", e.lines.RS}, gpio.Level(mode)); err != nil {
		return err
	}
	for bit, nl := range e.lines.named()[:4] {
		if err := e.setLine(nl, value&(1<<bit) != 0); err != nil {
			return err
		}
	}
	return e.strobe()
}

// writeByte sends the high nibble, then the low nibble.
func (e *engine) writeByte(value byte, mode writeMode) error {
	if err := e.writeNibble(value>>4, mode); err != nil {
		return err
	}
	return e.writeNibble(value&0x0f, mode)
}

func (e *engine) command(value byte, settle time.Duration) error {
	if err := e.writeByte(value, modeCommand); err != nil {
		return err
	}
	if settle > 0 {
		e.wait(settle)
	}
	return nil
}

// initialize runs the 4-bit cold start handshake. The three 0x3 nibbles
// force 8-bit mode whatever state the controller was left in, including a
// half transmitted byte in 4-bit mode.
func (e *engine) initialize(rows int) error {
	e.wait(powerOnDelay)
	for _, step := range []struct {
		nibble byte
		delay  time.Duration
	}{
		{wakeUpNibble, resetDelay},
		{wakeUpNibble, commandDelay},
		{wakeUpNibble, commandDelay},
		{fourBitNibble, commandDelay},
	} {
		if err := e.writeNibble(step.nibble, modeCommand); err != nil {
			return err
		}
		e.wait(step.delay)
	}
	// 4-bit interface, 5x8 font.
	function := cmdFunctionSet
	if rows > 1 {
		function |= functionTwoLines
	}
	if err := e.command(function, commandDelay); err != nil {
		return err
	}
	if err := e.command(cmdDisplay, commandDelay); err != nil {
		return err
	}
	if err := e.clearScreen(); err != nil {
		return err
	}
	e.wait(commandDelay)
	if err := e.command(cmdEntryMode|entryIncrement, commandDelay); err != nil {
		return err
	}
	// Display on with the cursor hidden, then immediately with cursor and
	// blink. Both transactions are sent.
	if err := e.command(cmdDisplay|displayOn, 0); err != nil {
		return err
	}
	return e.command(cmdDisplay|displayOn|displayCursor|displayBlink, commandDelay)
}

func (e *engine) clearScreen() error {
	return e.command(cmdClear, settleDelay)
}

func (e *engine) cursorReturn() error {
	return e.command(cmdHome, settleDelay)
}

func (e *engine) shift(target ShiftTarget, dir Direction) error {
	c, err := shiftCommand(target, dir)
	if err != nil {
		return err
	}
	return e.command(c, settleDelay)
}

func (e *engine) setCursorRow(row int) error {
	if row < 0 || row >= len(rowOffsets) {
		return fmt.Errorf("hd44780: row %d is not addressable", row)
	}
	return e.command(cmdSetDDRAM|rowOffsets[row], 0)
}

func (e *engine) putChar(c byte) error {
	return e.writeByte(c, modeData)
}

func (e *engine) setBacklight(on bool) error {
	return e.setLine(namedLine{"bl", e.lines.BL}, gpio.Level(on))
}

// shiftCommand maps a shift target and direction to its instruction:
// display-right 0x1C, display-left 0x18, cursor-right 0x14, cursor-left 0x10.
func shiftCommand(target ShiftTarget, dir Direction) (byte, error) {
	c := cmdShift
	switch target {
	case ShiftCursor:
	case ShiftDisplay:
		c |= shiftDisplay
	default:
		return 0, fmt.Errorf("%w: shift target %d", ErrMalformed, target)
	}
	switch dir {
	case Left:
	case Right:
		c |= shiftRight
	default:
		return 0, fmt.Errorf("%w: shift direction %d", ErrMalformed, dir)
	}
	return c, nil
}
