// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hd44780sim simulates an HD44780 character display controller
// behind a PCF8574 backpack.
//
// The Controller decodes the port image of the expander: a nibble is latched
// on each falling edge of the enable line, paired into bytes in 4-bit mode
// and executed as an instruction or a character depending on RS. Feed it
// through NewBus, which implements i2c.Bus, or through the lines returned by
// NewPins.
//
// Useful to test display code, or while you are waiting for the backpack to
// come by mail.
package hd44780sim

import (
	"sync"
)

// Port bits of a PCF8574 LCD backpack.
const (
	BitRS = 0
	BitRW = 1
	BitEN = 2
	BitBL = 3
	BitD4 = 4
	BitD5 = 5
	BitD6 = 6
	BitD7 = 7
)

const (
	// LineLen is the length of a DDRAM line in two line mode.
	LineLen = 40
	// Line2 is the DDRAM address of the second line.
	Line2 = 0x40

	oneLineLen = 80
	blank      = ' '
)

// Transaction is a byte executed by the controller.
type Transaction struct {
	RS    bool
	Value byte
}

// State is the internal state of the controller.
type State struct {
	EightBit   bool
	TwoLines   bool
	Increment  bool
	EntryShift bool
	DisplayOn  bool
	CursorOn   bool
	BlinkOn    bool
	// Address is the DDRAM address counter.
	Address byte
	// Shift is the display shift in positions to the right, less than the
	// DDRAM line length of the mode.
	Shift int
	DDRAM [0x80]byte
}

// Controller is a simulated HD44780.
type Controller struct {
	mu      sync.Mutex
	port    byte
	state   State
	pending bool
	high    byte
	trace   []Transaction
}

// New returns a controller in its power-on reset state: 8-bit interface, one
// line, display off, cleared DDRAM. The port starts with all pins low.
func New() *Controller {
	c := &Controller{}
	c.state.EightBit = true
	c.state.Increment = true
	c.clearDDRAM()
	return c
}

// Port sets the complete port image, as written to the PCF8574.
func (c *Controller) Port(v byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setPort(v)
}

// PortValue returns the current port image.
func (c *Controller) PortValue() byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.port
}

func (c *Controller) setBit(bit uint, high bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.port &^ (1 << bit)
	if high {
		v |= 1 << bit
	}
	c.setPort(v)
}

func (c *Controller) setPort(v byte) {
	const en = 1 << BitEN
	prev := c.port
	c.port = v
	if prev&en == 0 || v&en != 0 || v&(1<<BitRW) != 0 {
		return
	}
	c.latch(v&(1<<BitRS) != 0, v>>BitD4)
}

func (c *Controller) latch(rs bool, nibble byte) {
	if c.state.EightBit {
		// D0-D3 aren't wired and read as low.
		c.exec(rs, nibble<<4)
		return
	}
	if !c.pending {
		c.high = nibble
		c.pending = true
		return
	}
	c.pending = false
	c.exec(rs, c.high<<4|nibble)
}

func (c *Controller) exec(rs bool, v byte) {
	c.trace = append(c.trace, Transaction{RS: rs, Value: v})
	if rs {
		c.writeData(v)
		return
	}
	s := &c.state
	switch {
	case v&0x80 != 0:
		s.Address = v & 0x7f
	case v&0x40 != 0:
		// CGRAM is not simulated.
	case v&0x20 != 0:
		s.EightBit = v&0x10 != 0
		s.TwoLines = v&0x08 != 0
		c.pending = false
	case v&0x10 != 0:
		step := -1
		if v&0x04 != 0 {
			step = 1
		}
		if v&0x08 != 0 {
			c.shiftDisplay(step)
		} else {
			c.moveAddress(step)
		}
	case v&0x08 != 0:
		s.DisplayOn = v&0x04 != 0
		s.CursorOn = v&0x02 != 0
		s.BlinkOn = v&0x01 != 0
	case v&0x04 != 0:
		s.Increment = v&0x02 != 0
		s.EntryShift = v&0x01 != 0
	case v&0x02 != 0:
		s.Address = 0
		s.Shift = 0
	case v&0x01 != 0:
		c.clearDDRAM()
		s.Address = 0
		s.Shift = 0
		s.Increment = true
	}
}

func (c *Controller) writeData(v byte) {
	s := &c.state
	s.DDRAM[s.Address&0x7f] = v
	step := 1
	if !s.Increment {
		step = -1
	}
	c.moveAddress(step)
	if s.EntryShift {
		c.shiftDisplay(-step)
	}
}

// moveAddress moves the address counter, wrapping from the end of the first
// line to the second and from the end of the second line to the first.
func (c *Controller) moveAddress(step int) {
	s := &c.state
	if !s.TwoLines {
		s.Address = byte((int(s.Address) + step + oneLineLen) % oneLineLen)
		return
	}
	idx := int(s.Address & 0x3f)
	if s.Address >= Line2 {
		idx += LineLen
	}
	idx = (idx + step + 2*LineLen) % (2 * LineLen)
	if idx >= LineLen {
		s.Address = byte(Line2 + idx - LineLen)
	} else {
		s.Address = byte(idx)
	}
}

func (c *Controller) shiftDisplay(step int) {
	n := c.state.lineLen()
	c.state.Shift = (c.state.Shift + step + n) % n
}

func (c *Controller) clearDDRAM() {
	for i := range c.state.DDRAM {
		c.state.DDRAM[i] = blank
	}
}

// lineLen is the length of a DDRAM line: 40 in two line mode, 80 otherwise.
func (s *State) lineLen() int {
	if s.TwoLines {
		return LineLen
	}
	return oneLineLen
}

// State returns a copy of the controller state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Backlight returns the level of the backlight line.
func (c *Controller) Backlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.port&(1<<BitBL) != 0
}

// Cursor returns the row and column of the address counter.
func (c *Controller) Cursor() (row, col int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a := c.state.Address
	if c.state.TwoLines && a >= Line2 {
		return 1, int(a - Line2)
	}
	return 0, int(a)
}

// Rows returns the characters visible through a window of cols columns,
// taking the display shift into account. It reports DDRAM content even when
// the display is off.
func (c *Controller) Rows(cols int) [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := &c.state
	if !s.TwoLines {
		row := make([]byte, cols)
		for col := range row {
			row[col] = s.DDRAM[(col-s.Shift+2*oneLineLen)%oneLineLen]
		}
		return [][]byte{row}
	}
	rows := make([][]byte, 2)
	for r := range rows {
		rows[r] = make([]byte, cols)
		for col := range rows[r] {
			rows[r][col] = s.DDRAM[r*Line2+(col-s.Shift+2*LineLen)%LineLen]
		}
	}
	return rows
}

// Transactions returns the bytes executed since New or the last
// ResetTransactions.
func (c *Controller) Transactions() []Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Transaction(nil), c.trace...)
}

// ResetTransactions empties the transaction log.
func (c *Controller) ResetTransactions() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trace = nil
}

func (c *Controller) String() string {
	return "HD44780 simulator"
}
