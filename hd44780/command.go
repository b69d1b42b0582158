// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"bytes"
	"errors"
	"fmt"
)

// ErrMalformed is returned for a request payload of the wrong size or shape.
var ErrMalformed = errors.New("hd44780: malformed request")

// MaxWrite is the largest WriteValue payload accepted by Decode.
const MaxWrite = 32

// Op is a request code. The values are stable and used on the wire.
type Op uint8

const (
	OpClearScreen  Op = 0
	OpBacklightOn  Op = 1
	OpBacklightOff Op = 2
	OpWriteValue   Op = 3
	OpReadValue    Op = 4
	OpShift        Op = 5
	OpCursorReturn Op = 6
)

func (o Op) String() string {
	switch o {
	case OpClearScreen:
		return "CLEAR_SCREEN"
	case OpBacklightOn:
		return "BACKLIGHT_ON"
	case OpBacklightOff:
		return "BACKLIGHT_OFF"
	case OpWriteValue:
		return "WRITE_VALUE"
	case OpReadValue:
		return "READ_VALUE"
	case OpShift:
		return "SHIFT"
	case OpCursorReturn:
		return "CURSOR_RETURN"
	default:
		return fmt.Sprintf("Op(%d)", uint8(o))
	}
}

// ShiftTarget selects what a Shift moves.
type ShiftTarget uint8

const (
	ShiftCursor  ShiftTarget = 0
	ShiftDisplay ShiftTarget = 1
)

func (t ShiftTarget) String() string {
	switch t {
	case ShiftCursor:
		return "cursor"
	case ShiftDisplay:
		return "display"
	default:
		return fmt.Sprintf("ShiftTarget(%d)", uint8(t))
	}
}

// Direction of a Shift.
type Direction uint8

const (
	Left  Direction = 0
	Right Direction = 1
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
}

// Command is a request for the display. The set of commands is closed: use
// one of the types below.
type Command interface {
	Op() Op
	command()
}

// WriteValue appends Text to the display buffer.
type WriteValue struct {
	Text []byte
}

// ReadValue returns a Snapshot of the display buffer.
type ReadValue struct{}

// ClearScreen empties the buffer and clears the display.
type ClearScreen struct{}

// BacklightOn turns the backlight on.
type BacklightOn struct{}

// BacklightOff turns the backlight off.
type BacklightOff struct{}

// Shift moves the cursor or the whole display by one position.
type Shift struct {
	Target    ShiftTarget
	Direction Direction
}

// CursorReturn moves the cursor home and undoes display shifts.
type CursorReturn struct{}

// Unknown is a request code that isn't recognized. Dispatching it does
// nothing.
type Unknown struct {
	Code Op
}

func (WriteValue) Op() Op   { return OpWriteValue }
func (ReadValue) Op() Op    { return OpReadValue }
func (ClearScreen) Op() Op  { return OpClearScreen }
func (BacklightOn) Op() Op  { return OpBacklightOn }
func (BacklightOff) Op() Op { return OpBacklightOff }
func (Shift) Op() Op        { return OpShift }
func (CursorReturn) Op() Op { return OpCursorReturn }
func (u Unknown) Op() Op    { return u.Code }

func (WriteValue) command()   {}
func (ReadValue) command()    {}
func (ClearScreen) command()  {}
func (BacklightOn) command()  {}
func (BacklightOff) command() {}
func (Shift) command()        {}
func (CursorReturn) command() {}
func (Unknown) command()      {}

// Decode builds a Command from a request code and its raw payload.
//
// The WriteValue payload is a zero padded string of at most MaxWrite bytes;
// it ends at the first NUL. The Shift payload is two bytes, target then
// direction, each 0 or 1. Other requests have no payload. Unrecognized codes
// decode to Unknown.
func Decode(op Op, payload []byte) (Command, error) {
	switch op {
	case OpWriteValue:
		if len(payload) > MaxWrite {
			return nil, fmt.Errorf("%w: %s payload of %d bytes", ErrMalformed, op, len(payload))
		}
		if i := bytes.IndexByte(payload, 0); i >= 0 {
			payload = payload[:i]
		}
		return WriteValue{Text: append([]byte(nil), payload...)}, nil
	case OpShift:
		if len(payload) != 2 {
			return nil, fmt.Errorf("%w: %s payload of %d bytes", ErrMalformed, op, len(payload))
		}
		c := Shift{Target: ShiftTarget(payload[0]), Direction: Direction(payload[1])}
		if _, err := shiftCommand(c.Target, c.Direction); err != nil {
			return nil, err
		}
		return c, nil
	case OpReadValue, OpClearScreen, OpBacklightOn, OpBacklightOff, OpCursorReturn:
		if len(payload) != 0 {
			return nil, fmt.Errorf("%w: %s takes no payload", ErrMalformed, op)
		}
		switch op {
		case OpReadValue:
			return ReadValue{}, nil
		case OpClearScreen:
			return ClearScreen{}, nil
		case OpBacklightOn:
			return BacklightOn{}, nil
		case OpBacklightOff:
			return BacklightOff{}, nil
		default:
			return CursorReturn{}, nil
		}
	default:
		return Unknown{Code: op}, nil
	}
}

// Encode returns the request code and payload of c. It is the inverse of
// Decode.
func Encode(c Command) (Op, []byte) {
	switch c := c.(type) {
	case WriteValue:
		return OpWriteValue, append([]byte(nil), c.Text...)
	case Shift:
		return OpShift, []byte{byte(c.Target), byte(c.Direction)}
	default:
		return c.Op(), nil
	}
}
