// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

const (
	// enablePulse is the minimum high time of the enable line.
	enablePulse = time.Microsecond
	// latchDelay is the time the controller needs to latch a nibble after the
	// enable falling edge. Shorter values corrupt characters.
	latchDelay = 50 * time.Microsecond
)

// ErrLineNotFound is the cause of a LineError when a pin name doesn't
// resolve.
var ErrLineNotFound = errors.New("hd44780: line not found")

// Lines are the eight output lines wired between the I/O expander and the
// controller. The display is driven in 4-bit mode, so only D4-D7 are used.
type Lines struct {
	D4, D5, D6, D7 gpio.PinOut
	EN             gpio.PinOut
	RW             gpio.PinOut
	RS             gpio.PinOut
	BL             gpio.PinOut
}

// LineNames names the pins in gpioreg that make up Lines.
type LineNames struct {
	D4, D5, D6, D7 string
	EN, RW, RS, BL string
}

// LineError reports a line that couldn't be acquired.
type LineError struct {
	// Line is the logical line: d4, d5, d6, d7, en, rw, rs or bl.
	Line string
	// Pin is the pin name that was looked up, if any.
	Pin string
	Err error
}

func (e *LineError) Error() string {
	if e.Pin == "" {
		return fmt.Sprintf("hd44780: line %s: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("hd44780: line %s (%s): %v", e.Line, e.Pin, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

type namedLine struct {
	name string
	pin  gpio.PinOut
}

// named returns the lines in acquisition order.
func (l *Lines) named() []namedLine {
	return []namedLine{
		{"d4", l.D4}, {"d5", l.D5}, {"d6", l.D6}, {"d7", l.D7},
		{"en", l.EN}, {"rw", l.RW}, {"rs", l.RS}, {"bl", l.BL},
	}
}

func (l *Lines) check() error {
	for _, nl := range l.named() {
		if nl.pin == nil {
			return &LineError{Line: nl.name, Err: ErrLineNotFound}
		}
	}
	return nil
}

// halt releases every line. The first error is returned.
func (l *Lines) halt() error {
	var err error
	for _, nl := range l.named() {
		if e := nl.pin.Halt(); e != nil && err == nil {
			err = &LineError{Line: nl.name, Pin: nl.pin.Name(), Err: e}
		}
	}
	return err
}

func (l *Lines) String() string {
	parts := make([]string, 0, 8)
	for _, nl := range l.named() {
		if nl.pin != nil {
			parts = append(parts, nl.name+"="+nl.pin.Name())
		}
	}
	return strings.Join(parts, ",")
}

// ResolveLines looks up every line in gpioreg. The first line that doesn't
// resolve is reported as a *LineError, in the order d4, d5, d6, d7, en, rw,
// rs, bl.
func ResolveLines(names LineNames) (Lines, error) {
	var lines Lines
	for _, r := range []struct {
		line string
		name string
		dst  *gpio.PinOut
	}{
		{"d4", names.D4, &lines.D4}, {"d5", names.D5, &lines.D5},
		{"d6", names.D6, &lines.D6}, {"d7", names.D7, &lines.D7},
		{"en", names.EN, &lines.EN}, {"rw", names.RW, &lines.RW},
		{"rs", names.RS, &lines.RS}, {"bl", names.BL, &lines.BL},
	} {
		p := gpioreg.ByName(r.name)
		if p == nil {
			return Lines{}, &LineError{Line: r.line, Pin: r.name, Err: ErrLineNotFound}
		}
		*r.dst = p
	}
	return lines, nil
}

// ParseLineNames parses a comma separated list of line=pin assignments, for
// example "d4=GPIO27,d5=GPIO22,...". All eight lines must be present.
func ParseLineNames(s string) (LineNames, error) {
	var names LineNames
	dst := map[string]*string{
		"d4": &names.D4, "d5": &names.D5, "d6": &names.D6, "d7": &names.D7,
		"en": &names.EN, "rw": &names.RW, "rs": &names.RS, "bl": &names.BL,
	}
	for _, field := range strings.Split(s, ",") {
		line, pin, ok := strings.Cut(strings.TrimSpace(field), "=")
		if !ok || pin == "" {
			return LineNames{}, fmt.Errorf("hd44780: invalid line assignment %q", field)
		}
		p, found := dst[strings.ToLower(line)]
		if !found {
			return LineNames{}, fmt.Errorf("hd44780: unknown line %q", line)
		}
		*p = pin
	}
	for _, line := range []string{"d4", "d5", "d6", "d7", "en", "rw", "rs", "bl"} {
		if *dst[line] == "" {
			return LineNames{}, &LineError{Line: line, Err: ErrLineNotFound}
		}
	}
	return names, nil
}

// lineDriver sets single lines and strobes the enable line with the timing
// the controller requires. wait must block for at least the given duration.
type lineDriver struct {
	lines Lines
	wait  func(time.Duration)
}

func (ld *lineDriver) setLine(nl namedLine, l gpio.Level) error {
	if err := nl.pin.Out(l); err != nil {
		return fmt.Errorf("hd44780: set %s: %w", nl.name, err)
	}
	return nil
}

// strobe pulses the enable line so the controller latches the nibble
// currently presented on D4-D7.
func (ld *lineDriver) strobe() error {
	en := namedLine{"en", ld.lines.EN}
	if err := ld.setLine(en, gpio.High); err != nil {
		return err
	}
	ld.wait(enablePulse)
	if err := ld.setLine(en, gpio.Low); err != nil {
		return err
	}
	ld.wait(latchDelay)
	return nil
}

// waitFor blocks for at least d. Waits under a millisecond spin on the
// monotonic clock.
func waitFor(d time.Duration) {
	if d >= time.Millisecond {
		time.Sleep(d)
		return
	}
	for start := time.Now(); time.Since(start) < d; {
	}
}
