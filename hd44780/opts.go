// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// MaxCols is the length of one DDRAM line.
const MaxCols = 40

// ErrGeometry is returned for a display size the driver can't address.
var ErrGeometry = errors.New("hd44780: unsupported geometry")

// Opts are the display options.
type Opts struct {
	// Rows is 1 or 2.
	Rows int
	// Cols is between 1 and MaxCols.
	Cols int
	// Backlight turns the backlight on before the initialization handshake.
	Backlight bool
	// Logger receives diagnostics. Defaults to logrus.StandardLogger().
	Logger logrus.FieldLogger
}

// DefaultOpts is a backlit 16x2 display.
var DefaultOpts = Opts{
	Rows:      2,
	Cols:      16,
	Backlight: true,
}

func (o *Opts) validate() error {
	if o.Rows < 1 || o.Rows > len(rowOffsets) {
		return fmt.Errorf("%w: %d rows", ErrGeometry, o.Rows)
	}
	if o.Cols < 1 || o.Cols > MaxCols {
		return fmt.Errorf("%w: %d columns", ErrGeometry, o.Cols)
	}
	return nil
}

func (o *Opts) logger() logrus.FieldLogger {
	if o.Logger == nil {
		return logrus.StandardLogger()
	}
	return o.Logger
}
