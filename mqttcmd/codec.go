// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package mqttcmd carries display commands over MQTT.
//
// A request is published on the command topic as one request code byte
// (hd44780.Op) followed by the payload of that request. ReadValue requests
// are answered on the reply topic with one length byte followed by the
// buffered text.
package mqttcmd

import (
	"errors"
	"fmt"

	"github.com/GermanBionicSystems/lcd1602/hd44780"
)

// ErrEmpty is returned for a request without a request code.
var ErrEmpty = errors.New("mqttcmd: empty request")

// EncodeRequest returns the wire form of c.
func EncodeRequest(c hd44780.Command) []byte {
	op, payload := hd44780.Encode(c)
	return append([]byte{byte(op)}, payload...)
}

// DecodeRequest parses the wire form of a request.
func DecodeRequest(p []byte) (hd44780.Command, error) {
	if len(p) == 0 {
		return nil, ErrEmpty
	}
	return hd44780.Decode(hd44780.Op(p[0]), p[1:])
}

// EncodeSnapshot returns the wire form of a ReadValue reply.
func EncodeSnapshot(s hd44780.Snapshot) []byte {
	return append([]byte{byte(s.Length)}, s.Data[:s.Length]...)
}

// DecodeSnapshot parses the wire form of a ReadValue reply. Only Data and
// Length are carried.
func DecodeSnapshot(p []byte) (hd44780.Snapshot, error) {
	if len(p) == 0 {
		return hd44780.Snapshot{}, ErrEmpty
	}
	n := int(p[0])
	if len(p)-1 != n {
		return hd44780.Snapshot{}, fmt.Errorf("mqttcmd: reply length %d, carries %d bytes", n, len(p)-1)
	}
	return hd44780.Snapshot{Data: append([]byte(nil), p[1:]...), Length: n}, nil
}
