// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecode(t *testing.T) {
	for _, tc := range []struct {
		name    string
		op      Op
		payload []byte
		want    Command
	}{
		{"write", OpWriteValue, []byte("Hello"), WriteValue{Text: []byte("Hello")}},
		{"write zero padded", OpWriteValue, append([]byte("Hi\n"), make([]byte, 29)...), WriteValue{Text: []byte("Hi\n")}},
		{"write empty", OpWriteValue, nil, WriteValue{}},
		{"read", OpReadValue, nil, ReadValue{}},
		{"clear", OpClearScreen, nil, ClearScreen{}},
		{"backlight on", OpBacklightOn, nil, BacklightOn{}},
		{"backlight off", OpBacklightOff, nil, BacklightOff{}},
		{"shift", OpShift, []byte{1, 0}, Shift{Target: ShiftDisplay, Direction: Left}},
		{"cursor return", OpCursorReturn, nil, CursorReturn{}},
		{"unknown", Op(42), []byte{1, 2, 3}, Unknown{Code: 42}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode(tc.op, tc.payload)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(got, tc.want); diff != "" {
				t.Errorf("Decode() difference (-got +want):\n%s", diff)
			}
			if got.Op() != tc.op {
				t.Errorf("Op() = %s, want %s", got.Op(), tc.op)
			}
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	for _, tc := range []struct {
		name    string
		op      Op
		payload []byte
	}{
		{"write too long", OpWriteValue, make([]byte, MaxWrite+1)},
		{"shift short", OpShift, []byte{1}},
		{"shift long", OpShift, []byte{1, 1, 1}},
		{"shift target", OpShift, []byte{2, 0}},
		{"shift direction", OpShift, []byte{0, 2}},
		{"read payload", OpReadValue, []byte{0}},
		{"clear payload", OpClearScreen, []byte("x")},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Decode(tc.op, tc.payload); !errors.Is(err, ErrMalformed) {
				t.Errorf("got %v, want %v", err, ErrMalformed)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	for _, c := range []Command{
		WriteValue{Text: []byte("abc")},
		Shift{Target: ShiftCursor, Direction: Right},
		ClearScreen{},
		CursorReturn{},
	} {
		op, payload := Encode(c)
		got, err := Decode(op, payload)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(got, c); diff != "" {
			t.Errorf("Decode(Encode(%s)) difference (-got +want):\n%s", c.Op(), diff)
		}
	}
}

func TestOpString(t *testing.T) {
	if s := OpShift.String(); s != "SHIFT" {
		t.Errorf("got %q", s)
	}
	if s := Op(9).String(); s != "Op(9)" {
		t.Errorf("got %q", s)
	}
	if s := ShiftDisplay.String() + " " + Right.String(); s != "display right" {
		t.Errorf("got %q", s)
	}
}
