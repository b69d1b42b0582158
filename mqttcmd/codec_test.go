// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mqttcmd

import (
	"errors"
	"testing"

	"github.com/GermanBionicSystems/lcd1602/hd44780"
	"github.com/google/go-cmp/cmp"
)

func TestEncodeRequest(t *testing.T) {
	for _, tc := range []struct {
		c    hd44780.Command
		want []byte
	}{
		{hd44780.ClearScreen{}, []byte{0}},
		{hd44780.BacklightOn{}, []byte{1}},
		{hd44780.BacklightOff{}, []byte{2}},
		{hd44780.WriteValue{Text: []byte("Hi")}, []byte{3, 'H', 'i'}},
		{hd44780.ReadValue{}, []byte{4}},
		{hd44780.Shift{Target: hd44780.ShiftDisplay, Direction: hd44780.Right}, []byte{5, 1, 1}},
		{hd44780.CursorReturn{}, []byte{6}},
	} {
		got := EncodeRequest(tc.c)
		if diff := cmp.Diff(got, tc.want); diff != "" {
			t.Errorf("EncodeRequest(%s) difference (-got +want):\n%s", tc.c.Op(), diff)
		}
		back, err := DecodeRequest(got)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(back, tc.c); diff != "" {
			t.Errorf("DecodeRequest() difference (-got +want):\n%s", diff)
		}
	}
}

func TestDecodeRequestErrors(t *testing.T) {
	if _, err := DecodeRequest(nil); !errors.Is(err, ErrEmpty) {
		t.Errorf("got %v", err)
	}
	if _, err := DecodeRequest([]byte{5, 1}); !errors.Is(err, hd44780.ErrMalformed) {
		t.Errorf("got %v", err)
	}
	c, err := DecodeRequest([]byte{200})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(hd44780.Unknown); !ok {
		t.Errorf("got %T", c)
	}
}

func TestSnapshot(t *testing.T) {
	s := hd44780.Snapshot{Data: []byte("ab\ncd"), Length: 5, Row: 1, Col: 2}
	p := EncodeSnapshot(s)
	if diff := cmp.Diff(p, []byte{5, 'a', 'b', '\n', 'c', 'd'}); diff != "" {
		t.Errorf("EncodeSnapshot() difference (-got +want):\n%s", diff)
	}
	got, err := DecodeSnapshot(p)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(got, hd44780.Snapshot{Data: []byte("ab\ncd"), Length: 5}); diff != "" {
		t.Errorf("DecodeSnapshot() difference (-got +want):\n%s", diff)
	}
	if p := EncodeSnapshot(hd44780.Snapshot{}); len(p) != 1 || p[0] != 0 {
		t.Errorf("empty snapshot: %v", p)
	}
	if _, err := DecodeSnapshot(nil); !errors.Is(err, ErrEmpty) {
		t.Errorf("got %v", err)
	}
	if _, err := DecodeSnapshot([]byte{3, 'a'}); err == nil {
		t.Error("expected error")
	}
}
