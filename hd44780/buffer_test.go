// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/sirupsen/logrus/hooks/test"
)

type record struct {
	char byte
	row  int
	move bool
}

type fakeRenderer struct {
	records []record
	err     error
}

func (r *fakeRenderer) putChar(c byte) error {
	r.records = append(r.records, record{char: c})
	return r.err
}

func (r *fakeRenderer) setCursorRow(row int) error {
	r.records = append(r.records, record{row: row, move: true})
	return r.err
}

func chars(s string) []record {
	out := make([]record, 0, len(s))
	for i := range len(s) {
		out = append(out, record{char: s[i]})
	}
	return out
}

func row(n int) record {
	return record{row: n, move: true}
}

func concat(parts ...[]record) []record {
	var out []record
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestBufferConsume(t *testing.T) {
	for _, tc := range []struct {
		name     string
		rows     int
		cols     int
		writes   []string
		accepted []int
		want     []record
		snapshot Snapshot
	}{
		{
			name:     "hello",
			rows:     2,
			cols:     16,
			writes:   []string{"Hello, World!\n"},
			accepted: []int{14},
			want:     concat(chars("Hello, World!"), []record{row(1)}),
			snapshot: Snapshot{Data: []byte("Hello, World!\n"), Length: 14, Row: 1, Col: 0},
		},
		{
			name:     "wrap",
			rows:     2,
			cols:     16,
			writes:   []string{"ABCDEFGHIJKLMNOPQ"},
			accepted: []int{17},
			want:     concat(chars("ABCDEFGHIJKLMNOP"), []record{row(1)}, chars("Q")),
			snapshot: Snapshot{Data: []byte("ABCDEFGHIJKLMNOPQ"), Length: 17, Row: 1, Col: 1},
		},
		{
			name:     "full",
			rows:     2,
			cols:     16,
			writes:   []string{"0123456789012345678901234567890123456789"},
			accepted: []int{32},
			want:     concat(chars("0123456789012345"), []record{row(1)}, chars("6789012345678901")),
			snapshot: Snapshot{Data: []byte("01234567890123456789012345678901"), Length: 32, Row: 1, Col: 16},
		},
		{
			name:     "appends",
			rows:     2,
			cols:     16,
			writes:   []string{"ab", "cd\n", "ef"},
			accepted: []int{2, 3, 2},
			want:     concat(chars("abcd"), []record{row(1)}, chars("ef")),
			snapshot: Snapshot{Data: []byte("abcd\nef"), Length: 7, Row: 1, Col: 2},
		},
		{
			name:     "full refuses later writes",
			rows:     1,
			cols:     4,
			writes:   []string{"abcd", "e"},
			accepted: []int{4, 0},
			want:     chars("abcd"),
			snapshot: Snapshot{Data: []byte("abcd"), Length: 4, Row: 0, Col: 4},
		},
		{
			name:     "newline past the last row",
			rows:     2,
			cols:     16,
			writes:   []string{"a\nb\nc"},
			accepted: []int{5},
			want:     concat(chars("a"), []record{row(1)}, chars("bc")),
			snapshot: Snapshot{Data: []byte("a\nb\nc"), Length: 5, Row: 2, Col: 1},
		},
		{
			name:     "newline counts against capacity",
			rows:     2,
			cols:     2,
			writes:   []string{"\n\n\n\nx"},
			accepted: []int{4},
			want:     []record{row(1)},
			snapshot: Snapshot{Data: []byte("\n\n\n\n"), Length: 4, Row: 4, Col: 0},
		},
		{
			name:     "last row doesn't wrap",
			rows:     2,
			cols:     4,
			writes:   []string{"a\nbcdefg"},
			accepted: []int{8},
			want:     concat(chars("a"), []record{row(1)}, chars("bcdefg")),
			snapshot: Snapshot{Data: []byte("a\nbcdefg"), Length: 8, Row: 1, Col: 6},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			log, _ := test.NewNullLogger()
			b := newBuffer(tc.rows, tc.cols)
			var r fakeRenderer
			for i, w := range tc.writes {
				n, err := b.consume([]byte(w), &r, log)
				if err != nil {
					t.Fatal(err)
				}
				if n != tc.accepted[i] {
					t.Errorf("consume(%q) = %d, want %d", w, n, tc.accepted[i])
				}
			}
			if diff := cmp.Diff(r.records, tc.want, cmpopts.EquateEmpty(), cmp.AllowUnexported(record{})); diff != "" {
				t.Errorf("rendering difference (-got +want):\n%s", diff)
			}
			if diff := cmp.Diff(b.snapshot(), tc.snapshot, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("snapshot difference (-got +want):\n%s", diff)
			}
		})
	}
}

func TestBufferFullWarns(t *testing.T) {
	log, hook := test.NewNullLogger()
	b := newBuffer(2, 16)
	var r fakeRenderer
	if _, err := b.consume(make([]byte, 40), &r, log); err != nil {
		t.Fatal(err)
	}
	e := hook.LastEntry()
	if e == nil || e.Message != "buffer full" {
		t.Fatalf("got %v, want a buffer full warning", e)
	}
	if e.Data["accepted"] != 32 || e.Data["dropped"] != 8 {
		t.Errorf("fields %v", e.Data)
	}
}

func TestBufferReset(t *testing.T) {
	log, _ := test.NewNullLogger()
	b := newBuffer(2, 16)
	var r fakeRenderer
	if _, err := b.consume([]byte("Hello\nWorld"), &r, log); err != nil {
		t.Fatal(err)
	}
	b.reset()
	s := b.snapshot()
	if s.Length != 0 || len(s.Data) != 0 || s.Row != 0 || s.Col != 0 {
		t.Errorf("snapshot after reset: %+v", s)
	}
	for i, c := range b.data[:cap(b.data)] {
		if c != 0 {
			t.Fatalf("byte %d is %#x after reset", i, c)
		}
	}
	// The full capacity is available again.
	if n, _ := b.consume(make([]byte, 40), &r, log); n != 32 {
		t.Errorf("consume after reset = %d, want 32", n)
	}
}

func TestBufferRenderError(t *testing.T) {
	log, _ := test.NewNullLogger()
	errFail := errors.New("fail")
	b := newBuffer(2, 16)
	r := fakeRenderer{err: errFail}
	n, err := b.consume([]byte("abc"), &r, log)
	if !errors.Is(err, errFail) {
		t.Fatalf("got %v, want %v", err, errFail)
	}
	if n != 1 || b.snapshot().Length != 1 {
		t.Errorf("accepted %d, buffered %d, want 1", n, b.snapshot().Length)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	log, _ := test.NewNullLogger()
	b := newBuffer(2, 16)
	if _, err := b.consume([]byte("abc"), &fakeRenderer{}, log); err != nil {
		t.Fatal(err)
	}
	s := b.snapshot()
	s.Data[0] = 'x'
	if got := b.snapshot().Data[0]; got != 'a' {
		t.Errorf("buffer modified through snapshot: %q", got)
	}
}
