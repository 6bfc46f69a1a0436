// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-lpc/dtab7/internal/rawgen"
	"github.com/go-lpc/dtab7/rawfile"
)

func TestGen(t *testing.T) {
	tmp := t.TempDir()

	cfg := rawgen.Default()
	cfg.Events = 20
	cfg.FEDs = []int{1368, 1369}
	cfg.Slots = []int{2, 3, 4}

	fname := filepath.Join(tmp, "run_000001.raw")
	err := process(fname, cfg)
	if err != nil {
		t.Fatalf("could not generate raw file: %+v", err)
	}

	r, err := rawfile.Open(fname)
	if err != nil {
		t.Fatalf("could not open raw file: %+v", err)
	}
	defer r.Close()

	n := 0
	for r.NextEvent() {
		evt := r.Event()
		n++
		if got, want := evt.ID, uint32(n); got != want {
			t.Fatalf("invalid event id: got=%d, want=%d", got, want)
		}
		if got, want := len(evt.Blocks), 2; got != want {
			t.Fatalf("invalid number of blocks: got=%d, want=%d", got, want)
		}
	}
	if err := r.Err(); err != nil {
		t.Fatalf("could not read raw file: %+v", err)
	}
	if n != cfg.Events {
		t.Fatalf("invalid number of events: got=%d, want=%d", n, cfg.Events)
	}

	// same seed, same file.
	other := filepath.Join(tmp, "run_000002.raw")
	xmain([]string{"-o", other, "-n", "20", "-feds", "1368,1369", "-slots", "2,3,4"})

	want, err := os.ReadFile(fname)
	if err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(other)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("generation is not reproducible")
	}
}

func TestParseInts(t *testing.T) {
	for _, tc := range []struct {
		in  string
		n   int
		err bool
	}{
		{in: "1", n: 1},
		{in: "1, 2,3,", n: 3},
		{in: ",", err: true},
		{in: "a", err: true},
	} {
		t.Run(tc.in, func(t *testing.T) {
			vs, err := parseInts(tc.in)
			switch {
			case tc.err && err == nil:
				t.Fatalf("expected an error")
			case !tc.err && err != nil:
				t.Fatalf("could not parse %q: %+v", tc.in, err)
			case !tc.err && len(vs) != tc.n:
				t.Fatalf("invalid values: %v", vs)
			}
		})
	}
}
