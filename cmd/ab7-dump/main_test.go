// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-lpc/dtab7/ab7"
	"github.com/go-lpc/dtab7/config"
	"github.com/go-lpc/dtab7/rawfile"
)

func writeRaw(t *testing.T, fname string) {
	t.Helper()

	raw, err := ab7.NewEncoder(1368).Encode(ab7.Event{
		Event: 1,
		BX:    100,
		Orbit: 7,
		Slots: []ab7.Slot{{
			ID:       3,
			Firmware: 11,
			Words: []uint64{
				ab7.HitWord(&ab7.HitData{Station: 2, SuperLayer: 1, Channel: 5, BX: 100, SubBX: 7}, nil),
			},
		}},
	})
	if err != nil {
		t.Fatalf("could not encode block: %+v", err)
	}

	w, err := rawfile.Create(fname)
	if err != nil {
		t.Fatalf("could not create raw file: %+v", err)
	}
	defer w.Close()

	for _, rec := range []rawfile.Record{
		{Event: 1, FED: 1368, Data: raw},
		{Event: 2, FED: 1368, Data: make([]byte, 16)},
	} {
		err = w.Write(rec)
		if err != nil {
			t.Fatalf("could not write record: %+v", err)
		}
	}

	err = w.Close()
	if err != nil {
		t.Fatalf("could not close raw file: %+v", err)
	}
}

func TestDump(t *testing.T) {
	tmp := t.TempDir()
	fname := filepath.Join(tmp, "run.raw")
	writeRaw(t, fname)

	xmain(io.Discard, []string{"-hex", "-ext", fname})
}

func TestProcess(t *testing.T) {
	tmp := t.TempDir()
	fname := filepath.Join(tmp, "run.raw")
	writeRaw(t, fname)

	for _, tc := range []struct {
		name  string
		nevts int
		want  []string
		skip  []string
	}{
		{
			name:  "all",
			nevts: -1,
			want: []string{
				"=== event 1 FED 1368 ===\n",
				"version:           v11\n",
				"slots:      [3]\n",
				"hits:                1\n",
				"  wh=+2 st=2 sec=12 sl=1 l=2 w=  2 ch=  5 bx= 100 t=    6",
				"primitives:          0\n",
				"=== event 2 FED 1368 === rejected: ",
				"--- events=2 blocks=1 rejects=1 missing=0 warnings=0 hits=1 primitives=0\n",
			},
		},
		{
			name:  "first",
			nevts: 1,
			want: []string{
				"=== event 1 FED 1368 ===\n",
				"--- events=1 blocks=1 rejects=0",
			},
			skip: []string{"event 2"},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			o := new(strings.Builder)
			err := process(o, fname, config.Default(), tc.nevts)
			if err != nil {
				t.Fatalf("could not process file: %+v", err)
			}
			out := o.String()
			for _, want := range tc.want {
				if !strings.Contains(out, want) {
					t.Fatalf("missing %q in output:\n%s", want, out)
				}
			}
			for _, skip := range tc.skip {
				if strings.Contains(out, skip) {
					t.Fatalf("unexpected %q in output:\n%s", skip, out)
				}
			}
		})
	}
}

func TestProcessInvalid(t *testing.T) {
	tmp := t.TempDir()
	fname := filepath.Join(tmp, "invalid.raw")
	err := os.WriteFile(fname, []byte("not a raw file"), 0644)
	if err != nil {
		t.Fatal(err)
	}

	err = process(io.Discard, fname, config.Default(), -1)
	if err == nil {
		t.Fatalf("expected an error")
	}
}
