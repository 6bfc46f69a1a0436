// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"compress/flate"
	"io"
	"log"
	"path/filepath"
	"testing"

	"github.com/go-lpc/dtab7/config"
	"github.com/go-lpc/dtab7/internal/rawgen"
	"github.com/go-lpc/dtab7/internal/xcnv"
	"github.com/go-lpc/dtab7/rawfile"
	"go-hep.org/x/hep/lcio"
)

func TestRunNbrFrom(t *testing.T) {
	for _, tc := range []struct {
		fname string
		run   int32
	}{
		{
			fname: "./run_000063.raw",
			run:   63,
		},
		{
			fname: "/some/dir/run_663.raw",
			run:   663,
		},
		{
			fname: "../some/dir/run_000009.raw",
			run:   9,
		},
	} {
		t.Run(tc.fname, func(t *testing.T) {
			got, err := runNbrFrom(tc.fname)
			if err != nil {
				t.Fatalf("could not infer run-nbr: %+v", err)
			}
			if got != tc.run {
				t.Fatalf("invalid run: got=%d, want=%d", got, tc.run)
			}
		})
	}

	_, err := runNbrFrom("eda_063.000.raw")
	if err == nil {
		t.Fatalf("expected an error")
	}
}

func TestRaw2LCIO(t *testing.T) {
	tmp := t.TempDir()

	fname := filepath.Join(tmp, "run_000063.raw")
	w, err := rawfile.Create(fname)
	if err != nil {
		t.Fatalf("could not create raw file: %+v", err)
	}
	defer w.Close()

	gcfg := rawgen.Default()
	gcfg.Events = 5
	err = rawgen.Write(w, gcfg)
	if err != nil {
		t.Fatalf("could not generate raw file: %+v", err)
	}
	err = w.Close()
	if err != nil {
		t.Fatalf("could not close raw file: %+v", err)
	}

	var (
		msg   = log.New(io.Discard, "", 0)
		oname = fname + ".lcio"
	)
	err = process(msg, oname, flate.DefaultCompression, fname, config.Default(), -1)
	if err != nil {
		t.Fatalf("could not convert raw file: %+v", err)
	}

	r, err := lcio.Open(oname)
	if err != nil {
		t.Fatalf("could not open LCIO file: %+v", err)
	}
	defer r.Close()

	n := 0
	for r.Next() {
		evt := r.Event()
		if evt.RunNumber != 63 {
			t.Fatalf("invalid run number: got=%d, want=63", evt.RunNumber)
		}
		recs, err := xcnv.LCIO2Records(&evt)
		if err != nil {
			t.Fatalf("could not extract raw blocks: %+v", err)
		}
		if len(recs) != 1 {
			t.Fatalf("invalid number of blocks: got=%d, want=1", len(recs))
		}
		n++
	}
	if err := r.Err(); err != nil && err != io.EOF {
		t.Fatalf("could not read LCIO file: %+v", err)
	}
	if n != gcfg.Events {
		t.Fatalf("invalid number of events: got=%d, want=%d", n, gcfg.Events)
	}
}
