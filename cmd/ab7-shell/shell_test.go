// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-lpc/dtab7/config"
	"github.com/go-lpc/dtab7/internal/rawgen"
	"github.com/go-lpc/dtab7/rawfile"
)

func newTestShell(t *testing.T) (*shell, *strings.Builder) {
	t.Helper()

	fname := filepath.Join(t.TempDir(), "run_000001.raw")
	w, err := rawfile.Create(fname)
	if err != nil {
		t.Fatalf("could not create raw file: %+v", err)
	}
	gcfg := rawgen.Default()
	gcfg.Events = 3
	gcfg.FEDs = []int{1368, 1369}
	err = rawgen.Write(w, gcfg)
	if err != nil {
		t.Fatalf("could not generate raw file: %+v", err)
	}
	err = w.Close()
	if err != nil {
		t.Fatalf("could not close raw file: %+v", err)
	}

	cfg := config.Default()
	cfg.FEDs = gcfg.FEDs

	out := new(strings.Builder)
	sh, err := newShell(out, fname, cfg)
	if err != nil {
		t.Fatalf("could not create shell: %+v", err)
	}
	t.Cleanup(func() { _ = sh.Close() })
	return sh, out
}

func TestShell(t *testing.T) {
	sh, out := newTestShell(t)
	if got, want := len(sh.evts), 3; got != want {
		t.Fatalf("invalid number of events: got=%d, want=%d", got, want)
	}

	for _, tc := range []struct {
		cmd  string
		want []string
		skip string
		err  string
	}{
		{cmd: "hits", err: "no current event"},
		{cmd: "help", want: []string{"  goto   goto EVT", "  quit   quit the shell"}},
		{cmd: "next", want: []string{"=== event 1 FED 1368 ===", "=== event 1 FED 1369 ==="}},
		{cmd: "event", want: []string{"=== event 1 FED 1368 ===", "L1A:"}},
		{cmd: "hits", want: []string{"hits:"}},
		{cmd: "tps", want: []string{"primitives:"}},
		{cmd: "warn"},
		{cmd: "prev", err: "no more events"},
		{cmd: "FED 1369"},
		{cmd: "goto 3", want: []string{"=== event 3 FED 1369 ==="}, skip: "=== event 3 FED 1368 ==="},
		{cmd: "next", err: "no more events"},
		{cmd: "goto 42", err: "no event with id 42"},
		{cmd: "goto x", err: "invalid event id"},
		{cmd: "fed x", err: "invalid FED"},
		{cmd: "fed", err: "expects 1 argument(s)"},
		{cmd: "stats", want: []string{"events=3 blocks=6 rejects=0"}},
		{cmd: "boo", err: `unknown command "boo"`},
	} {
		t.Run(tc.cmd, func(t *testing.T) {
			out.Reset()
			err := sh.exec(tc.cmd)
			switch {
			case tc.err != "":
				if err == nil || !strings.Contains(err.Error(), tc.err) {
					t.Fatalf("invalid error: got=%v, want=%q", err, tc.err)
				}
				return
			case err != nil:
				t.Fatalf("could not run %q: %+v", tc.cmd, err)
			}
			for _, want := range tc.want {
				if !strings.Contains(out.String(), want) {
					t.Fatalf("missing %q in output:\n%s", want, out)
				}
			}
			if tc.skip != "" && strings.Contains(out.String(), tc.skip) {
				t.Fatalf("unexpected %q in output:\n%s", tc.skip, out)
			}
		})
	}

	err := sh.exec("quit")
	if !errors.Is(err, errQuit) {
		t.Fatalf("invalid quit error: %+v", err)
	}
}
