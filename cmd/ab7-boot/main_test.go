// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"
)

func TestRun(t *testing.T) {
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skipf("no sleep command: %+v", err)
	}

	for _, tc := range []struct {
		name string
		args []string
		mon  bool
		stop bool
		err  bool
	}{
		{
			name: "simple",
			args: []string{"sleep 1", "sleep 1", "sleep 2"},
		},
		{
			name: "simple-pmon",
			args: []string{"sleep 1", "sleep 2"},
			mon:  true,
		},
		{
			name: "simple-stop",
			args: []string{"sleep 30", "sleep 30"},
			stop: true,
		},
		{
			name: "simple-stop-pmon",
			args: []string{"sleep 30", "sleep 30"},
			stop: true,
			mon:  true,
		},
		{
			name: "failing",
			args: []string{"sleep 1", "sleep not-a-duration"},
			err:  true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			cmds, err := commands(tc.args)
			if err != nil {
				t.Fatalf("could not create commands: %+v", err)
			}

			stop := make(chan os.Signal, 1)
			if tc.stop {
				go func() {
					time.Sleep(2 * time.Second)
					stop <- os.Interrupt
				}()
			}
			err = run(tc.mon, 500*time.Millisecond, cmds, dir, stop)
			switch {
			case tc.err && err == nil:
				t.Fatalf("expected an error")
			case !tc.err && err != nil:
				t.Fatalf("could not run processes: %+v", err)
			}

			if _, err := os.Stat(filepath.Join(dir, "sleep-0.log")); err != nil {
				t.Fatalf("missing log file: %+v", err)
			}
			if tc.mon {
				if _, err := os.Stat(filepath.Join(dir, "sleep-0-pmon.log")); err != nil {
					t.Fatalf("missing pmon log file: %+v", err)
				}
			}
		})
	}
}

func TestCommands(t *testing.T) {
	_, err := commands(nil)
	if err == nil {
		t.Fatalf("expected an error")
	}
	_, err = commands([]string{"  "})
	if err == nil {
		t.Fatalf("expected an error")
	}

	cmds, err := commands([]string{"ab7-srv -cfg ab7.yaml"})
	if err != nil {
		t.Fatalf("could not create commands: %+v", err)
	}
	if got, want := cmds[0].Args, []string{"ab7-srv", "-cfg", "ab7.yaml"}; len(got) != len(want) || got[2] != want[2] {
		t.Fatalf("invalid args: got=%q, want=%q", got, want)
	}
}
