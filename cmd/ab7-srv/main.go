// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command ab7-srv starts a TDAQ server unpacking AB7 FED blocks.
//
// Raw events are received on the /ab7-raw input, in the raw file format.
// The trigger primitives of each unpacked event are published on the
// /ab7-primitives output.
package main // import "github.com/go-lpc/dtab7/cmd/ab7-srv"

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/go-daq/tdaq"
	"github.com/go-daq/tdaq/flags"
	"github.com/go-lpc/dtab7"
)

func main() {
	fname := flag.String("cfg", "", "path to YAML unpacker configuration")

	cmd := flags.New()

	srv := newServer(cmd.Args[0], *fname)
	defer srv.close()

	if v, sum := dtab7.Version(); v != "" {
		srv.msg.Printf("dtab7 version %s (%s)", v, sum)
	}

	run := tdaq.New(cmd, os.Stdout)
	run.CmdHandle("/config", srv.OnConfig)
	run.CmdHandle("/init", srv.OnInit)
	run.CmdHandle("/reset", srv.OnReset)
	run.CmdHandle("/start", srv.OnStart)
	run.CmdHandle("/stop", srv.OnStop)
	run.CmdHandle("/quit", srv.OnQuit)

	run.InputHandle("/ab7-raw", srv.onRaw)
	run.OutputHandle("/ab7-primitives", srv.onPrimitives)

	err := run.Run(context.Background())
	if err != nil {
		log.Panicf("error: %+v", err)
	}
}
