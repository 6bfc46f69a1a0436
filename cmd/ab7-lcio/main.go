// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command ab7-lcio unpacks an AB7 raw data file into an LCIO one.
package main // import "github.com/go-lpc/dtab7/cmd/ab7-lcio"

import (
	"compress/flate"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/go-lpc/dtab7/config"
	"github.com/go-lpc/dtab7/geom"
	"github.com/go-lpc/dtab7/internal/xcnv"
	"github.com/go-lpc/dtab7/rawfile"
	"github.com/go-lpc/dtab7/unpack"
	"go-hep.org/x/hep/lcio"
)

const usage = `Usage: ab7-lcio [OPTIONS] run_NNNNNN.raw

ex:
 $> ab7-lcio -o out.lcio -lvl=9 -cfg ab7.yaml ./run_000042.raw

options:
`

func main() {
	xmain(os.Stdout, os.Args[1:])
}

func xmain(w io.Writer, args []string) {
	msg := log.New(w, "ab7-lcio: ", 0)

	var (
		fset = flag.NewFlagSet("ab7-lcio", flag.ExitOnError)

		oname = fset.String("o", "out.lcio", "path to output LCIO file")
		compr = fset.Int("lvl", flate.DefaultCompression, "compression level for output LCIO file")
		cname = fset.String("cfg", "", "path to YAML unpacker configuration")
		run   = fset.Int("run", -1, "run number (default: inferred from input file name)")
	)

	fset.Usage = func() {
		fmt.Fprint(w, usage)
		fset.PrintDefaults()
	}

	err := fset.Parse(args)
	if err != nil {
		msg.Fatalf("could not parse input arguments: %+v", err)
	}

	if fset.NArg() != 1 {
		fset.Usage()
		msg.Fatalf("missing input raw file")
	}

	if *oname == "" {
		fset.Usage()
		msg.Fatalf("invalid output LCIO file name")
	}

	cfg := config.Default()
	if *cname != "" {
		cfg, err = config.Load(*cname)
		if err != nil {
			msg.Fatalf("could not load configuration: %+v", err)
		}
	}

	err = process(msg, *oname, *compr, fset.Arg(0), cfg, *run)
	if err != nil {
		msg.Fatalf("could not convert raw file: %+v", err)
	}
}

func process(msg *log.Logger, oname string, lvl int, fname string, cfg config.Config, run int) error {
	if run < 0 {
		v, err := runNbrFrom(fname)
		if err != nil {
			return fmt.Errorf("could not infer run from %q: %w", fname, err)
		}
		run = int(v)
	}

	u, err := unpack.FromConfig(cfg, geom.NewNominal(), unpack.WithLogger(msg))
	if err != nil {
		return fmt.Errorf("could not create unpacker: %w", err)
	}

	r, err := rawfile.Open(fname)
	if err != nil {
		return fmt.Errorf("could not open raw file: %w", err)
	}
	defer r.Close()

	w, err := lcio.Create(oname)
	if err != nil {
		return fmt.Errorf("could not create output LCIO file: %w", err)
	}
	defer w.Close()

	w.SetCompressionLevel(lvl)

	st, err := xcnv.Raw2LCIO(context.Background(), w, r, u, int32(run), msg)
	if err != nil {
		return fmt.Errorf("could not convert raw file to LCIO: %w", err)
	}
	msg.Printf("run %d: %v", run, st)

	err = w.Close()
	if err != nil {
		return fmt.Errorf("could not close output LCIO file: %w", err)
	}

	return nil
}

func runNbrFrom(fname string) (int32, error) {
	var (
		name = filepath.Base(fname)
		run  int32
	)
	_, err := fmt.Sscanf(name, "run_%d.raw", &run)
	return run, err
}
