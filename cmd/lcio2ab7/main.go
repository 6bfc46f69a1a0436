// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command lcio2ab7 extracts the AB7 raw blocks of a LCIO file into a raw
// data file.
package main // import "github.com/go-lpc/dtab7/cmd/lcio2ab7"

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/go-lpc/dtab7/internal/xcnv"
	"github.com/go-lpc/dtab7/rawfile"
	"go-hep.org/x/hep/lcio"
)

const usage = `Usage: lcio2ab7 [OPTIONS] file.lcio

ex:
 $> lcio2ab7 -o out.raw ./input.lcio

options:
`

func main() {
	xmain(os.Args[1:])
}

func xmain(args []string) {
	log.SetPrefix("lcio2ab7: ")
	log.SetFlags(0)

	var (
		fset  = flag.NewFlagSet("lcio2ab7", flag.ExitOnError)
		oname = fset.String("o", "out.raw", "path to output raw file")
	)

	fset.Usage = func() {
		fmt.Print(usage)
		fset.PrintDefaults()
	}

	err := fset.Parse(args)
	if err != nil {
		log.Fatalf("could not parse input arguments: %+v", err)
	}

	if fset.NArg() != 1 {
		fset.Usage()
		log.Fatalf("missing input LCIO file")
	}

	if *oname == "" {
		fset.Usage()
		log.Fatalf("invalid output raw file name")
	}

	n, err := numEvents(fset.Arg(0))
	if err != nil {
		log.Fatalf("could not assess number of events: %+v", err)
	}
	log.Printf("input:  %s", fset.Arg(0))
	log.Printf("events: %d", n)

	err = process(*oname, fset.Arg(0), int(n/10))
	if err != nil {
		log.Fatalf("could not convert LCIO file: %+v", err)
	}
}

func numEvents(fname string) (int64, error) {
	r, err := lcio.Open(fname)
	if err != nil {
		return 0, fmt.Errorf("could not open %q: %w", fname, err)
	}
	defer r.Close()

	var n int64
	for r.Next() {
		n++
	}

	err = r.Err()
	if err != nil && err != io.EOF {
		return 0, fmt.Errorf("could not assess number of events in %q: %w", fname, err)
	}

	return n, nil
}

func process(oname, fname string, freq int) error {
	r, err := lcio.Open(fname)
	if err != nil {
		return fmt.Errorf("could not open LCIO file: %w", err)
	}
	defer r.Close()

	w, err := rawfile.Create(oname)
	if err != nil {
		return fmt.Errorf("could not create output raw file: %w", err)
	}
	defer w.Close()

	err = xcnv.LCIO2Raw(w, r, freq, log.Default())
	if err != nil {
		return fmt.Errorf("could not convert LCIO file: %w", err)
	}

	err = w.Close()
	if err != nil {
		return fmt.Errorf("could not close output raw file: %w", err)
	}
	return nil
}
