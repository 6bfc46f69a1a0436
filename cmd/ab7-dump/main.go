// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// ab7-dump decodes and displays AB7 raw data files.
//
// Usage: ab7-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]
//
// Example:
//
//	$> ab7-dump -cfg ./ab7.yaml ./testdata/run_000042.raw
//	=== event 1 FED 1368 ===
//	L1A:                 1
//	BX:                100
//	orbit:               7
//	version:           v11
//	slots:      [3]
//	words:              13
//	CRC:            0x8b1e
//	hits:                3
//	  wh=+2 st=2 sec=12 sl=1 l=2 w=  2 ch=  5 bx= 100 t=   36 tdc=  3238 order=0
//	[...]
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/go-lpc/dtab7/ab7"
	"github.com/go-lpc/dtab7/config"
	"github.com/go-lpc/dtab7/geom"
	"github.com/go-lpc/dtab7/internal/pretty"
	"github.com/go-lpc/dtab7/rawfile"
	"github.com/go-lpc/dtab7/unpack"
)

const usage = `ab7-dump decodes and displays AB7 raw data files.

Usage: ab7-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]

Example:

 $> ab7-dump -cfg ./ab7.yaml ./testdata/run_000042.raw
 === event 1 FED 1368 ===
 L1A:                 1
 BX:                100
 [...]

Options:
`

func main() {
	xmain(os.Stdout, os.Args[1:])
}

func xmain(w io.Writer, args []string) {
	log.SetPrefix("ab7-dump: ")
	log.SetFlags(0)

	var (
		fset = flag.NewFlagSet("ab7-dump", flag.ExitOnError)

		fname = fset.String("cfg", "", "path to YAML unpacker configuration")
		fed   = fset.Int("fed", -1, "FED to display (default: all configured FEDs)")
		hex   = fset.Bool("hex", false, "enable hex dump of the FED words")
		ext   = fset.Bool("ext", false, "display extended primitives")
		nevts = fset.Int("n", -1, "number of events to display (-1: all)")
	)

	fset.Usage = func() {
		fmt.Print(usage)
		fset.PrintDefaults()
	}

	err := fset.Parse(args)
	if err != nil {
		log.Fatalf("could not parse input arguments: %+v", err)
	}

	if fset.NArg() == 0 {
		fset.Usage()
		log.Fatalf("missing path to input raw file")
	}

	cfg := config.Default()
	if *fname != "" {
		cfg, err = config.Load(*fname)
		if err != nil {
			log.Fatalf("could not load configuration: %+v", err)
		}
	}
	if *fed >= 0 {
		cfg.FEDs = []int{*fed}
	}
	cfg.HexDump = cfg.HexDump || *hex
	cfg.ExtendedPrimitives = cfg.ExtendedPrimitives || *ext

	for _, fname := range fset.Args() {
		err := process(w, fname, cfg, *nevts)
		if err != nil {
			log.Fatalf("could not dump file %q: %+v", fname, err)
		}
	}
}

func process(w io.Writer, fname string, cfg config.Config, nevts int) error {
	wbuf := bufio.NewWriter(w)
	defer wbuf.Flush()

	tr, err := cfg.Transform(geom.NewNominal())
	if err != nil {
		return fmt.Errorf("could not create transform: %w", err)
	}
	opts, err := cfg.Options(tr)
	if err != nil {
		return fmt.Errorf("could not create decoder options: %w", err)
	}
	// hex dumps and warnings go along the decoded blocks.
	msg := log.New(wbuf, "", 0)
	opts = append(opts, ab7.WithLogger(msg))

	u := unpack.New(cfg.FEDs, opts, unpack.WithLogger(msg))

	r, err := rawfile.Open(fname)
	if err != nil {
		return fmt.Errorf("could not open raw file: %w", err)
	}
	defer r.Close()

	var (
		ctx = context.Background()
		st  unpack.Stats
	)
	for i := 0; r.NextEvent(); i++ {
		if nevts >= 0 && i >= nevts {
			break
		}
		raw := r.Event()
		res, err := u.Unpack(ctx, raw)
		if err != nil {
			return fmt.Errorf("could not unpack event %d: %w", raw.ID, err)
		}
		st.Add(res)
		for _, blk := range res.Blocks {
			pretty.Block(wbuf, raw.ID, blk)
		}
		for _, rej := range res.Rejects {
			fmt.Fprintf(wbuf, "=== event %d FED %d === rejected: %v\n", raw.ID, rej.FED, rej.Err)
		}
	}
	if err := r.Err(); err != nil {
		return fmt.Errorf("could not read raw file: %w", err)
	}

	fmt.Fprintf(wbuf, "--- %v\n", st)
	return nil
}
