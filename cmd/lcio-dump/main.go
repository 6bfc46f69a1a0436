// Copyright 2021 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// lcio-dump displays the AB7 collections embedded in LCIO files.
//
// Usage: lcio-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]
//
// Example:
//
//	$> lcio-dump ./testdata/run_000042.lcio
//	=== run 42 event 1 ===
//	blocks:              1
//	  FED 1368: 13 words
//	rejected:   []
//	missing:    []
//	hits:                3
//	  wh=+2 st=2 sec=12 sl=1 l=2 w=  2 ch=  5 bx= 101 t=   36 order=0
//	[...]
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/go-lpc/dtab7/internal/xcnv"
	"go-hep.org/x/hep/lcio"
)

const usage = `lcio-dump displays the AB7 collections embedded in LCIO files.

Usage: lcio-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]

Example:

 $> lcio-dump ./testdata/run_000042.lcio
 === run 42 event 1 ===
 blocks:              1
   FED 1368: 13 words
 rejected:   []
 missing:    []
 hits:                3
   wh=+2 st=2 sec=12 sl=1 l=2 w=  2 ch=  5 bx= 101 t=   36 order=0
 [...]

`

func main() {
	xmain(os.Stdout, os.Args[1:])
}

func xmain(w io.Writer, args []string) {
	log.SetPrefix("lcio-dump: ")
	log.SetFlags(0)

	var (
		fset = flag.NewFlagSet("lcio", flag.ExitOnError)

		hits = fset.Bool("hits", true, "display hits")
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
		log.Fatalf("missing path to input LCIO file")
	}

	for _, fname := range fset.Args() {
		err := process(w, fname, *hits)
		if err != nil {
			log.Fatalf("could not dump file %q: %+v", fname, err)
		}
	}
}

func process(w io.Writer, fname string, dispHits bool) error {
	wbuf := bufio.NewWriter(w)
	defer wbuf.Flush()

	r, err := lcio.Open(fname)
	if err != nil {
		return fmt.Errorf("could not open LCIO file: %w", err)
	}
	defer r.Close()

	for r.Next() {
		evt := r.Event()
		fmt.Fprintf(wbuf, "=== run %d event %d ===\n", evt.RunNumber, evt.EventNumber)

		recs, err := xcnv.LCIO2Records(&evt)
		if err != nil {
			return fmt.Errorf("could not read raw blocks: %w", err)
		}
		fmt.Fprintf(wbuf, "blocks:     % 10d\n", len(recs))
		for _, rec := range recs {
			fmt.Fprintf(wbuf, "  FED %d: %d words\n", rec.FED, len(rec.Data)/8)
		}
		fmt.Fprintf(wbuf, "rejected:   %v\n", evt.Params.Ints["Rejected"])
		fmt.Fprintf(wbuf, "missing:    %v\n", evt.Params.Ints["Missing"])

		hits, err := xcnv.LCIO2Hits(&evt)
		if err != nil {
			return fmt.Errorf("could not read hits: %w", err)
		}
		fmt.Fprintf(wbuf, "hits:       % 10d\n", len(hits))
		if dispHits {
			for _, hit := range hits {
				fmt.Fprintf(wbuf,
					"  wh=%+d st=%d sec=%02d sl=%d l=%d w=%3d ch=%3d bx=%4d t=%5d order=%d\n",
					hit.Wheel, hit.Station, hit.Sector, hit.SuperLayer, hit.Layer, hit.Wire,
					hit.Channel, hit.BX, hit.Time, hit.Order,
				)
			}
		}

		tps, err := xcnv.LCIO2Primitives(&evt)
		if err != nil {
			return fmt.Errorf("could not read primitives: %w", err)
		}
		fmt.Fprintf(wbuf, "primitives: % 10d\n", len(tps))
		for _, tp := range tps {
			fmt.Fprintf(wbuf,
				"  bx=%+5d st=%d sl=%d q=%2d t=%6d phi=%6d phib=%5d chi2=%d\n",
				tp.BX, tp.Station, tp.SuperLayer, tp.Quality, tp.Time,
				tp.Phi, tp.PhiB, tp.Chi2,
			)
		}
	}

	err = r.Err()
	if err != nil && err != io.EOF {
		return fmt.Errorf("could not read LCIO file: %w", err)
	}

	return nil
}
