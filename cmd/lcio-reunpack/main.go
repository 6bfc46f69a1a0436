// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command lcio-reunpack reads a LCIO file and unpacks again its AB7 raw
// blocks with the provided configuration, optionally rewriting its run
// number.
package main // import "github.com/go-lpc/dtab7/cmd/lcio-reunpack"

import (
	"compress/flate"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/go-lpc/dtab7/config"
	"github.com/go-lpc/dtab7/geom"
	"github.com/go-lpc/dtab7/internal/xcnv"
	"github.com/go-lpc/dtab7/rawfile"
	"github.com/go-lpc/dtab7/unpack"
	"go-hep.org/x/hep/lcio"
)

func main() {
	log.SetPrefix("lcio-reunpack: ")
	log.SetFlags(0)

	var (
		runnbr = flag.Int("run", -1, "run number to use for output LCIO file (-1: keep input one)")
		oname  = flag.String("o", "out.lcio", "path to output LCIO file")
		cname  = flag.String("cfg", "", "path to YAML unpacker configuration")
	)

	flag.Usage = func() {
		fmt.Printf(`Usage: lcio-reunpack [OPTIONS] FILE.lcio

ex:
 $> lcio-reunpack -o output.lcio -cfg ab7-july2019.yaml -run=1234 ./input.lcio
 lcio-reunpack: processing event 0...
 lcio-reunpack: processing event 100...
 lcio-reunpack: processed 136 events
 lcio-reunpack: events=136 blocks=136 rejects=0 missing=0 warnings=3 hits=4212 primitives=310

options:
`)
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		log.Fatalf("missing input LCIO file to unpack")
	}

	cfg := config.Default()
	if *cname != "" {
		var err error
		cfg, err = config.Load(*cname)
		if err != nil {
			log.Fatalf("could not load configuration: %+v", err)
		}
	}

	u, err := unpack.FromConfig(cfg, geom.NewNominal(), unpack.WithLogger(log.New(os.Stdout, "unpack: ", 0)))
	if err != nil {
		log.Fatalf("could not create unpacker: %+v", err)
	}

	r, err := lcio.Open(flag.Arg(0))
	if err != nil {
		log.Fatalf("could not open input LCIO file: %+v", err)
	}
	defer r.Close()

	w, err := lcio.Create(*oname)
	if err != nil {
		log.Fatalf("could not create output LCIO file: %+v", err)
	}
	defer w.Close()

	w.SetCompressionLevel(flate.BestCompression)

	st, err := process(w, r, u, int32(*runnbr))
	if err != nil {
		log.Fatalf("could not unpack %q: %+v", flag.Arg(0), err)
	}
	log.Printf("%v", st)

	err = w.Close()
	if err != nil {
		log.Fatalf("could not close output file: %+v", err)
	}
}

func process(w *lcio.Writer, r *lcio.Reader, u *unpack.Unpacker, run int32) (unpack.Stats, error) {
	var (
		st  unpack.Stats
		ctx = context.Background()
		i   = 0
	)
	for r.Next() {
		evt := r.Event()
		if run < 0 {
			run = evt.RunNumber
		}
		if i == 0 {
			rhdr := r.RunHeader()
			rhdr.RunNumber = run

			err := w.WriteRunHeader(&rhdr)
			if err != nil {
				return st, fmt.Errorf("could not write run header: %w", err)
			}
		}

		if i%100 == 0 {
			log.Printf("processing event %d...", evt.EventNumber)
		}

		recs, err := xcnv.LCIO2Records(&evt)
		if err != nil {
			return st, fmt.Errorf("could not read raw blocks of evt %d: %w", evt.EventNumber, err)
		}
		raw := rawfile.Event{ID: uint32(evt.EventNumber), Blocks: recs}
		res, err := u.Unpack(ctx, raw)
		if err != nil {
			return st, fmt.Errorf("could not unpack evt %d: %w", evt.EventNumber, err)
		}
		st.Add(res)

		out := xcnv.Event(run, raw, res)
		err = w.WriteEvent(&out)
		if err != nil {
			return st, fmt.Errorf("could not write evt %d: %w", evt.EventNumber, err)
		}
		i++
	}

	err := r.Err()
	if err != nil && err != io.EOF {
		return st, fmt.Errorf("could not read LCIO file: %w", err)
	}

	log.Printf("processed %d events", i)

	return st, nil
}
