// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command ab7-gen generates AB7 raw data files with synthetic hits and
// trigger primitives.
package main // import "github.com/go-lpc/dtab7/cmd/ab7-gen"

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/go-lpc/dtab7/internal/rawgen"
	"github.com/go-lpc/dtab7/rawfile"
)

const usage = `Usage: ab7-gen [OPTIONS]

ex:
 $> ab7-gen -o run_000001.raw -n 1000 -feds 1368,1369 -fw 11

options:
`

func main() {
	xmain(os.Args[1:])
}

func xmain(args []string) {
	log.SetPrefix("ab7-gen: ")
	log.SetFlags(0)

	def := rawgen.Default()

	var (
		fset = flag.NewFlagSet("ab7-gen", flag.ExitOnError)

		oname = fset.String("o", "out.raw", "path to output raw file")
		nevts = fset.Int("n", def.Events, "number of events to generate")
		feds  = fset.String("feds", "1368", "comma-separated list of FEDs")
		slots = fset.String("slots", "3", "comma-separated list of AMC slots")
		fw    = fset.Int("fw", def.Firmware, "AMC firmware version")
		hits  = fset.Int("hits", def.Hits, "mean number of hits per slot")
		tps   = fset.Int("tps", def.Primitives, "mean number of primitives per slot")
		seed  = fset.Int64("seed", def.Seed, "seed of the random generator")
	)

	fset.Usage = func() {
		fmt.Print(usage)
		fset.PrintDefaults()
	}

	err := fset.Parse(args)
	if err != nil {
		log.Fatalf("could not parse input arguments: %+v", err)
	}

	cfg := rawgen.Config{
		Events:     *nevts,
		Firmware:   *fw,
		Hits:       *hits,
		Primitives: *tps,
		Seed:       *seed,
	}
	cfg.FEDs, err = parseInts(*feds)
	if err != nil {
		log.Fatalf("could not parse FEDs: %+v", err)
	}
	cfg.Slots, err = parseInts(*slots)
	if err != nil {
		log.Fatalf("could not parse slots: %+v", err)
	}

	err = process(*oname, cfg)
	if err != nil {
		log.Fatalf("could not generate raw file: %+v", err)
	}
}

func process(oname string, cfg rawgen.Config) error {
	w, err := rawfile.Create(oname)
	if err != nil {
		return fmt.Errorf("could not create output raw file: %w", err)
	}
	defer w.Close()

	err = rawgen.Write(w, cfg)
	if err != nil {
		return fmt.Errorf("could not generate events: %w", err)
	}

	err = w.Close()
	if err != nil {
		return fmt.Errorf("could not close output raw file: %w", err)
	}
	log.Printf("generated %d events in %q", cfg.Events, oname)
	return nil
}

func parseInts(s string) ([]int, error) {
	var vs []int
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		v, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %w", tok, err)
		}
		vs = append(vs, v)
	}
	if len(vs) == 0 {
		return nil, fmt.Errorf("empty list")
	}
	return vs, nil
}
