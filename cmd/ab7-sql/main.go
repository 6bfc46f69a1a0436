// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command ab7-sql retrieves the conditions of the AB7 unpacker from the
// DT conditions database, and writes them as shift tables and a YAML
// configuration file.
//
// The database password is read from the DTAB7_DB_PWD environment variable.
package main // import "github.com/go-lpc/dtab7/cmd/ab7-sql"

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-lpc/dtab7/conddb"
	"github.com/go-lpc/dtab7/config"
	"github.com/go-lpc/dtab7/geom"
)

func main() {
	xmain(os.Args[1:])
}

func xmain(args []string) {
	log.SetPrefix("ab7-sql: ")
	log.SetFlags(0)

	var (
		fset = flag.NewFlagSet("ab7-sql", flag.ExitOnError)

		addr   = fset.String("addr", "localhost:3306", "address of the conditions database")
		usr    = fset.String("usr", "dtab7", "user name of the conditions database")
		dbname = fset.String("db", "dtconddb", "name of the conditions database")
		tag    = fset.String("tag", "", "tag of the shift tables")
		feds   = fset.String("feds", "1368", "comma-separated list of FEDs")
		odir   = fset.String("o", ".", "output directory")
	)

	err := fset.Parse(args)
	if err != nil {
		log.Fatalf("could not parse input arguments: %+v", err)
	}

	ids, err := parseFEDs(*feds)
	if err != nil {
		log.Fatalf("could not parse FEDs: %+v", err)
	}

	log.Printf("feds: %v", ids)
	log.Printf("tag:  %q", *tag)

	db, err := conddb.Open(conddb.DSN(*usr, os.Getenv("DTAB7_DB_PWD"), *addr, *dbname))
	if err != nil {
		log.Fatalf("could not open conditions db: %+v", err)
	}
	defer db.Close()

	err = process(context.Background(), db, *odir, *tag, ids)
	if err != nil {
		log.Fatalf("could not retrieve conditions: %+v", err)
	}
}

type condDB interface {
	Shifts(ctx context.Context, kind conddb.ShiftKind, tag string) (geom.ShiftTable, error)
	UnpackerSettings(ctx context.Context, fed int) (conddb.Settings, error)
}

func process(ctx context.Context, db condDB, odir, tag string, feds []int) error {
	cfg := config.Default()
	cfg.FEDs = feds

	for i, fed := range feds {
		set, err := db.UnpackerSettings(ctx, fed)
		if err != nil {
			return fmt.Errorf("could not retrieve settings of FED %d: %w", fed, err)
		}
		log.Printf("FED %d: %+v", fed, set)
		if i == 0 {
			cfg.ChannelMapping = set.ChannelMapping
			cfg.Version = set.Version
			cfg.Wheel = set.Wheel
			cfg.Sector = set.Sector
			cfg.RawTPVars = set.RawTPVars
			cfg.CorrectTPTime = set.CorrectTPTime
			cfg.ExtendedPrimitives = set.Extended
			continue
		}
		if set.ChannelMapping != cfg.ChannelMapping || set.Version != cfg.Version ||
			set.Wheel != cfg.Wheel || set.Sector != cfg.Sector {
			log.Printf("FED %d: settings differ from FED %d, using FED %d ones", fed, feds[0], feds[0])
		}
	}

	for _, kind := range []conddb.ShiftKind{conddb.XShift, conddb.ZShift} {
		tbl, err := db.Shifts(ctx, kind, tag)
		if err != nil {
			if kind == conddb.ZShift {
				log.Printf("no z-shifts for tag %q: %+v", tag, err)
				continue
			}
			return fmt.Errorf("could not retrieve %s-shifts: %w", kind, err)
		}
		fname := filepath.Join(odir, string(kind)+"shift.txt")
		err = writeShifts(fname, tbl)
		if err != nil {
			return err
		}
		log.Printf("%s-shifts: %d entries -> %s", kind, len(tbl), fname)
		switch kind {
		case conddb.XShift:
			cfg.XShiftFile = fname
		case conddb.ZShift:
			cfg.ZShiftFile = fname
		}
	}

	err := config.Validate(&cfg)
	if err != nil {
		return fmt.Errorf("invalid configuration from conditions db: %w", err)
	}

	err = config.Save(filepath.Join(odir, "ab7.yaml"), cfg)
	if err != nil {
		return fmt.Errorf("could not save configuration: %w", err)
	}
	return nil
}

func writeShifts(fname string, tbl geom.ShiftTable) error {
	f, err := os.Create(fname)
	if err != nil {
		return fmt.Errorf("could not create shift table: %w", err)
	}
	defer f.Close()

	err = geom.WriteShifts(f, tbl)
	if err != nil {
		return fmt.Errorf("could not write shift table %q: %w", fname, err)
	}

	err = f.Close()
	if err != nil {
		return fmt.Errorf("could not close shift table %q: %w", fname, err)
	}
	return nil
}

func parseFEDs(s string) ([]int, error) {
	var feds []int
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		v, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("invalid FED %q: %w", tok, err)
		}
		feds = append(feds, v)
	}
	if len(feds) == 0 {
		return nil, fmt.Errorf("no FED")
	}
	return feds, nil
}
