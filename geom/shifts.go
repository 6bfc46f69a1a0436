// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geom

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// ShiftTable holds a linear shift (cm) per wire raw id.
type ShiftTable map[uint32]float64

// ReadShifts decodes a shift table from r.
//
// Each non-empty line holds a raw wire id and a shift, separated by blanks.
// Lines starting with '#' are ignored.
func ReadShifts(r io.Reader) (ShiftTable, error) {
	var (
		tbl = make(ShiftTable)
		sc  = bufio.NewScanner(r)
		n   = 0
	)
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		toks := strings.Fields(line)
		if len(toks) != 2 {
			return nil, fmt.Errorf("geom: line %d: invalid shift entry %q", n, line)
		}
		id, err := strconv.ParseUint(toks[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("geom: line %d: could not parse raw id: %w", n, err)
		}
		v, err := strconv.ParseFloat(toks[1], 64)
		if err != nil {
			return nil, fmt.Errorf("geom: line %d: could not parse shift: %w", n, err)
		}
		tbl[uint32(id)] = v
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("geom: could not scan shift table: %w", err)
	}
	return tbl, nil
}

// LoadShifts reads the shift table stored in fname.
func LoadShifts(fname string) (ShiftTable, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, fmt.Errorf("geom: could not open shift table: %w", err)
	}
	defer f.Close()

	tbl, err := ReadShifts(f)
	if err != nil {
		return nil, fmt.Errorf("geom: could not read %q: %w", fname, err)
	}
	if len(tbl) == 0 {
		return nil, fmt.Errorf("geom: shift table %q is empty", fname)
	}
	return tbl, nil
}

// Shift returns the shift of the superlayer, as stored for its layer-2,
// wire-1 identifier.
func (tbl ShiftTable) Shift(sl SuperLayerID) (float64, bool) {
	v, ok := tbl[WireID{SuperLayerID: sl, Layer: 2, Wire: 1}.RawID()]
	return v, ok
}

// WriteShifts encodes a shift table to w, sorted by raw id.
func WriteShifts(w io.Writer, tbl ShiftTable) error {
	ids := make([]uint32, 0, len(tbl))
	for id := range tbl {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	bw := bufio.NewWriter(w)
	for _, id := range ids {
		_, err := fmt.Fprintf(bw, "%d %s\n", id, strconv.FormatFloat(tbl[id], 'g', -1, 64))
		if err != nil {
			return fmt.Errorf("geom: could not write shift of %d: %w", id, err)
		}
	}
	err := bw.Flush()
	if err != nil {
		return fmt.Errorf("geom: could not flush shift table: %w", err)
	}
	return nil
}
