// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xcnv

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"

	"github.com/go-lpc/dtab7/ab7"
	"github.com/go-lpc/dtab7/geom"
	"github.com/go-lpc/dtab7/rawfile"
	"go-hep.org/x/hep/lcio"
)

// LCIO2Raw extracts the raw blocks of the events of r and writes them to w.
func LCIO2Raw(w *rawfile.Writer, r *lcio.Reader, freq int, msg *log.Logger) error {
	i := 0
	for r.Next() {
		if freq > 0 && i%freq == 0 {
			msg.Printf("processing evt %d...", i)
		}
		evt := r.Event()
		recs, err := LCIO2Records(&evt)
		if err != nil {
			return fmt.Errorf("could not extract raw blocks of event %d: %w", evt.EventNumber, err)
		}
		for _, rec := range recs {
			err = w.Write(rec)
			if err != nil {
				return fmt.Errorf("could not write raw block: %w", err)
			}
		}
		i++
	}
	if err := r.Err(); err != nil && err != io.EOF {
		return fmt.Errorf("could not read LCIO file: %w", err)
	}
	return nil
}

// LCIO2Records returns the raw blocks stored in an LCIO event.
func LCIO2Records(evt *lcio.Event) ([]rawfile.Record, error) {
	if !evt.Has(RawCollection) {
		return nil, fmt.Errorf("no %q collection", RawCollection)
	}
	coll, ok := evt.Get(RawCollection).(*lcio.GenericObject)
	if !ok {
		return nil, fmt.Errorf("invalid %q collection type %T", RawCollection, evt.Get(RawCollection))
	}

	recs := make([]rawfile.Record, 0, len(coll.Data))
	for i, data := range coll.Data {
		i32s := data.I32s
		if len(i32s) < 2 || len(i32s)%2 != 0 {
			return nil, fmt.Errorf("invalid raw block %d (len=%d)", i, len(i32s))
		}
		raw := make([]byte, 4*(len(i32s)-2))
		for j, v := range i32s[2:] {
			binary.LittleEndian.PutUint32(raw[4*j:], uint32(v))
		}
		recs = append(recs, rawfile.Record{
			FED:   int(i32s[0]),
			Event: uint32(i32s[1]),
			Data:  raw,
		})
	}
	return recs, nil
}

// LCIO2Primitives returns the primitives stored in an LCIO event.
func LCIO2Primitives(evt *lcio.Event) ([]ab7.Primitive, error) {
	if !evt.Has(TPCollection) {
		return nil, nil
	}
	coll, ok := evt.Get(TPCollection).(*lcio.GenericObject)
	if !ok {
		return nil, fmt.Errorf("invalid %q collection type %T", TPCollection, evt.Get(TPCollection))
	}

	tps := make([]ab7.Primitive, 0, len(coll.Data))
	for i, data := range coll.Data {
		if len(data.I32s) < 12 {
			return nil, fmt.Errorf("invalid primitive %d (len=%d)", i, len(data.I32s))
		}
		tps = append(tps, primitiveFrom(data.I32s))
	}
	return tps, nil
}

// LCIO2Hits returns the hits stored in an LCIO event.
func LCIO2Hits(evt *lcio.Event) ([]ab7.Hit, error) {
	if !evt.Has(DigiCollection) {
		return nil, nil
	}
	coll, ok := evt.Get(DigiCollection).(*lcio.GenericObject)
	if !ok {
		return nil, fmt.Errorf("invalid %q collection type %T", DigiCollection, evt.Get(DigiCollection))
	}

	hits := make([]ab7.Hit, 0, len(coll.Data))
	for i, data := range coll.Data {
		i32s := data.I32s
		if len(i32s) < 6 {
			return nil, fmt.Errorf("invalid digi %d (len=%d)", i, len(i32s))
		}
		hit := ab7.Hit{
			Time:    int(i32s[1]),
			Order:   int(i32s[2]),
			Channel: int(i32s[3]),
			BX:      int(i32s[4]),
			SubBX:   int(i32s[5]),
		}
		if i32s[0] != 0 {
			id, err := geom.WireIDFromRaw(uint32(i32s[0]))
			if err != nil {
				return nil, fmt.Errorf("invalid digi %d: %w", i, err)
			}
			hit.Wheel = id.Wheel
			hit.Station = id.Station
			hit.Sector = id.Sector
			hit.SuperLayer = id.SuperLayer
			hit.Layer = id.Layer
			hit.Wire = id.Wire
		}
		hits = append(hits, hit)
	}
	return hits, nil
}
