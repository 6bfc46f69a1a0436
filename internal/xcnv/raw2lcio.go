// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xcnv

import (
	"context"
	"fmt"
	"log"

	"github.com/go-lpc/dtab7/rawfile"
	"github.com/go-lpc/dtab7/unpack"
	"go-hep.org/x/hep/lcio"
)

// Raw2LCIO unpacks the events of r and writes them, with their raw
// blocks, to w.
func Raw2LCIO(ctx context.Context, w *lcio.Writer, r *rawfile.Reader, u *unpack.Unpacker, run int32, msg *log.Logger) (unpack.Stats, error) {
	var st unpack.Stats

	err := w.WriteRunHeader(&lcio.RunHeader{
		RunNumber: run,
		Detector:  detector,
		Params: lcio.Params{
			Ints: map[string][]int32{
				"FEDs": i32sFromInts(u.FEDs()),
			},
		},
	})
	if err != nil {
		return st, fmt.Errorf("could not write run header: %w", err)
	}

	for i := 0; r.NextEvent(); i++ {
		if i%100 == 0 {
			msg.Printf("processing evt %d...", i)
		}
		raw := r.Event()
		res, err := u.Unpack(ctx, raw)
		if err != nil {
			return st, fmt.Errorf("could not unpack event %d: %w", raw.ID, err)
		}
		st.Add(res)

		evt := Event(run, raw, res)
		err = w.WriteEvent(&evt)
		if err != nil {
			return st, fmt.Errorf("could not write event %d: %w", raw.ID, err)
		}
	}
	if err := r.Err(); err != nil {
		return st, fmt.Errorf("could not read raw file: %w", err)
	}

	return st, nil
}

// Event returns the LCIO event holding the raw blocks of an event and
// the records unpacked from them.
func Event(run int32, raw rawfile.Event, res unpack.Result) lcio.Event {
	var (
		blks = &lcio.GenericObject{}
		digi = &lcio.GenericObject{}
		tps  = &lcio.GenericObject{}
	)

	for _, rec := range raw.Blocks {
		blks.Data = append(blks.Data, blockData(rec.FED, rec.Event, rec.Data))
	}
	for _, hit := range res.Hits {
		digi.Data = append(digi.Data, digiData(hit))
	}
	for _, tp := range res.Primitives {
		tps.Data = append(tps.Data, tpData(tp))
	}

	rejected := make([]int32, len(res.Rejects))
	for i, rej := range res.Rejects {
		rejected[i] = int32(rej.FED)
	}

	evt := lcio.Event{
		RunNumber:   run,
		EventNumber: int32(raw.ID),
		Detector:    detector,
		Params: lcio.Params{
			Ints: map[string][]int32{
				"Rejected": rejected,
				"Missing":  i32sFromInts(res.Missing),
			},
		},
	}
	evt.Add(RawCollection, blks)
	evt.Add(DigiCollection, digi)
	evt.Add(TPCollection, tps)

	if len(res.Extended) > 0 {
		ext := &lcio.GenericObject{}
		for _, tp := range res.Extended {
			ext.Data = append(ext.Data, extTPData(tp))
		}
		evt.Add(ExtTPCollection, ext)
	}

	return evt
}

func i32sFromInts(vs []int) []int32 {
	o := make([]int32, len(vs))
	for i, v := range vs {
		o[i] = int32(v)
	}
	return o
}
