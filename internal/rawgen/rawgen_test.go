// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rawgen

import (
	"bytes"
	"context"
	"io"
	"log"
	"testing"

	"github.com/go-lpc/dtab7/ab7"
	"github.com/go-lpc/dtab7/rawfile"
	"github.com/go-lpc/dtab7/unpack"
)

func TestGenerator(t *testing.T) {
	quiet := log.New(io.Discard, "", 0)

	for _, fw := range []int{8, 9, 11} {
		cfg := Default()
		cfg.Events = 50
		cfg.FEDs = []int{1368, 1369}
		cfg.Slots = []int{1, 5, 12}
		cfg.Firmware = fw

		buf := new(bytes.Buffer)
		w := rawfile.NewWriter(buf)
		err := Write(w, cfg)
		if err != nil {
			t.Fatalf("fw=%d: could not generate events: %+v", fw, err)
		}
		err = w.Flush()
		if err != nil {
			t.Fatalf("fw=%d: could not flush: %+v", fw, err)
		}

		r, err := rawfile.NewReader(buf.Bytes())
		if err != nil {
			t.Fatalf("fw=%d: could not read events: %+v", fw, err)
		}

		u := unpack.New(cfg.FEDs, []ab7.Option{ab7.WithLogger(quiet)}, unpack.WithLogger(quiet))
		var st unpack.Stats
		for r.NextEvent() {
			res, err := u.Unpack(context.Background(), r.Event())
			if err != nil {
				t.Fatalf("fw=%d: could not unpack: %+v", fw, err)
			}
			st.Add(res)
			for _, blk := range res.Blocks {
				if blk.Version == ab7.VersionAuto {
					t.Fatalf("fw=%d: version not inferred", fw)
				}
			}
		}
		if err := r.Err(); err != nil {
			t.Fatalf("fw=%d: could not read events: %+v", fw, err)
		}

		if st.Events != cfg.Events || st.Blocks != 2*cfg.Events || st.Rejects != 0 {
			t.Fatalf("fw=%d: invalid stats: %v", fw, st)
		}
		if st.Hits == 0 || st.Primitives == 0 {
			t.Fatalf("fw=%d: no records: %v", fw, st)
		}
	}
}

func TestPoisson(t *testing.T) {
	gen := New(Config{Seed: 1})
	if got := gen.poisson(0); got != 0 {
		t.Fatalf("invalid poisson(0): %d", got)
	}

	const n = 10000
	sum := 0
	for i := 0; i < n; i++ {
		sum += gen.poisson(8)
	}
	mean := float64(sum) / n
	if mean < 7.5 || mean > 8.5 {
		t.Fatalf("invalid poisson mean: %v", mean)
	}
}
