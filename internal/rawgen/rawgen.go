// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rawgen generates raw files of synthetic AB7 blocks.
package rawgen // import "github.com/go-lpc/dtab7/internal/rawgen"

import (
	"fmt"
	"math/rand"

	"github.com/go-lpc/dtab7/ab7"
	"github.com/go-lpc/dtab7/rawfile"
)

// Config describes the content of the generated events.
type Config struct {
	Events     int
	FEDs       []int
	Slots      []int
	Firmware   int
	Hits       int // mean number of hits per slot
	Primitives int // mean number of primitives per slot
	Seed       int64
}

// Default returns a default configuration.
func Default() Config {
	return Config{
		Events:     10,
		FEDs:       []int{1368},
		Slots:      []int{3},
		Firmware:   11,
		Hits:       8,
		Primitives: 2,
		Seed:       1234,
	}
}

// Generator produces synthetic events.
type Generator struct {
	cfg  Config
	rnd  *rand.Rand
	encs []*ab7.Encoder
	evt  int
}

// New creates a generator.
func New(cfg Config) *Generator {
	gen := &Generator{
		cfg:  cfg,
		rnd:  rand.New(rand.NewSource(cfg.Seed)),
		encs: make([]*ab7.Encoder, len(cfg.FEDs)),
	}
	for i, fed := range cfg.FEDs {
		gen.encs[i] = ab7.NewEncoder(fed)
	}
	return gen
}

// Next returns the blocks of the next event.
func (gen *Generator) Next() (rawfile.Event, error) {
	gen.evt++
	var (
		id  = uint32(gen.evt)
		bx  = gen.rnd.Intn(ab7.NumBX)
		evt = rawfile.Event{ID: id}
	)
	for i, enc := range gen.encs {
		slots := make([]ab7.Slot, len(gen.cfg.Slots))
		for j, slot := range gen.cfg.Slots {
			slots[j] = ab7.Slot{
				ID:       slot,
				Firmware: gen.cfg.Firmware,
				Words:    gen.payload(bx),
			}
		}
		raw, err := enc.Encode(ab7.Event{
			Event: gen.evt,
			BX:    bx,
			Orbit: gen.evt / 10,
			Slots: slots,
		})
		if err != nil {
			return evt, fmt.Errorf("rawgen: could not encode event %d: %w", id, err)
		}
		evt.Blocks = append(evt.Blocks, rawfile.Record{
			Event: id,
			FED:   gen.cfg.FEDs[i],
			Data:  raw,
		})
	}
	return evt, nil
}

func (gen *Generator) payload(bx int) []uint64 {
	var (
		rnd   = gen.rnd
		nhits = gen.poisson(gen.cfg.Hits)
		ntps  = gen.poisson(gen.cfg.Primitives)
		words = make([]uint64, 0, nhits/2+1+3*ntps)
	)

	hit := func() *ab7.HitData {
		return &ab7.HitData{
			Station:    1 + rnd.Intn(4),
			SuperLayer: 1 + rnd.Intn(3),
			Channel:    rnd.Intn(240),
			BX:         (bx + rnd.Intn(5) - 2 + ab7.NumBX) % ab7.NumBX,
			SubBX:      1 + rnd.Intn(ab7.SubBXPerBX),
		}
	}
	for i := 0; i < nhits; i += 2 {
		var hi *ab7.HitData
		if i+1 < nhits {
			hi = hit()
		}
		words = append(words, ab7.HitWord(hit(), hi))
	}

	v := ab7.V8
	switch {
	case gen.cfg.Firmware >= 11:
		v = ab7.V11
	case gen.cfg.Firmware >= 9:
		v = ab7.V9
	}
	for i := 0; i < ntps; i++ {
		tp := ab7.TPData{
			Station:    1 + rnd.Intn(4),
			SuperLayer: rnd.Intn(4),
			Quality:    1 + rnd.Intn(8),
			Time:       ab7.NsPerBX*bx + rnd.Intn(100),
			Position:   rnd.Intn(1 << 15),
			Slope:      rnd.Intn(1<<12) - 1<<11,
			Chi2:       rnd.Intn(1 << 5),
			Third:      v != ab7.V8,
		}
		for j := range tp.Layers {
			if rnd.Intn(4) == 0 {
				continue
			}
			tp.Layers[j] = ab7.LayerHit{
				Used:      true,
				Lateral:   rnd.Intn(2),
				DriftTime: rnd.Intn(16),
				Channel:   rnd.Intn(64),
			}
		}
		if v == ab7.V11 {
			tp.FwPhi = rnd.Intn(1<<14) - 1<<13
			tp.FwPhiB = rnd.Intn(1<<10) - 1<<9
		}
		words = append(words, ab7.TPWords(v, tp)...)
	}
	return words
}

func (gen *Generator) poisson(mean int) int {
	if mean <= 0 {
		return 0
	}
	// sum of exponential inter-arrival times
	var (
		n   = 0
		sum = gen.rnd.ExpFloat64()
	)
	for sum < float64(mean) {
		n++
		sum += gen.rnd.ExpFloat64()
	}
	return n
}

// Write writes cfg.Events events to w.
func Write(w *rawfile.Writer, cfg Config) error {
	gen := New(cfg)
	for i := 0; i < cfg.Events; i++ {
		evt, err := gen.Next()
		if err != nil {
			return err
		}
		for _, rec := range evt.Blocks {
			err = w.Write(rec)
			if err != nil {
				return fmt.Errorf("rawgen: could not write event %d: %w", evt.ID, err)
			}
		}
	}
	return nil
}
