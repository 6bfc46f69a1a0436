// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package unpack decodes the FED blocks of events.
package unpack // import "github.com/go-lpc/dtab7/unpack"

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-lpc/dtab7/ab7"
	"github.com/go-lpc/dtab7/config"
	"github.com/go-lpc/dtab7/geom"
	"github.com/go-lpc/dtab7/rawfile"
	"golang.org/x/sync/errgroup"
)

// Unpacker decodes the blocks of a set of FEDs, one goroutine per FED.
type Unpacker struct {
	msg  *log.Logger
	decs []*ab7.Decoder
}

// Option configures an Unpacker.
type Option func(*Unpacker)

// WithLogger sets the logger of the unpacker.
func WithLogger(msg *log.Logger) Option {
	return func(u *Unpacker) {
		u.msg = msg
	}
}

// New creates an unpacker for the given FEDs.
// The decoder options are shared by all FEDs.
func New(feds []int, opts []ab7.Option, uopts ...Option) *Unpacker {
	u := &Unpacker{
		msg:  log.New(os.Stdout, "unpack: ", 0),
		decs: make([]*ab7.Decoder, len(feds)),
	}
	for _, opt := range uopts {
		opt(u)
	}
	for i, fed := range feds {
		u.decs[i] = ab7.NewDecoder(fed, opts...)
	}
	return u
}

// FromConfig creates an unpacker from a configuration.
// geo is used to compute primitive angles when shift files are configured.
func FromConfig(cfg config.Config, geo geom.Geometry, uopts ...Option) (*Unpacker, error) {
	tr, err := cfg.Transform(geo)
	if err != nil {
		return nil, fmt.Errorf("unpack: could not create transform: %w", err)
	}
	opts, err := cfg.Options(tr)
	if err != nil {
		return nil, fmt.Errorf("unpack: could not create decoder options: %w", err)
	}
	return New(cfg.FEDs, opts, uopts...), nil
}

// FEDs returns the FEDs handled by the unpacker.
func (u *Unpacker) FEDs() []int {
	feds := make([]int, len(u.decs))
	for i, dec := range u.decs {
		feds[i] = dec.FED()
	}
	return feds
}

// Reject describes a block rejected by its decoder.
type Reject struct {
	FED int
	Err error
}

// Result holds the records of an event, merged over FEDs.
type Result struct {
	Event uint32

	Blocks  []ab7.Block // accepted blocks, in FED configuration order
	Rejects []Reject
	Missing []int // configured FEDs absent from the event

	Hits       []ab7.Hit
	Primitives []ab7.Primitive
	Extended   []ab7.ExtPrimitive
}

// Unpack decodes the blocks of evt.
//
// Rejected blocks contribute no records and are listed in the result.
// Unpack only fails when ctx is done.
func (u *Unpacker) Unpack(ctx context.Context, evt rawfile.Event) (Result, error) {
	res := Result{Event: evt.ID}

	var (
		blks = make([]ab7.Block, len(u.decs))
		errs = make([]error, len(u.decs))
		ok   = make([]bool, len(u.decs))
	)

	grp, ctx := errgroup.WithContext(ctx)
	for i, dec := range u.decs {
		raw, found := evt.Block(dec.FED())
		if !found {
			res.Missing = append(res.Missing, dec.FED())
			continue
		}
		ok[i] = true
		i, dec := i, dec
		grp.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			blks[i], errs[i] = dec.Decode(raw)
			return nil
		})
	}
	err := grp.Wait()
	if err != nil {
		return res, fmt.Errorf("unpack: event %d: %w", evt.ID, err)
	}

	for _, fed := range res.Missing {
		u.msg.Printf("event %d: no block for FED %d", evt.ID, fed)
	}

	for i := range u.decs {
		if !ok[i] {
			continue
		}
		if errs[i] != nil {
			u.msg.Printf("event %d: rejected block: %+v", evt.ID, errs[i])
			res.Rejects = append(res.Rejects, Reject{FED: u.decs[i].FED(), Err: errs[i]})
			continue
		}
		blk := blks[i]
		res.Blocks = append(res.Blocks, blk)
		res.Hits = append(res.Hits, blk.Hits...)
		res.Primitives = append(res.Primitives, blk.Primitives...)
		res.Extended = append(res.Extended, blk.Extended...)
	}

	return res, nil
}

// Stats accumulates unpacking counters over events.
type Stats struct {
	Events     int
	Blocks     int
	Rejects    int
	Missing    int
	Warnings   int
	Hits       int
	Primitives int
}

// Add accumulates the counters of res.
func (st *Stats) Add(res Result) {
	st.Events++
	st.Blocks += len(res.Blocks)
	st.Rejects += len(res.Rejects)
	st.Missing += len(res.Missing)
	for _, blk := range res.Blocks {
		st.Warnings += len(blk.Warnings)
	}
	st.Hits += len(res.Hits)
	st.Primitives += len(res.Primitives)
}

func (st Stats) String() string {
	return fmt.Sprintf(
		"events=%d blocks=%d rejects=%d missing=%d warnings=%d hits=%d primitives=%d",
		st.Events, st.Blocks, st.Rejects, st.Missing, st.Warnings, st.Hits, st.Primitives,
	)
}
