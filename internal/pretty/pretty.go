// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pretty displays decoded AB7 blocks.
package pretty // import "github.com/go-lpc/dtab7/internal/pretty"

import (
	"fmt"
	"io"

	"github.com/go-lpc/dtab7/ab7"
)

// Header displays the header of a decoded block.
func Header(w io.Writer, evt uint32, blk ab7.Block) {
	fmt.Fprintf(w, "=== event %d FED %d ===\n", evt, blk.FED)
	fmt.Fprintf(w, "L1A:        % 10d\n", blk.Event)
	fmt.Fprintf(w, "BX:         % 10d\n", blk.BX)
	fmt.Fprintf(w, "orbit:      % 10d\n", blk.Orbit)
	fmt.Fprintf(w, "version:    % 10v\n", blk.Version)
	fmt.Fprintf(w, "slots:      %v\n", blk.Slots)
	fmt.Fprintf(w, "words:      % 10d\n", blk.Words)
	fmt.Fprintf(w, "CRC:            0x%04x\n", blk.CRC)
}

// Hits displays the hits of a decoded block.
func Hits(w io.Writer, blk ab7.Block) {
	fmt.Fprintf(w, "hits:       % 10d\n", len(blk.Hits))
	for _, hit := range blk.Hits {
		fmt.Fprintf(w,
			"  wh=%+d st=%d sec=%02d sl=%d l=%d w=%3d ch=%3d bx=%4d t=%5d tdc=%6d order=%d\n",
			hit.Wheel, hit.Station, hit.Sector, hit.SuperLayer, hit.Layer, hit.Wire,
			hit.Channel, hit.BX, hit.Time, hit.LegacyTDC(), hit.Order,
		)
	}
}

// Primitives displays the primitives of a decoded block.
func Primitives(w io.Writer, blk ab7.Block) {
	fmt.Fprintf(w, "primitives: % 10d\n", len(blk.Primitives))
	for _, tp := range blk.Primitives {
		fmt.Fprintf(w,
			"  bx=%+5d st=%d sl=%d q=%2d t=%6d phi=%6d phib=%5d chi2=%d idx=%d\n",
			tp.BX, tp.Station, tp.SuperLayer, tp.Quality, tp.Time,
			tp.Phi, tp.PhiB, tp.Chi2, tp.Index,
		)
	}
	for _, tp := range blk.Extended {
		for i, lh := range tp.Layers {
			if !lh.Used {
				continue
			}
			fmt.Fprintf(w,
				"    bx=%+5d st=%d sl=%d layer=%d lat=%d drift=%2d ch=%2d\n",
				tp.BX, tp.Station, tp.SuperLayer, i+1, lh.Lateral, lh.DriftTime, lh.Channel,
			)
		}
	}
}

// Warnings displays the warnings raised while decoding a block.
func Warnings(w io.Writer, blk ab7.Block) {
	if len(blk.Warnings) == 0 {
		return
	}
	fmt.Fprintf(w, "warnings:   % 10d\n", len(blk.Warnings))
	for _, warn := range blk.Warnings {
		fmt.Fprintf(w, "  %v\n", warn)
	}
}

// Block displays a whole decoded block.
func Block(w io.Writer, evt uint32, blk ab7.Block) {
	Header(w, evt, blk)
	Hits(w, blk)
	Primitives(w, blk)
	Warnings(w, blk)
}
