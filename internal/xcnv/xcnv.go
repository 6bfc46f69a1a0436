// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package xcnv provides tools to convert AB7 data to/from LCIO.
package xcnv // import "github.com/go-lpc/dtab7/internal/xcnv"

import (
	"encoding/binary"

	"github.com/go-lpc/dtab7/ab7"
	"github.com/go-lpc/dtab7/geom"
	"go-hep.org/x/hep/lcio"
)

// LCIO collection names.
const (
	RawCollection   = "AB7_RAW"
	DigiCollection  = "AB7_DIGIS"
	TPCollection    = "AB7_PRIMITIVES"
	ExtTPCollection = "AB7_EXT_PRIMITIVES"
)

const detector = "DT-AB7"

// digiData returns the LCIO representation of a hit:
// wire raw id, time, order, channel, bx, sub-bx.
func digiData(hit ab7.Hit) lcio.GenericObjectData {
	id := geom.WireID{
		SuperLayerID: geom.SuperLayerID{
			ChamberID: geom.ChamberID{
				Wheel:   hit.Wheel,
				Station: hit.Station,
				Sector:  hit.Sector,
			},
			SuperLayer: hit.SuperLayer,
		},
		Layer: hit.Layer,
		Wire:  hit.Wire,
	}
	var raw int32
	if hit.SuperLayer >= 0 && hit.Wire >= 0 {
		raw = int32(id.RawID())
	}
	return lcio.GenericObjectData{
		I32s: []int32{
			raw,
			int32(hit.Time),
			int32(hit.Order),
			int32(hit.Channel),
			int32(hit.BX),
			int32(hit.SubBX),
		},
	}
}

// tpData returns the LCIO representation of a primitive.
func tpData(tp ab7.Primitive) lcio.GenericObjectData {
	return lcio.GenericObjectData{
		I32s: []int32{
			int32(tp.BX),
			int32(tp.Wheel),
			int32(tp.Sector),
			int32(tp.Station),
			int32(tp.SuperLayer),
			int32(tp.Phi),
			int32(tp.PhiB),
			int32(tp.Quality),
			int32(tp.Index),
			int32(tp.Time),
			int32(tp.Chi2),
			int32(tp.RPC),
		},
	}
}

func extTPData(tp ab7.ExtPrimitive) lcio.GenericObjectData {
	data := tpData(tp.Primitive)
	for _, lh := range tp.Layers {
		used := int32(0)
		if lh.Used {
			used = 1
		}
		data.I32s = append(data.I32s,
			used, int32(lh.Lateral), int32(lh.DriftTime), int32(lh.Channel),
		)
	}
	return data
}

func primitiveFrom(i32s []int32) ab7.Primitive {
	return ab7.Primitive{
		BX:         int(i32s[0]),
		Wheel:      int(i32s[1]),
		Sector:     int(i32s[2]),
		Station:    int(i32s[3]),
		SuperLayer: int(i32s[4]),
		Phi:        int(i32s[5]),
		PhiB:       int(i32s[6]),
		Quality:    int(i32s[7]),
		Index:      int(i32s[8]),
		Time:       int(i32s[9]),
		Chi2:       int(i32s[10]),
		RPC:        int(i32s[11]),
	}
}

// blockData packs a raw FED block as: FED id, event id, then each 64-bit
// word as a (low, high) pair of int32.
func blockData(fed int, evt uint32, raw []byte) lcio.GenericObjectData {
	n := len(raw) / 8
	i32s := make([]int32, 2, 2+2*n)
	i32s[0] = int32(fed)
	i32s[1] = int32(evt)
	for i := 0; i < n; i++ {
		var (
			lo = binary.LittleEndian.Uint32(raw[8*i:])
			hi = binary.LittleEndian.Uint32(raw[8*i+4:])
		)
		i32s = append(i32s, int32(lo), int32(hi))
	}
	return lcio.GenericObjectData{I32s: i32s}
}
