// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ab7 decodes the FED blocks emitted by the AB7 boards of the
// drift-tube Phase-2 demonstrator into hits and trigger primitives.
//
// A FED block is a sequence of little-endian 64-bit words:
//
//	FED header (2 words)
//	slot list (1 word per AMC slot)
//	for each slot:
//	  AMC header (2 words)
//	  payload (hit and trigger-primitive words)
//	  AMC trailer (1 word)
//	FED trailer (2 words, carrying the word count and the CRC-16)
//
// Decoding is all-or-nothing at the trailer: structural errors reject the
// block, while content anomalies are reported as Warnings.
package ab7 // import "github.com/go-lpc/dtab7/ab7"

import (
	"fmt"
	"math"
)

// Version is the payload layout revision of a block.
type Version uint8

const (
	VersionAuto Version = 0 // infer from the AMC firmware field
	V8          Version = 8
	V9          Version = 9
	V11         Version = 11
)

// ParseVersion parses "auto", "v8", "v9" or "v11".
func ParseVersion(s string) (Version, error) {
	switch s {
	case "", "auto":
		return VersionAuto, nil
	case "v8", "8":
		return V8, nil
	case "v9", "9":
		return V9, nil
	case "v11", "11":
		return V11, nil
	}
	return VersionAuto, fmt.Errorf("ab7: unknown payload version %q", s)
}

func (v Version) String() string {
	if v == VersionAuto {
		return "auto"
	}
	return fmt.Sprintf("v%d", uint8(v))
}

// versionFrom maps the AMC firmware field to a payload layout.
func versionFrom(fw int) Version {
	switch {
	case fw >= 11:
		return V11
	case fw >= 9:
		return V9
	default:
		return V8
	}
}

// Hit is a single drift-time measurement on a wire.
type Hit struct {
	Wheel      int
	Station    int
	Sector     int
	SuperLayer int
	Layer      int
	Wire       int

	Channel int // raw channel id
	BX      int // raw bunch crossing of the hit
	SubBX   int // raw time inside the bunch crossing, 1..30
	Time    int // in 1/30 BX units, relative to the block reference BX
	Order   int // occurrence index of the channel in the block
}

// LegacyTDC returns the hit time in legacy TDC counts (32 per BX),
// wrapped into [0, 32*NumBX).
func (h Hit) LegacyTDC() int {
	const n = 32
	dbx := (h.Time - (h.SubBX - 1)) / SubBXPerBX
	tdc := n*dbx + int(math.Floor(float64(n*(h.SubBX-1))/SubBXPerBX+0.5))
	for tdc < 0 {
		tdc += n * NumBX
	}
	return tdc
}

// Primitive is a trigger primitive: a track segment computed by the
// front-end firmware.
type Primitive struct {
	BX         int // bunch crossing, in (-NumBX/2, NumBX/2]
	Wheel      int
	Sector     int // 0-based, L1 convention
	Station    int
	SuperLayer int // 0 for correlated primitives

	Phi  int // phi angle, in 0.8/65536 rad units (raw position in raw mode)
	PhiB int // phi bending, in 1.4/2048 rad units (raw signed slope in raw mode)

	Quality int
	Index   int // RawIndex in raw mode
	Time    int // ns
	Chi2    int
	RPC     int

	Position int // raw payload position
	Slope    int // raw payload slope (signed)
}

const (
	phiUnit  = 0.8 / 65536
	phiBUnit = 1.4 / 2048
)

// PhiRad returns the phi angle in radians.
func (tp Primitive) PhiRad() float64 { return float64(tp.Phi) * phiUnit }

// PhiBRad returns the phi bending in radians.
func (tp Primitive) PhiBRad() float64 { return float64(tp.PhiB) * phiBUnit }

// LayerHit describes the hit used by a primitive in one layer.
type LayerHit struct {
	Used      bool
	Lateral   int // 1: right, 0: left
	DriftTime int
	Channel   int // channel inside the layer
}

// ExtPrimitive is a primitive with its per-layer hit details.
type ExtPrimitive struct {
	Primitive
	Layers [4]LayerHit
}

// Block holds the records decoded from one FED block.
type Block struct {
	FED     int
	Event   int
	BX      int // reference BX
	Orbit   int
	Version Version
	Slots   []int // slots, in slot-list order
	Words   int   // words read from the buffer
	CRC     uint16

	Hits       []Hit
	Primitives []Primitive
	Extended   []ExtPrimitive
	Warnings   []Warning
}

// WarnKind classifies non-fatal anomalies.
type WarnKind uint8

const (
	WarnBXMismatch WarnKind = iota + 1
	WarnSuperLayerZero
	WarnChannelMap
	WarnMissingWord
	WarnSlotSize
	WarnSlotLength
	WarnVersion
	WarnUnknownWord
)

func (k WarnKind) String() string {
	switch k {
	case WarnBXMismatch:
		return "bx-mismatch"
	case WarnSuperLayerZero:
		return "superlayer-zero"
	case WarnChannelMap:
		return "channel-map"
	case WarnMissingWord:
		return "missing-word"
	case WarnSlotSize:
		return "slot-size"
	case WarnSlotLength:
		return "slot-length"
	case WarnVersion:
		return "version"
	case WarnUnknownWord:
		return "unknown-word"
	}
	return fmt.Sprintf("WarnKind(%d)", uint8(k))
}

// Warning is a content anomaly found while decoding a block.
type Warning struct {
	Kind WarnKind
	Slot int
	Msg  string
}

func (w Warning) String() string {
	return fmt.Sprintf("slot=%d %v: %s", w.Slot, w.Kind, w.Msg)
}
