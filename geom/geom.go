// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package geom converts trigger-primitive positions and slopes, expressed in
// the local reference system of the AB7 firmware, into the global phi and
// phi-bending angles of the muon chambers.
//
// The chamber placement itself is an external capability described by the
// Geometry interface. A Transform is built once, from a Geometry and the
// shift tables, and is then safe for concurrent use.
package geom // import "github.com/go-lpc/dtab7/geom"

import (
	"fmt"
	"math"
)

// ChamberID identifies a drift-tube chamber.
type ChamberID struct {
	Wheel   int // -2..2
	Station int // 1..4
	Sector  int // 1..14
}

// SuperLayerID identifies a superlayer inside a chamber.
// SuperLayer 0 designates a correlated (multi-superlayer) primitive.
type SuperLayerID struct {
	ChamberID
	SuperLayer int
}

// WireID identifies a single wire.
type WireID struct {
	SuperLayerID
	Layer int
	Wire  int
}

func (id ChamberID) String() string {
	return fmt.Sprintf("Wh%d/St%d/Se%d", id.Wheel, id.Station, id.Sector)
}

const (
	detMuon  = 2
	subDetDT = 1

	wireShift    = 3
	layerShift   = 10
	slShift      = 13
	wheelShift   = 15
	sectorShift  = 18
	stationShift = 22

	wireMask    = 0x7f
	layerMask   = 0x7
	slMask      = 0x3
	wheelMask   = 0x7
	sectorMask  = 0xf
	stationMask = 0x7

	minWheel = -3
)

// RawID returns the packed 32-bit detector identifier of the wire.
// Shift tables are keyed by this value.
func (id WireID) RawID() uint32 {
	return detMuon<<28 | subDetDT<<25 |
		uint32(id.Wheel-minWheel)&wheelMask<<wheelShift |
		uint32(id.Station)&stationMask<<stationShift |
		uint32(id.Sector)&sectorMask<<sectorShift |
		uint32(id.SuperLayer)&slMask<<slShift |
		uint32(id.Layer)&layerMask<<layerShift |
		uint32(id.Wire)&wireMask<<wireShift
}

// WireIDFromRaw unpacks a raw detector identifier.
func WireIDFromRaw(raw uint32) (WireID, error) {
	if raw>>28 != detMuon || (raw>>25)&0x7 != subDetDT {
		return WireID{}, fmt.Errorf("geom: raw id 0x%08x is not a DT wire id", raw)
	}
	return WireID{
		SuperLayerID: SuperLayerID{
			ChamberID: ChamberID{
				Wheel:   int((raw>>wheelShift)&wheelMask) + minWheel,
				Station: int((raw >> stationShift) & stationMask),
				Sector:  int((raw >> sectorShift) & sectorMask),
			},
			SuperLayer: int((raw >> slShift) & slMask),
		},
		Layer: int((raw >> layerShift) & layerMask),
		Wire:  int((raw >> wireShift) & wireMask),
	}, nil
}

// Geometry places chambers in the global reference system.
type Geometry interface {
	// GlobalPhi returns the global azimuth (rad) of the point (x,y,z),
	// given in cm in the local frame of chamber ch.
	GlobalPhi(ch ChamberID, x, y, z float64) float64
}

// Transformer computes global phi and phi-bending angles (rad) of a primitive
// from its local position (mm) and slope (tan phi).
type Transformer interface {
	PhiAndPhiB(sl SuperLayerID, position, tanPhi float64, quality int) (phi, phiB float64)
}

// Transform implements Transformer for the firmware reference system,
// whose origin is shifted along x (and possibly z) with respect to the
// center of the chamber.
type Transform struct {
	geo    Geometry
	xshift ShiftTable
	zshift ShiftTable
}

// NewTransform returns a Transform using geo to place chambers, and the
// provided tables to move from the firmware origin to the chamber center.
// zshift may be nil.
func NewTransform(geo Geometry, xshift, zshift ShiftTable) *Transform {
	return &Transform{
		geo:    geo,
		xshift: xshift,
		zshift: zshift,
	}
}

const sectorWidth = math.Pi / 6

// PhiAndPhiB implements Transformer.
func (tr *Transform) PhiAndPhiB(sl SuperLayerID, position, tanPhi float64, quality int) (phi, phiB float64) {
	var (
		wh     = sl.Wheel
		sec    = sl.Sector
		tanLoc = -tanPhi
		ref    = sl
	)

	switch sec {
	case 13:
		sec = 4
	case 14:
		sec = 10
	}

	// correlated primitives use SL1 as the origin of the firmware frame.
	if sl.SuperLayer == 0 {
		ref.SuperLayer = 1
	}
	key := WireID{SuperLayerID: ref, Layer: 2, Wire: 1}.RawID()

	x := position/10 + tr.xshift[key] // mm -> cm
	z := localZ(sl)
	if dz, ok := tr.zshift[key]; ok && sl.SuperLayer != 0 {
		z = dz
	}

	phi = tr.geo.GlobalPhi(sl.ChamberID, x, 0, z) - sectorWidth*float64(sec-1)
	psi := math.Atan(tanLoc)

	phiB = -psi - phi
	if hasPosRF(wh, sec) {
		phiB = psi - phi
	}
	return phi, phiB
}

// localZ returns the nominal z position (cm) of a superlayer in its chamber.
func localZ(sl SuperLayerID) float64 {
	switch {
	case sl.SuperLayer == 0:
		if sl.Station >= 3 {
			return -1.8
		}
		return 0
	case sl.Station == 3 || sl.Station == 4:
		switch sl.SuperLayer {
		case 1:
			return 9.95
		case 3:
			return -13.55
		}
	default:
		switch sl.SuperLayer {
		case 1:
			return 11.75
		case 3:
			return -11.75
		}
	}
	return 0
}

func hasPosRF(wheel, sector int) bool {
	return wheel > 0 || (wheel == 0 && sector%4 > 1)
}

var (
	_ Transformer = (*Transform)(nil)
)
