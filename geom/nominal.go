// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geom

import "math"

// Nominal is an ideal barrel geometry: chambers are flat, centered on the
// sector axis at a fixed radius per station, with their local z axis
// pointing outwards.
//
// It is meant for test stands and quick looks. Aligned geometries are
// provided by the caller through the Geometry interface.
type Nominal struct {
	Radii [4]float64 // chamber-center radius (cm), per station
}

// NewNominal returns the ideal barrel geometry.
func NewNominal() Nominal {
	return Nominal{
		Radii: [4]float64{431.7, 512.4, 617.4, 738.0},
	}
}

// GlobalPhi implements Geometry.
func (geo Nominal) GlobalPhi(ch ChamberID, x, y, z float64) float64 {
	sec := ch.Sector
	switch sec {
	case 13:
		sec = 4
	case 14:
		sec = 10
	}

	r := z
	if ch.Station >= 1 && ch.Station <= len(geo.Radii) {
		r += geo.Radii[ch.Station-1]
	}

	phi := sectorWidth*float64(sec-1) + math.Atan2(x, r)
	// keep phi in (-pi, pi]
	return math.Remainder(phi, 2*math.Pi)
}

var (
	_ Geometry = (*Nominal)(nil)
)
