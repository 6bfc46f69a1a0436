// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ab7

import (
	"math"

	"github.com/go-lpc/dtab7/geom"
)

// TPData holds the raw fields of a trigger primitive, as carried by its
// 1 to 3 payload words.
type TPData struct {
	Station    int // 1..4
	SuperLayer int // 0: correlated
	Quality    int
	Time       int // ns
	Position   int
	Slope      int // signed
	Chi2       int

	Layers    [4]LayerHit // from the second word
	HasLayers bool

	FwPhi  int // V11 third word, in 2^-17 rad
	FwPhiB int // V11 third word, in 2^-11 rad
	Third  bool
}

func tpTag(w uint64) bool { return (w>>62)&0x3 == tpFirstTag }

// superLayerOf returns the superlayer field of a first primitive word.
func superLayerOf(v Version, w uint64) int {
	if v == V8 {
		return int(w>>58) & 0x3
	}
	return int(w>>56) & 0x3
}

// parseFirst decodes the fields of the first word of a primitive.
func parseFirst(v Version, w uint64) TPData {
	if v == V8 {
		return TPData{
			Station:    int(w>>60)&0x3 + 1,
			SuperLayer: int(w>>58) & 0x3,
			Time:       int(w>>41) & 0x1ffff,
			Quality:    int(w>>35) & 0x3f,
			Chi2:       int(w>>30) & 0x1f,
			Slope:      signExtend((w>>15)&0x7fff, 15),
			Position:   int(w) & 0x7fff,
		}
	}
	return TPData{
		Station:    int(w>>58)&0x3 + 1,
		SuperLayer: int(w>>56) & 0x3,
		Quality:    int(w>>50) & 0x3f,
		Time:       int(w>>33) & 0x1ffff,
		Position:   int(w>>15) & 0x1ffff,
		Slope:      signExtend(w&0x7fff, 15),
	}
}

// parseSecond decodes the per-layer hit details of a second word.
func parseSecond(w uint64) [4]LayerHit {
	var lhs [4]LayerHit
	for i := range lhs {
		lhs[i] = LayerHit{
			Lateral:   int(w>>(3-i)) & 0x1,
			Used:      (w>>(7-i))&0x1 == 1,
			DriftTime: int(w>>(20-4*i)) & 0xf,
			Channel:   int(w>>(45-7*i)) & 0x3f,
		}
	}
	return lhs
}

// parseThird decodes the third word of a primitive into tp.
func parseThird(v Version, w uint64, tp *TPData) {
	tp.Third = true
	if v == V11 {
		tp.Chi2 = int(w) & 0x3ffff
		tp.FwPhi = signExtend((w>>18)&0x1ffff, 17)
		tp.FwPhiB = signExtend((w>>35)&0x1fff, 13)
		return
	}
	tp.Chi2 = int(w) & 0xffffff
}

// ParseTP decodes the 1 to 3 words of a trigger primitive.
func ParseTP(v Version, words ...uint64) TPData {
	var tp TPData
	if len(words) == 0 {
		return tp
	}
	tp = parseFirst(v, words[0])
	if len(words) > 1 {
		tp.Layers = parseSecond(words[1])
		tp.HasLayers = true
	}
	if len(words) > 2 && v != V8 {
		parseThird(v, words[2], &tp)
	}
	return tp
}

// TPWords encodes a trigger primitive.
// V8 primitives get a second word unless correlated; V9 and V11 primitives
// always get a second word, and a third one when tp.Third is set.
func TPWords(v Version, tp TPData) []uint64 {
	var w1 uint64
	switch v {
	case V8:
		w1 = tpFirstTag<<62 |
			uint64(tp.Station-1)&0x3<<60 |
			uint64(tp.SuperLayer)&0x3<<58 |
			uint64(tp.Time)&0x1ffff<<41 |
			uint64(tp.Quality)&0x3f<<35 |
			uint64(tp.Chi2)&0x1f<<30 |
			uint64(tp.Slope)&0x7fff<<15 |
			uint64(tp.Position)&0x7fff
	default:
		w1 = tpFirstTag<<62 |
			uint64(tp.Station-1)&0x3<<58 |
			uint64(tp.SuperLayer)&0x3<<56 |
			uint64(tp.Quality)&0x3f<<50 |
			uint64(tp.Time)&0x1ffff<<33 |
			uint64(tp.Position)&0x1ffff<<15 |
			uint64(tp.Slope)&0x7fff
	}

	words := []uint64{w1}
	if v == V8 && tp.SuperLayer == 0 {
		return words
	}

	w2 := uint64(tpSecondTag) << 60
	for i, lh := range tp.Layers {
		if lh.Used {
			w2 |= 1 << (7 - i)
		}
		w2 |= uint64(lh.Lateral)&0x1<<(3-i) |
			uint64(lh.DriftTime)&0xf<<(20-4*i) |
			uint64(lh.Channel)&0x3f<<(45-7*i)
	}
	words = append(words, w2)

	if v == V8 || !tp.Third {
		return words
	}

	w3 := uint64(tpThirdTag) << 60
	switch v {
	case V11:
		w3 |= uint64(tp.FwPhiB)&0x1fff<<35 |
			uint64(tp.FwPhi)&0x1ffff<<18 |
			uint64(tp.Chi2)&0x3ffff
	default:
		w3 |= uint64(tp.Chi2) & 0xffffff
	}
	return append(words, w3)
}

// continuation reads the next payload word of a primitive, if it carries
// the expected tag. Other words are pushed back to be decoded as payload.
func (f *frame) continuation(left *int, tag uint64) (uint64, bool, error) {
	if *left <= 0 {
		return 0, false, nil
	}
	w, err := f.cur.next()
	if err != nil {
		return 0, false, err
	}
	if (w>>60)&0xf != tag {
		f.cur.pushBack(w)
		return w, false, nil
	}
	*left--
	return w, true, nil
}

// decodeTP decodes a primitive starting with the payload word first.
// left is the number of payload words remaining in the slot.
func (f *frame) decodeTP(slot int, first uint64, left *int) error {
	var (
		v     = f.version
		words = []uint64{first}
	)

	if v != V8 || superLayerOf(v, first) != 0 {
		w, ok, err := f.continuation(left, tpSecondTag)
		if err != nil {
			return err
		}
		switch {
		case ok:
			words = append(words, w)
		default:
			f.warnf(WarnMissingWord, slot,
				"expected second trigger word, got 0x%016x (first=0x%016x)", w, first,
			)
		}
	}

	if v != V8 && len(words) == 2 {
		w, ok, err := f.continuation(left, tpThirdTag)
		if err != nil {
			return err
		}
		if ok {
			words = append(words, w)
		}
	}

	f.addTP(ParseTP(v, words...))
	return nil
}

func (f *frame) addTP(raw TPData) {
	cfg := &f.dec.cfg

	time := raw.Time
	if cfg.tpTime {
		time -= NsPerBX * f.blk.BX
	}
	bx := WrapBX(int(math.Round(float64(time) / NsPerBX)))

	tp := Primitive{
		BX:         bx,
		Wheel:      cfg.wheel,
		Sector:     cfg.sector - 1,
		Station:    raw.Station,
		SuperLayer: raw.SuperLayer,
		Quality:    raw.Quality,
		Time:       time,
		Chi2:       raw.Chi2,
		RPC:        -10,
		Position:   raw.Position,
		Slope:      raw.Slope,
	}

	var phi, phiB float64
	switch {
	case f.version == V11 && raw.Third:
		phi = float64(raw.FwPhi) / (1 << 17)
		phiB = float64(raw.FwPhiB) / (1 << 11)
	case cfg.tr != nil:
		sl := geom.SuperLayerID{
			ChamberID: geom.ChamberID{
				Wheel:   cfg.wheel,
				Station: raw.Station,
				Sector:  cfg.sector,
			},
			SuperLayer: raw.SuperLayer,
		}
		phi, phiB = cfg.tr.PhiAndPhiB(sl, float64(raw.Position)/4, float64(raw.Slope)/4096, raw.Quality)
	}
	tp.Phi = int(math.Round(phi / phiUnit))
	tp.PhiB = int(math.Round(phiB / phiBUnit))

	if cfg.rawTP {
		tp.Index = RawIndex
		tp.Phi = raw.Position
		tp.PhiB = raw.Slope
	}

	if f.dec.cfg.hexDump {
		f.dumpf("TP: bx=%d Q=%d SL=%d", tp.BX, tp.Quality, tp.SuperLayer)
	}

	f.blk.Primitives = append(f.blk.Primitives, tp)
	if cfg.extended {
		f.blk.Extended = append(f.blk.Extended, ExtPrimitive{
			Primitive: tp,
			Layers:    raw.Layers,
		})
	}
}
