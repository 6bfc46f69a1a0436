// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ab7

// HitData holds the raw fields of a 30-bit hit sub-word.
type HitData struct {
	Station    int // 1..4
	SuperLayer int // 1..3
	Channel    int // 9 bits
	BX         int // 12 bits
	SubBX      int // 5 bits
}

const (
	hitBits = 30
	hitMask = 1<<hitBits - 1
)

// HitWord packs up to two hits in a payload word.
// A nil hit is encoded as an empty slot.
func HitWord(lo, hi *HitData) uint64 {
	return hitTag<<60 | packHit(hi)<<hitBits | packHit(lo)
}

func packHit(h *HitData) uint64 {
	if h == nil {
		return emptyHitBX << 5
	}
	return uint64(h.Station-1)&0x3<<28 |
		uint64(h.SuperLayer)&0x3<<26 |
		uint64(h.Channel)&0x1ff<<17 |
		uint64(h.BX)&0xfff<<5 |
		uint64(h.SubBX)&0x1f
}

// parseHits extracts the non-empty hits of a payload word.
func parseHits(w uint64) []HitData {
	var hits []HitData
	for _, off := range [...]uint{0, hitBits} {
		v := (w >> off) & hitMask
		bx := int(v>>5) & 0xfff
		if bx == emptyHitBX {
			continue
		}
		hits = append(hits, HitData{
			Station:    int(v>>28)&0x3 + 1,
			SuperLayer: int(v>>26) & 0x3,
			Channel:    int(v>>17) & 0x1ff,
			BX:         bx,
			SubBX:      int(v) & 0x1f,
		})
	}
	return hits
}

// decodeHits decodes the hits of a payload word into the block.
func (f *frame) decodeHits(slot int, w uint64) {
	cfg := &f.dec.cfg
	for _, h := range parseHits(w) {
		if h.SuperLayer == 0 {
			f.warnf(WarnSuperLayerZero, slot, "hit on channel %d has superlayer 0", h.Channel)
		}

		order := f.order[h.Channel]
		f.order[h.Channel]++

		sl, layer, wire, ok := cfg.mapping.Map(h.Channel, h.SuperLayer)
		if !ok {
			f.warnf(WarnChannelMap, slot, "channel %d not in %v mapping", h.Channel, cfg.mapping)
		}

		dbx := WrapBX(h.BX - f.blk.BX)
		f.blk.Hits = append(f.blk.Hits, Hit{
			Wheel:      cfg.wheel,
			Station:    h.Station,
			Sector:     cfg.sector,
			SuperLayer: sl,
			Layer:      layer,
			Wire:       wire,
			Channel:    h.Channel,
			BX:         h.BX,
			SubBX:      h.SubBX,
			Time:       SubBXPerBX*dbx + h.SubBX - 1,
			Order:      order,
		})
	}
}
